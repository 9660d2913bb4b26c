package models

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load was started
var ErrSuperseded = errors.New("load superseded by a newer request")

// ValidationError reports malformed or incomplete input to a mutation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FetchError reports a collaborator that was unreachable or answered with a failure
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced person, work type, area or assignment
// that does not exist
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsFetch(err error) bool {
	var f *FetchError
	return errors.As(err, &f)
}
