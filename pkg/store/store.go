// Package store persists areas, people, work types and assignments with gorm
// and speaks the error vocabulary of pkg/models.
package store

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/logging"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

// Store is the database-backed implementation of every collaborator
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, log: logging.New("store")}
}

// DB exposes the underlying handle for auth bookkeeping
func (s *Store) DB() *gorm.DB { return s.db }

func wrap(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{Kind: kind, ID: id}
	}
	return &models.FetchError{Op: op, Message: err.Error(), Err: err}
}

func toPerson(p database.Person) models.Person {
	return models.Person{ID: p.ID, Name: p.Name, AreaID: p.AreaID}
}

func toAssignment(a database.Assignment) models.Assignment {
	out := models.Assignment{
		ID:           a.ID,
		UserID:       a.UserID,
		AreaID:       a.AreaID,
		WorkTypeCode: a.WorkTypeCode,
		StartDate:    models.Day(a.StartDate),
		EndDate:      models.Day(a.EndDate),
	}
	if a.User != nil {
		p := toPerson(*a.User)
		out.User = &p
	}
	return out
}
