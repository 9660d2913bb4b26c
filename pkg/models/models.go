package models

import (
	"fmt"
	"strings"
	"time"
)

// Area scopes people and assignments for one organisational unit
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Person is someone who can be assigned work types on calendar days
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	AreaID string `json:"areaId,omitempty"`
}

// WorkType is a day-level category such as "VAC" with its display data
type WorkType struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Assignment binds one person to one work type over an inclusive date range.
// User is set when the store returns the person populated.
type Assignment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	User         *Person   `json:"user,omitempty"`
	AreaID       string    `json:"areaId,omitempty"`
	WorkTypeCode string    `json:"workTypeCode"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

// AssignmentInput is the payload for creating an assignment
type AssignmentInput struct {
	UserID       string    `json:"userId"`
	AreaID       string    `json:"areaId,omitempty"`
	WorkTypeCode string    `json:"workTypeCode"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

// AssignmentPatch carries the fields of an update; nil fields are left alone
type AssignmentPatch struct {
	UserID       *string    `json:"userId,omitempty"`
	WorkTypeCode *string    `json:"workTypeCode,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

// AreaScope is the area selected for a session. It is passed explicitly to
// whatever needs area-scoped queries.
type AreaScope struct {
	AreaID string
}

// Day truncates t to its UTC calendar day
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NormalizeCode upper-cases and trims a work type code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// MaxAssignmentDays is the longest range a single assignment may cover
const MaxAssignmentDays = 366

// CheckRange validates an inclusive day range: start not after end and no
// longer than MaxAssignmentDays
func CheckRange(start, end time.Time) error {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return &ValidationError{Field: "endDate", Message: "startDate must not be after endDate"}
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxAssignmentDays {
		return &ValidationError{Field: "endDate", Message: fmt.Sprintf("an assignment may span at most %d days, got %d", MaxAssignmentDays, days)}
	}
	return nil
}

// Validate checks the fields required to create an assignment
func (in AssignmentInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return &ValidationError{Field: "userId", Message: "userId is required"}
	}
	if NormalizeCode(in.WorkTypeCode) == "" {
		return &ValidationError{Field: "workTypeCode", Message: "workTypeCode is required"}
	}
	if in.StartDate.IsZero() {
		return &ValidationError{Field: "startDate", Message: "startDate is required"}
	}
	if in.EndDate.IsZero() {
		return &ValidationError{Field: "endDate", Message: "endDate is required"}
	}
	return CheckRange(in.StartDate, in.EndDate)
}

// Validate checks the fields present in a patch
func (p AssignmentPatch) Validate() error {
	if p.UserID != nil && strings.TrimSpace(*p.UserID) == "" {
		return &ValidationError{Field: "userId", Message: "userId must not be empty"}
	}
	if p.WorkTypeCode != nil && NormalizeCode(*p.WorkTypeCode) == "" {
		return &ValidationError{Field: "workTypeCode", Message: "workTypeCode must not be empty"}
	}
	if p.StartDate != nil && p.EndDate != nil {
		return CheckRange(*p.StartDate, *p.EndDate)
	}
	return nil
}

// Apply returns a copy of a with the patch applied
func (p AssignmentPatch) Apply(a Assignment) Assignment {
	if p.UserID != nil {
		a.UserID = *p.UserID
		a.User = nil
	}
	if p.WorkTypeCode != nil {
		a.WorkTypeCode = NormalizeCode(*p.WorkTypeCode)
	}
	if p.StartDate != nil {
		a.StartDate = Day(*p.StartDate)
	}
	if p.EndDate != nil {
		a.EndDate = Day(*p.EndDate)
	}
	return a
}

// PersonID returns the populated user id when present, else UserID
func (a Assignment) PersonID() string {
	if a.User != nil && a.User.ID != "" {
		return a.User.ID
	}
	return a.UserID
}

// Overlaps reports whether the assignment touches any day of the month
func (a Assignment) Overlaps(year int, month time.Month) bool {
	first := Date(year, month, 1)
	last := first.AddDate(0, 1, -1)
	return !Day(a.StartDate).After(last) && !Day(a.EndDate).Before(first)
}
