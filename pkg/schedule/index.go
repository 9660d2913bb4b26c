// Package schedule projects assignment ranges onto calendar days and derives
// the month grid, availability and report views from that projection.
package schedule

import (
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

// Key identifies one person on one calendar day
type Key struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Day      int        `json:"day"`
	PersonID string     `json:"personId"`
}

// KeyOf builds the key for a date and person
func KeyOf(date time.Time, personID string) Key {
	d := models.Day(date)
	return Key{Year: d.Year(), Month: d.Month(), Day: d.Day(), PersonID: personID}
}

// Entry records that a person holds a work type on a given day
type Entry struct {
	AssignmentID string    `json:"assignmentId"`
	WorkTypeCode string    `json:"workTypeCode"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	UserID       string    `json:"userId"`
}

// Overwrite records a day claimed by two assignments. Kept is the one that
// was processed later and therefore owns the entry.
type Overwrite struct {
	Key  Key    `json:"key"`
	Lost string `json:"lost"`
	Kept string `json:"kept"`
}

// Lookuper is satisfied by both the built Index and a Scratch copy
type Lookuper interface {
	Lookup(day int, month time.Month, year int, personID string) (Entry, bool)
}

// Index maps (day, person) to the occupying assignment. An Index is never
// mutated after Build returns.
type Index struct {
	entries    map[Key]Entry
	overwrites []Overwrite
	skipped    []string
}

// Build projects every assignment onto each day of its inclusive range.
// The person is taken from the populated User when present, otherwise it
// must appear in personnel; assignments whose person cannot be resolved
// are skipped. When two assignments claim the same day for the same person
// the later one in input order wins.
func Build(assignments []models.Assignment, personnel []models.Person) *Index {
	known := make(map[string]struct{}, len(personnel))
	for _, p := range personnel {
		if p.ID != "" {
			known[p.ID] = struct{}{}
		}
	}

	idx := &Index{entries: make(map[Key]Entry)}
	for _, a := range assignments {
		personID, ok := resolve(a, known)
		if !ok {
			idx.skipped = append(idx.skipped, a.ID)
			continue
		}

		start := models.Day(a.StartDate)
		end := models.Day(a.EndDate)
		entry := Entry{
			AssignmentID: a.ID,
			WorkTypeCode: a.WorkTypeCode,
			StartDate:    start,
			EndDate:      end,
			UserID:       personID,
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			k := KeyOf(d, personID)
			if prev, exists := idx.entries[k]; exists && prev.AssignmentID != a.ID {
				idx.overwrites = append(idx.overwrites, Overwrite{Key: k, Lost: prev.AssignmentID, Kept: a.ID})
			}
			idx.entries[k] = entry
		}
	}
	return idx
}

func resolve(a models.Assignment, known map[string]struct{}) (string, bool) {
	if a.User != nil && a.User.ID != "" {
		return a.User.ID, true
	}
	if a.UserID == "" {
		return "", false
	}
	if _, ok := known[a.UserID]; !ok {
		return "", false
	}
	return a.UserID, true
}

// Lookup returns the entry for a person on a day
func (idx *Index) Lookup(day int, month time.Month, year int, personID string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.entries[Key{Year: year, Month: month, Day: day, PersonID: personID}]
	return e, ok
}

// Get returns the entry stored under k
func (idx *Index) Get(k Key) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.entries[k]
	return e, ok
}

// Len is the number of occupied (day, person) pairs
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Range calls fn for every entry until fn returns false. Order is unspecified.
func (idx *Index) Range(fn func(Key, Entry) bool) {
	if idx == nil {
		return
	}
	for k, e := range idx.entries {
		if !fn(k, e) {
			return
		}
	}
}

// Overwrites lists every day that was claimed by more than one assignment,
// in processing order
func (idx *Index) Overwrites() []Overwrite {
	if idx == nil {
		return nil
	}
	return append([]Overwrite(nil), idx.overwrites...)
}

// Skipped lists the ids of assignments whose person could not be resolved
func (idx *Index) Skipped() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.skipped...)
}

// DayEntry is an Entry together with the day of month it occupies
type DayEntry struct {
	Day int `json:"day"`
	Entry
}

// PersonMonth returns the occupied days of one person within a month, in day order
func (idx *Index) PersonMonth(personID string, month time.Month, year int) []DayEntry {
	m := Month{Year: year, Month: month}
	var out []DayEntry
	for day := 1; day <= m.Days(); day++ {
		if e, ok := idx.Lookup(day, month, year, personID); ok {
			out = append(out, DayEntry{Day: day, Entry: e})
		}
	}
	return out
}

// Scratch returns an editable copy of the index for local, unsaved edits
func (idx *Index) Scratch() *Scratch {
	s := &Scratch{entries: make(map[Key]Entry, idx.Len())}
	idx.Range(func(k Key, e Entry) bool {
		s.entries[k] = e
		return true
	})
	return s
}
