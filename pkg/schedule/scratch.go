package schedule

import "time"

// Scratch is a local copy of an Index that accepts direct edits. Its edits
// are never persisted and are discarded by the next Build.
type Scratch struct {
	entries map[Key]Entry
}

// Lookup returns the entry for a person on a day
func (s *Scratch) Lookup(day int, month time.Month, year int, personID string) (Entry, bool) {
	e, ok := s.entries[Key{Year: year, Month: month, Day: day, PersonID: personID}]
	return e, ok
}

// AddEntry writes e for a person on a day, replacing any existing entry
func (s *Scratch) AddEntry(day int, month time.Month, year int, personID string, e Entry) {
	s.entries[Key{Year: year, Month: month, Day: day, PersonID: personID}] = e
}

// RemoveEntry clears a person's entry on a day
func (s *Scratch) RemoveEntry(day int, month time.Month, year int, personID string) {
	delete(s.entries, Key{Year: year, Month: month, Day: day, PersonID: personID})
}

// RemoveRange clears a person's entries for days startDay..endDay inclusive
func (s *Scratch) RemoveRange(startDay, endDay int, month time.Month, year int, personID string) {
	for day := startDay; day <= endDay; day++ {
		s.RemoveEntry(day, month, year, personID)
	}
}

// Len is the number of occupied (day, person) pairs
func (s *Scratch) Len() int { return len(s.entries) }
