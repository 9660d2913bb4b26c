package schedule

import "github.com/arnavshah/roster-api-go/pkg/models"

// Span is a maximal run of consecutive days in one month where a person
// holds the same work type
type Span struct {
	PersonID     string `json:"personId"`
	StartDay     int    `json:"startDay"`
	EndDay       int    `json:"endDay"`
	WorkTypeCode string `json:"workTypeCode"`
	AssignmentID string `json:"assignmentId"`
}

// Len is the number of days covered by the span
func (s Span) Len() int { return s.EndDay - s.StartDay + 1 }

// RangeEnd scans forward from day while the next day holds the same work
// type and returns the last matching day. The scan never leaves the month.
// If nothing is assigned on day, day is returned.
func RangeEnd(idx Lookuper, m Month, day int, personID string) int {
	cur, ok := lookup(idx, m, day, personID)
	if !ok {
		return day
	}
	end := day
	for next := day + 1; next <= m.Days(); next++ {
		e, ok := lookup(idx, m, next, personID)
		if !ok || e.WorkTypeCode != cur.WorkTypeCode {
			break
		}
		end = next
	}
	return end
}

// SpanLength is the number of grid columns the cell starting at day covers
func SpanLength(idx Lookuper, m Month, day int, personID string) int {
	return RangeEnd(idx, m, day, personID) - day + 1
}

// IsContinuation reports whether day is covered by a span that started on
// an earlier day of the same month. Such days produce no grid cell.
func IsContinuation(idx Lookuper, m Month, day int, personID string) bool {
	if day <= 1 || day > m.Days() {
		return false
	}
	cur, ok := lookup(idx, m, day, personID)
	if !ok {
		return false
	}
	prev, ok := lookup(idx, m, day-1, personID)
	return ok && prev.WorkTypeCode == cur.WorkTypeCode
}

func lookup(idx Lookuper, m Month, day int, personID string) (Entry, bool) {
	if day < 1 || day > m.Days() {
		return Entry{}, false
	}
	return idx.Lookup(day, m.Month, m.Year, personID)
}

// Spans returns the coalesced runs of one person within a month
func Spans(idx Lookuper, m Month, personID string) []Span {
	var out []Span
	for day := 1; day <= m.Days(); {
		e, ok := lookup(idx, m, day, personID)
		if !ok {
			day++
			continue
		}
		end := RangeEnd(idx, m, day, personID)
		out = append(out, Span{
			PersonID:     personID,
			StartDay:     day,
			EndDay:       end,
			WorkTypeCode: e.WorkTypeCode,
			AssignmentID: e.AssignmentID,
		})
		day = end + 1
	}
	return out
}

// Cell is one rendered grid cell. Empty cells always cover a single day.
type Cell struct {
	Day          int    `json:"day"`
	Colspan      int    `json:"colspan"`
	WorkTypeCode string `json:"workTypeCode,omitempty"`
	AssignmentID string `json:"assignmentId,omitempty"`
	Weekend      bool   `json:"weekend"`
}

// Empty reports whether nothing is assigned in the cell
func (c Cell) Empty() bool { return c.WorkTypeCode == "" }

// Row is the grid line of one person
type Row struct {
	Person models.Person `json:"person"`
	Cells  []Cell        `json:"cells"`
}

// Grid renders one row per person. Continuation days are omitted so that
// the colspans of a row always add up to the number of days in the month.
func Grid(idx Lookuper, personnel []models.Person, m Month) []Row {
	rows := make([]Row, 0, len(personnel))
	for _, p := range personnel {
		row := Row{Person: p}
		for day := 1; day <= m.Days(); day++ {
			if IsContinuation(idx, m, day, p.ID) {
				continue
			}
			cell := Cell{Day: day, Colspan: 1, Weekend: m.IsWeekend(day)}
			if e, ok := lookup(idx, m, day, p.ID); ok {
				cell.Colspan = SpanLength(idx, m, day, p.ID)
				cell.WorkTypeCode = e.WorkTypeCode
				cell.AssignmentID = e.AssignmentID
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows
}
