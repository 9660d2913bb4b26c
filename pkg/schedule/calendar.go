package schedule

import (
	"fmt"
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

var weekdayLetters = [...]string{
	time.Sunday:    "D",
	time.Monday:    "L",
	time.Tuesday:   "M",
	time.Wednesday: "X",
	time.Thursday:  "J",
	time.Friday:    "V",
	time.Saturday:  "S",
}

// Month is one displayed month of one year
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) Month {
	d := models.Day(t)
	return Month{Year: d.Year(), Month: d.Month()}
}

// NewMonth validates month and year
func NewMonth(month, year int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, &models.ValidationError{Field: "month", Message: fmt.Sprintf("month %d out of range 1-12", month)}
	}
	if year < 1 || year > 9999 {
		return Month{}, &models.ValidationError{Field: "year", Message: fmt.Sprintf("year %d out of range", year)}
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// Days is the number of days in the month
func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// First is the first day of the month
func (m Month) First() time.Time {
	return models.Date(m.Year, m.Month, 1)
}

// Last is the last day of the month
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// Date returns the given day of the month
func (m Month) Date(day int) time.Time {
	return models.Date(m.Year, m.Month, day)
}

func (m Month) Next() Month { return MonthOf(m.First().AddDate(0, 1, 0)) }

func (m Month) Prev() Month { return MonthOf(m.First().AddDate(0, -1, 0)) }

// WeekdayLetter returns the single-letter weekday heading used on the grid
func (m Month) WeekdayLetter(day int) string {
	return weekdayLetters[m.Date(day).Weekday()]
}

func (m Month) IsWeekend(day int) bool {
	wd := m.Date(day).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
