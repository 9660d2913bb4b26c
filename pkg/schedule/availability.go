package schedule

import (
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

// Catalog resolves work type codes to their display data
type Catalog map[string]models.WorkType

// NewCatalog indexes work types by code
func NewCatalog(types []models.WorkType) Catalog {
	c := make(Catalog, len(types))
	for _, wt := range types {
		c[wt.Code] = wt
	}
	return c
}

// Label returns the label for code, or the code itself when unknown
func (c Catalog) Label(code string) string {
	if wt, ok := c[code]; ok && wt.Label != "" {
		return wt.Label
	}
	return code
}

// Unavailable is a person who holds a work type on the queried date
type Unavailable struct {
	Person       models.Person `json:"person"`
	AssignmentID string        `json:"assignmentId"`
	WorkTypeCode string        `json:"workTypeCode"`
	Label        string        `json:"label"`
	Color        string        `json:"color,omitempty"`
}

// Availability splits personnel for one date
type Availability struct {
	Date        time.Time       `json:"date"`
	Available   []models.Person `json:"available"`
	Unavailable []Unavailable   `json:"unavailable"`
}

// Partition puts every person into exactly one of the two lists, keeping
// the order of personnel
func Partition(date time.Time, personnel []models.Person, idx Lookuper, catalog Catalog) Availability {
	d := models.Day(date)
	out := Availability{
		Date:        d,
		Available:   []models.Person{},
		Unavailable: []Unavailable{},
	}
	for _, p := range personnel {
		e, ok := idx.Lookup(d.Day(), d.Month(), d.Year(), p.ID)
		if !ok {
			out.Available = append(out.Available, p)
			continue
		}
		out.Unavailable = append(out.Unavailable, Unavailable{
			Person:       p,
			AssignmentID: e.AssignmentID,
			WorkTypeCode: e.WorkTypeCode,
			Label:        catalog.Label(e.WorkTypeCode),
			Color:        catalog[e.WorkTypeCode].Color,
		})
	}
	return out
}
