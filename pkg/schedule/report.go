package schedule

import (
	"sort"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

// ReportRow holds one person's day counts per work type
type ReportRow struct {
	Person models.Person  `json:"person"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// MonthReport tallies assigned days per person and work type for a month
type MonthReport struct {
	Month  Month          `json:"month"`
	Codes  []string       `json:"codes"`
	Rows   []ReportRow    `json:"rows"`
	Totals map[string]int `json:"totals"`
	Total  int            `json:"total"`
}

// Report counts, for every person, the days of m occupied by each catalog
// work type. Codes missing from the catalog are not counted.
func Report(idx Lookuper, personnel []models.Person, catalog Catalog, m Month) MonthReport {
	codes := make([]string, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	people := append([]models.Person(nil), personnel...)
	sort.SliceStable(people, func(i, j int) bool {
		if people[i].Name != people[j].Name {
			return people[i].Name < people[j].Name
		}
		return people[i].ID < people[j].ID
	})

	rep := MonthReport{Month: m, Codes: codes, Totals: zeroCounts(codes)}
	for _, p := range people {
		row := ReportRow{Person: p, Counts: zeroCounts(codes)}
		for day := 1; day <= m.Days(); day++ {
			e, ok := idx.Lookup(day, m.Month, m.Year, p.ID)
			if !ok {
				continue
			}
			if _, known := catalog[e.WorkTypeCode]; !known {
				continue
			}
			row.Counts[e.WorkTypeCode]++
			row.Total++
			rep.Totals[e.WorkTypeCode]++
			rep.Total++
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

func zeroCounts(codes []string) map[string]int {
	m := make(map[string]int, len(codes))
	for _, c := range codes {
		m[c] = 0
	}
	return m
}
