// Package export renders month grids and reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

const (
	GridSheet   = "Cuadrante"
	ReportSheet = "Resumen"

	// ContentType is the MIME type of the generated workbooks
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Exporter builds workbooks. The zero value is ready to use.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// sheet writes into one worksheet and keeps the first excelize error, so a
// layout can be written straight through and checked once at the end
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

func (s *sheet) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return name
}

func (s *sheet) set(cell string, v any) {
	if s.err == nil {
		s.err = s.f.SetCellValue(s.name, cell, v)
	}
}

func (s *sheet) style(from, to string, style int) {
	if s.err == nil {
		s.err = s.f.SetCellStyle(s.name, from, to, style)
	}
}

func (s *sheet) rowStyle(row, style int) {
	if s.err == nil {
		s.err = s.f.SetRowStyle(s.name, row, row, style)
	}
}

func (s *sheet) merge(from, to string) {
	if s.err == nil {
		s.err = s.f.MergeCell(s.name, from, to)
	}
}

func (s *sheet) width(from, to string, w float64) {
	if s.err == nil {
		s.err = s.f.SetColWidth(s.name, from, to, w)
	}
}

func (s *sheet) newStyle(st *excelize.Style) int {
	if s.err != nil {
		return 0
	}
	id, err := s.f.NewStyle(st)
	s.err = err
	return id
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	return &sheet{f: f, name: name}, nil
}

// done returns the workbook, or closes it and returns the first error
func (s *sheet) done() (*excelize.File, error) {
	if s.err != nil {
		s.f.Close()
		return nil, s.err
	}
	return s.f, nil
}

func headerStyle(fill string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}
}

// Grid lays out one row per person and one column per day. Spans are
// merged across their days and filled with the work type color.
func (e *Exporter) Grid(m schedule.Month, rows []schedule.Row, catalog schedule.Catalog) (*excelize.File, error) {
	s, err := newSheet(GridSheet)
	if err != nil {
		return nil, err
	}

	header := s.newStyle(headerStyle("#E2E8F0"))
	weekend := s.newStyle(headerStyle("#CBD5E1"))

	s.set("A1", m.String())
	s.set("A2", "Persona")
	for day := 1; day <= m.Days(); day++ {
		top, bottom := s.cell(day+1, 1), s.cell(day+1, 2)
		s.set(top, m.WeekdayLetter(day))
		s.set(bottom, day)
		style := header
		if m.IsWeekend(day) {
			style = weekend
		}
		s.style(top, bottom, style)
	}
	s.style("A1", "A2", header)

	styles := map[string]int{}
	for i, row := range rows {
		r := i + 3
		s.set(s.cell(1, r), row.Person.Name)

		col := 2
		for _, cell := range row.Cells {
			start, end := s.cell(col, r), s.cell(col+cell.Colspan-1, r)
			col += cell.Colspan
			if cell.Empty() {
				continue
			}
			s.set(start, cell.WorkTypeCode)
			if cell.Colspan > 1 {
				s.merge(start, end)
			}
			style, ok := styles[cell.WorkTypeCode]
			if !ok {
				style = s.newStyle(&excelize.Style{
					Fill:      excelize.Fill{Type: "pattern", Color: []string{fillColor(catalog, cell.WorkTypeCode)}, Pattern: 1},
					Alignment: &excelize.Alignment{Horizontal: "center"},
				})
				styles[cell.WorkTypeCode] = style
			}
			s.style(start, end, style)
		}
	}

	last, err := excelize.ColumnNumberToName(m.Days() + 1)
	if err != nil {
		s.f.Close()
		return nil, err
	}
	s.width("A", "A", 24)
	s.width("B", last, 5)
	return s.done()
}

// Report writes one row per person with the day count of every work type
// followed by a totals row
func (e *Exporter) Report(r schedule.MonthReport, catalog schedule.Catalog) (*excelize.File, error) {
	s, err := newSheet(ReportSheet)
	if err != nil {
		return nil, err
	}

	headers := []string{"Persona"}
	for _, code := range r.Codes {
		headers = append(headers, catalog.Label(code))
	}
	headers = append(headers, "Total")
	for i, h := range headers {
		s.set(s.cell(i+1, 1), h)
	}
	header := s.newStyle(headerStyle("#E2E8F0"))
	s.rowStyle(1, header)

	for i, row := range r.Rows {
		line := i + 2
		s.set(s.cell(1, line), row.Person.Name)
		for j, code := range r.Codes {
			s.set(s.cell(j+2, line), row.Counts[code])
		}
		s.set(s.cell(len(r.Codes)+2, line), row.Total)
	}

	totals := len(r.Rows) + 2
	s.set(s.cell(1, totals), "Total")
	for j, code := range r.Codes {
		s.set(s.cell(j+2, totals), r.Totals[code])
	}
	s.set(s.cell(len(r.Codes)+2, totals), r.Total)
	s.rowStyle(totals, header)

	s.width("A", "A", 24)
	return s.done()
}

// Write renders f to w and closes it
func Write(f *excelize.File, w io.Writer) error {
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}

// fillColor expands #RGB to #RRGGBB; unknown codes get a neutral grey
func fillColor(catalog schedule.Catalog, code string) string {
	wt, ok := catalog[code]
	if !ok || wt.Color == "" {
		return "#D1D5DB"
	}
	c := strings.TrimPrefix(wt.Color, "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return "#" + strings.ToUpper(c)
}

// Filename is the download name for a workbook of kind for m. Anything in
// area outside [A-Za-z0-9_-] becomes '_' so the name is safe inside a quoted
// Content-Disposition parameter.
func Filename(kind string, m schedule.Month, area string) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", kind, safeName(area), m.String())
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
