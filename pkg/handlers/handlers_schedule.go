package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-api-go/pkg/export"
	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
	"github.com/arnavshah/roster-api-go/pkg/window"
)

// monthView is everything the month screens need, projected once
type monthView struct {
	month     schedule.Month
	personnel []models.Person
	catalog   schedule.Catalog
	types     []models.WorkType
	index     *schedule.Index
}

// loadMonth reads the area's people, work types and month assignments and
// projects them into an index
func (h *Handler) loadMonth(ctx context.Context, m schedule.Month, areaID string) (*monthView, error) {
	personnel, err := h.Store.ListPeople(ctx, areaID)
	if err != nil {
		return nil, err
	}
	types, err := h.Store.ListWorkTypes(ctx)
	if err != nil {
		return nil, err
	}

	w := window.New(h.Store, models.AreaScope{AreaID: areaID}, window.WithMetrics(h.Metrics), window.WithLogger(h.log))
	if _, err := w.Load(ctx, m.Month, m.Year, areaID); err != nil {
		return nil, err
	}
	return &monthView{
		month:     m,
		personnel: personnel,
		catalog:   schedule.NewCatalog(types),
		types:     types,
		index:     w.Index(personnel),
	}, nil
}

type gridResponse struct {
	Month      schedule.Month       `json:"month"`
	Days       []gridDay            `json:"days"`
	Rows       []schedule.Row       `json:"rows"`
	WorkTypes  []models.WorkType    `json:"workTypes"`
	Overwrites []schedule.Overwrite `json:"overwrites"`
}

type gridDay struct {
	Day     int    `json:"day"`
	Letter  string `json:"letter"`
	Weekend bool   `json:"weekend"`
}

// Grid returns the month grid of an area with spans already coalesced
func (h *Handler) Grid(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := h.loadMonth(c.Request.Context(), m, c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	days := make([]gridDay, 0, m.Days())
	for d := 1; d <= m.Days(); d++ {
		days = append(days, gridDay{Day: d, Letter: m.WeekdayLetter(d), Weekend: m.IsWeekend(d)})
	}
	overwrites := v.index.Overwrites()
	if overwrites == nil {
		overwrites = []schedule.Overwrite{}
	}
	ok(c, gridResponse{
		Month:      m,
		Days:       days,
		Rows:       schedule.Grid(v.index, v.personnel, m),
		WorkTypes:  v.types,
		Overwrites: overwrites,
	})
}

// Availability splits the area's people into available and unavailable on :date
func (h *Handler) Availability(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		h.fail(c, &models.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
		return
	}
	v, err := h.loadMonth(c.Request.Context(), schedule.MonthOf(date), c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, schedule.Partition(date, v.personnel, v.index, v.catalog))
}

// Report returns per person day counts for each work type in the month
func (h *Handler) Report(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := h.loadMonth(c.Request.Context(), m, c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, schedule.Report(v.index, v.personnel, v.catalog, m))
}

// ExportGrid downloads the month grid as an xlsx workbook
func (h *Handler) ExportGrid(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := h.loadMonth(c.Request.Context(), m, c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := h.Exporter.Grid(m, schedule.Grid(v.index, v.personnel, m), v.catalog)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendWorkbook(c, export.Filename("grid", m, c.Param("areaId")), func(w http.ResponseWriter) error {
		return export.Write(f, w)
	})
}

// ExportReport downloads the month report as an xlsx workbook
func (h *Handler) ExportReport(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := h.loadMonth(c.Request.Context(), m, c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := h.Exporter.Report(schedule.Report(v.index, v.personnel, v.catalog, m), v.catalog)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendWorkbook(c, export.Filename("report", m, c.Param("areaId")), func(w http.ResponseWriter) error {
		return export.Write(f, w)
	})
}

func (h *Handler) sendWorkbook(c *gin.Context, name string, write func(http.ResponseWriter) error) {
	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := write(c.Writer); err != nil {
		h.log.Error().Err(err).Str("file", name).Msg("could not write workbook")
	}
}
