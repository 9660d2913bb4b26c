package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

// monthParams reads :month and :year (1-based month)
func monthParams(c *gin.Context) (schedule.Month, error) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return schedule.Month{}, &models.ValidationError{Field: "month", Message: "month must be a number"}
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return schedule.Month{}, &models.ValidationError{Field: "year", Message: "year must be a number"}
	}
	return schedule.NewMonth(month, year)
}

// ListAreaAssignments returns every assignment of an area
func (h *Handler) ListAreaAssignments(c *gin.Context) {
	out, err := h.Store.ListAllAssignments(c.Request.Context(), c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, out)
}

// ListMonthAssignments returns the assignments of an area touching a month
func (h *Handler) ListMonthAssignments(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.Store.ListAssignments(c.Request.Context(), m.Month, m.Year, c.Param("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, out)
}

func (h *Handler) ListUserAssignments(c *gin.Context) {
	out, err := h.Store.ListAssignmentsByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, out)
}

// ListRangeAssignments returns assignments overlapping the posted range
func (h *Handler) ListRangeAssignments(c *gin.Context) {
	var req struct {
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		h.fail(c, &models.ValidationError{Field: "startDate", Message: "startDate and endDate are required"})
		return
	}
	if models.Day(req.StartDate).After(models.Day(req.EndDate)) {
		h.fail(c, &models.ValidationError{Field: "endDate", Message: "startDate must not be after endDate"})
		return
	}
	out, err := h.Store.ListAssignmentsByDateRange(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, out)
}

func (h *Handler) GetAssignment(c *gin.Context) {
	a, err := h.Store.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, a)
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	var in models.AssignmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Store.CreateAssignment(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, a)
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	var patch models.AssignmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Store.UpdateAssignment(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, a)
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	if err := h.Store.DeleteAssignment(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}

// DeleteUserMonth removes every assignment of a person touching a month
func (h *Handler) DeleteUserMonth(c *gin.Context) {
	m, err := monthParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	userID := c.Param("userId")
	if err := h.Store.DeleteAssignmentsByUserAndMonth(c.Request.Context(), userID, m.Month, m.Year); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"userId": userID, "month": int(m.Month), "year": m.Year})
}
