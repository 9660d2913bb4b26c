package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

// ValidateAssignment checks an assignment payload without storing it:
// required fields, date order, the person's area and that the person and
// work type exist.
func (h *Handler) ValidateAssignment(c *gin.Context) {
	var in models.AssignmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	in.WorkTypeCode = models.NormalizeCode(in.WorkTypeCode)
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	person, err := h.Store.GetPerson(ctx, in.UserID)
	if models.IsNotFound(err) {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Unknown user: " + in.UserID})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if in.AreaID != "" && in.AreaID != person.AreaID {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "User " + person.ID + " does not belong to area " + in.AreaID})
		return
	}
	if _, err := h.Store.GetWorkType(ctx, in.WorkTypeCode); models.IsNotFound(err) {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Unknown work type: " + in.WorkTypeCode})
		return
	} else if err != nil {
		h.fail(c, err)
		return
	}

	// Existing assignments of the person that the new range would overwrite
	overlapping, err := h.Store.ListAssignmentsByDateRange(ctx, in.StartDate, in.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	conflicts := []string{}
	for _, a := range overlapping {
		if a.PersonID() == person.ID {
			conflicts = append(conflicts, a.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"conflicts": conflicts,
		"stats": gin.H{
			"days": int(models.Day(in.EndDate).Sub(models.Day(in.StartDate)).Hours()/24) + 1,
		},
	})
}
