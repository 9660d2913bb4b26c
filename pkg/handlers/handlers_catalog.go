package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListAreas(c *gin.Context) {
	areas, err := h.Store.ListAreas(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, areas)
}

func (h *Handler) GetArea(c *gin.Context) {
	area, err := h.Store.GetArea(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, area)
}

func (h *Handler) CreateArea(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	area, err := h.Store.CreateArea(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, area)
}

func (h *Handler) UpdateArea(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	area, err := h.Store.UpdateArea(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, area)
}

func (h *Handler) DeleteArea(c *gin.Context) {
	if err := h.Store.DeleteArea(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}

// ListUsers lists people, optionally restricted with ?areaId=
func (h *Handler) ListUsers(c *gin.Context) {
	people, err := h.Store.ListPeople(c.Request.Context(), c.Query("areaId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, people)
}

func (h *Handler) GetUser(c *gin.Context) {
	p, err := h.Store.GetPerson(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req models.Person
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Store.CreatePerson(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, p)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req models.Person
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Store.UpdatePerson(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, p)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Store.DeletePerson(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}

func (h *Handler) ListWorkTypes(c *gin.Context) {
	types, err := h.Store.ListWorkTypes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, types)
}

func (h *Handler) CreateWorkType(c *gin.Context) {
	var req models.WorkType
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wt, err := h.Store.CreateWorkType(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, wt)
}

func (h *Handler) UpdateWorkType(c *gin.Context) {
	var req models.WorkType
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wt, err := h.Store.UpdateWorkType(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, wt)
}

func (h *Handler) DeleteWorkType(c *gin.Context) {
	if err := h.Store.DeleteWorkType(c.Request.Context(), c.Param("code")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"code": c.Param("code")})
}
