package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/core/domain"
)

type statusInput struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IsActive *bool   `json:"is_active"`
}

// apply copies the input onto s. A full write resets omitted fields to defaults.
func (in statusInput) apply(s *domain.Status, partial bool) {
	if !partial {
		*s = domain.Status{ID: s.ID, IsActive: true}
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Slug != nil {
		s.Slug = *in.Slug
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
}

func (h *Handler) registerStatuses(g *gin.RouterGroup) {
	g.GET("", h.listStatuses)
	g.POST("", h.createStatus)
	g.GET("/:id", h.getStatus)
	g.PUT("/:id", h.updateStatus(false))
	g.PATCH("/:id", h.updateStatus(true))
	g.DELETE("/:id", h.deleteStatus)
}

func (h *Handler) listStatuses(c *gin.Context) {
	statuses, err := h.store.Statuses.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *Handler) getStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s, err := h.activeStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) createStatus(c *gin.Context) {
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}

	var s domain.Status
	in.apply(&s, false)
	if err := s.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Statuses.Create(c.Request.Context(), &s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) updateStatus(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		s, err := h.activeStatus(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		var in statusInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, err)
			return
		}
		in.apply(s, partial)
		if err := s.Validate(); err != nil {
			respondError(c, err)
			return
		}
		if err := h.store.Statuses.Update(ctx, s); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func (h *Handler) deleteStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.activeStatus(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Statuses.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
