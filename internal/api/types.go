package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/core/domain"
)

type typeInput struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IsIncome *bool   `json:"is_income"`
	IsActive *bool   `json:"is_active"`
}

func (in typeInput) apply(t *domain.TransactionType, partial bool) {
	if !partial {
		*t = domain.TransactionType{ID: t.ID, IsIncome: true, IsActive: true}
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Slug != nil {
		t.Slug = *in.Slug
	}
	if in.IsIncome != nil {
		t.IsIncome = *in.IsIncome
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
}

func (h *Handler) registerTypes(g *gin.RouterGroup) {
	g.GET("", h.listTypes)
	g.POST("", h.createType)
	g.GET("/:id", h.getType)
	g.PUT("/:id", h.updateType(false))
	g.PATCH("/:id", h.updateType(true))
	g.DELETE("/:id", h.deleteType)
}

func (h *Handler) listTypes(c *gin.Context) {
	types, err := h.store.Types.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) getType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.activeType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) createType(c *gin.Context) {
	var in typeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}

	var t domain.TransactionType
	in.apply(&t, false)
	if err := t.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Types.Create(c.Request.Context(), &t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) updateType(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		t, err := h.activeType(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		var in typeInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, err)
			return
		}
		in.apply(t, partial)
		if err := t.Validate(); err != nil {
			respondError(c, err)
			return
		}
		if err := h.store.Types.Update(ctx, t); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func (h *Handler) deleteType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.activeType(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Types.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
