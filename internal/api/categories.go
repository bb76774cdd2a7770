package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

// optionalID distinguishes an omitted id from an explicit null.
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type categoryInput struct {
	Name     *string    `json:"name"`
	ParentID optionalID `json:"parent_id"`
	StatusID *int64     `json:"status_id"`
	IsActive *bool      `json:"is_active"`
}

func (in categoryInput) apply(cat *domain.Category, partial bool) {
	if !partial {
		*cat = domain.Category{ID: cat.ID, IsActive: true}
	}
	if in.Name != nil {
		cat.Name = *in.Name
	}
	if in.ParentID.Set {
		cat.ParentID = in.ParentID.Value
	}
	if in.StatusID != nil {
		cat.StatusID = *in.StatusID
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
}

type categoryResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	ParentID *int64  `json:"parent_id"`
	Status   string  `json:"status"`
	StatusID int64   `json:"status_id"`
	IsActive bool    `json:"is_active"`
}

func newCategoryResponse(cat *domain.Category) categoryResponse {
	return categoryResponse{
		ID:       cat.ID,
		Name:     cat.Name,
		Parent:   cat.ParentName,
		ParentID: cat.ParentID,
		Status:   cat.StatusName,
		StatusID: cat.StatusID,
		IsActive: cat.IsActive,
	}
}

func (h *Handler) registerCategories(g *gin.RouterGroup) {
	g.GET("", h.listCategories)
	g.POST("", h.createCategory)
	g.GET("/:id", h.getCategory)
	g.PUT("/:id", h.updateCategory(false))
	g.PATCH("/:id", h.updateCategory(true))
	g.DELETE("/:id", h.deleteCategory)
}

func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.store.Categories.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, cat := range cats {
		out[i] = newCategoryResponse(cat)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.activeCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(cat))
}

// checkCategoryRefs verifies the status exists and the parent is a root.
func (h *Handler) checkCategoryRefs(ctx context.Context, cat *domain.Category) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := exists("status_id", cat.StatusID, func() error {
		_, err := h.store.Statuses.Get(ctx, cat.StatusID)
		return err
	}); err != nil {
		return err
	}
	if cat.ParentID == nil {
		return nil
	}

	var parent *domain.Category
	if err := exists("parent_id", *cat.ParentID, func() (err error) {
		parent, err = h.store.Categories.Get(ctx, *cat.ParentID)
		return err
	}); err != nil {
		return err
	}
	if !parent.IsRoot() {
		return invalidPK("parent_id", *cat.ParentID)
	}
	if cat.ID == 0 {
		return nil
	}
	nested, err := h.hasChildren(ctx, cat.ID)
	if err != nil {
		return err
	}
	if nested {
		return storage.ErrNestedCategory
	}
	return nil
}

func (h *Handler) hasChildren(ctx context.Context, id int64) (bool, error) {
	all, err := h.store.Categories.List(ctx, false)
	if err != nil {
		return false, fmt.Errorf("list categories: %w", err)
	}
	for _, other := range all {
		if other.ParentID != nil && *other.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (h *Handler) createCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}

	ctx := c.Request.Context()
	var cat domain.Category
	in.apply(&cat, false)
	if err := h.checkCategoryRefs(ctx, &cat); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Categories.Create(ctx, &cat); err != nil {
		respondError(c, err)
		return
	}
	h.respondCategory(c, http.StatusCreated, cat.ID)
}

func (h *Handler) updateCategory(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cat, err := h.activeCategory(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		var in categoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, err)
			return
		}
		in.apply(cat, partial)
		if err := h.checkCategoryRefs(ctx, cat); err != nil {
			respondError(c, err)
			return
		}
		if err := h.store.Categories.Update(ctx, cat); err != nil {
			respondError(c, err)
			return
		}
		h.respondCategory(c, http.StatusOK, cat.ID)
	}
}

// respondCategory re-reads the row so joined names are current.
func (h *Handler) respondCategory(c *gin.Context, code int, id int64) {
	cat, err := h.store.Categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, newCategoryResponse(cat))
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.activeCategory(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Categories.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
