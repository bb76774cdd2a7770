package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

// respondError maps domain and storage errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicts with existing data"})
	case errors.Is(err, storage.ErrNestedCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": storage.ErrNestedCategory.Error(), "field": "parent_id"})
	case errors.Is(err, storage.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenced object does not exist"})
	default:
		slog.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badBody(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// pathID parses :id. Malformed ids are reported as missing rows.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, storage.ErrNotFound)
		return 0, false
	}
	return id, true
}

func invalidPK(field string, id int64) error {
	return &domain.ValidationError{
		Field:   field,
		Message: "invalid pk \"" + strconv.FormatInt(id, 10) + "\" - object does not exist",
	}
}
