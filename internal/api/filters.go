package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/core/domain"
)

// parseTxFilter reads the transaction list query parameters.
func parseTxFilter(c *gin.Context) (domain.TransactionFilter, error) {
	var f domain.TransactionFilter
	var err error

	if f.StatusID, err = queryID(c, "status"); err != nil {
		return f, err
	}
	if f.TransactionTypeID, err = queryID(c, "transaction_type"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryID(c, "category"); err != nil {
		return f, err
	}
	if f.CreatedAt, err = queryDate(c, "created_at"); err != nil {
		return f, err
	}
	if f.CreatedFrom, err = queryDate(c, "created_at_from"); err != nil {
		return f, err
	}
	if f.CreatedTo, err = queryDate(c, "created_at_to"); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(c.Query("search"))
	return f, nil
}

func queryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &domain.ValidationError{Field: name, Message: "select a valid choice"}
	}
	return &id, nil
}

func queryDate(c *gin.Context, name string) (*domain.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: name, Message: "enter a valid date"}
	}
	return &d, nil
}
