package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vietddude/fintrack/internal/core/domain"
)

type transactionInput struct {
	CreatedAt         *domain.Date     `json:"created_at"`
	StatusID          *int64           `json:"status_id"`
	TransactionTypeID *int64           `json:"transaction_type_id"`
	CategoryID        *int64           `json:"category_id"`
	Amount            *decimal.Decimal `json:"amount"`
	Comment           *string          `json:"comment"`
}

func (in transactionInput) apply(t *domain.Transaction, partial bool) {
	if !partial {
		*t = domain.Transaction{ID: t.ID}
	}
	if in.CreatedAt != nil {
		t.CreatedAt = *in.CreatedAt
	}
	if in.StatusID != nil {
		t.StatusID = *in.StatusID
	}
	if in.TransactionTypeID != nil {
		t.TransactionTypeID = *in.TransactionTypeID
	}
	if in.CategoryID != nil {
		t.CategoryID = *in.CategoryID
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Comment != nil {
		t.Comment = *in.Comment
	}
}

type transactionResponse struct {
	ID                int64       `json:"id"`
	CreatedAt         domain.Date `json:"created_at"`
	Status            string      `json:"status"`
	StatusID          int64       `json:"status_id"`
	TransactionType   string      `json:"transaction_type"`
	TransactionTypeID int64       `json:"transaction_type_id"`
	IsIncome          bool        `json:"is_income"`
	Category          string      `json:"category"`
	CategoryID        int64       `json:"category_id"`
	Amount            string      `json:"amount"`
	Comment           string      `json:"comment"`
}

func newTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:                t.ID,
		CreatedAt:         t.CreatedAt,
		Status:            t.StatusName,
		StatusID:          t.StatusID,
		TransactionType:   t.TransactionTypeName,
		TransactionTypeID: t.TransactionTypeID,
		IsIncome:          t.IsIncome,
		Category:          t.CategoryLabel(),
		CategoryID:        t.CategoryID,
		Amount:            t.Amount.StringFixed(2),
		Comment:           t.Comment,
	}
}

type summaryResponse struct {
	Count   int    `json:"count"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func (h *Handler) registerTransactions(g *gin.RouterGroup) {
	g.GET("", h.listTransactions)
	g.POST("", h.createTransaction)
	g.GET("/summary", h.summarizeTransactions)
	g.GET("/:id", h.getTransaction)
	g.PUT("/:id", h.updateTransaction(false))
	g.PATCH("/:id", h.updateTransaction(true))
	g.DELETE("/:id", h.deleteTransaction)
}

func (h *Handler) listTransactions(c *gin.Context) {
	filter, err := parseTxFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	txs, err := h.store.Transactions.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = newTransactionResponse(t)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) summarizeTransactions(c *gin.Context) {
	filter, err := parseTxFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sum, err := h.store.Transactions.Summarize(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		Count:   sum.Count,
		Income:  sum.Income.StringFixed(2),
		Expense: sum.Expense.StringFixed(2),
		Balance: sum.Balance().StringFixed(2),
	})
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.store.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponse(t))
}

// checkTransaction validates t and confirms its references exist.
func (h *Handler) checkTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := t.Validate(h.now()); err != nil {
		return err
	}
	if err := exists("status_id", t.StatusID, func() error {
		_, err := h.store.Statuses.Get(ctx, t.StatusID)
		return err
	}); err != nil {
		return err
	}
	if err := exists("transaction_type_id", t.TransactionTypeID, func() error {
		_, err := h.store.Types.Get(ctx, t.TransactionTypeID)
		return err
	}); err != nil {
		return err
	}
	return exists("category_id", t.CategoryID, func() error {
		_, err := h.store.Categories.Get(ctx, t.CategoryID)
		return err
	})
}

func (h *Handler) createTransaction(c *gin.Context) {
	var in transactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}

	ctx := c.Request.Context()
	var t domain.Transaction
	in.apply(&t, false)
	if err := h.checkTransaction(ctx, &t); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Transactions.Create(ctx, &t); err != nil {
		respondError(c, err)
		return
	}
	h.respondTransaction(c, http.StatusCreated, t.ID)
}

func (h *Handler) updateTransaction(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		t, err := h.store.Transactions.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		var in transactionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, err)
			return
		}
		in.apply(t, partial)
		if err := h.checkTransaction(ctx, t); err != nil {
			respondError(c, err)
			return
		}
		if err := h.store.Transactions.Update(ctx, t); err != nil {
			respondError(c, err)
			return
		}
		h.respondTransaction(c, http.StatusOK, t.ID)
	}
}

func (h *Handler) respondTransaction(c *gin.Context, code int, id int64) {
	t, err := h.store.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, newTransactionResponse(t))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.Transactions.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
