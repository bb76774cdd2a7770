package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
	"github.com/vietddude/fintrack/internal/infra/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	router := NewRouter(memory.NewMemoryStorage().Store(), nil)
	return &testAPI{t: t, handler: router.Handler()}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// create posts body and returns the decoded id.
func (a *testAPI) create(path string, body any) int64 {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type seed struct {
	status, income, expense, food, grocery int64
}

func (a *testAPI) seed() seed {
	var s seed
	s.status = a.create("/api/statuses", map[string]any{"name": "Done"})
	s.income = a.create("/api/types", map[string]any{"name": "Salary", "is_income": true})
	s.expense = a.create("/api/types", map[string]any{"name": "Spending", "is_income": false})
	s.food = a.create("/api/categories", map[string]any{"name": "Food", "status_id": s.status})
	s.grocery = a.create("/api/categories", map[string]any{"name": "Groceries", "parent_id": s.food, "status_id": s.status})
	return s
}

// --- Statuses ---

func TestStatuses_CRUD(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/statuses", map[string]any{"name": "In Progress"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	assert.Equal(t, "in-progress", created["slug"])
	assert.Equal(t, true, created["is_active"])
	id := int64(created["id"].(float64))

	w = a.do(http.MethodGet, "/api/statuses/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodPatch, "/api/statuses/"+itoa(id), map[string]any{"name": "Doing"})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[map[string]any](t, w)
	assert.Equal(t, "Doing", patched["name"])
	assert.Equal(t, "in-progress", patched["slug"])

	w = a.do(http.MethodPut, "/api/statuses/"+itoa(id), map[string]any{"name": "Finished"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "finished", decode[map[string]any](t, w)["slug"])

	w = a.do(http.MethodDelete, "/api/statuses/"+itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/api/statuses/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatuses_ActiveOnly(t *testing.T) {
	a := newTestAPI(t)
	a.create("/api/statuses", map[string]any{"name": "Open"})
	hidden := a.create("/api/statuses", map[string]any{"name": "Archived", "is_active": false})

	w := a.do(http.MethodGet, "/api/statuses", nil)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Open", list[0]["name"])

	w = a.do(http.MethodGet, "/api/statuses/"+itoa(hidden), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatuses_Validation(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/statuses", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", decode[map[string]any](t, w)["field"])

	a.create("/api/statuses", map[string]any{"name": "Done"})
	w = a.do(http.MethodPost, "/api/statuses", map[string]any{"name": "Done"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/api/statuses/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Categories ---

func TestCategories_DisplayAndParentRules(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	w := a.do(http.MethodGet, "/api/categories/"+itoa(s.grocery), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Food", body["parent"])
	assert.Equal(t, "Done", body["status"])

	// Parents must be root categories.
	w = a.do(http.MethodPost, "/api/categories", map[string]any{
		"name": "Fruit", "parent_id": s.grocery, "status_id": s.status,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parent_id", decode[map[string]any](t, w)["field"])

	w = a.do(http.MethodPost, "/api/categories", map[string]any{"name": "Rent", "status_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status_id", decode[map[string]any](t, w)["field"])

	// Same name under the same parent conflicts.
	w = a.do(http.MethodPost, "/api/categories", map[string]any{
		"name": "Groceries", "parent_id": s.food, "status_id": s.status,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Explicit null detaches the parent.
	w = a.do(http.MethodPatch, "/api/categories/"+itoa(s.grocery), map[string]any{"parent_id": nil})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]any](t, w)
	assert.Nil(t, body["parent"])
	assert.Nil(t, body["parent_id"])
}

func TestCategories_ParentWithChildrenCannotNest(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()
	home := a.create("/api/categories", map[string]any{"name": "Home", "status_id": s.status})

	w := a.do(http.MethodPatch, "/api/categories/"+itoa(s.food), map[string]any{"parent_id": home})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parent_id", decode[map[string]any](t, w)["field"])

	w = a.do(http.MethodPatch, "/api/categories/"+itoa(home), map[string]any{"parent_id": s.food})
	assert.Equal(t, http.StatusOK, w.Code)
}

// failingCategories lets reads by id through but fails every listing.
type failingCategories struct {
	storage.CategoryRepository
}

func (failingCategories) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	return nil, errors.New("connection lost")
}

func TestCategories_ChildrenLookupErrorIsNotIgnored(t *testing.T) {
	store := memory.NewMemoryStorage().Store()
	a := &testAPI{t: t, handler: NewRouter(store, nil).Handler()}
	s := a.seed()
	home := a.create("/api/categories", map[string]any{"name": "Home", "status_id": s.status})

	store.Categories = failingCategories{store.Categories}

	w := a.do(http.MethodPatch, "/api/categories/"+itoa(s.food), map[string]any{"parent_id": home})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	food, err := store.Categories.Get(context.Background(), s.food)
	require.NoError(t, err)
	assert.Nil(t, food.ParentID)
}

func TestCategories_DeleteDetachesChildren(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	w := a.do(http.MethodDelete, "/api/categories/"+itoa(s.food), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/api/categories/"+itoa(s.grocery), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[map[string]any](t, w)["parent_id"])
}

// --- Transactions ---

func TestTransactions_CreateAndRead(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	w := a.do(http.MethodPost, "/api/transactions", map[string]any{
		"created_at":          "2024-03-05",
		"status_id":           s.status,
		"transaction_type_id": s.expense,
		"category_id":         s.grocery,
		"amount":              "12.5",
		"comment":             "weekly shop",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[map[string]any](t, w)
	assert.Equal(t, "12.50", tx["amount"])
	assert.Equal(t, "Food → Groceries", tx["category"])
	assert.Equal(t, "Spending", tx["transaction_type"])
	assert.Equal(t, "Done", tx["status"])
	assert.Equal(t, "2024-03-05", tx["created_at"])

	w = a.do(http.MethodPatch, "/api/transactions/"+itoa(int64(tx["id"].(float64))), map[string]any{"amount": 20})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20.00", decode[map[string]any](t, w)["amount"])
}

func TestTransactions_DefaultsDateToToday(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	w := a.do(http.MethodPost, "/api/transactions", map[string]any{
		"status_id": s.status, "transaction_type_id": s.income, "category_id": s.food, "amount": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["created_at"])
}

func TestTransactions_AmountValidation(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	for _, amount := range []string{"0", "0.001", "-5", "10000000000.00"} {
		w := a.do(http.MethodPost, "/api/transactions", map[string]any{
			"status_id": s.status, "transaction_type_id": s.income, "category_id": s.food, "amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %s", amount)
	}

	w := a.do(http.MethodPost, "/api/transactions", map[string]any{
		"status_id": s.status, "transaction_type_id": 999, "category_id": s.food, "amount": "5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "transaction_type_id", decode[map[string]any](t, w)["field"])
}

func TestTransactions_FiltersAndSummary(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	post := func(date string, typ, cat int64, amount, comment string) {
		a.create("/api/transactions", map[string]any{
			"created_at": date, "status_id": s.status, "transaction_type_id": typ,
			"category_id": cat, "amount": amount, "comment": comment,
		})
	}
	post("2024-01-10", s.income, s.food, "1000", "salary")
	post("2024-02-01", s.expense, s.grocery, "50.25", "market")
	post("2024-02-15", s.expense, s.grocery, "20", "bakery")

	w := a.do(http.MethodGet, "/api/transactions", nil)
	all := decode[[]map[string]any](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-02-15", all[0]["created_at"], "newest first")

	w = a.do(http.MethodGet, "/api/transactions?transaction_type="+itoa(s.expense), nil)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = a.do(http.MethodGet, "/api/transactions?created_at=2024-02-01", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodGet, "/api/transactions?created_at_from=2024-02-01&created_at_to=2024-02-10", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodGet, "/api/transactions?search=BAKE", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(http.MethodGet, "/api/transactions?status=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/transactions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[map[string]any](t, w)
	assert.Equal(t, float64(3), sum["count"])
	assert.Equal(t, "1000.00", sum["income"])
	assert.Equal(t, "70.25", sum["expense"])
	assert.Equal(t, "929.75", sum["balance"])
}

func TestTransactions_ProtectReferences(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()
	id := a.create("/api/transactions", map[string]any{
		"status_id": s.status, "transaction_type_id": s.expense, "category_id": s.grocery, "amount": "3",
	})

	for _, path := range []string{
		"/api/statuses/" + itoa(s.status),
		"/api/types/" + itoa(s.expense),
		"/api/categories/" + itoa(s.grocery),
	} {
		w := a.do(http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusConflict, w.Code, path)
	}

	w := a.do(http.MethodDelete, "/api/transactions/"+itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, "/api/types/"+itoa(s.expense), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodGet, "/api/statuses", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/statuses", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
