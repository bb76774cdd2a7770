package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

// MemoryStorage keeps every table in maps guarded by one lock. It mirrors the
// constraints of the PostgreSQL schema (unique names, restricted deletes).
type MemoryStorage struct {
	statuses     map[int64]*domain.Status
	types        map[int64]*domain.TransactionType
	categories   map[int64]*domain.Category
	transactions map[int64]*domain.Transaction
	nextID       int64
	mu           sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		statuses:     make(map[int64]*domain.Status),
		types:        make(map[int64]*domain.TransactionType),
		categories:   make(map[int64]*domain.Category),
		transactions: make(map[int64]*domain.Transaction),
	}
}

// Store returns all repositories backed by s.
func (s *MemoryStorage) Store() *storage.Store {
	return &storage.Store{
		Statuses:     &StatusRepo{store: s},
		Types:        &TypeRepo{store: s},
		Categories:   &CategoryRepo{store: s},
		Transactions: &TxRepo{store: s},
	}
}

func (s *MemoryStorage) id() int64 {
	s.nextID++
	return s.nextID
}

// -----------------------------------------------------------------------------
// Status Repository
// -----------------------------------------------------------------------------

type StatusRepo struct {
	store *MemoryStorage
}

func NewStatusRepo(store *MemoryStorage) *StatusRepo {
	return &StatusRepo{store: store}
}

func (r *StatusRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Status, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Status, 0, len(r.store.statuses))
	for _, st := range r.store.statuses {
		if activeOnly && !st.IsActive {
			continue
		}
		c := *st
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *StatusRepo) Get(ctx context.Context, id int64) (*domain.Status, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st, ok := r.store.statuses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *st
	return &c, nil
}

func (r *StatusRepo) Create(ctx context.Context, st *domain.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.duplicate(st) {
		return storage.ErrConflict
	}
	st.ID = r.store.id()
	c := *st
	r.store.statuses[st.ID] = &c
	return nil
}

func (r *StatusRepo) Update(ctx context.Context, st *domain.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.statuses[st.ID]; !ok {
		return storage.ErrNotFound
	}
	if r.duplicate(st) {
		return storage.ErrConflict
	}
	c := *st
	r.store.statuses[st.ID] = &c
	return nil
}

func (r *StatusRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.statuses[id]; !ok {
		return storage.ErrNotFound
	}
	for _, c := range r.store.categories {
		if c.StatusID == id {
			return storage.ErrConflict
		}
	}
	for _, t := range r.store.transactions {
		if t.StatusID == id {
			return storage.ErrConflict
		}
	}
	delete(r.store.statuses, id)
	return nil
}

func (r *StatusRepo) duplicate(st *domain.Status) bool {
	for _, other := range r.store.statuses {
		if other.ID != st.ID && (other.Name == st.Name || other.Slug == st.Slug) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Transaction Type Repository
// -----------------------------------------------------------------------------

type TypeRepo struct {
	store *MemoryStorage
}

func NewTypeRepo(store *MemoryStorage) *TypeRepo {
	return &TypeRepo{store: store}
}

func (r *TypeRepo) List(ctx context.Context, activeOnly bool) ([]*domain.TransactionType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.TransactionType, 0, len(r.store.types))
	for _, t := range r.store.types {
		if activeOnly && !t.IsActive {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TypeRepo) Get(ctx context.Context, id int64) (*domain.TransactionType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.types[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *TypeRepo) Create(ctx context.Context, t *domain.TransactionType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.duplicate(t) {
		return storage.ErrConflict
	}
	t.ID = r.store.id()
	c := *t
	r.store.types[t.ID] = &c
	return nil
}

func (r *TypeRepo) Update(ctx context.Context, t *domain.TransactionType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.types[t.ID]; !ok {
		return storage.ErrNotFound
	}
	if r.duplicate(t) {
		return storage.ErrConflict
	}
	c := *t
	r.store.types[t.ID] = &c
	return nil
}

func (r *TypeRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.types[id]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range r.store.transactions {
		if t.TransactionTypeID == id {
			return storage.ErrConflict
		}
	}
	delete(r.store.types, id)
	return nil
}

func (r *TypeRepo) duplicate(t *domain.TransactionType) bool {
	for _, other := range r.store.types {
		if other.ID != t.ID && (other.Name == t.Name || other.Slug == t.Slug) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Category Repository
// -----------------------------------------------------------------------------

type CategoryRepo struct {
	store *MemoryStorage
}

func NewCategoryRepo(store *MemoryStorage) *CategoryRepo {
	return &CategoryRepo{store: store}
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, r.hydrate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.hydrate(c), nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.check(c); err != nil {
		return err
	}
	c.ID = r.store.id()
	r.store.categories[c.ID] = r.strip(c)
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[c.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := r.check(c); err != nil {
		return err
	}
	r.store.categories[c.ID] = r.strip(c)
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[id]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range r.store.transactions {
		if t.CategoryID == id {
			return storage.ErrConflict
		}
	}
	for _, child := range r.store.categories {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
		}
	}
	delete(r.store.categories, id)
	return nil
}

func (r *CategoryRepo) check(c *domain.Category) error {
	if _, ok := r.store.statuses[c.StatusID]; !ok {
		return storage.ErrInvalidReference
	}
	if c.ParentID != nil {
		parent, ok := r.store.categories[*c.ParentID]
		if !ok || parent.ParentID != nil {
			return storage.ErrInvalidReference
		}
		for _, child := range r.store.categories {
			if c.ID != 0 && child.ParentID != nil && *child.ParentID == c.ID {
				return storage.ErrNestedCategory
			}
		}
	}
	for _, other := range r.store.categories {
		if other.ID != c.ID && other.Name == c.Name && sameParent(other.ParentID, c.ParentID) {
			return storage.ErrConflict
		}
	}
	return nil
}

func (r *CategoryRepo) strip(c *domain.Category) *domain.Category {
	cp := *c
	cp.ParentName = nil
	cp.StatusName = ""
	if c.ParentID != nil {
		id := *c.ParentID
		cp.ParentID = &id
	}
	return &cp
}

// hydrate returns a copy with display names filled in. Caller holds the lock.
func (r *CategoryRepo) hydrate(c *domain.Category) *domain.Category {
	cp := r.strip(c)
	if st, ok := r.store.statuses[c.StatusID]; ok {
		cp.StatusName = st.Name
	}
	if c.ParentID != nil {
		if p, ok := r.store.categories[*c.ParentID]; ok {
			name := p.Name
			cp.ParentName = &name
		}
	}
	return cp
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// -----------------------------------------------------------------------------
// Transaction Repository
// -----------------------------------------------------------------------------

type TxRepo struct {
	store *MemoryStorage
}

func NewTxRepo(store *MemoryStorage) *TxRepo {
	return &TxRepo{store: store}
}

func (r *TxRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range r.store.transactions {
		h := r.hydrate(t)
		if filter.Matches(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *TxRepo) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.hydrate(t), nil
}

func (r *TxRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.check(t); err != nil {
		return err
	}
	t.ID = r.store.id()
	cp := *t
	r.store.transactions[t.ID] = &cp
	return nil
}

func (r *TxRepo) Update(ctx context.Context, t *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transactions[t.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := r.check(t); err != nil {
		return err
	}
	cp := *t
	r.store.transactions[t.ID] = &cp
	return nil
}

func (r *TxRepo) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.store.transactions, id)
	return nil
}

func (r *TxRepo) Summarize(ctx context.Context, filter domain.TransactionFilter) (domain.Summary, error) {
	txs, err := r.List(ctx, filter)
	if err != nil {
		return domain.Summary{}, err
	}
	var s domain.Summary
	for _, t := range txs {
		s.Add(t)
	}
	return s, nil
}

func (r *TxRepo) check(t *domain.Transaction) error {
	if _, ok := r.store.statuses[t.StatusID]; !ok {
		return storage.ErrInvalidReference
	}
	if _, ok := r.store.types[t.TransactionTypeID]; !ok {
		return storage.ErrInvalidReference
	}
	if _, ok := r.store.categories[t.CategoryID]; !ok {
		return storage.ErrInvalidReference
	}
	return nil
}

// hydrate returns a copy with joined names filled in. Caller holds the lock.
func (r *TxRepo) hydrate(t *domain.Transaction) *domain.Transaction {
	cp := *t
	cp.StatusName, cp.TransactionTypeName, cp.CategoryName = "", "", ""
	cp.CategoryParentName = nil
	cp.IsIncome = false
	if st, ok := r.store.statuses[t.StatusID]; ok {
		cp.StatusName = st.Name
	}
	if tt, ok := r.store.types[t.TransactionTypeID]; ok {
		cp.TransactionTypeName = tt.Name
		cp.IsIncome = tt.IsIncome
	}
	if c, ok := r.store.categories[t.CategoryID]; ok {
		cp.CategoryName = c.Name
		if c.ParentID != nil {
			if p, ok := r.store.categories[*c.ParentID]; ok {
				name := p.Name
				cp.CategoryParentName = &name
			}
		}
	}
	return &cp
}
