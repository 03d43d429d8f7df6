package sales

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
)

type txKey struct{}

// memState is the fake's data. Transactions work on a clone that replaces
// the committed state only when the callback succeeds.
type memState struct {
	employees map[string]*model.Employee
	products  map[string]*model.Product
	inventory map[string]int
	sales     []model.Sale
}

func (s *memState) clone() *memState {
	c := &memState{
		employees: s.employees,
		products:  s.products,
		inventory: make(map[string]int, len(s.inventory)),
		sales:     append([]model.Sale(nil), s.sales...),
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	return c
}

type fakeStore struct {
	mu    sync.Mutex
	state *memState

	failCreateSale error
	failDecrement  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: &memState{
			employees: map[string]*model.Employee{},
			products:  map[string]*model.Product{},
			inventory: map[string]int{},
		},
		failDecrement: map[string]bool{},
	}
}

func (f *fakeStore) cur(ctx context.Context) *memState {
	if st, ok := ctx.Value(txKey{}).(*memState); ok {
		return st
	}
	return f.state
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memState); ok {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	working := f.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, working)); err != nil {
		return err
	}
	f.state = working
	return nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	if e, ok := f.cur(ctx).employees[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("employee", id)
}

func (f *fakeStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if p, ok := f.cur(ctx).products[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("product", id)
}

func (f *fakeStore) GetInventory(ctx context.Context, productID string) (*model.InventoryRecord, error) {
	n, ok := f.cur(ctx).inventory[productID]
	if !ok {
		return nil, nil
	}
	return &model.InventoryRecord{ProductID: productID, RestCount: n}, nil
}

func (f *fakeStore) DecrementInventory(ctx context.Context, productID string, qty int) (bool, error) {
	st := f.cur(ctx)
	if f.failDecrement[productID] {
		return false, nil
	}
	n, ok := st.inventory[productID]
	if !ok || n < qty {
		return false, nil
	}
	st.inventory[productID] = n - qty
	return true, nil
}

func (f *fakeStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	if f.failCreateSale != nil {
		return f.failCreateSale
	}
	st := f.cur(ctx)
	sale.ID = uuid.NewString()
	st.sales = append(st.sales, *sale)
	return nil
}

func (f *fakeStore) ListSales(ctx context.Context, offset, limit int) ([]model.Sale, int64, error) {
	st := f.cur(ctx)
	total := int64(len(st.sales))
	if offset >= len(st.sales) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(st.sales) {
		end = len(st.sales)
	}
	return st.sales[offset:end], total, nil
}

func (f *fakeStore) stock(productID string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.state.inventory[productID]
	return n, ok
}

func (f *fakeStore) saleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.sales)
}

type recordedEvent struct {
	topic, key string
	payload    interface{}
}

type fakeRecorder struct {
	events []recordedEvent
	err    error
}

func (r *fakeRecorder) Record(_ context.Context, topic, key string, payload interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, recordedEvent{topic, key, payload})
	return nil
}
