// Package supply ingests purchases from suppliers: each order re-prices
// the ordered products and restocks them in one transaction.
package supply

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
)

// TopicSupplyReceived is the event topic for committed supplier orders
const TopicSupplyReceived = "supply.received"

// Store is the persistence supplier ordering needs
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, s *model.Supplier) error
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SetProductPrice(ctx context.Context, productID string, price decimal.Decimal) error
	IncrementInventory(ctx context.Context, productID string, qty int) error
	CreateSupplierOrder(ctx context.Context, order *model.SupplierOrder) error
	ListSupplierOrders(ctx context.Context, f model.SupplierOrderFilter) ([]model.SupplierOrder, int64, error)
}

// EventRecorder stores a domain event in the caller's transaction
type EventRecorder interface {
	Record(ctx context.Context, topic, key string, payload interface{}) error
}

// SupplierRef names an existing supplier by ID, or describes a new one
type SupplierRef struct {
	ID       string
	Name     string
	Contacts string
}

// Line is one product line of a supplier order
type Line struct {
	ProductID     string
	Quantity      int
	PurchasePrice decimal.Decimal
}

// SupplyReceived is the payload of a supply-received event
type SupplyReceived struct {
	OrderID    string          `json:"order_id"`
	SupplierID string          `json:"supplier_id"`
	Lines      []LineEvent     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// LineEvent is one line of a supply-received event
type LineEvent struct {
	ProductID     string          `json:"product_id"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Service records supplier orders
type Service struct {
	store  Store
	events EventRecorder
	now    func() time.Time
}

// NewService creates a supply service. events may be nil.
func NewService(store Store, events EventRecorder) *Service {
	return &Service{store: store, events: events, now: time.Now}
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperr.Validation("order must contain at least one line")
	}
	for i, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return apperr.Validation("line %d: product id is required", i)
		}
		if l.Quantity <= 0 {
			return apperr.Validation("line %d: quantity must be positive, got %d", i, l.Quantity)
		}
		if l.PurchasePrice.IsNegative() {
			return apperr.Validation("line %d: purchase price must not be negative", i)
		}
	}
	return nil
}

// CreateOrder records the order, sets each product's list price to its
// purchase price and adds the quantities to inventory.
func (s *Service) CreateOrder(ctx context.Context, ref SupplierRef, lines []Line) (*model.SupplierOrder, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	ref.ID = strings.TrimSpace(ref.ID)
	ref.Name = strings.TrimSpace(ref.Name)
	if ref.ID == "" && ref.Name == "" {
		return nil, apperr.Validation("supplier id or supplier name is required")
	}

	var order *model.SupplierOrder
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		supplier, err := s.resolveSupplier(ctx, ref)
		if err != nil {
			return err
		}

		order = &model.SupplierOrder{
			SupplierID: supplier.ID,
			CreatedAt:  s.now(),
		}
		for _, l := range lines {
			if _, err := s.store.GetProduct(ctx, l.ProductID); err != nil {
				return err
			}
			price := l.PurchasePrice.Round(2)
			if err := s.store.SetProductPrice(ctx, l.ProductID, price); err != nil {
				return err
			}
			if err := s.store.IncrementInventory(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
			order.Lines = append(order.Lines, model.SupplierOrderLine{
				ProductID:     l.ProductID,
				Quantity:      l.Quantity,
				PurchasePrice: price,
			})
		}
		if err := s.store.CreateSupplierOrder(ctx, order); err != nil {
			return err
		}
		order.Supplier = supplier

		if s.events != nil {
			return s.events.Record(ctx, TopicSupplyReceived, order.ID, supplyReceived(order))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) resolveSupplier(ctx context.Context, ref SupplierRef) (*model.Supplier, error) {
	if ref.ID != "" {
		return s.store.GetSupplier(ctx, ref.ID)
	}
	supplier := &model.Supplier{Name: ref.Name, Contacts: strings.TrimSpace(ref.Contacts)}
	if err := s.store.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func supplyReceived(order *model.SupplierOrder) SupplyReceived {
	ev := SupplyReceived{
		OrderID:    order.ID,
		SupplierID: order.SupplierID,
		Total:      decimal.Zero,
		CreatedAt:  order.CreatedAt,
	}
	for _, l := range order.Lines {
		ev.Lines = append(ev.Lines, LineEvent{ProductID: l.ProductID, Quantity: l.Quantity, PurchasePrice: l.PurchasePrice})
		ev.Total = ev.Total.Add(l.PurchasePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return ev
}

// CreateSupplier adds a supplier
func (s *Service) CreateSupplier(ctx context.Context, name, contacts string) (*model.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("supplier name is required")
	}
	supplier := &model.Supplier{Name: name, Contacts: strings.TrimSpace(contacts)}
	if err := s.store.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers returns every supplier
func (s *Service) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.store.ListSuppliers(ctx)
}

// ListOrders returns one page of orders, newest first
func (s *Service) ListOrders(ctx context.Context, f model.SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	if f.Offset < 0 {
		return nil, 0, apperr.Validation("offset must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = 100
	}
	if f.Limit < 1 || f.Limit > 1000 {
		return nil, 0, apperr.Validation("limit must be between 1 and 1000")
	}
	return s.store.ListSupplierOrders(ctx, f)
}
