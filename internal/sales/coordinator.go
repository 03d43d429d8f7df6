// Package sales records point-of-sale transactions. A sale either commits
// with all of its line items and inventory decrements or leaves no trace.
package sales

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/model"
)

// TopicSaleCreated is the event topic for committed sales
const TopicSaleCreated = "sales.created"

// Store is the persistence a sale needs. Every call made with the context
// handed to a WithinTx callback must join that transaction.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetInventory(ctx context.Context, productID string) (*model.InventoryRecord, error)
	DecrementInventory(ctx context.Context, productID string, qty int) (bool, error)
	CreateSale(ctx context.Context, sale *model.Sale) error
	ListSales(ctx context.Context, offset, limit int) ([]model.Sale, int64, error)
}

// RuleSource supplies the current discount rules
type RuleSource interface {
	Rules(ctx context.Context) ([]discount.Rule, error)
}

// EventRecorder stores a domain event in the caller's transaction
type EventRecorder interface {
	Record(ctx context.Context, topic, key string, payload interface{}) error
}

// Item is one requested sale line
type Item struct {
	ProductID string
	Quantity  int
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithDiscountPricing prices each line at its discounted price instead of
// the list price.
func WithDiscountPricing(rules RuleSource) Option {
	return func(c *Coordinator) { c.rules = rules }
}

// WithEvents records a sale-created event with every committed sale
func WithEvents(recorder EventRecorder) Option {
	return func(c *Coordinator) { c.events = recorder }
}

// WithClock overrides the sale timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator validates and commits sales
type Coordinator struct {
	store  Store
	rules  RuleSource
	events EventRecorder
	now    func() time.Time
}

// NewCoordinator creates a sale coordinator
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaleCreated is the payload of a sale-created event
type SaleCreated struct {
	SaleID     string          `json:"sale_id"`
	EmployeeID string          `json:"employee_id"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Items      []SaleItemEvent `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SaleItemEvent is one line of a sale-created event
type SaleItemEvent struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return apperr.Validation("sale must contain at least one item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return apperr.Validation("item %d: product id is required", i)
		}
		if item.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive, got %d", i, item.Quantity)
		}
	}
	return nil
}

// CreateSale validates every line against current stock and commits the
// sale, its items and the inventory decrements as one unit. Nothing is
// written when any line fails.
func (c *Coordinator) CreateSale(ctx context.Context, employeeID string, items []Item) (*model.Sale, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var sale *model.Sale
	err := c.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := c.store.GetEmployee(ctx, employeeID); err != nil {
			return err
		}

		var rules []discount.Rule
		if c.rules != nil {
			var err error
			if rules, err = c.rules.Rules(ctx); err != nil {
				return err
			}
		}

		products := make(map[string]*model.Product, len(items))
		requested := make(map[string]int, len(items))
		lines := make([]model.SaleItem, 0, len(items))
		total := decimal.Zero

		for _, item := range items {
			product, ok := products[item.ProductID]
			if !ok {
				var err error
				if product, err = c.store.GetProduct(ctx, item.ProductID); err != nil {
					return err
				}
				products[item.ProductID] = product
			}

			inv, err := c.store.GetInventory(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if inv == nil {
				return apperr.OutOfStock(item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
			if inv.RestCount < requested[item.ProductID] {
				return apperr.InsufficientStock(item.ProductID, requested[item.ProductID], inv.RestCount)
			}

			unitPrice := product.Price
			if c.rules != nil {
				unitPrice = discount.Compute(product, rules).Price
			}
			total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, model.SaleItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
			})
		}

		sale = &model.Sale{
			EmployeeID: employeeID,
			FinalPrice: total.Round(2),
			Items:      lines,
			CreatedAt:  c.now(),
		}
		if err := c.store.CreateSale(ctx, sale); err != nil {
			return err
		}

		for _, line := range lines {
			ok, err := c.store.DecrementInventory(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// stock moved after validation
				available := 0
				if inv, err := c.store.GetInventory(ctx, line.ProductID); err == nil && inv != nil {
					available = inv.RestCount
				}
				return apperr.InsufficientStock(line.ProductID, requested[line.ProductID], available)
			}
		}

		if c.events != nil {
			return c.events.Record(ctx, TopicSaleCreated, sale.ID, saleCreated(sale))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func saleCreated(sale *model.Sale) SaleCreated {
	ev := SaleCreated{
		SaleID:     sale.ID,
		EmployeeID: sale.EmployeeID,
		FinalPrice: sale.FinalPrice,
		CreatedAt:  sale.CreatedAt,
	}
	for _, item := range sale.Items {
		ev.Items = append(ev.Items, SaleItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return ev
}

// ListSales returns one page of sales, newest first
func (c *Coordinator) ListSales(ctx context.Context, offset, limit int) ([]model.Sale, int64, error) {
	if offset < 0 {
		return nil, 0, apperr.Validation("offset must not be negative")
	}
	if limit < 1 || limit > 1000 {
		return nil, 0, apperr.Validation("limit must be between 1 and 1000")
	}
	return c.store.ListSales(ctx, offset, limit)
}
