package store

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// CreateSupplier inserts a supplier
func (s *Store) CreateSupplier(ctx context.Context, sup *model.Supplier) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := s.conn(ctx).Create(sup).Error; err != nil {
		return classify("create supplier", err)
	}
	return nil
}

// GetSupplier loads a supplier by id
func (s *Store) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var sup model.Supplier
	if err := s.conn(ctx).First(&sup, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "supplier", id)
	}
	return &sup, nil
}

// ListSuppliers returns all suppliers by name
func (s *Store) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.Supplier
	if err := s.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, classify("list suppliers", err)
	}
	return out, nil
}

// SetProductPrice overwrites a product's list price
func (s *Store) SetProductPrice(ctx context.Context, productID string, price decimal.Decimal) error {
	return s.UpdateProduct(ctx, productID, map[string]interface{}{"price": price})
}

// CreateSupplierOrder inserts an order with its lines
func (s *Store) CreateSupplierOrder(ctx context.Context, order *model.SupplierOrder) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := s.conn(ctx).Omit("Supplier", "Lines.Product").Create(order).Error; err != nil {
		return classify("create supplier order", err)
	}
	return nil
}

// ListSupplierOrders returns one page of orders, newest first. A search
// term matches the supplier name or any ordered product's name.
func (s *Store) ListSupplierOrders(ctx context.Context, f model.SupplierOrderFilter) ([]model.SupplierOrder, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	q := s.conn(ctx).Model(&model.SupplierOrder{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		bySupplier := s.conn(ctx).Model(&model.Supplier{}).Select("id").Where("LOWER(name) LIKE ?", like)
		byProduct := s.conn(ctx).Model(&model.SupplierOrderLine{}).Select("supplier_order_lines.order_id").
			Joins("JOIN products ON products.id = supplier_order_lines.product_id").
			Where("LOWER(products.name) LIKE ?", like)
		q = q.Where("supplier_id IN (?) OR id IN (?)", bySupplier, byProduct)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, classify("count supplier orders", err)
	}

	offset, limit := pageBounds(f.Offset, f.Limit)
	var out []model.SupplierOrder
	err := q.Preload("Supplier").Preload("Lines.Product").
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, classify("list supplier orders", err)
	}
	return out, total, nil
}
