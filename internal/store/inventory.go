package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// GetInventory returns the product's inventory record, or nil when the
// product has never been stocked.
func (s *Store) GetInventory(ctx context.Context, productID string) (*model.InventoryRecord, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var rec model.InventoryRecord
	err := s.conn(ctx).Where("product_id = ?", productID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get inventory", err)
	}
	return &rec, nil
}

// DecrementInventory removes qty units if at least qty are on hand. It
// reports false, leaving the row untouched, when stock is short.
func (s *Store) DecrementInventory(ctx context.Context, productID string, qty int) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res := s.conn(ctx).Model(&model.InventoryRecord{}).
		Where("product_id = ? AND rest_count >= ?", productID, qty).
		Updates(map[string]interface{}{
			"rest_count": gorm.Expr("rest_count - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, classify("decrement inventory", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// IncrementInventory adds qty units, creating the record on first stock
func (s *Store) IncrementInventory(ctx context.Context, productID string, qty int) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res := s.conn(ctx).Model(&model.InventoryRecord{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"rest_count": gorm.Expr("rest_count + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return classify("increment inventory", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if err := s.conn(ctx).Create(&model.InventoryRecord{ProductID: productID, RestCount: qty}).Error; err != nil {
		return classify("create inventory", err)
	}
	return nil
}

// ListInventory returns every stocked product with display labels
func (s *Store) ListInventory(ctx context.Context) ([]model.InventoryLevel, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.InventoryLevel
	err := s.conn(ctx).Table("inventory_records").
		Select("inventory_records.product_id, products.name AS product_name, product_categories.name AS category_name, inventory_records.rest_count").
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Joins("JOIN product_categories ON product_categories.id = products.category_id").
		Order("products.name").
		Scan(&out).Error
	if err != nil {
		return nil, classify("list inventory", err)
	}
	return out, nil
}
