package store

import (
	"context"
	"time"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// CreateSale inserts a sale with its line items
func (s *Store) CreateSale(ctx context.Context, sale *model.Sale) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := s.conn(ctx).Omit("Employee", "Items.Product").Create(sale).Error; err != nil {
		return classify("create sale", err)
	}
	return nil
}

// ListSales returns one page of sales, newest first, with employees and products
func (s *Store) ListSales(ctx context.Context, offset, limit int) ([]model.Sale, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var total int64
	if err := s.conn(ctx).Model(&model.Sale{}).Count(&total).Error; err != nil {
		return nil, 0, classify("count sales", err)
	}

	offset, limit = pageBounds(offset, limit)
	var out []model.Sale
	err := s.conn(ctx).
		Preload("Employee").Preload("Items.Product").
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, classify("list sales", err)
	}
	return out, total, nil
}
