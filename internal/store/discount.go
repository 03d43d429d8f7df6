package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// ListDiscountRules returns every rule with its filter sets loaded
func (s *Store) ListDiscountRules(ctx context.Context) ([]model.DiscountRule, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.DiscountRule
	err := s.conn(ctx).
		Preload("Categories").Preload("Colors").Preload("Sizes").Preload("Seasons").
		Order("created_at").Order("id").
		Find(&out).Error
	if err != nil {
		return nil, classify("list discount rules", err)
	}
	return out, nil
}

// CreateDiscountRule inserts a rule with its filter links. Referenced
// categories, colors and sizes must already exist.
func (s *Store) CreateDiscountRule(ctx context.Context, rule *model.DiscountRule) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	// link existing references without upserting them
	err := s.conn(ctx).Omit("Categories.*", "Colors.*", "Sizes.*").Create(rule).Error
	return classify("create discount rule", err)
}

// DeleteDiscountRule removes a rule with its filter links
func (s *Store) DeleteDiscountRule(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	rule := &model.DiscountRule{ID: id}
	res := s.conn(ctx).Select(clause.Associations).Delete(rule)
	return requireAffected(res, "discount", id)
}
