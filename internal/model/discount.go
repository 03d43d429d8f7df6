package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountRule grants Percentage to every product whose attributes fall in
// all of the rule's non-empty filter sets.
type DiscountRule struct {
	ID         string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string            `json:"name" gorm:"type:varchar(255);not null"`
	Percentage decimal.Decimal   `json:"percentage" gorm:"type:numeric(5,2);not null;check:percentage >= 0 AND percentage <= 100"`
	Categories []ProductCategory `json:"categories" gorm:"many2many:discount_categories;constraint:OnDelete:CASCADE"`
	Colors     []ProductColor    `json:"colors" gorm:"many2many:discount_colors;constraint:OnDelete:CASCADE"`
	Sizes      []ProductSize     `json:"sizes" gorm:"many2many:discount_sizes;constraint:OnDelete:CASCADE"`
	Seasons    []DiscountSeason  `json:"seasons" gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `json:"created_at"`
}

// DiscountSeason is one season in a rule's season filter
type DiscountSeason struct {
	RuleID string `json:"-" gorm:"type:varchar(36);primaryKey"`
	Season Season `json:"season" gorm:"type:varchar(16);primaryKey"`
}

func (r *DiscountRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}
