package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductCategory groups products, e.g. "Jackets"
type ProductCategory struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductColor is a product colour, e.g. "Red"
type ProductColor struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductSize is a numeric garment size
type ProductSize struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Value     int       `json:"value" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Product represents the product master data. Price is the list price.
type Product struct {
	ID         string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string           `json:"name" gorm:"type:varchar(255);not null;index"`
	SizeID     string           `json:"size_id" gorm:"type:varchar(36);not null;index"`
	Size       *ProductSize     `json:"size,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Price      decimal.Decimal  `json:"price" gorm:"type:numeric(12,2);not null;check:price >= 0"`
	Season     Season           `json:"season" gorm:"type:varchar(16);not null;index"`
	ColorID    string           `json:"color_id" gorm:"type:varchar(36);not null;index"`
	Color      *ProductColor    `json:"color,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CategoryID string           `json:"category_id" gorm:"type:varchar(36);not null;index"`
	Category   *ProductCategory `json:"category,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Inventory  *InventoryRecord `json:"inventory,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// InventoryRecord is the on-hand count of one product
type InventoryRecord struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	RestCount int       `json:"rest_count" gorm:"not null;default:0;check:rest_count >= 0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *ProductCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

func (c *ProductColor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

func (s *ProductSize) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

func (r *InventoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}
