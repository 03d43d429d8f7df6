package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier is a vendor products are purchased from
type Supplier struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Contacts  string    `json:"contacts" gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// SupplierOrder is an immutable purchase received from a supplier
type SupplierOrder struct {
	ID         string              `json:"id" gorm:"type:varchar(36);primaryKey"`
	SupplierID string              `json:"supplier_id" gorm:"type:varchar(36);not null;index"`
	Supplier   *Supplier           `json:"supplier,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Lines      []SupplierOrderLine `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time           `json:"created_at" gorm:"index"`
}

// SupplierOrderLine is one product line of a supplier order
type SupplierOrderLine struct {
	ID            string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID       string          `json:"-" gorm:"type:varchar(36);not null;index"`
	ProductID     string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Product       *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quantity      int             `json:"quantity" gorm:"not null;check:quantity > 0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:numeric(12,2);not null"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

func (o *SupplierOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}

func (l *SupplierOrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return nil
}
