package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is an immutable point-of-sale transaction
type Sale struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	FinalPrice decimal.Decimal `json:"final_price" gorm:"type:numeric(12,2);not null"`
	EmployeeID string          `json:"employee_id" gorm:"type:varchar(36);not null;index"`
	Employee   *Employee       `json:"employee,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Items      []SaleItem      `json:"items" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"created_at" gorm:"index"`
}

// SaleItem is one product line of a sale, priced at sale time
type SaleItem struct {
	ID        string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	SaleID    string          `json:"-" gorm:"type:varchar(36);not null;index"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int             `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = newID()
	}
	return nil
}
