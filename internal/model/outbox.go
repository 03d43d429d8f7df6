package model

import (
	"time"

	"gorm.io/gorm"
)

// OutboxEvent is a domain event waiting to be relayed to the broker.
// It is written in the same transaction as the change it describes.
type OutboxEvent struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Topic     string     `json:"topic" gorm:"type:varchar(128);not null"`
	Key       string     `json:"key" gorm:"type:varchar(128);not null"`
	Payload   string     `json:"payload" gorm:"type:text;not null"`
	Attempts  int        `json:"attempts" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	SentAt    *time.Time `json:"sent_at,omitempty" gorm:"index"`
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Employee{},
		&ProductCategory{},
		&ProductColor{},
		&ProductSize{},
		&Product{},
		&InventoryRecord{},
		&DiscountRule{},
		&DiscountSeason{},
		&Sale{},
		&SaleItem{},
		&Supplier{},
		&SupplierOrder{},
		&SupplierOrderLine{},
		&OutboxEvent{},
	}
}
