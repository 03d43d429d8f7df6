package model

import (
	"time"

	"gorm.io/gorm"
)

// Employee is a staff account that can log in and record sales
type Employee struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Lastname     string    `json:"lastname" gorm:"type:varchar(255);not null"`
	Patronymic   *string   `json:"patronymic,omitempty" gorm:"type:varchar(255)"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when none is set
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}
