package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is referenced by SUPPLIER-type lots.
type Supplier struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"uniqueIndex;not null"`
	TaxID   *string   `gorm:"index"`
	Phone   *string
	Email   *string
	Address *string
	Active  bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Supplier) TableName() string { return "suppliers" }
