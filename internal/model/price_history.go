package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records every SKU price change for audit and review.
type PriceHistory struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKUID uuid.UUID `gorm:"type:uuid;not null;index"`

	OldBasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewBasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OldSalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewSalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	ChangedBy string `gorm:"not null;default:''"`
	CreatedAt time.Time

	SKU *SKU `gorm:"foreignKey:SKUID"`
}

func (PriceHistory) TableName() string { return "price_history" }
