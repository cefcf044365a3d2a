package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SKUStatusActive     = "ACTIVE"
	SKUStatusInactive   = "INACTIVE"
	SKUStatusOutOfStock = "OUT_OF_STOCK"
)

// SKU is one concrete sellable unit: an immutable product reference plus a
// fixed variant attribute tuple, with its own pricing and quantity.
// Fingerprint is the canonical form of the tuple; the composite unique index
// with ProductID closes the concurrent-commit race at the storage layer.
type SKU struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_variant"`
	SKUCode   string    `gorm:"uniqueIndex;not null"`

	VariantValues VariantValueList `gorm:"type:jsonb"`
	Fingerprint   string           `gorm:"uniqueIndex:idx_product_variant;not null"`

	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OfferPrice  decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2)"`

	Quantity int        `gorm:"not null;default:0"`
	LotID    *uuid.UUID `gorm:"type:uuid;index"`
	ImageID  *string
	Status   string `gorm:"not null;default:'ACTIVE'"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Lot     *Lot     `gorm:"foreignKey:LotID"`
}

func (SKU) TableName() string { return "skus" }

// VariantFingerprint canonicalizes a variant tuple: pairs are sorted by
// attribute id so the same combination always produces the same key,
// regardless of generation order.
func VariantFingerprint(values VariantValueList) string {
	pairs := make([]string, 0, len(values))
	for _, v := range values {
		pairs = append(pairs, v.AttributeID+"="+v.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}
