package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProductStatusDraft    = "DRAFT"
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
	ProductStatusArchived = "ARCHIVED"
)

// Product is the catalog aggregate that SKUs hang off. Its category set is
// always closed under ancestor inclusion, and its attribute values cover the
// non-variant (specification) subset of the categories' effective attributes.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"index;not null"`
	Slug string    `gorm:"uniqueIndex;not null"`
	Code string    `gorm:"uniqueIndex;not null"`

	BasePrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OfferPrice decimal.Decimal `gorm:"type:decimal(12,2)"`
	// DiscountPct is derived from (BasePrice - SalePrice) / BasePrice * 100
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2)"`

	// Stock is a denormalized sum of SKU quantities, not authoritative —
	// the Lot Ledger owns physical inventory.
	Stock   int `gorm:"not null;default:0"`
	ImageID *string
	Status  string `gorm:"not null;default:'DRAFT'"`

	CreatedBy string `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Categories      []ProductCategory       `gorm:"foreignKey:ProductID"`
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// ProductCategory assigns a product to one category node.
type ProductCategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_category;not null"`
	CategoryID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_category;not null"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// ProductAttributeValue holds one specification value shared by all of the
// product's SKUs. Variant attributes never appear here.
type ProductAttributeValue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_attr_value;not null"`
	AttributeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_attr_value;not null"`
	Value       string    `gorm:"not null"`
	Label       *string

	Attribute *Attribute `gorm:"foreignKey:AttributeID"`
}

func (ProductAttributeValue) TableName() string { return "product_attribute_values" }
