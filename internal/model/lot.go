package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LotTypeSupplier        = "SUPPLIER"
	LotTypeSelfManufacture = "SELF_MANUFACTURE"
)

const (
	LotStatusActive    = "ACTIVE"
	LotStatusInactive  = "INACTIVE"
	LotStatusCompleted = "COMPLETED" // terminal — no further adjustments
)

// Adjustment types. Every entry subtracts from the lot's remaining balance;
// removing an entry adds its quantity back.
const (
	AdjustmentUsed     = "USED"
	AdjustmentLost     = "LOST"
	AdjustmentDamage   = "DAMAGE"
	AdjustmentReturned = "RETURNED"
	AdjustmentOther    = "OTHER"
)

// Lot is a batch of inbound inventory. Quantity is immutable after creation;
// RemainingQuantity is always quantity − Σ(adjustment quantities), recomputed
// inside the same transaction as every ledger mutation. Version guards the
// read-modify-write against concurrent adjustments.
type Lot struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LotNumber  string     `gorm:"uniqueIndex;not null"`
	Type       string     `gorm:"not null"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`

	BasePrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity          int             `gorm:"not null"`
	RemainingQuantity int             `gorm:"not null"`
	Version           int             `gorm:"not null;default:0"`

	StartDate *time.Time
	EndDate   *time.Time
	Status    string `gorm:"not null;default:'ACTIVE'"`

	CreatedBy string `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Supplier    *Supplier       `gorm:"foreignKey:SupplierID"`
	Adjustments []LotAdjustment `gorm:"foreignKey:LotID"`
}

func (Lot) TableName() string { return "lots" }

// LotAdjustment is one signed entry of the lot's quantity ledger. Entries are
// never mutated in place — a mis-entry is corrected by deleting it, which
// restores the quantity to the remaining balance.
type LotAdjustment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LotID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Type     string    `gorm:"not null"`
	Quantity int       `gorm:"not null"` // always > 0
	Reason   string
	Date     time.Time `gorm:"not null"`

	CreatedBy string `gorm:"not null;default:''"`
	CreatedAt time.Time
}

func (LotAdjustment) TableName() string { return "lot_adjustments" }
