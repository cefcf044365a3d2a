package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateLotRequest struct {
	LotNumber  string          `json:"lot_number"  validate:"required,min=1,max=60"`
	Type       string          `json:"type"        validate:"required,oneof=SUPPLIER SELF_MANUFACTURE"`
	SupplierID *string         `json:"supplier_id" validate:"omitempty,uuid"`
	BasePrice  decimal.Decimal `json:"base_price"  validate:"required"`
	Quantity   int             `json:"quantity"    validate:"required,gt=0"`
	StartDate  *time.Time      `json:"start_date"`
	EndDate    *time.Time      `json:"end_date"`
}

type AppendAdjustmentRequest struct {
	Type     string     `json:"type"     validate:"required,oneof=USED LOST DAMAGE RETURNED OTHER"`
	Quantity int        `json:"quantity" validate:"required"`
	Reason   string     `json:"reason"`
	Date     *time.Time `json:"date"`
}

type UpdateLotStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE COMPLETED"`
}

type LotFilter struct {
	Status     string `form:"status"`
	Type       string `form:"type"`
	SupplierID string `form:"supplier_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ── Response DTOs ────────────────────────────────────────────────────────────

type LotAdjustmentResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by,omitempty"`
}

type LotResponse struct {
	ID                string                  `json:"id"`
	LotNumber         string                  `json:"lot_number"`
	Type              string                  `json:"type"`
	SupplierID        *string                 `json:"supplier_id,omitempty"`
	BasePrice         decimal.Decimal         `json:"base_price"`
	Quantity          int                     `json:"quantity"`
	RemainingQuantity int                     `json:"remaining_quantity"`
	StartDate         *time.Time              `json:"start_date,omitempty"`
	EndDate           *time.Time              `json:"end_date,omitempty"`
	Status            string                  `json:"status"`
	Adjustments       []LotAdjustmentResponse `json:"adjustments"`
}

type LotListResponse struct {
	Data  []LotResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
