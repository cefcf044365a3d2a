package dto

import "github.com/shopspring/decimal"

// ── Variant generation ───────────────────────────────────────────────────────

type VariantSelectionInput struct {
	AttributeID string   `json:"attribute_id" validate:"required,uuid"`
	Values      []string `json:"values"`
}

type GenerateVariantsRequest struct {
	Selections []VariantSelectionInput `json:"selections" validate:"required,dive"`
}

// SKUDraft is an in-memory, not-yet-persisted SKU candidate. Price and
// quantity are editable before commit.
type SKUDraft struct {
	SKUCode       string              `json:"sku_code"      validate:"required"`
	VariantValues []VariantValueInput `json:"variant_values" validate:"required,min=1,dive"`
	BasePrice     decimal.Decimal     `json:"base_price"`
	SalePrice     decimal.Decimal     `json:"sale_price"`
	Quantity      int                 `json:"quantity"      validate:"min=0"`
}

type VariantValueInput struct {
	AttributeID string `json:"attribute_id" validate:"required,uuid"`
	Value       string `json:"value"        validate:"required"`
}

type CommitVariantsRequest struct {
	Drafts []SKUDraft `json:"drafts" validate:"required,min=1,dive"`
}

// ── SKU CRUD ─────────────────────────────────────────────────────────────────

type UpdateSKURequest struct {
	BasePrice  *decimal.Decimal `json:"base_price"`
	SalePrice  *decimal.Decimal `json:"sale_price"`
	OfferPrice *decimal.Decimal `json:"offer_price"`
	Quantity   *int             `json:"quantity" validate:"omitempty,min=0"`
	LotID      *string          `json:"lot_id"   validate:"omitempty,uuid"`
	Status     *string          `json:"status"   validate:"omitempty,oneof=ACTIVE INACTIVE OUT_OF_STOCK"`
}

type SKUFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Status    string `form:"status"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// AllocateSKURequest is the quantity-decrement call made by the Order
// collaborator when stock is allocated to a sale.
type AllocateSKURequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Reason   string `json:"reason"`
}

// ── Response DTOs ────────────────────────────────────────────────────────────

type VariantValueResponse struct {
	AttributeID string `json:"attribute_id"`
	Name        string `json:"name,omitempty"`
	Value       string `json:"value"`
}

type SKUResponse struct {
	ID            string                 `json:"id"`
	ProductID     string                 `json:"product_id"`
	SKUCode       string                 `json:"sku_code"`
	VariantValues []VariantValueResponse `json:"variant_values"`
	BasePrice     decimal.Decimal        `json:"base_price"`
	SalePrice     decimal.Decimal        `json:"sale_price"`
	OfferPrice    decimal.Decimal        `json:"offer_price"`
	DiscountPct   decimal.Decimal        `json:"discount_pct"`
	Quantity      int                    `json:"quantity"`
	LotID         *string                `json:"lot_id,omitempty"`
	ImageID       *string                `json:"image_id,omitempty"`
	ImageURL      *string                `json:"image_url,omitempty"`
	Status        string                 `json:"status"`
}

type SKUListResponse struct {
	Data  []SKUResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// SKULookupResponse is the read-only surface exposed to Order/Checkout.
type SKULookupResponse struct {
	SKUCode   string          `json:"sku_code"`
	Product   string          `json:"product"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Quantity  int             `json:"quantity"`
	Status    string          `json:"status"`
}

type PriceHistoryResponse struct {
	ID           string          `json:"id"`
	OldBasePrice decimal.Decimal `json:"old_base_price"`
	NewBasePrice decimal.Decimal `json:"new_base_price"`
	OldSalePrice decimal.Decimal `json:"old_sale_price"`
	NewSalePrice decimal.Decimal `json:"new_sale_price"`
	ChangedBy    string          `json:"changed_by"`
	CreatedAt    string          `json:"created_at"`
}
