package dto

import "github.com/shopspring/decimal"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type ProductAttributeValueInput struct {
	AttributeID string  `json:"attribute_id" validate:"required,uuid"`
	Value       string  `json:"value"        validate:"required"`
	Label       *string `json:"label"`
}

type CreateProductRequest struct {
	Name        string                       `json:"name"         validate:"required,min=2,max=150"`
	BasePrice   decimal.Decimal              `json:"base_price"   validate:"required"`
	SalePrice   decimal.Decimal              `json:"sale_price"   validate:"required"`
	OfferPrice  *decimal.Decimal             `json:"offer_price"`
	CategoryIDs []string                     `json:"category_ids" validate:"required,min=1,dive,uuid"`
	Attributes  []ProductAttributeValueInput `json:"attributes"   validate:"dive"`
	ImageID     *string                      `json:"image_id"`
	Status      string                       `json:"status"       validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE ARCHIVED"`
}

type UpdateProductRequest struct {
	Name        *string                      `json:"name"         validate:"omitempty,min=2,max=150"`
	BasePrice   *decimal.Decimal             `json:"base_price"`
	SalePrice   *decimal.Decimal             `json:"sale_price"`
	OfferPrice  *decimal.Decimal             `json:"offer_price"`
	CategoryIDs []string                     `json:"category_ids" validate:"omitempty,min=1,dive,uuid"`
	Attributes  []ProductAttributeValueInput `json:"attributes"   validate:"omitempty,dive"`
	ImageID     *string                      `json:"image_id"`
	Status      *string                      `json:"status"       validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE ARCHIVED"`
}

// ── Filter / Pagination ──────────────────────────────────────────────────────

type ProductFilter struct {
	Name       string `form:"name"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	Status     string `form:"status"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ── Response DTOs ────────────────────────────────────────────────────────────

type ProductAttributeValueResponse struct {
	AttributeID string  `json:"attribute_id"`
	Name        string  `json:"name"`
	Value       string  `json:"value"`
	Label       *string `json:"label,omitempty"`
}

type ProductResponse struct {
	ID          string                          `json:"id"`
	Name        string                          `json:"name"`
	Slug        string                          `json:"slug"`
	Code        string                          `json:"code"`
	BasePrice   decimal.Decimal                 `json:"base_price"`
	SalePrice   decimal.Decimal                 `json:"sale_price"`
	OfferPrice  decimal.Decimal                 `json:"offer_price"`
	DiscountPct decimal.Decimal                 `json:"discount_pct"`
	Stock       int                             `json:"stock"`
	ImageID     *string                         `json:"image_id,omitempty"`
	ImageURL    *string                         `json:"image_url,omitempty"`
	Status      string                          `json:"status"`
	CategoryIDs []string                        `json:"category_ids"`
	Attributes  []ProductAttributeValueResponse `json:"attributes"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// RelevantAttributesResponse is the partition that drives the specification
// form (non-variant) and the variant generator input (variant candidates).
type RelevantAttributesResponse struct {
	Specification     []AttributeResponse `json:"specification"`
	VariantCandidates []AttributeResponse `json:"variant_candidates"`
}
