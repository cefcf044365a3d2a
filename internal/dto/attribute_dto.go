package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type AttributeOptionInput struct {
	Label  string `json:"label"  validate:"required"`
	Value  string `json:"value"  validate:"required"`
	Swatch string `json:"swatch"`
}

type CreateAttributeRequest struct {
	Name         string                 `json:"name"       validate:"required,min=2,max=100"`
	ValueType    string                 `json:"value_type" validate:"required,oneof=TEXT NUMBER BOOLEAN SELECT MULTI_SELECT COLOR DATE RANGE"`
	InputType    string                 `json:"input_type"`
	Options      []AttributeOptionInput `json:"options"    validate:"dive"`
	Unit         *string                `json:"unit"`
	IsFilterable bool                   `json:"is_filterable"`
	IsRequired   bool                   `json:"is_required"`
	IsVariant    bool                   `json:"is_variant"`
}

type UpdateAttributeRequest struct {
	Name         *string                `json:"name"       validate:"omitempty,min=2,max=100"`
	InputType    *string                `json:"input_type"`
	Options      []AttributeOptionInput `json:"options"    validate:"omitempty,dive"`
	Unit         *string                `json:"unit"`
	IsFilterable *bool                  `json:"is_filterable"`
	IsRequired   *bool                  `json:"is_required"`
	IsVariant    *bool                  `json:"is_variant"`
	Status       *string                `json:"status"     validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ── Filter / Pagination ──────────────────────────────────────────────────────

type AttributeFilter struct {
	Status    string `form:"status"`
	ValueType string `form:"value_type"`
	IsVariant *bool  `form:"is_variant"`
	Search    string `form:"search"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ── Response DTOs ────────────────────────────────────────────────────────────

type AttributeOptionResponse struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Swatch string `json:"swatch,omitempty"`
}

type AttributeResponse struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Slug         string                    `json:"slug"`
	ValueType    string                    `json:"value_type"`
	InputType    string                    `json:"input_type"`
	Options      []AttributeOptionResponse `json:"options,omitempty"`
	Unit         *string                   `json:"unit,omitempty"`
	IsFilterable bool                      `json:"is_filterable"`
	IsRequired   bool                      `json:"is_required"`
	IsVariant    bool                      `json:"is_variant"`
	Status       string                    `json:"status"`
}

type AttributeListResponse struct {
	Data  []AttributeResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
