package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name         string   `json:"name"          validate:"required,min=2,max=100"`
	ParentID     *string  `json:"parent_id"     validate:"omitempty,uuid"`
	AttributeIDs []string `json:"attribute_ids" validate:"dive,uuid"`
	Position     int      `json:"position"`
	ImageID      *string  `json:"image_id"`
}

// UpdateCategoryRequest changes name, position or the OWN attribute set.
// Inherited attributes cannot be removed through this request.
type UpdateCategoryRequest struct {
	Name         *string  `json:"name"          validate:"omitempty,min=2,max=100"`
	AttributeIDs []string `json:"attribute_ids" validate:"omitempty,dive,uuid"`
	Position     *int     `json:"position"`
	ImageID      *string  `json:"image_id"`
	Status       *string  `json:"status"        validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type ReparentCategoryRequest struct {
	NewParentID *string `json:"new_parent_id" validate:"omitempty,uuid"`
}

type DeleteCategoryQuery struct {
	Force bool `form:"force"`
}

// ── Response DTOs ────────────────────────────────────────────────────────────

// EffectiveAttribute carries provenance so the UI can tell removable (own)
// entries from locked (inherited) ones.
type EffectiveAttribute struct {
	Attribute    AttributeResponse `json:"attribute"`
	Inherited    bool              `json:"inherited"`
	InheritedVia *string           `json:"inherited_via,omitempty"` // ancestor category id
}

type CategoryResponse struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Slug                string               `json:"slug"`
	ParentID            *string              `json:"parent_id,omitempty"`
	Position            int                  `json:"position"`
	ImageID             *string              `json:"image_id,omitempty"`
	ImageURL            *string              `json:"image_url,omitempty"`
	Status              string               `json:"status"`
	EffectiveAttributes []EffectiveAttribute `json:"effective_attributes"`
}

// CategoryTreeNode is one node of the materialized pre-order tree.
type CategoryTreeNode struct {
	CategoryResponse
	Children []CategoryTreeNode `json:"children"`
}

// CategoryFlatNode is the pre-order flattening used by table views.
type CategoryFlatNode struct {
	CategoryResponse
	Level int `json:"level"`
}
