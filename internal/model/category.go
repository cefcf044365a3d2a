package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryStatusActive   = "ACTIVE"
	CategoryStatusInactive = "INACTIVE"
)

// Category is one node of the taxonomy forest. ParentID nil means root.
// A node's effective attribute set is its own links plus the union of all
// strict-ancestor sets; the inherited part can never be detached here.
type Category struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string     `gorm:"index;not null"`
	Slug     string     `gorm:"uniqueIndex;not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Position int        `gorm:"not null;default:0"`
	ImageID  *string    // opaque asset reference, resolved by the asset service
	Status   string     `gorm:"not null;default:'ACTIVE'"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Parent     *Category           `gorm:"foreignKey:ParentID"`
	Attributes []CategoryAttribute `gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string { return "categories" }

// CategoryAttribute links an attribute directly to a category node, ordered
// by Position. Inherited attributes have no row here — they are computed.
type CategoryAttribute struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_category_attribute;not null"`
	AttributeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_category_attribute;not null"`
	Position    int       `gorm:"not null;default:0"`

	Attribute *Attribute `gorm:"foreignKey:AttributeID"`
}

func (CategoryAttribute) TableName() string { return "category_attributes" }
