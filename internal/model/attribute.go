package model

import (
	"time"

	"github.com/google/uuid"
)

// Attribute value types. SELECT, MULTI_SELECT and COLOR require a non-empty,
// value-unique option list.
const (
	ValueTypeText        = "TEXT"
	ValueTypeNumber      = "NUMBER"
	ValueTypeBoolean     = "BOOLEAN"
	ValueTypeSelect      = "SELECT"
	ValueTypeMultiSelect = "MULTI_SELECT"
	ValueTypeColor       = "COLOR"
	ValueTypeDate        = "DATE"
	ValueTypeRange       = "RANGE"
)

const (
	AttributeStatusActive   = "ACTIVE"
	AttributeStatusInactive = "INACTIVE"
)

// Attribute is a reusable typed field schema shared across categories.
// Deactivation is soft: existing category/product references stay valid,
// the attribute is only hidden from future selection.
type Attribute struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	ValueType string    `gorm:"not null"`
	// InputType is a presentation hint (dropdown, radio, swatch, …),
	// independent of ValueType.
	InputType    string     `gorm:"not null;default:'text'"`
	Options      OptionList `gorm:"type:jsonb"`
	Unit         *string    // only meaningful for NUMBER
	IsFilterable bool       `gorm:"not null;default:false"`
	IsRequired   bool       `gorm:"not null;default:false"`
	IsVariant    bool       `gorm:"not null;default:false"`
	Status       string     `gorm:"not null;default:'ACTIVE'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Attribute) TableName() string { return "attributes" }

// HasOption reports whether v matches one of the declared option values.
func (a *Attribute) HasOption(v string) bool {
	for _, o := range a.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// RequiresOptions reports whether the value type mandates an option list.
func (a *Attribute) RequiresOptions() bool {
	switch a.ValueType {
	case ValueTypeSelect, ValueTypeMultiSelect, ValueTypeColor:
		return true
	}
	return false
}
