package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// AttributeOption is one selectable value of a SELECT / MULTI_SELECT / COLOR
// attribute. Swatch carries a hex color token for COLOR options.
type AttributeOption struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Swatch string `json:"swatch,omitempty"`
}

// OptionList is stored as a JSONB column so option order survives round-trips.
type OptionList []AttributeOption

func (l OptionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *OptionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("OptionList: expected []byte from driver")
	}
	return json.Unmarshal(bytes, l)
}

// VariantValue pins one attribute to one chosen option value on a SKU.
type VariantValue struct {
	AttributeID string `json:"attribute_id"`
	Value       string `json:"value"`
}

// VariantValueList is the SKU's fixed attribute-value tuple, stored as JSONB
// in generation order.
type VariantValueList []VariantValue

func (l VariantValueList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *VariantValueList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("VariantValueList: expected []byte from driver")
	}
	return json.Unmarshal(bytes, l)
}
