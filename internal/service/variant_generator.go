package service

import (
	"strings"
	"sync"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
)

// VariantDimension is one axis of the Cartesian expansion: a variant-capable
// attribute plus the option values picked for it.
type VariantDimension struct {
	Attribute model.Attribute
	Values    []string
}

// usedSuffixes de-duplicates generated code suffixes process-wide so two
// drafts never collide before the unique index gets a say.
var usedSuffixes sync.Map

// GenerateVariants expands the selected dimensions into SKU drafts, one per
// combination, preserving selection order in both the tuple and the code.
// It touches no storage; drafts stay editable until committed.
func GenerateVariants(product *model.Product, dims []VariantDimension) ([]dto.SKUDraft, error) {
	// Dimensions with no values selected contribute nothing to the product,
	// so they simply drop out instead of zeroing the whole expansion.
	active := make([]VariantDimension, 0, len(dims))
	seen := make(map[uuid.UUID]bool, len(dims))
	for _, d := range dims {
		if !d.Attribute.IsVariant {
			return nil, apierror.Validation("NotAVariantAttribute",
				"attribute %q is not flagged as a variant dimension", d.Attribute.Name)
		}
		if seen[d.Attribute.ID] {
			return nil, apierror.Validation("DuplicateVariantDimension",
				"attribute %q is selected more than once", d.Attribute.Name)
		}
		seen[d.Attribute.ID] = true

		values := make([]string, 0, len(d.Values))
		valSeen := make(map[string]bool, len(d.Values))
		for _, v := range d.Values {
			if valSeen[v] {
				continue
			}
			valSeen[v] = true
			if d.Attribute.RequiresOptions() && !d.Attribute.HasOption(v) {
				return nil, apierror.Validation("InvalidAttributeValue",
					"value %q is not one of the declared options of attribute %q", v, d.Attribute.Name)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		active = append(active, VariantDimension{Attribute: d.Attribute, Values: values})
	}

	if len(active) == 0 {
		return nil, apierror.Validation("NoVariantDimensionSelected",
			"at least one variant dimension with at least one value is required")
	}

	price := product.SalePrice
	if price.IsZero() {
		price = product.BasePrice
	}
	prefix := codePrefix(product.Name)

	// Odometer walk: rightmost dimension spins fastest, so output order is
	// the lexicographic order of the selections as submitted.
	counters := make([]int, len(active))
	total := 1
	for _, d := range active {
		total *= len(d.Values)
	}

	drafts := make([]dto.SKUDraft, 0, total)
	for i := 0; i < total; i++ {
		tuple := make([]dto.VariantValueInput, 0, len(active))
		parts := make([]string, 0, len(active))
		for di, d := range active {
			v := d.Values[counters[di]]
			tuple = append(tuple, dto.VariantValueInput{
				AttributeID: d.Attribute.ID.String(),
				Value:       v,
			})
			parts = append(parts, codeToken(v))
		}
		drafts = append(drafts, dto.SKUDraft{
			SKUCode:       prefix + "-" + strings.Join(parts, "-") + "-" + uniqueSuffix(),
			VariantValues: tuple,
			BasePrice:     product.BasePrice,
			SalePrice:     price,
			Quantity:      0,
		})

		for di := len(active) - 1; di >= 0; di-- {
			counters[di]++
			if counters[di] < len(active[di].Values) {
				break
			}
			counters[di] = 0
		}
	}
	return drafts, nil
}

func uniqueSuffix() string {
	for {
		s := randomCode(4)
		if _, loaded := usedSuffixes.LoadOrStore(s, struct{}{}); !loaded {
			return s
		}
	}
}

// codeToken reduces an option value to its code-safe uppercase form.
func codeToken(v string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(v) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
