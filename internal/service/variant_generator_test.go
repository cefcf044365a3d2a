package service

import (
	"strings"
	"testing"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variantAttr(name string, values ...string) model.Attribute {
	opts := make(model.OptionList, 0, len(values))
	for _, v := range values {
		opts = append(opts, model.AttributeOption{Label: v, Value: v})
	}
	return model.Attribute{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slugify(name),
		ValueType: model.ValueTypeSelect,
		Options:   opts,
		IsVariant: true,
		Status:    model.AttributeStatusActive,
	}
}

func testProduct() *model.Product {
	return &model.Product{
		ID:        uuid.New(),
		Name:      "Classic Tee",
		BasePrice: decimal.NewFromInt(30),
		SalePrice: decimal.NewFromInt(25),
	}
}

func TestGenerateVariants_CartesianProduct(t *testing.T) {
	size := variantAttr("Size", "S", "M", "L")
	color := variantAttr("Color", "black", "white")

	drafts, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"S", "M"}},
		{Attribute: color, Values: []string{"black", "white"}},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	// Rightmost dimension spins fastest, so output follows selection order.
	wantTuples := [][2]string{
		{"S", "black"}, {"S", "white"},
		{"M", "black"}, {"M", "white"},
	}
	for i, d := range drafts {
		require.Len(t, d.VariantValues, 2)
		assert.Equal(t, size.ID.String(), d.VariantValues[0].AttributeID)
		assert.Equal(t, wantTuples[i][0], d.VariantValues[0].Value)
		assert.Equal(t, color.ID.String(), d.VariantValues[1].AttributeID)
		assert.Equal(t, wantTuples[i][1], d.VariantValues[1].Value)

		assert.True(t, d.BasePrice.Equal(decimal.NewFromInt(30)))
		assert.True(t, d.SalePrice.Equal(decimal.NewFromInt(25)))
		assert.Zero(t, d.Quantity)
	}
}

func TestGenerateVariants_CodesAreUniqueAndPrefixed(t *testing.T) {
	size := variantAttr("Size", "S", "M", "L")

	drafts, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"S", "M", "L"}},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	seen := make(map[string]bool)
	for _, d := range drafts {
		assert.False(t, seen[d.SKUCode], "duplicate code %q", d.SKUCode)
		seen[d.SKUCode] = true
		assert.True(t, strings.HasPrefix(d.SKUCode, "CLASSICT-"), d.SKUCode)
		assert.Regexp(t, skuCodeRe, d.SKUCode)
	}
}

func TestGenerateVariants_EmptyDimensionDropsOut(t *testing.T) {
	size := variantAttr("Size", "S", "M")
	color := variantAttr("Color", "black")

	drafts, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"S", "M"}},
		{Attribute: color, Values: nil},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	for _, d := range drafts {
		assert.Len(t, d.VariantValues, 1)
	}
}

func TestGenerateVariants_NoDimensionSelected(t *testing.T) {
	size := variantAttr("Size", "S")

	_, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: nil},
	})
	require.Error(t, err)
	assert.Equal(t, "NoVariantDimensionSelected", apierror.CodeOf(err))

	_, err = GenerateVariants(testProduct(), nil)
	require.Error(t, err)
	assert.Equal(t, "NoVariantDimensionSelected", apierror.CodeOf(err))
}

func TestGenerateVariants_RejectsNonVariantAttribute(t *testing.T) {
	material := model.Attribute{
		ID: uuid.New(), Name: "Material", ValueType: model.ValueTypeText,
		Status: model.AttributeStatusActive,
	}

	_, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: material, Values: []string{"cotton"}},
	})
	require.Error(t, err)
	assert.Equal(t, "NotAVariantAttribute", apierror.CodeOf(err))
}

func TestGenerateVariants_RejectsDuplicateDimension(t *testing.T) {
	size := variantAttr("Size", "S", "M")

	_, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"S"}},
		{Attribute: size, Values: []string{"M"}},
	})
	require.Error(t, err)
	assert.Equal(t, "DuplicateVariantDimension", apierror.CodeOf(err))
}

func TestGenerateVariants_RejectsUnknownOptionValue(t *testing.T) {
	size := variantAttr("Size", "S", "M")

	_, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"XXL"}},
	})
	require.Error(t, err)
	assert.Equal(t, "InvalidAttributeValue", apierror.CodeOf(err))
}

func TestGenerateVariants_DeduplicatesSelectedValues(t *testing.T) {
	size := variantAttr("Size", "S", "M")

	drafts, err := GenerateVariants(testProduct(), []VariantDimension{
		{Attribute: size, Values: []string{"S", "S", "M"}},
	})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
}

func TestGenerateVariants_FallsBackToBasePrice(t *testing.T) {
	p := testProduct()
	p.SalePrice = decimal.Zero
	size := variantAttr("Size", "S")

	drafts, err := GenerateVariants(p, []VariantDimension{
		{Attribute: size, Values: []string{"S"}},
	})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].SalePrice.Equal(p.BasePrice))
}

func TestCodeToken(t *testing.T) {
	assert.Equal(t, "BLACK", codeToken("black"))
	assert.Equal(t, "35", codeToken("3.5"))
	assert.Equal(t, "X", codeToken("---"))
}
