package service

import (
	"context"
	"errors"
	"testing"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryFixture struct {
	attrRepo    *stubAttributeRepo
	catRepo     *stubCategoryRepo
	productRepo *stubProductRepo
	svc         CategoryService
}

func newCategoryFixture() *categoryFixture {
	f := &categoryFixture{
		attrRepo:    newStubAttributeRepo(),
		catRepo:     newStubCategoryRepo(),
		productRepo: newStubProductRepo(),
	}
	f.svc = NewCategoryService(f.catRepo, f.attrRepo, f.productRepo)
	return f
}

func (f *categoryFixture) seedAttr(name string) *model.Attribute {
	a := &model.Attribute{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slugify(name),
		ValueType: model.ValueTypeText,
		InputType: "text",
		Status:    model.AttributeStatusActive,
	}
	f.attrRepo.attrs[a.ID] = a
	return a
}

func (f *categoryFixture) seedCategory(name string, parentID *uuid.UUID, attrs ...*model.Attribute) *model.Category {
	c := &model.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slugify(name),
		ParentID: parentID,
		Status:   model.CategoryStatusActive,
	}
	for i, a := range attrs {
		c.Attributes = append(c.Attributes, model.CategoryAttribute{
			ID: uuid.New(), CategoryID: c.ID, AttributeID: a.ID, Position: i,
		})
	}
	f.catRepo.cats[c.ID] = c
	return c
}

func TestCategoryEffectiveSet_InheritsAncestorUnion(t *testing.T) {
	f := newCategoryFixture()
	material := f.seedAttr("Material")
	size := f.seedAttr("Size")

	apparel := f.seedCategory("Apparel", nil, material)
	shirts := f.seedCategory("Shirts", &apparel.ID, size)

	resp, err := f.svc.Get(context.Background(), shirts.ID)
	require.NoError(t, err)
	require.Len(t, resp.EffectiveAttributes, 2)

	byName := make(map[string]bool)
	for _, ea := range resp.EffectiveAttributes {
		byName[ea.Attribute.Name] = ea.Inherited
		if ea.Inherited {
			require.NotNil(t, ea.InheritedVia)
			assert.Equal(t, apparel.ID.String(), *ea.InheritedVia)
		}
	}
	assert.True(t, byName[material.Name], "ancestor attribute should be marked inherited")
	assert.False(t, byName[size.Name], "own attribute must not be marked inherited")
}

func TestCategoryRemoveAttribute_InheritedIsLocked(t *testing.T) {
	f := newCategoryFixture()
	material := f.seedAttr("Material")
	apparel := f.seedCategory("Apparel", nil, material)
	shirts := f.seedCategory("Shirts", &apparel.ID)

	err := f.svc.RemoveAttribute(context.Background(), shirts.ID, material.ID)
	require.Error(t, err)
	assert.Equal(t, "InheritedAttributeLocked", apierror.CodeOf(err))

	e, ok := apierror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindInvariant, e.Kind)

	// Detaching it on the contributing ancestor is allowed.
	require.NoError(t, f.svc.RemoveAttribute(context.Background(), apparel.ID, material.ID))
	resp, err := f.svc.Get(context.Background(), shirts.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.EffectiveAttributes)
}

func TestCategoryReparent_RejectsCycle(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)
	shirts := f.seedCategory("Shirts", &apparel.ID)
	tees := f.seedCategory("Tees", &shirts.ID)

	// Moving a node under its own descendant would loop the chain.
	_, err := f.svc.Reparent(context.Background(), apparel.ID, &tees.ID)
	require.Error(t, err)
	assert.Equal(t, "CyclicCategoryParent", apierror.CodeOf(err))

	_, err = f.svc.Reparent(context.Background(), apparel.ID, &apparel.ID)
	require.Error(t, err)
	assert.Equal(t, "CyclicCategoryParent", apierror.CodeOf(err))
}

func TestCategoryReparent_SameParentIsNoOp(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)
	shirts := f.seedCategory("Shirts", &apparel.ID)

	resp, err := f.svc.Reparent(context.Background(), shirts.ID, &apparel.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.ParentID)
	assert.Equal(t, apparel.ID.String(), *resp.ParentID)
}

func TestCategoryReparent_PrunesStaleProductValues(t *testing.T) {
	f := newCategoryFixture()
	material := f.seedAttr("Material")
	apparel := f.seedCategory("Apparel", nil, material)
	shirts := f.seedCategory("Shirts", &apparel.ID)
	misc := f.seedCategory("Misc", nil)

	p := &model.Product{
		ID: uuid.New(), Name: "Classic Tee", Slug: "classic-tee", Code: "TEE-1",
		Status: model.ProductStatusActive,
		Categories: []model.ProductCategory{
			{CategoryID: shirts.ID},
		},
		AttributeValues: []model.ProductAttributeValue{
			{AttributeID: material.ID, Value: "cotton"},
		},
	}
	f.productRepo.products[p.ID] = p

	// Moving Shirts out from under Apparel drops Material from the product's
	// effective union; the stored value goes with it.
	resp, err := f.svc.Reparent(context.Background(), shirts.ID, &misc.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.ParentID)
	assert.Equal(t, misc.ID.String(), *resp.ParentID)
	assert.Empty(t, f.productRepo.products[p.ID].AttributeValues)
}

func TestCategoryReparent_KeepsValueEffectiveViaOtherCategory(t *testing.T) {
	f := newCategoryFixture()
	material := f.seedAttr("Material")
	apparel := f.seedCategory("Apparel", nil, material)
	shirts := f.seedCategory("Shirts", &apparel.ID)
	misc := f.seedCategory("Misc", nil)

	p := &model.Product{
		ID: uuid.New(), Name: "Classic Tee", Slug: "classic-tee", Code: "TEE-1",
		Status: model.ProductStatusActive,
		Categories: []model.ProductCategory{
			{CategoryID: apparel.ID},
			{CategoryID: shirts.ID},
		},
		AttributeValues: []model.ProductAttributeValue{
			{AttributeID: material.ID, Value: "cotton"},
		},
	}
	f.productRepo.products[p.ID] = p

	// The product keeps its direct Apparel assignment, so Material stays
	// effective and the value survives the move.
	_, err := f.svc.Reparent(context.Background(), shirts.ID, &misc.ID)
	require.NoError(t, err)
	require.Len(t, f.productRepo.products[p.ID].AttributeValues, 1)
	assert.Equal(t, "cotton", f.productRepo.products[p.ID].AttributeValues[0].Value)
}

func TestCategoryDelete_BlockedByDescendants(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)
	f.seedCategory("Shirts", &apparel.ID)

	err := f.svc.Delete(context.Background(), apparel.ID, false)
	require.Error(t, err)
	assert.Equal(t, "HasDescendants", apierror.CodeOf(err))

	e, ok := apierror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindDependency, e.Kind)
}

func TestCategoryDelete_BlockedByProductReferences(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)

	p := &model.Product{
		ID: uuid.New(), Name: "Classic Tee", Slug: "classic-tee", Code: "TEE-1",
		Status:     model.ProductStatusActive,
		Categories: []model.ProductCategory{{CategoryID: apparel.ID}},
	}
	f.productRepo.products[p.ID] = p

	err := f.svc.Delete(context.Background(), apparel.ID, false)
	require.Error(t, err)
	assert.Equal(t, "ReferencedByProducts", apierror.CodeOf(err))
}

func TestCategoryDelete_ForcedCascadeDetachesProducts(t *testing.T) {
	f := newCategoryFixture()
	material := f.seedAttr("Material")
	apparel := f.seedCategory("Apparel", nil, material)
	shirts := f.seedCategory("Shirts", &apparel.ID)
	misc := f.seedCategory("Misc", nil)

	p := &model.Product{
		ID: uuid.New(), Name: "Classic Tee", Slug: "classic-tee", Code: "TEE-1",
		Status: model.ProductStatusActive,
		Categories: []model.ProductCategory{
			{CategoryID: shirts.ID},
			{CategoryID: misc.ID},
		},
		AttributeValues: []model.ProductAttributeValue{
			{AttributeID: material.ID, Value: "cotton"},
		},
	}
	f.productRepo.products[p.ID] = p

	require.NoError(t, f.svc.Delete(context.Background(), apparel.ID, true))

	// Subtree gone, product detached from it, stale value pruned.
	_, err := f.svc.Get(context.Background(), apparel.ID)
	assert.Equal(t, "CategoryNotFound", apierror.CodeOf(err))
	_, err = f.svc.Get(context.Background(), shirts.ID)
	assert.Equal(t, "CategoryNotFound", apierror.CodeOf(err))

	got := f.productRepo.products[p.ID]
	require.Len(t, got.Categories, 1)
	assert.Equal(t, misc.ID, got.Categories[0].CategoryID)
	assert.Empty(t, got.AttributeValues)
}

func TestCategoryTree_NestsChildren(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)
	f.seedCategory("Shirts", &apparel.ID)
	f.seedCategory("Misc", nil)

	tree, err := f.svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)

	flat, err := f.svc.Flat(context.Background())
	require.NoError(t, err)
	require.Len(t, flat, 3)
	levels := make(map[string]int)
	for _, n := range flat {
		levels[n.Name] = n.Level
	}
	assert.Equal(t, 0, levels["Apparel"])
	assert.Equal(t, 1, levels["Shirts"])
	assert.Equal(t, 0, levels["Misc"])
}

func TestExpandWithAncestors_ClosesSelection(t *testing.T) {
	f := newCategoryFixture()
	apparel := f.seedCategory("Apparel", nil)
	shirts := f.seedCategory("Shirts", &apparel.ID)
	tees := f.seedCategory("Tees", &shirts.ID)

	closed, err := f.svc.ExpandWithAncestors(context.Background(), []uuid.UUID{tees.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{apparel.ID, shirts.ID, tees.ID}, closed)

	// Already-closed selections come back unchanged in size.
	again, err := f.svc.ExpandWithAncestors(context.Background(), closed)
	require.NoError(t, err)
	assert.Len(t, again, len(closed))
}

// txOnlyCategoryRepo fails any row write that bypasses the transaction
// handle; field edits and the attribute-link swap must share one tx.
type txOnlyCategoryRepo struct{ *stubCategoryRepo }

func (r *txOnlyCategoryRepo) Update(context.Context, *model.Category) error {
	return errors.New("category row written outside the transaction")
}

func TestCategoryUpdate_StaysInsideTransaction(t *testing.T) {
	f := newCategoryFixture()
	repo := &txOnlyCategoryRepo{stubCategoryRepo: f.catRepo}
	svc := NewCategoryService(repo, f.attrRepo, f.productRepo)

	size := f.seedAttr("Size")
	apparel := f.seedCategory("Apparel", nil)

	name := "Clothing"
	resp, err := svc.Update(context.Background(), apparel.ID, dto.UpdateCategoryRequest{
		Name:         &name,
		AttributeIDs: []string{size.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Clothing", resp.Name)
}
