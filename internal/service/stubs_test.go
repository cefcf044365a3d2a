package service

import (
	"context"
	"sort"
	"strings"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. They return the gorm sentinel errors the
// services translate, so unit tests exercise the same error paths as the
// real postgres-backed repositories.

// ── Attribute ────────────────────────────────────────────────────────────────

type stubAttributeRepo struct {
	attrs map[uuid.UUID]*model.Attribute
}

func newStubAttributeRepo() *stubAttributeRepo {
	return &stubAttributeRepo{attrs: make(map[uuid.UUID]*model.Attribute)}
}

func (r *stubAttributeRepo) Create(_ context.Context, a *model.Attribute) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for _, existing := range r.attrs {
		if existing.Slug == a.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	r.attrs[a.ID] = a
	return nil
}

func (r *stubAttributeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Attribute, error) {
	a, ok := r.attrs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAttributeRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Attribute, error) {
	var out []model.Attribute
	for _, id := range ids {
		if a, ok := r.attrs[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAttributeRepo) FindBySlug(_ context.Context, slug string) (*model.Attribute, error) {
	for _, a := range r.attrs {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAttributeRepo) List(_ context.Context, filter dto.AttributeFilter) ([]model.Attribute, int64, error) {
	var out []model.Attribute
	for _, a := range r.attrs {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.ValueType != "" && a.ValueType != filter.ValueType {
			continue
		}
		if filter.IsVariant != nil && a.IsVariant != *filter.IsVariant {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubAttributeRepo) Update(_ context.Context, a *model.Attribute) error {
	r.attrs[a.ID] = a
	return nil
}

var _ repository.AttributeRepository = (*stubAttributeRepo)(nil)

// ── Category ─────────────────────────────────────────────────────────────────

type stubCategoryRepo struct {
	cats map[uuid.UUID]*model.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{cats: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category, links []model.CategoryAttribute) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for _, existing := range r.cats {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	for i := range links {
		links[i].CategoryID = c.ID
	}
	c.Attributes = links
	r.cats[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	for _, c := range r.cats {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) ListAll(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	stored, ok := r.cats[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	links := stored.Attributes
	r.cats[c.ID] = c
	r.cats[c.ID].Attributes = links
	return nil
}

func (r *stubCategoryRepo) UpdateTx(_ *gorm.DB, c *model.Category) error {
	return r.Update(context.Background(), c)
}

func (r *stubCategoryRepo) ReplaceAttributeLinksTx(_ *gorm.DB, categoryID uuid.UUID, links []model.CategoryAttribute) error {
	c, ok := r.cats[categoryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range links {
		links[i].CategoryID = categoryID
	}
	c.Attributes = links
	return nil
}

func (r *stubCategoryRepo) SetParentTx(_ *gorm.DB, categoryID uuid.UUID, newParentID *uuid.UUID) error {
	c, ok := r.cats[categoryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ParentID = newParentID
	return nil
}

func (r *stubCategoryRepo) DeleteTx(_ *gorm.DB, categoryID uuid.UUID) error {
	delete(r.cats, categoryID)
	return nil
}

func (r *stubCategoryRepo) DB() *gorm.DB { return nil }

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Product ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range r.products {
		if existing.Slug == p.Slug || existing.Code == p.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cats, vals := stored.Categories, stored.AttributeValues
	r.products[p.ID] = p
	r.products[p.ID].Categories = cats
	r.products[p.ID].AttributeValues = vals
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	return r.Update(context.Background(), p)
}

func (r *stubProductRepo) ReplaceCategoriesTx(_ *gorm.DB, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	links := make([]model.ProductCategory, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		links = append(links, model.ProductCategory{ProductID: productID, CategoryID: cid})
	}
	p.Categories = links
	return nil
}

func (r *stubProductRepo) ReplaceAttributeValuesTx(_ *gorm.DB, productID uuid.UUID, values []model.ProductAttributeValue) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range values {
		values[i].ProductID = productID
	}
	p.AttributeValues = values
	return nil
}

func (r *stubProductRepo) DeleteAttributeValuesTx(_ *gorm.DB, productIDs []uuid.UUID, attributeIDs []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(attributeIDs))
	for _, aid := range attributeIDs {
		drop[aid] = true
	}
	for _, pid := range productIDs {
		p, ok := r.products[pid]
		if !ok {
			continue
		}
		var kept []model.ProductAttributeValue
		for _, v := range p.AttributeValues {
			if !drop[v.AttributeID] {
				kept = append(kept, v)
			}
		}
		p.AttributeValues = kept
	}
	return nil
}

func (r *stubProductRepo) ListByCategoryIDs(_ context.Context, categoryIDs []uuid.UUID) ([]model.Product, error) {
	want := make(map[uuid.UUID]bool, len(categoryIDs))
	for _, cid := range categoryIDs {
		want[cid] = true
	}
	var out []model.Product
	for _, p := range r.products {
		for _, pc := range p.Categories {
			if want[pc.CategoryID] {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (r *stubProductRepo) CountByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	list, err := r.ListByCategoryIDs(ctx, categoryIDs)
	return int64(len(list)), err
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, productID uuid.UUID, delta int) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── SKU ──────────────────────────────────────────────────────────────────────

type stubSKURepo struct {
	skus map[uuid.UUID]*model.SKU
}

func newStubSKURepo() *stubSKURepo {
	return &stubSKURepo{skus: make(map[uuid.UUID]*model.SKU)}
}

func (r *stubSKURepo) CreateBatchTx(_ *gorm.DB, skus []model.SKU) error {
	for i := range skus {
		for _, existing := range r.skus {
			if existing.SKUCode == skus[i].SKUCode {
				return gorm.ErrDuplicatedKey
			}
			if existing.ProductID == skus[i].ProductID && existing.Fingerprint == skus[i].Fingerprint {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	for i := range skus {
		if skus[i].ID == uuid.Nil {
			skus[i].ID = uuid.New()
		}
		stored := skus[i]
		r.skus[stored.ID] = &stored
	}
	return nil
}

func (r *stubSKURepo) FindByID(_ context.Context, id uuid.UUID) (*model.SKU, error) {
	s, ok := r.skus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSKURepo) FindByCode(_ context.Context, code string) (*model.SKU, error) {
	for _, s := range r.skus {
		if s.SKUCode == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSKURepo) List(_ context.Context, filter dto.SKUFilter) ([]model.SKU, int64, error) {
	var out []model.SKU
	for _, s := range r.skus {
		if filter.ProductID != "" && s.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKUCode < out[j].SKUCode })
	return out, int64(len(out)), nil
}

func (r *stubSKURepo) ListByProductID(_ context.Context, productID uuid.UUID) ([]model.SKU, error) {
	var out []model.SKU
	for _, s := range r.skus {
		if s.ProductID == productID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKUCode < out[j].SKUCode })
	return out, nil
}

func (r *stubSKURepo) Update(_ context.Context, s *model.SKU) error {
	r.skus[s.ID] = s
	return nil
}

func (r *stubSKURepo) UpdateTx(_ *gorm.DB, s *model.SKU) error {
	r.skus[s.ID] = s
	return nil
}

func (r *stubSKURepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.skus, id)
	return nil
}

func (r *stubSKURepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.skus, id)
	return nil
}

func (r *stubSKURepo) DB() *gorm.DB { return nil }

var _ repository.SKURepository = (*stubSKURepo)(nil)

// ── Lot ──────────────────────────────────────────────────────────────────────

type stubLotRepo struct {
	lots map[uuid.UUID]*model.Lot
}

func newStubLotRepo() *stubLotRepo {
	return &stubLotRepo{lots: make(map[uuid.UUID]*model.Lot)}
}

func (r *stubLotRepo) Create(_ context.Context, l *model.Lot) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	for _, existing := range r.lots {
		if existing.LotNumber == l.LotNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	r.lots[l.ID] = l
	return nil
}

func (r *stubLotRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLotRepo) FindByNumber(_ context.Context, lotNumber string) (*model.Lot, error) {
	for _, l := range r.lots {
		if l.LotNumber == lotNumber {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLotRepo) List(_ context.Context, filter dto.LotFilter) ([]model.Lot, int64, error) {
	var out []model.Lot
	for _, l := range r.lots {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Type != "" && l.Type != filter.Type {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *stubLotRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	l, ok := r.lots[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Status = status
	return nil
}

// recompute mirrors the SQL: remaining is always derived from the entries,
// version-guarded.
func (r *stubLotRepo) recompute(l *model.Lot, expectedVersion int) error {
	if l.Version != expectedVersion {
		return repository.ErrLedgerVersionConflict
	}
	sum := 0
	for _, a := range l.Adjustments {
		sum += a.Quantity
	}
	l.RemainingQuantity = l.Quantity - sum
	l.Version++
	return nil
}

func (r *stubLotRepo) AppendAdjustment(_ context.Context, lot *model.Lot, adj *model.LotAdjustment) error {
	stored, ok := r.lots[lot.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}
	adj.LotID = lot.ID
	stored.Adjustments = append(stored.Adjustments, *adj)
	if err := r.recompute(stored, lot.Version); err != nil {
		stored.Adjustments = stored.Adjustments[:len(stored.Adjustments)-1]
		return err
	}
	return nil
}

func (r *stubLotRepo) RemoveAdjustment(_ context.Context, lot *model.Lot, adjustmentID uuid.UUID) error {
	stored, ok := r.lots[lot.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	before := stored.Adjustments
	var kept []model.LotAdjustment
	for _, a := range stored.Adjustments {
		if a.ID != adjustmentID {
			kept = append(kept, a)
		}
	}
	stored.Adjustments = kept
	if err := r.recompute(stored, lot.Version); err != nil {
		stored.Adjustments = before
		return err
	}
	return nil
}

func (r *stubLotRepo) FindAdjustment(_ context.Context, lotID, adjustmentID uuid.UUID) (*model.LotAdjustment, error) {
	l, ok := r.lots[lotID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range l.Adjustments {
		if l.Adjustments[i].ID == adjustmentID {
			return &l.Adjustments[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLotRepo) CountBySupplierID(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	for _, l := range r.lots {
		if l.SupplierID != nil && *l.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

func (r *stubLotRepo) DB() *gorm.DB { return nil }

var _ repository.LotRepository = (*stubLotRepo)(nil)

// ── Supplier ─────────────────────────────────────────────────────────────────

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for _, existing := range r.suppliers {
		if existing.Name == s.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── Price history ────────────────────────────────────────────────────────────

type stubPriceHistoryRepo struct {
	entries []*model.PriceHistory
}

func newStubPriceHistoryRepo() *stubPriceHistoryRepo { return &stubPriceHistoryRepo{} }

func (r *stubPriceHistoryRepo) Create(_ context.Context, h *model.PriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.entries = append(r.entries, h)
	return nil
}

func (r *stubPriceHistoryRepo) CreateTx(_ *gorm.DB, h *model.PriceHistory) error {
	return r.Create(context.Background(), h)
}

func (r *stubPriceHistoryRepo) ListBySKUID(_ context.Context, skuID uuid.UUID, _ int) ([]model.PriceHistory, error) {
	var out []model.PriceHistory
	for _, h := range r.entries {
		if h.SKUID == skuID {
			out = append(out, *h)
		}
	}
	return out, nil
}

var _ repository.PriceHistoryRepository = (*stubPriceHistoryRepo)(nil)
