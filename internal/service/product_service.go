package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssetResolver turns a stored asset id into a servable URL. Resolution
// failures degrade to a nil URL, never to a failed catalog read.
type AssetResolver interface {
	ResolveURL(ctx context.Context, assetID string) (string, error)
}

// ProductService defines business operations for the product aggregate.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest, createdBy string) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Archive(ctx context.Context, id uuid.UUID) error
	// RelevantAttributes partitions the product's effective attribute union
	// into specification fields and variant dimension candidates.
	RelevantAttributes(ctx context.Context, id uuid.UUID) (*dto.RelevantAttributesResponse, error)
}

type productService struct {
	repo     repository.ProductRepository
	attrRepo repository.AttributeRepository
	catSvc   CategoryService
	assets   AssetResolver
}

func NewProductService(
	repo repository.ProductRepository,
	attrRepo repository.AttributeRepository,
	catSvc CategoryService,
	assets AssetResolver,
) ProductService {
	return &productService{repo: repo, attrRepo: attrRepo, catSvc: catSvc, assets: assets}
}

func parseUUIDs(raw []string, code, field string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apierror.Validation(code, "%s %q is not a valid uuid", field, r)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// specValues validates the submitted specification values against the
// effective attribute union and returns the rows to persist.
func (s *productService) specValues(
	ctx context.Context,
	inputs []dto.ProductAttributeValueInput,
	effective map[uuid.UUID]bool,
) ([]model.ProductAttributeValue, error) {
	values := make([]model.ProductAttributeValue, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		aid, err := uuid.Parse(in.AttributeID)
		if err != nil {
			return nil, apierror.Validation("InvalidAttributeID", "attribute id %q is not a valid uuid", in.AttributeID)
		}
		if seen[aid] {
			return nil, apierror.Validation("DuplicateAttributeValue",
				"attribute %s is supplied more than once", aid)
		}
		seen[aid] = true
		if !effective[aid] {
			return nil, apierror.Validation("AttributeNotEffective",
				"attribute %s is not in the effective set of the selected categories", aid)
		}
		attr, err := s.attrRepo.FindByID(ctx, aid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("AttributeNotFound", "attribute %s not found", aid)
			}
			return nil, err
		}
		if attr.IsVariant {
			return nil, apierror.Validation("VariantAttributeInSpecification",
				"attribute %s is a variant dimension; its values live on SKUs, not the product", aid)
		}
		if err := validateSpecValue(attr, in.Value); err != nil {
			return nil, err
		}
		values = append(values, model.ProductAttributeValue{
			AttributeID: aid,
			Value:       in.Value,
			Label:       in.Label,
		})
	}
	return values, nil
}

// validateSpecValue type-checks one raw value against its attribute schema.
func validateSpecValue(attr *model.Attribute, value string) error {
	switch attr.ValueType {
	case model.ValueTypeNumber:
		if _, err := decimal.NewFromString(value); err != nil {
			return apierror.Validation("InvalidAttributeValue",
				"attribute %q expects a numeric value, got %q", attr.Name, value)
		}
	case model.ValueTypeBoolean:
		if value != "true" && value != "false" {
			return apierror.Validation("InvalidAttributeValue",
				"attribute %q expects true or false, got %q", attr.Name, value)
		}
	case model.ValueTypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return apierror.Validation("InvalidAttributeValue",
				"attribute %q expects a YYYY-MM-DD date, got %q", attr.Name, value)
		}
	case model.ValueTypeRange:
		lo, hi, ok := strings.Cut(value, "..")
		if !ok {
			return apierror.Validation("InvalidAttributeValue",
				"attribute %q expects a lo..hi range, got %q", attr.Name, value)
		}
		l, errL := decimal.NewFromString(strings.TrimSpace(lo))
		h, errH := decimal.NewFromString(strings.TrimSpace(hi))
		if errL != nil || errH != nil || l.GreaterThan(h) {
			return apierror.Validation("InvalidAttributeValue",
				"attribute %q expects numeric lo..hi with lo <= hi, got %q", attr.Name, value)
		}
	case model.ValueTypeSelect, model.ValueTypeColor:
		if !attr.HasOption(value) {
			return apierror.Validation("InvalidAttributeValue",
				"value %q is not one of the declared options of attribute %q", value, attr.Name)
		}
	case model.ValueTypeMultiSelect:
		for _, tok := range strings.Split(value, ",") {
			if !attr.HasOption(strings.TrimSpace(tok)) {
				return apierror.Validation("InvalidAttributeValue",
					"value %q is not one of the declared options of attribute %q", tok, attr.Name)
			}
		}
	}
	return nil
}

// checkRequired verifies every required ACTIVE non-variant attribute of the
// effective union has a value when the product is (or becomes) ACTIVE.
func (s *productService) checkRequired(ctx context.Context, effective map[uuid.UUID]bool, values []model.ProductAttributeValue) error {
	ids := make([]uuid.UUID, 0, len(effective))
	for aid := range effective {
		ids = append(ids, aid)
	}
	attrs, err := s.attrRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	supplied := make(map[uuid.UUID]bool, len(values))
	for _, v := range values {
		supplied[v.AttributeID] = true
	}
	for _, a := range attrs {
		if a.IsRequired && !a.IsVariant && a.Status == model.AttributeStatusActive && !supplied[a.ID] {
			return apierror.Validation("MissingRequiredAttribute",
				"required attribute %q has no value", a.Name)
		}
	}
	return nil
}

func discountPct(base, sale decimal.Decimal) decimal.Decimal {
	if base.IsZero() || sale.GreaterThanOrEqual(base) {
		return decimal.Zero
	}
	return base.Sub(sale).Div(base).Mul(decimal.NewFromInt(100)).Round(2)
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest, createdBy string) (*dto.ProductResponse, error) {
	if req.SalePrice.GreaterThan(req.BasePrice) {
		return nil, apierror.Validation("SaleAboveBasePrice",
			"sale price must not exceed base price")
	}

	categoryIDs, err := parseUUIDs(req.CategoryIDs, "InvalidCategoryID", "category id")
	if err != nil {
		return nil, err
	}
	// Close the selection under ancestor inclusion before anything else —
	// the effective union and all later recomputes assume a closed set.
	closed, err := s.catSvc.ExpandWithAncestors(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	effective, err := s.catSvc.EffectiveAttributeIDs(ctx, closed)
	if err != nil {
		return nil, err
	}
	values, err := s.specValues(ctx, req.Attributes, effective)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.ProductStatusDraft
	}
	if status == model.ProductStatusActive {
		if err := s.checkRequired(ctx, effective, values); err != nil {
			return nil, err
		}
	}

	offer := decimal.Zero
	if req.OfferPrice != nil {
		offer = *req.OfferPrice
	}
	p := &model.Product{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Code:        codePrefix(req.Name) + "-" + randomCode(6),
		BasePrice:   req.BasePrice,
		SalePrice:   req.SalePrice,
		OfferPrice:  offer,
		DiscountPct: discountPct(req.BasePrice, req.SalePrice),
		ImageID:     req.ImageID,
		Status:      status,
		CreatedBy:   createdBy,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		if err := s.repo.ReplaceCategoriesTx(tx, p.ID, closed); err != nil {
			return err
		}
		return s.repo.ReplaceAttributeValuesTx(tx, p.ID, values)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateProductSlug",
				"a product with slug %q already exists", p.Slug)
		}
		return nil, txErr
	}
	return s.Get(ctx, p.ID)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("ProductNotFound", "product %s not found", id)
		}
		return nil, err
	}
	return s.mapProduct(ctx, p), nil
}

func (s *productService) mapProduct(ctx context.Context, p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Code:        p.Code,
		BasePrice:   p.BasePrice,
		SalePrice:   p.SalePrice,
		OfferPrice:  p.OfferPrice,
		DiscountPct: p.DiscountPct,
		Stock:       p.Stock,
		ImageID:     p.ImageID,
		Status:      p.Status,
		CategoryIDs: make([]string, 0, len(p.Categories)),
		Attributes:  make([]dto.ProductAttributeValueResponse, 0, len(p.AttributeValues)),
	}
	for _, c := range p.Categories {
		resp.CategoryIDs = append(resp.CategoryIDs, c.CategoryID.String())
	}
	for _, v := range p.AttributeValues {
		av := dto.ProductAttributeValueResponse{
			AttributeID: v.AttributeID.String(),
			Value:       v.Value,
			Label:       v.Label,
		}
		if v.Attribute != nil {
			av.Name = v.Attribute.Name
		}
		resp.Attributes = append(resp.Attributes, av)
	}
	if s.assets != nil && p.ImageID != nil {
		if url, err := s.assets.ResolveURL(ctx, *p.ImageID); err == nil && url != "" {
			resp.ImageURL = &url
		}
	}
	return resp
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		out.Data = append(out.Data, *s.mapProduct(ctx, &products[i]))
	}
	return out, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("ProductNotFound", "product %s not found", id)
		}
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
		p.Slug = slugify(*req.Name)
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.SalePrice != nil {
		p.SalePrice = *req.SalePrice
	}
	if p.SalePrice.GreaterThan(p.BasePrice) {
		return nil, apierror.Validation("SaleAboveBasePrice", "sale price must not exceed base price")
	}
	p.DiscountPct = discountPct(p.BasePrice, p.SalePrice)
	if req.OfferPrice != nil {
		p.OfferPrice = *req.OfferPrice
	}
	if req.ImageID != nil {
		p.ImageID = req.ImageID
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	// Resolve the closed category set: either the new selection, or the
	// stored one (already closed at write time).
	var closed []uuid.UUID
	if req.CategoryIDs != nil {
		ids, err := parseUUIDs(req.CategoryIDs, "InvalidCategoryID", "category id")
		if err != nil {
			return nil, err
		}
		closed, err = s.catSvc.ExpandWithAncestors(ctx, ids)
		if err != nil {
			return nil, err
		}
	} else {
		for _, c := range p.Categories {
			closed = append(closed, c.CategoryID)
		}
	}
	effective, err := s.catSvc.EffectiveAttributeIDs(ctx, closed)
	if err != nil {
		return nil, err
	}

	var values []model.ProductAttributeValue
	if req.Attributes != nil {
		values, err = s.specValues(ctx, req.Attributes, effective)
		if err != nil {
			return nil, err
		}
	} else {
		// Carry existing values forward, dropping any that fell out of the
		// effective union when categories changed.
		for _, v := range p.AttributeValues {
			if effective[v.AttributeID] {
				values = append(values, model.ProductAttributeValue{
					AttributeID: v.AttributeID, Value: v.Value, Label: v.Label,
				})
			}
		}
	}

	if p.Status == model.ProductStatusActive {
		if err := s.checkRequired(ctx, effective, values); err != nil {
			return nil, err
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		if err := s.repo.ReplaceCategoriesTx(tx, p.ID, closed); err != nil {
			return err
		}
		return s.repo.ReplaceAttributeValuesTx(tx, p.ID, values)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateProductSlug",
				"a product with slug %q already exists", p.Slug)
		}
		return nil, txErr
	}
	return s.Get(ctx, id)
}

func (s *productService) Archive(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("ProductNotFound", "product %s not found", id)
		}
		return err
	}
	p.Status = model.ProductStatusArchived
	return s.repo.Update(ctx, p)
}

func (s *productService) RelevantAttributes(ctx context.Context, id uuid.UUID) (*dto.RelevantAttributesResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("ProductNotFound", "product %s not found", id)
		}
		return nil, err
	}
	categoryIDs := make([]uuid.UUID, 0, len(p.Categories))
	for _, c := range p.Categories {
		categoryIDs = append(categoryIDs, c.CategoryID)
	}
	effective, err := s.catSvc.EffectiveAttributeIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(effective))
	for aid := range effective {
		ids = append(ids, aid)
	}
	attrs, err := s.attrRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.RelevantAttributesResponse{
		Specification:     []dto.AttributeResponse{},
		VariantCandidates: []dto.AttributeResponse{},
	}
	for _, a := range attrs {
		if a.Status != model.AttributeStatusActive {
			continue
		}
		if a.IsVariant {
			resp.VariantCandidates = append(resp.VariantCandidates, mapAttribute(a))
		} else {
			resp.Specification = append(resp.Specification, mapAttribute(a))
		}
	}
	return resp, nil
}
