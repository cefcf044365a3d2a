package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// skuCodeRe: non-empty alphanumerics with inner dots, dashes or underscores.
// Separators cannot lead or trail.
var skuCodeRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// SKUService defines business operations for stock keeping units.
type SKUService interface {
	GenerateVariants(ctx context.Context, productID uuid.UUID, req dto.GenerateVariantsRequest) ([]dto.SKUDraft, error)
	// CommitVariants persists a batch of drafts atomically: one bad draft
	// fails the whole batch.
	CommitVariants(ctx context.Context, productID uuid.UUID, req dto.CommitVariantsRequest) ([]dto.SKUResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SKUResponse, error)
	List(ctx context.Context, filter dto.SKUFilter) (*dto.SKUListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSKURequest, changedBy string) (*dto.SKUResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Allocate decrements quantity on behalf of an order and, when the SKU is
	// bound to a lot, appends a USED entry to that lot's ledger.
	Allocate(ctx context.Context, id uuid.UUID, req dto.AllocateSKURequest, actor string) (*dto.SKUResponse, error)
	Lookup(ctx context.Context, code string) (*dto.SKULookupResponse, error)
	PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error)
	ExportXLSX(ctx context.Context, filter dto.SKUFilter) ([]byte, error)
}

type skuService struct {
	repo        repository.SKURepository
	productRepo repository.ProductRepository
	attrRepo    repository.AttributeRepository
	lotRepo     repository.LotRepository
	historyRepo repository.PriceHistoryRepository
	assets      AssetResolver
}

func NewSKUService(
	repo repository.SKURepository,
	productRepo repository.ProductRepository,
	attrRepo repository.AttributeRepository,
	lotRepo repository.LotRepository,
	historyRepo repository.PriceHistoryRepository,
	assets AssetResolver,
) SKUService {
	return &skuService{
		repo:        repo,
		productRepo: productRepo,
		attrRepo:    attrRepo,
		lotRepo:     lotRepo,
		historyRepo: historyRepo,
		assets:      assets,
	}
}

func (s *skuService) GenerateVariants(ctx context.Context, productID uuid.UUID, req dto.GenerateVariantsRequest) ([]dto.SKUDraft, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("ProductNotFound", "product %s not found", productID)
		}
		return nil, err
	}

	dims := make([]VariantDimension, 0, len(req.Selections))
	for _, sel := range req.Selections {
		aid, err := uuid.Parse(sel.AttributeID)
		if err != nil {
			return nil, apierror.Validation("InvalidAttributeID", "attribute id %q is not a valid uuid", sel.AttributeID)
		}
		attr, err := s.attrRepo.FindByID(ctx, aid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("AttributeNotFound", "attribute %s not found", aid)
			}
			return nil, err
		}
		dims = append(dims, VariantDimension{Attribute: *attr, Values: sel.Values})
	}
	return GenerateVariants(product, dims)
}

func (s *skuService) CommitVariants(ctx context.Context, productID uuid.UUID, req dto.CommitVariantsRequest) ([]dto.SKUResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("ProductNotFound", "product %s not found", productID)
		}
		return nil, err
	}

	existing, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	existingFPs := make(map[string]string, len(existing))
	var dimSet map[string]bool
	for _, e := range existing {
		existingFPs[e.Fingerprint] = e.SKUCode
		if dimSet == nil {
			dimSet = dimensionSet(e.VariantValues)
		}
	}

	skus := make([]model.SKU, 0, len(req.Drafts))
	batchFPs := make(map[string]string, len(req.Drafts))
	batchCodes := make(map[string]bool, len(req.Drafts))
	resolved := make(map[string]*model.Attribute, 4)
	var addedStock int

	for _, d := range req.Drafts {
		if !skuCodeRe.MatchString(d.SKUCode) {
			return nil, apierror.Validation("InvalidSkuCode",
				"sku code %q must be alphanumeric with inner dots, dashes or underscores", d.SKUCode)
		}
		if batchCodes[d.SKUCode] {
			return nil, apierror.Conflict("DuplicateSkuCode",
				"sku code %q appears more than once in the batch", d.SKUCode)
		}
		batchCodes[d.SKUCode] = true
		if d.SalePrice.GreaterThan(d.BasePrice) {
			return nil, apierror.Validation("SaleAboveBasePrice",
				"sku %q: sale price must not exceed base price", d.SKUCode)
		}

		values := make(model.VariantValueList, 0, len(d.VariantValues))
		thisDims := make(map[string]bool, len(d.VariantValues))
		for _, v := range d.VariantValues {
			aid, err := uuid.Parse(v.AttributeID)
			if err != nil {
				return nil, apierror.Validation("InvalidAttributeID",
					"sku %q: attribute id %q is not a valid uuid", d.SKUCode, v.AttributeID)
			}
			if thisDims[v.AttributeID] {
				return nil, apierror.Validation("DuplicateVariantDimension",
					"sku %q: attribute %s appears twice in its tuple", d.SKUCode, aid)
			}
			thisDims[v.AttributeID] = true

			// Drafts are client-editable, so tuples are re-validated against
			// the registry here and not only at generation time.
			attr, ok := resolved[v.AttributeID]
			if !ok {
				attr, err = s.attrRepo.FindByID(ctx, aid)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, apierror.NotFound("AttributeNotFound",
							"sku %q: attribute %s not found", d.SKUCode, aid)
					}
					return nil, err
				}
				resolved[v.AttributeID] = attr
			}
			if !attr.IsVariant {
				return nil, apierror.Validation("NotAVariantAttribute",
					"sku %q: attribute %q is not flagged as a variant dimension", d.SKUCode, attr.Name)
			}
			if attr.RequiresOptions() && !attr.HasOption(v.Value) {
				return nil, apierror.Validation("InvalidAttributeValue",
					"sku %q: value %q is not one of the declared options of attribute %q",
					d.SKUCode, v.Value, attr.Name)
			}
			values = append(values, model.VariantValue{AttributeID: v.AttributeID, Value: v.Value})
		}

		// Every SKU of a product spans the same dimension set. The first
		// tuple (existing or first draft) fixes it.
		if dimSet == nil {
			dimSet = thisDims
		} else if !sameDimensions(dimSet, thisDims) {
			return nil, apierror.Validation("InconsistentVariantDimensions",
				"sku %q does not span the same variant dimensions as its siblings", d.SKUCode)
		}

		fp := model.VariantFingerprint(values)
		if prior, dup := batchFPs[fp]; dup {
			return nil, apierror.Conflict("DuplicateVariantCombination",
				"sku %q repeats the variant combination of %q", d.SKUCode, prior)
		}
		batchFPs[fp] = d.SKUCode
		if prior, dup := existingFPs[fp]; dup {
			return nil, apierror.Conflict("DuplicateVariantCombination",
				"sku %q repeats the variant combination already held by %q", d.SKUCode, prior)
		}

		status := model.SKUStatusActive
		if d.Quantity == 0 {
			status = model.SKUStatusOutOfStock
		}
		skus = append(skus, model.SKU{
			ProductID:     productID,
			SKUCode:       d.SKUCode,
			VariantValues: values,
			Fingerprint:   fp,
			BasePrice:     d.BasePrice,
			SalePrice:     d.SalePrice,
			DiscountPct:   discountPct(d.BasePrice, d.SalePrice),
			Quantity:      d.Quantity,
			Status:        status,
		})
		addedStock += d.Quantity
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateBatchTx(tx, skus); err != nil {
			return err
		}
		if addedStock != 0 {
			return s.productRepo.AdjustStockTx(tx, productID, addedStock)
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// Pre-checks cover the in-process cases, so a database duplicate
			// here means a concurrent commit won the race.
			return nil, apierror.Conflict("DuplicateSkuCode",
				"a sku in the batch collides with one committed concurrently")
		}
		return nil, txErr
	}

	log.Info().
		Str("product_id", productID.String()).
		Str("product", product.Name).
		Int("skus", len(skus)).
		Int("stock_added", addedStock).
		Msg("variant batch committed")

	out := make([]dto.SKUResponse, 0, len(skus))
	for i := range skus {
		out = append(out, *s.mapSKU(ctx, &skus[i]))
	}
	return out, nil
}

func dimensionSet(values model.VariantValueList) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v.AttributeID] = true
	}
	return set
}

func sameDimensions(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func (s *skuService) mapSKU(ctx context.Context, sku *model.SKU) *dto.SKUResponse {
	resp := &dto.SKUResponse{
		ID:            sku.ID.String(),
		ProductID:     sku.ProductID.String(),
		SKUCode:       sku.SKUCode,
		VariantValues: make([]dto.VariantValueResponse, 0, len(sku.VariantValues)),
		BasePrice:     sku.BasePrice,
		SalePrice:     sku.SalePrice,
		OfferPrice:    sku.OfferPrice,
		DiscountPct:   sku.DiscountPct,
		Quantity:      sku.Quantity,
		ImageID:       sku.ImageID,
		Status:        sku.Status,
	}
	for _, v := range sku.VariantValues {
		resp.VariantValues = append(resp.VariantValues, dto.VariantValueResponse{
			AttributeID: v.AttributeID,
			Value:       v.Value,
		})
	}
	if sku.LotID != nil {
		lid := sku.LotID.String()
		resp.LotID = &lid
	}
	if s.assets != nil && sku.ImageID != nil {
		if url, err := s.assets.ResolveURL(ctx, *sku.ImageID); err == nil && url != "" {
			resp.ImageURL = &url
		}
	}
	return resp
}

func (s *skuService) Get(ctx context.Context, id uuid.UUID) (*dto.SKUResponse, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SkuNotFound", "sku %s not found", id)
		}
		return nil, err
	}
	return s.mapSKU(ctx, sku), nil
}

func (s *skuService) List(ctx context.Context, filter dto.SKUFilter) (*dto.SKUListResponse, error) {
	skus, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.SKUListResponse{
		Data:  make([]dto.SKUResponse, 0, len(skus)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range skus {
		out.Data = append(out.Data, *s.mapSKU(ctx, &skus[i]))
	}
	return out, nil
}

func (s *skuService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSKURequest, changedBy string) (*dto.SKUResponse, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SkuNotFound", "sku %s not found", id)
		}
		return nil, err
	}

	oldBase, oldSale := sku.BasePrice, sku.SalePrice
	priceChanged := false
	if req.BasePrice != nil && !req.BasePrice.Equal(sku.BasePrice) {
		sku.BasePrice = *req.BasePrice
		priceChanged = true
	}
	if req.SalePrice != nil && !req.SalePrice.Equal(sku.SalePrice) {
		sku.SalePrice = *req.SalePrice
		priceChanged = true
	}
	if sku.SalePrice.GreaterThan(sku.BasePrice) {
		return nil, apierror.Validation("SaleAboveBasePrice", "sale price must not exceed base price")
	}
	sku.DiscountPct = discountPct(sku.BasePrice, sku.SalePrice)
	if req.OfferPrice != nil {
		sku.OfferPrice = *req.OfferPrice
	}

	var stockDelta int
	if req.Quantity != nil {
		stockDelta = *req.Quantity - sku.Quantity
		sku.Quantity = *req.Quantity
	}

	if req.LotID != nil {
		lid, err := uuid.Parse(*req.LotID)
		if err != nil {
			return nil, apierror.Validation("InvalidLotID", "lot id %q is not a valid uuid", *req.LotID)
		}
		if _, err := s.lotRepo.FindByID(ctx, lid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("LotNotFound", "lot %s not found", lid)
			}
			return nil, err
		}
		sku.LotID = &lid
	}

	if req.Status != nil {
		sku.Status = *req.Status
	}
	if sku.Quantity == 0 && sku.Status == model.SKUStatusActive {
		sku.Status = model.SKUStatusOutOfStock
	} else if sku.Quantity > 0 && sku.Status == model.SKUStatusOutOfStock {
		sku.Status = model.SKUStatusActive
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, sku); err != nil {
			return err
		}
		if stockDelta != 0 {
			if err := s.productRepo.AdjustStockTx(tx, sku.ProductID, stockDelta); err != nil {
				return err
			}
		}
		if priceChanged {
			return s.historyRepo.CreateTx(tx, &model.PriceHistory{
				SKUID:        sku.ID,
				OldBasePrice: oldBase,
				NewBasePrice: sku.BasePrice,
				OldSalePrice: oldSale,
				NewSalePrice: sku.SalePrice,
				ChangedBy:    changedBy,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.mapSKU(ctx, sku), nil
}

func (s *skuService) Delete(ctx context.Context, id uuid.UUID) error {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("SkuNotFound", "sku %s not found", id)
		}
		return err
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, sku.ID); err != nil {
			return err
		}
		if sku.Quantity != 0 {
			return s.productRepo.AdjustStockTx(tx, sku.ProductID, -sku.Quantity)
		}
		return nil
	})
}

func (s *skuService) Allocate(ctx context.Context, id uuid.UUID, req dto.AllocateSKURequest, actor string) (*dto.SKUResponse, error) {
	sku, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SkuNotFound", "sku %s not found", id)
		}
		return nil, err
	}
	if sku.Status == model.SKUStatusInactive {
		return nil, apierror.Invariant("SkuInactive", "sku %q is inactive", sku.SKUCode)
	}
	if req.Quantity > sku.Quantity {
		return nil, apierror.Invariant("InsufficientSkuQuantity",
			"sku %q has %d unit(s), %d requested", sku.SKUCode, sku.Quantity, req.Quantity)
	}

	sku.Quantity -= req.Quantity
	if sku.Quantity == 0 {
		sku.Status = model.SKUStatusOutOfStock
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, sku); err != nil {
			return err
		}
		return s.productRepo.AdjustStockTx(tx, sku.ProductID, -req.Quantity)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Ledger entry outside the SKU transaction: the lot's own optimistic
	// guard handles concurrency, and a conflict there must not undo the
	// allocation. The entry can be replayed via the lot endpoints.
	if sku.LotID != nil {
		lot, err := s.lotRepo.FindByID(ctx, *sku.LotID)
		if err == nil && lot.Status != model.LotStatusCompleted && req.Quantity <= lot.RemainingQuantity {
			reason := req.Reason
			if reason == "" {
				reason = fmt.Sprintf("allocation of sku %s", sku.SKUCode)
			}
			adjErr := s.lotRepo.AppendAdjustment(ctx, lot, &model.LotAdjustment{
				Type:      model.AdjustmentUsed,
				Quantity:  req.Quantity,
				Reason:    reason,
				Date:      time.Now(),
				CreatedBy: actor,
			})
			if adjErr != nil {
				log.Warn().Err(adjErr).
					Str("sku", sku.SKUCode).
					Str("lot_id", sku.LotID.String()).
					Msg("allocation committed but lot ledger entry failed")
			}
		}
	}
	return s.mapSKU(ctx, sku), nil
}

func (s *skuService) Lookup(ctx context.Context, code string) (*dto.SKULookupResponse, error) {
	sku, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SkuNotFound", "sku %q not found", code)
		}
		return nil, err
	}
	resp := &dto.SKULookupResponse{
		SKUCode:   sku.SKUCode,
		SalePrice: sku.SalePrice,
		Quantity:  sku.Quantity,
		Status:    sku.Status,
	}
	if sku.Product != nil {
		resp.Product = sku.Product.Name
	}
	return resp, nil
}

func (s *skuService) PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SkuNotFound", "sku %s not found", id)
		}
		return nil, err
	}
	history, err := s.historyRepo.ListBySKUID(ctx, id, 100)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceHistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, dto.PriceHistoryResponse{
			ID:           h.ID.String(),
			OldBasePrice: h.OldBasePrice,
			NewBasePrice: h.NewBasePrice,
			OldSalePrice: h.OldSalePrice,
			NewSalePrice: h.NewSalePrice,
			ChangedBy:    h.ChangedBy,
			CreatedAt:    h.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *skuService) ExportXLSX(ctx context.Context, filter dto.SKUFilter) ([]byte, error) {
	filter.Page = 1
	if filter.Limit == 0 {
		filter.Limit = 200
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "SKUs"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"SKU Code", "Product", "Variant", "Base Price", "Sale Price", "Quantity", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for {
		skus, _, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range skus {
			sku := &skus[i]
			product := ""
			if sku.Product == nil {
				if p, err := s.productRepo.FindByID(ctx, sku.ProductID); err == nil {
					product = p.Name
				}
			} else {
				product = sku.Product.Name
			}
			variant := ""
			for j, v := range sku.VariantValues {
				if j > 0 {
					variant += " / "
				}
				variant += v.Value
			}
			base, _ := sku.BasePrice.Float64()
			sale, _ := sku.SalePrice.Float64()
			values := []interface{}{sku.SKUCode, product, variant, base, sale, sku.Quantity, sku.Status}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, err
				}
			}
			row++
		}
		if len(skus) < filter.Limit {
			break
		}
		filter.Page++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
