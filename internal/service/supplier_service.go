package service

import (
	"context"
	"errors"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierService defines CRUD operations for the supplier registry.
type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	repo    repository.SupplierRepository
	lotRepo repository.LotRepository
}

func NewSupplierService(repo repository.SupplierRepository, lotRepo repository.LotRepository) SupplierService {
	return &supplierService{repo: repo, lotRepo: lotRepo}
}

func mapSupplier(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		TaxID:   s.TaxID,
		Phone:   s.Phone,
		Email:   s.Email,
		Address: s.Address,
		Active:  s.Active,
	}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateSupplierName",
				"a supplier named %q already exists", req.Name)
		}
		return nil, err
	}
	return mapSupplier(sup), nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SupplierNotFound", "supplier %s not found", id)
		}
		return nil, err
	}
	return mapSupplier(sup), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *mapSupplier(&suppliers[i]))
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("SupplierNotFound", "supplier %s not found", id)
		}
		return nil, err
	}
	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.TaxID != nil {
		sup.TaxID = req.TaxID
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if req.Active != nil {
		sup.Active = *req.Active
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateSupplierName",
				"a supplier named %q already exists", sup.Name)
		}
		return nil, err
	}
	return mapSupplier(sup), nil
}

func (s *supplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("SupplierNotFound", "supplier %s not found", id)
		}
		return err
	}
	refs, err := s.lotRepo.CountBySupplierID(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apierror.Dependency("ReferencedByLots",
			"supplier %s is referenced by %d lot(s)", id, refs)
	}
	return s.repo.Delete(ctx, id)
}
