package service

import (
	"context"
	"errors"
	"time"

	"blendcatalog/internal/apierror"
	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"
	"blendcatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LotReportRenderer renders a printable summary of a lot and its ledger.
type LotReportRenderer interface {
	LotReport(lot dto.LotResponse, supplierName string) ([]byte, error)
}

// LotService defines business operations for inbound inventory lots and their
// append-only adjustment ledger.
type LotService interface {
	Create(ctx context.Context, req dto.CreateLotRequest, createdBy string) (*dto.LotResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.LotResponse, error)
	List(ctx context.Context, filter dto.LotFilter) (*dto.LotListResponse, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.LotResponse, error)
	AppendAdjustment(ctx context.Context, id uuid.UUID, req dto.AppendAdjustmentRequest, createdBy string) (*dto.LotResponse, error)
	RemoveAdjustment(ctx context.Context, id, adjustmentID uuid.UUID) (*dto.LotResponse, error)
	Report(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type lotService struct {
	repo         repository.LotRepository
	supplierRepo repository.SupplierRepository
	renderer     LotReportRenderer
}

func NewLotService(
	repo repository.LotRepository,
	supplierRepo repository.SupplierRepository,
	renderer LotReportRenderer,
) LotService {
	return &lotService{repo: repo, supplierRepo: supplierRepo, renderer: renderer}
}

func mapLot(l *model.Lot) *dto.LotResponse {
	resp := &dto.LotResponse{
		ID:                l.ID.String(),
		LotNumber:         l.LotNumber,
		Type:              l.Type,
		BasePrice:         l.BasePrice,
		Quantity:          l.Quantity,
		RemainingQuantity: l.RemainingQuantity,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		Status:            l.Status,
		Adjustments:       make([]dto.LotAdjustmentResponse, 0, len(l.Adjustments)),
	}
	if l.SupplierID != nil {
		sid := l.SupplierID.String()
		resp.SupplierID = &sid
	}
	for _, a := range l.Adjustments {
		resp.Adjustments = append(resp.Adjustments, dto.LotAdjustmentResponse{
			ID:        a.ID.String(),
			Type:      a.Type,
			Quantity:  a.Quantity,
			Reason:    a.Reason,
			Date:      a.Date,
			CreatedBy: a.CreatedBy,
		})
	}
	return resp
}

func (s *lotService) Create(ctx context.Context, req dto.CreateLotRequest, createdBy string) (*dto.LotResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.Validation("NonPositiveQuantity", "lot quantity must be positive")
	}

	var supplierID *uuid.UUID
	switch req.Type {
	case model.LotTypeSupplier:
		if req.SupplierID == nil {
			return nil, apierror.Validation("SupplierRequired",
				"supplier lots must reference a supplier")
		}
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apierror.Validation("InvalidSupplierID", "supplier id %q is not a valid uuid", *req.SupplierID)
		}
		if _, err := s.supplierRepo.FindByID(ctx, sid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("SupplierNotFound", "supplier %s not found", sid)
			}
			return nil, err
		}
		supplierID = &sid
	case model.LotTypeSelfManufacture:
		if req.SupplierID != nil {
			return nil, apierror.Validation("SupplierNotAllowed",
				"self-manufactured lots cannot reference a supplier")
		}
	}

	l := &model.Lot{
		LotNumber:         req.LotNumber,
		Type:              req.Type,
		SupplierID:        supplierID,
		BasePrice:         req.BasePrice,
		Quantity:          req.Quantity,
		RemainingQuantity: req.Quantity,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            model.LotStatusActive,
		CreatedBy:         createdBy,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("DuplicateLotNumber",
				"a lot numbered %q already exists", req.LotNumber)
		}
		return nil, err
	}
	return mapLot(l), nil
}

func (s *lotService) find(ctx context.Context, id uuid.UUID) (*model.Lot, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("LotNotFound", "lot %s not found", id)
		}
		return nil, err
	}
	return l, nil
}

func (s *lotService) Get(ctx context.Context, id uuid.UUID) (*dto.LotResponse, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapLot(l), nil
}

func (s *lotService) List(ctx context.Context, filter dto.LotFilter) (*dto.LotListResponse, error) {
	lots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.LotListResponse{
		Data:  make([]dto.LotResponse, 0, len(lots)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range lots {
		out.Data = append(out.Data, *mapLot(&lots[i]))
	}
	return out, nil
}

func (s *lotService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.LotResponse, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	// COMPLETED is terminal: the ledger freezes with it.
	if l.Status == model.LotStatusCompleted && status != model.LotStatusCompleted {
		return nil, apierror.Invariant("LotCompleted",
			"lot %q is completed and cannot be reopened", l.LotNumber)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *lotService) AppendAdjustment(ctx context.Context, id uuid.UUID, req dto.AppendAdjustmentRequest, createdBy string) (*dto.LotResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.Validation("NonPositiveQuantity",
			"adjustment quantity must be positive")
	}

	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == model.LotStatusCompleted {
		return nil, apierror.Invariant("LotCompleted",
			"lot %q is completed; its ledger is frozen", l.LotNumber)
	}
	if req.Quantity > l.RemainingQuantity {
		return nil, apierror.Invariant("InsufficientRemaining",
			"lot %q has %d unit(s) remaining, adjustment of %d rejected",
			l.LotNumber, l.RemainingQuantity, req.Quantity)
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	adj := &model.LotAdjustment{
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Date:      date,
		CreatedBy: createdBy,
	}
	if err := s.repo.AppendAdjustment(ctx, l, adj); err != nil {
		if errors.Is(err, repository.ErrLedgerVersionConflict) {
			return nil, apierror.Conflict("ConcurrentLedgerUpdate",
				"lot %q was adjusted concurrently; re-read and retry", l.LotNumber)
		}
		return nil, err
	}

	log.Info().
		Str("lot", l.LotNumber).
		Str("type", adj.Type).
		Int("quantity", adj.Quantity).
		Msg("lot adjustment appended")

	return s.Get(ctx, id)
}

func (s *lotService) RemoveAdjustment(ctx context.Context, id, adjustmentID uuid.UUID) (*dto.LotResponse, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == model.LotStatusCompleted {
		return nil, apierror.Invariant("LotCompleted",
			"lot %q is completed; its ledger is frozen", l.LotNumber)
	}
	if _, err := s.repo.FindAdjustment(ctx, id, adjustmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("AdjustmentNotFound",
				"adjustment %s not found on lot %q", adjustmentID, l.LotNumber)
		}
		return nil, err
	}
	if err := s.repo.RemoveAdjustment(ctx, l, adjustmentID); err != nil {
		if errors.Is(err, repository.ErrLedgerVersionConflict) {
			return nil, apierror.Conflict("ConcurrentLedgerUpdate",
				"lot %q was adjusted concurrently; re-read and retry", l.LotNumber)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *lotService) Report(ctx context.Context, id uuid.UUID) ([]byte, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	supplierName := ""
	if l.SupplierID != nil {
		if sup, err := s.supplierRepo.FindByID(ctx, *l.SupplierID); err == nil {
			supplierName = sup.Name
		}
	}
	return s.renderer.LotReport(*mapLot(l), supplierName)
}
