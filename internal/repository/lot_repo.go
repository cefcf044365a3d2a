package repository

import (
	"context"
	"errors"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrLedgerVersionConflict is returned when the optimistic version guard on a
// lot fails — another adjustment committed between read and write.
var ErrLedgerVersionConflict = errors.New("lot ledger version conflict")

// LotRepository defines data access for lots and their adjustment ledger.
// Every ledger mutation recomputes remaining_quantity from the entries inside
// the same transaction, guarded by the lot's version column: a lost-update
// overwrite is impossible, a concurrent writer gets ErrLedgerVersionConflict.
type LotRepository interface {
	Create(ctx context.Context, l *model.Lot) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lot, error)
	FindByNumber(ctx context.Context, lotNumber string) (*model.Lot, error)
	List(ctx context.Context, filter dto.LotFilter) ([]model.Lot, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// AppendAdjustment inserts the entry and recomputes the balance against
	// the expected version.
	AppendAdjustment(ctx context.Context, lot *model.Lot, adj *model.LotAdjustment) error
	// RemoveAdjustment deletes the entry and recomputes the balance against
	// the expected version.
	RemoveAdjustment(ctx context.Context, lot *model.Lot, adjustmentID uuid.UUID) error
	FindAdjustment(ctx context.Context, lotID, adjustmentID uuid.UUID) (*model.LotAdjustment, error)

	CountBySupplierID(ctx context.Context, supplierID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type lotRepo struct{ db *gorm.DB }

func NewLotRepository(db *gorm.DB) LotRepository { return &lotRepo{db: db} }

func (r *lotRepo) Create(ctx context.Context, l *model.Lot) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *lotRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lot, error) {
	var l model.Lot
	err := r.db.WithContext(ctx).
		Preload("Adjustments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lotRepo) FindByNumber(ctx context.Context, lotNumber string) (*model.Lot, error) {
	var l model.Lot
	err := r.db.WithContext(ctx).Where("lot_number = ?", lotNumber).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lotRepo) List(ctx context.Context, filter dto.LotFilter) ([]model.Lot, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Lot{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var lots []model.Lot
	err := q.Preload("Adjustments").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&lots).Error
	return lots, total, err
}

func (r *lotRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Lot{}).Where("id = ?", id).
		Update("status", status).Error
}

// recomputeStmt derives remaining_quantity from the ledger itself rather than
// applying a delta, so the stored balance can never drift from the entries.
const recomputeStmt = `
UPDATE lots
   SET remaining_quantity = quantity - (
         SELECT COALESCE(SUM(quantity), 0) FROM lot_adjustments WHERE lot_id = ?
       ),
       version = version + 1,
       updated_at = NOW()
 WHERE id = ? AND version = ?`

func (r *lotRepo) AppendAdjustment(ctx context.Context, lot *model.Lot, adj *model.LotAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adj.LotID = lot.ID
		if err := tx.Create(adj).Error; err != nil {
			return err
		}
		res := tx.Exec(recomputeStmt, lot.ID, lot.ID, lot.Version)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLedgerVersionConflict
		}
		return nil
	})
}

func (r *lotRepo) RemoveAdjustment(ctx context.Context, lot *model.Lot, adjustmentID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.LotAdjustment{}, "id = ? AND lot_id = ?", adjustmentID, lot.ID).Error; err != nil {
			return err
		}
		res := tx.Exec(recomputeStmt, lot.ID, lot.ID, lot.Version)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLedgerVersionConflict
		}
		return nil
	})
}

func (r *lotRepo) FindAdjustment(ctx context.Context, lotID, adjustmentID uuid.UUID) (*model.LotAdjustment, error) {
	var adj model.LotAdjustment
	err := r.db.WithContext(ctx).
		Where("id = ? AND lot_id = ?", adjustmentID, lotID).First(&adj).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *lotRepo) CountBySupplierID(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Lot{}).
		Where("supplier_id = ?", supplierID).Count(&total).Error
	return total, err
}

func (r *lotRepo) DB() *gorm.DB { return r.db }
