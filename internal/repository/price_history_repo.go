package repository

import (
	"context"

	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceHistoryRepository records and lists SKU price changes.
type PriceHistoryRepository interface {
	Create(ctx context.Context, h *model.PriceHistory) error
	CreateTx(tx *gorm.DB, h *model.PriceHistory) error
	ListBySKUID(ctx context.Context, skuID uuid.UUID, limit int) ([]model.PriceHistory, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) Create(ctx context.Context, h *model.PriceHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *priceHistoryRepo) CreateTx(tx *gorm.DB, h *model.PriceHistory) error {
	return tx.Create(h).Error
}

func (r *priceHistoryRepo) ListBySKUID(ctx context.Context, skuID uuid.UUID, limit int) ([]model.PriceHistory, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var list []model.PriceHistory
	err := r.db.WithContext(ctx).Where("sku_id = ?", skuID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
