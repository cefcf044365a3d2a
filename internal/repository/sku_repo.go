package repository

import (
	"context"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SKURepository defines the data access contract for SKUs. Batch creation is
// all-or-nothing: the unique indexes on sku_code and
// (product_id, fingerprint) make the database the final arbiter of
// uniqueness, closing the concurrent-commit race window.
type SKURepository interface {
	CreateBatchTx(tx *gorm.DB, skus []model.SKU) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SKU, error)
	FindByCode(ctx context.Context, code string) (*model.SKU, error)
	List(ctx context.Context, filter dto.SKUFilter) ([]model.SKU, int64, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.SKU, error)
	Update(ctx context.Context, s *model.SKU) error
	UpdateTx(tx *gorm.DB, s *model.SKU) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type skuRepo struct{ db *gorm.DB }

func NewSKURepository(db *gorm.DB) SKURepository { return &skuRepo{db: db} }

func (r *skuRepo) CreateBatchTx(tx *gorm.DB, skus []model.SKU) error {
	return tx.Create(&skus).Error
}

func (r *skuRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SKU, error) {
	var s model.SKU
	err := r.db.WithContext(ctx).Preload("Product").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *skuRepo) FindByCode(ctx context.Context, code string) (*model.SKU, error) {
	var s model.SKU
	err := r.db.WithContext(ctx).Preload("Product").Where("sku_code = ?", code).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *skuRepo) List(ctx context.Context, filter dto.SKUFilter) ([]model.SKU, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SKU{})

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var skus []model.SKU
	err := q.Order("sku_code ASC").Limit(filter.Limit).Offset(offset).Find(&skus).Error
	return skus, total, err
}

func (r *skuRepo) ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.SKU, error) {
	var skus []model.SKU
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("sku_code ASC").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) Update(ctx context.Context, s *model.SKU) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *skuRepo) UpdateTx(tx *gorm.DB, s *model.SKU) error {
	return tx.Save(s).Error
}

func (r *skuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SKU{}, "id = ?", id).Error
}

func (r *skuRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.SKU{}, "id = ?", id).Error
}

func (r *skuRepo) DB() *gorm.DB { return r.db }
