package repository

import (
	"context"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeRepository defines the data access contract for attributes.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type AttributeRepository interface {
	Create(ctx context.Context, a *model.Attribute) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attribute, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Attribute, error)
	FindBySlug(ctx context.Context, slug string) (*model.Attribute, error)
	List(ctx context.Context, filter dto.AttributeFilter) ([]model.Attribute, int64, error)
	Update(ctx context.Context, a *model.Attribute) error
}

type attributeRepo struct{ db *gorm.DB }

func NewAttributeRepository(db *gorm.DB) AttributeRepository { return &attributeRepo{db: db} }

func (r *attributeRepo) Create(ctx context.Context, a *model.Attribute) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attributeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Attribute, error) {
	var a model.Attribute
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attributeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Attribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var attrs []model.Attribute
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&attrs).Error
	return attrs, err
}

func (r *attributeRepo) FindBySlug(ctx context.Context, slug string) (*model.Attribute, error) {
	var a model.Attribute
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attributeRepo) List(ctx context.Context, filter dto.AttributeFilter) ([]model.Attribute, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Attribute{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ValueType != "" {
		q = q.Where("value_type = ?", filter.ValueType)
	}
	if filter.IsVariant != nil {
		q = q.Where("is_variant = ?", *filter.IsVariant)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var attrs []model.Attribute
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&attrs).Error
	return attrs, total, err
}

func (r *attributeRepo) Update(ctx context.Context, a *model.Attribute) error {
	return r.db.WithContext(ctx).Save(a).Error
}
