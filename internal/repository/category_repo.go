package repository

import (
	"context"

	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository defines data access for the taxonomy forest.
// Trees are small; ListAll materializes every node so the service layer can
// compute ancestor chains and effective attribute sets in memory.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category, links []model.CategoryAttribute) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListAll(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error

	// UpdateTx writes the node row on the caller's tx so field edits and the
	// attribute-link swap commit or roll back together.
	UpdateTx(tx *gorm.DB, c *model.Category) error

	// ReplaceAttributeLinksTx swaps a node's own attribute set inside tx.
	ReplaceAttributeLinksTx(tx *gorm.DB, categoryID uuid.UUID, links []model.CategoryAttribute) error
	// SetParentTx re-parents a node inside tx.
	SetParentTx(tx *gorm.DB, categoryID uuid.UUID, newParentID *uuid.UUID) error
	// DeleteTx removes the node and its attribute links inside tx.
	DeleteTx(tx *gorm.DB, categoryID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category, links []model.CategoryAttribute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].CategoryID = c.ID
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Preload("Attributes").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	err := r.db.WithContext(ctx).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("position ASC, name ASC").
		Find(&list).Error
	return list, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Omit("Attributes").Save(c).Error
}

func (r *categoryRepo) UpdateTx(tx *gorm.DB, c *model.Category) error {
	return tx.Omit("Attributes").Save(c).Error
}

func (r *categoryRepo) ReplaceAttributeLinksTx(tx *gorm.DB, categoryID uuid.UUID, links []model.CategoryAttribute) error {
	if err := tx.Where("category_id = ?", categoryID).Delete(&model.CategoryAttribute{}).Error; err != nil {
		return err
	}
	for i := range links {
		links[i].CategoryID = categoryID
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

func (r *categoryRepo) SetParentTx(tx *gorm.DB, categoryID uuid.UUID, newParentID *uuid.UUID) error {
	return tx.Model(&model.Category{}).Where("id = ?", categoryID).
		Update("parent_id", newParentID).Error
}

func (r *categoryRepo) DeleteTx(tx *gorm.DB, categoryID uuid.UUID) error {
	if err := tx.Where("category_id = ?", categoryID).Delete(&model.CategoryAttribute{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Category{}, "id = ?", categoryID).Error
}

func (r *categoryRepo) DB() *gorm.DB { return r.db }
