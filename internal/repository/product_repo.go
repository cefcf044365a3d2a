package repository

import (
	"context"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products, including
// their category assignments and specification attribute values.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error

	// CreateTx and UpdateTx write the product row on the caller's tx so the
	// row and its category/value links commit or roll back together.
	CreateTx(tx *gorm.DB, p *model.Product) error
	UpdateTx(tx *gorm.DB, p *model.Product) error

	// ReplaceCategoriesTx swaps a product's category assignments inside tx.
	ReplaceCategoriesTx(tx *gorm.DB, productID uuid.UUID, categoryIDs []uuid.UUID) error
	// ReplaceAttributeValuesTx swaps a product's specification values inside tx.
	ReplaceAttributeValuesTx(tx *gorm.DB, productID uuid.UUID, values []model.ProductAttributeValue) error
	// DeleteAttributeValuesTx drops specific attribute values across a set
	// of products — used by category re-parenting to prune stale values.
	DeleteAttributeValuesTx(tx *gorm.DB, productIDs []uuid.UUID, attributeIDs []uuid.UUID) error

	// ListByCategoryIDs returns products assigned to ANY of the given nodes.
	ListByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID) ([]model.Product, error)
	CountByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID) (int64, error)

	// AdjustStockTx applies a delta to the denormalized stock aggregate.
	AdjustStockTx(tx *gorm.DB, productID uuid.UUID, delta int) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("AttributeValues").
		Preload("AttributeValues.Attribute").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != "" {
		q = q.Where("id IN (SELECT product_id FROM product_categories WHERE category_id = ?)", filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var products []model.Product
	err := q.Preload("Categories").Preload("AttributeValues").
		Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Categories", "AttributeValues").Save(p).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Categories", "AttributeValues").Create(p).Error
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Categories", "AttributeValues").Save(p).Error
}

func (r *productRepo) ReplaceCategoriesTx(tx *gorm.DB, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	if err := tx.Where("product_id = ?", productID).Delete(&model.ProductCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]model.ProductCategory, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		links = append(links, model.ProductCategory{ProductID: productID, CategoryID: cid})
	}
	return tx.Create(&links).Error
}

func (r *productRepo) ReplaceAttributeValuesTx(tx *gorm.DB, productID uuid.UUID, values []model.ProductAttributeValue) error {
	if err := tx.Where("product_id = ?", productID).Delete(&model.ProductAttributeValue{}).Error; err != nil {
		return err
	}
	for i := range values {
		values[i].ProductID = productID
	}
	if len(values) == 0 {
		return nil
	}
	return tx.Create(&values).Error
}

func (r *productRepo) DeleteAttributeValuesTx(tx *gorm.DB, productIDs []uuid.UUID, attributeIDs []uuid.UUID) error {
	if len(productIDs) == 0 || len(attributeIDs) == 0 {
		return nil
	}
	return tx.Where("product_id IN ? AND attribute_id IN ?", productIDs, attributeIDs).
		Delete(&model.ProductAttributeValue{}).Error
}

func (r *productRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID) ([]model.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("AttributeValues").
		Where("id IN (SELECT DISTINCT product_id FROM product_categories WHERE category_id IN ?)", categoryIDs).
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&model.ProductCategory{}).
		Distinct("product_id").
		Where("category_id IN ?", categoryIDs).
		Count(&total).Error
	return total, err
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, productID uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
