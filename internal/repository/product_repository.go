package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// Full replacement of every column but id and created_at.
	Update(ctx context.Context, p *model.Product) error
	// Restricted while any quotation line references the product.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) (Page[model.Product], error)
}

type GormProductRepository struct {
	db    *gorm.DB
	store gormStore[model.Product]
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, store: gormStore[model.Product]{db: db, entity: "Product"}}
}

func validateProduct(p *model.Product) error {
	if err := validateEntity("Product", p); err != nil {
		return err
	}
	return checkMoney("Product", "Price", p.Price)
}

func (r *GormProductRepository) Create(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return r.store.create(ctx, p)
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.store.get(ctx, r.db, id)
}

func (r *GormProductRepository) Update(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return r.store.update(ctx, p.ID, p)
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.ProductQuotation{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return translateError("Product", err)
		}
		if refs > 0 {
			return apperr.ConstraintViolation("Product", "ID", "restrict", "product is referenced by quotation lines")
		}
		return r.store.delete(ctx, tx, id)
	})
}

func (r *GormProductRepository) List(ctx context.Context, limit, offset int) (Page[model.Product], error) {
	return r.store.list(ctx, limit, offset)
}
