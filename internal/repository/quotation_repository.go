package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/model"
)

// ProductLine is one requested product row of a quotation.
type ProductLine struct {
	ProductID int64
	Quantity  int `validate:"gt=0"`
}

type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	GetByID(ctx context.Context, id int64) (*model.Quotation, error)
	Update(ctx context.Context, q *model.Quotation) error
	// Delete removes the quotation and every product and staff line it owns.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) (Page[model.Quotation], error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Quotation, error)

	// CreateWithLines inserts the quotation and its lines atomically.
	CreateWithLines(ctx context.Context, q *model.Quotation, products []ProductLine, staffIDs []int64) error
	// UpdateWithLines replaces the quotation columns and its whole line set atomically.
	UpdateWithLines(ctx context.Context, q *model.Quotation, products []ProductLine, staffIDs []int64) error
	// GetWithLines loads lines in insertion order with Product and Staff resolved.
	GetWithLines(ctx context.Context, id int64) (*model.Quotation, error)

	AddProductLine(ctx context.Context, quotationID int64, line ProductLine) error
	RemoveProductLine(ctx context.Context, quotationID, productID int64) error
	AddStaffLine(ctx context.Context, quotationID, staffID int64) error
	RemoveStaffLine(ctx context.Context, quotationID, staffID int64) error
}

type GormQuotationRepository struct {
	db    *gorm.DB
	store gormStore[model.Quotation]
}

func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db, store: gormStore[model.Quotation]{db: db, entity: "Quotation"}}
}

func validateQuotation(q *model.Quotation) error {
	if err := validateEntity("Quotation", q); err != nil {
		return err
	}
	if time.Time(q.QuotationDate).IsZero() {
		return apperr.ConstraintViolation("Quotation", "QuotationDate", "required", "quotation date is required")
	}
	return nil
}

func validateLines(products []ProductLine, staffIDs []int64) error {
	seenProducts := make(map[int64]struct{}, len(products))
	for i := range products {
		if err := validateEntity("ProductQuotation", &products[i]); err != nil {
			return err
		}
		if _, dup := seenProducts[products[i].ProductID]; dup {
			return apperr.ConstraintViolation("ProductQuotation", "ProductID", "unique",
				fmt.Sprintf("product %d listed twice", products[i].ProductID))
		}
		seenProducts[products[i].ProductID] = struct{}{}
	}
	seenStaff := make(map[int64]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		if _, dup := seenStaff[id]; dup {
			return apperr.ConstraintViolation("StaffQuotation", "StaffID", "unique",
				fmt.Sprintf("staff %d listed twice", id))
		}
		seenStaff[id] = struct{}{}
	}
	return nil
}

// requireRow turns a missing referenced row into a foreign key violation on entity.field.
func requireRow(tx *gorm.DB, table any, id int64, entity, field string) error {
	var n int64
	if err := tx.Model(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return translateError(entity, err)
	}
	if n == 0 {
		return apperr.ConstraintViolation(entity, field, "foreign_key", fmt.Sprintf("%s %d does not exist", field, id))
	}
	return nil
}

func (r *GormQuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	return r.CreateWithLines(ctx, q, nil, nil)
}

func (r *GormQuotationRepository) CreateWithLines(ctx context.Context, q *model.Quotation, products []ProductLine, staffIDs []int64) error {
	if err := validateQuotation(q); err != nil {
		return err
	}
	if err := validateLines(products, staffIDs); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &model.Client{}, q.ClientID, "Quotation", "ClientID"); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return translateError("Quotation", err)
		}
		return insertLines(tx, q.ID, products, staffIDs, 0, 0)
	})
}

func insertLines(tx *gorm.DB, quotationID int64, products []ProductLine, staffIDs []int64, productPos, staffPos int) error {
	for i, p := range products {
		if err := requireRow(tx, &model.Product{}, p.ProductID, "ProductQuotation", "ProductID"); err != nil {
			return err
		}
		row := model.ProductQuotation{
			QuotationID: quotationID,
			ProductID:   p.ProductID,
			Quantity:    p.Quantity,
			Position:    productPos + i,
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return translateError("ProductQuotation", err)
		}
	}
	for i, staffID := range staffIDs {
		if err := requireRow(tx, &model.Staff{}, staffID, "StaffQuotation", "StaffID"); err != nil {
			return err
		}
		row := model.StaffQuotation{
			QuotationID: quotationID,
			StaffID:     staffID,
			Position:    staffPos + i,
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return translateError("StaffQuotation", err)
		}
	}
	return nil
}

func (r *GormQuotationRepository) GetByID(ctx context.Context, id int64) (*model.Quotation, error) {
	return r.store.get(ctx, r.db, id)
}

func (r *GormQuotationRepository) GetWithLines(ctx context.Context, id int64) (*model.Quotation, error) {
	var q model.Quotation
	err := r.db.WithContext(ctx).
		Preload("ProductLines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, product_id ASC") }).
		Preload("ProductLines.Product").
		Preload("StaffLines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, staff_id ASC") }).
		Preload("StaffLines.Staff").
		First(&q, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Quotation", id)
		}
		return nil, translateError("Quotation", err)
	}
	return &q, nil
}

func (r *GormQuotationRepository) Update(ctx context.Context, q *model.Quotation) error {
	if err := validateQuotation(q); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.updateColumns(ctx, tx, q)
	})
}

func (r *GormQuotationRepository) updateColumns(ctx context.Context, tx *gorm.DB, q *model.Quotation) error {
	ok, err := r.store.exists(ctx, tx, q.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Quotation", q.ID)
	}
	if err := requireRow(tx, &model.Client{}, q.ClientID, "Quotation", "ClientID"); err != nil {
		return err
	}
	if err := tx.Omit("created_at", clause.Associations).Save(q).Error; err != nil {
		return translateError("Quotation", err)
	}
	return nil
}

func (r *GormQuotationRepository) UpdateWithLines(ctx context.Context, q *model.Quotation, products []ProductLine, staffIDs []int64) error {
	if err := validateQuotation(q); err != nil {
		return err
	}
	if err := validateLines(products, staffIDs); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateColumns(ctx, tx, q); err != nil {
			return err
		}
		if err := deleteLines(tx, q.ID); err != nil {
			return err
		}
		return insertLines(tx, q.ID, products, staffIDs, 0, 0)
	})
}

func deleteLines(tx *gorm.DB, quotationID int64) error {
	if err := tx.Where("quotation_id = ?", quotationID).Delete(&model.ProductQuotation{}).Error; err != nil {
		return translateError("ProductQuotation", err)
	}
	if err := tx.Where("quotation_id = ?", quotationID).Delete(&model.StaffQuotation{}).Error; err != nil {
		return translateError("StaffQuotation", err)
	}
	return nil
}

func (r *GormQuotationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.store.exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Quotation", id)
		}
		if err := deleteLines(tx, id); err != nil {
			return err
		}
		return r.store.delete(ctx, tx, id)
	})
}

func (r *GormQuotationRepository) List(ctx context.Context, limit, offset int) (Page[model.Quotation], error) {
	return r.store.list(ctx, limit, offset)
}

func (r *GormQuotationRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Quotation, error) {
	var qs []model.Quotation
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id ASC").Find(&qs).Error; err != nil {
		return nil, translateError("Quotation", err)
	}
	return qs, nil
}

// nextPosition returns one past the highest position used in table for the quotation.
func nextPosition(tx *gorm.DB, table any, quotationID int64) (int, error) {
	var last int
	row := tx.Model(table).Where("quotation_id = ?", quotationID).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (r *GormQuotationRepository) addLines(ctx context.Context, quotationID int64, products []ProductLine, staffIDs []int64) error {
	if err := validateLines(products, staffIDs); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.store.exists(ctx, tx, quotationID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Quotation", quotationID)
		}
		productPos, err := nextPosition(tx, &model.ProductQuotation{}, quotationID)
		if err != nil {
			return translateError("ProductQuotation", err)
		}
		staffPos, err := nextPosition(tx, &model.StaffQuotation{}, quotationID)
		if err != nil {
			return translateError("StaffQuotation", err)
		}
		return insertLines(tx, quotationID, products, staffIDs, productPos, staffPos)
	})
}

func (r *GormQuotationRepository) AddProductLine(ctx context.Context, quotationID int64, line ProductLine) error {
	return r.addLines(ctx, quotationID, []ProductLine{line}, nil)
}

func (r *GormQuotationRepository) AddStaffLine(ctx context.Context, quotationID, staffID int64) error {
	return r.addLines(ctx, quotationID, nil, []int64{staffID})
}

func (r *GormQuotationRepository) RemoveProductLine(ctx context.Context, quotationID, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("quotation_id = ? AND product_id = ?", quotationID, productID).
		Delete(&model.ProductQuotation{})
	if res.Error != nil {
		return translateError("ProductQuotation", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("ProductQuotation", fmt.Sprintf("%d/%d", quotationID, productID))
	}
	return nil
}

func (r *GormQuotationRepository) RemoveStaffLine(ctx context.Context, quotationID, staffID int64) error {
	res := r.db.WithContext(ctx).
		Where("quotation_id = ? AND staff_id = ?", quotationID, staffID).
		Delete(&model.StaffQuotation{})
	if res.Error != nil {
		return translateError("StaffQuotation", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("StaffQuotation", fmt.Sprintf("%d/%d", quotationID, staffID))
	}
	return nil
}
