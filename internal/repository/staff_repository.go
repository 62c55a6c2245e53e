package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/model"
)

type StaffRepository interface {
	Create(ctx context.Context, s *model.Staff) error
	GetByID(ctx context.Context, id int64) (*model.Staff, error)
	// Full replacement of every column but id and created_at.
	Update(ctx context.Context, s *model.Staff) error
	// Restricted while any quotation line references the staff member.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) (Page[model.Staff], error)
}

type GormStaffRepository struct {
	db    *gorm.DB
	store gormStore[model.Staff]
}

func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db, store: gormStore[model.Staff]{db: db, entity: "Staff"}}
}

func validateStaff(s *model.Staff) error {
	if err := validateEntity("Staff", s); err != nil {
		return err
	}
	return checkMoney("Staff", "Salary", s.Salary)
}

func (r *GormStaffRepository) Create(ctx context.Context, s *model.Staff) error {
	if err := validateStaff(s); err != nil {
		return err
	}
	return r.store.create(ctx, s)
}

func (r *GormStaffRepository) GetByID(ctx context.Context, id int64) (*model.Staff, error) {
	return r.store.get(ctx, r.db, id)
}

func (r *GormStaffRepository) Update(ctx context.Context, s *model.Staff) error {
	if err := validateStaff(s); err != nil {
		return err
	}
	return r.store.update(ctx, s.ID, s)
}

func (r *GormStaffRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.StaffQuotation{}).Where("staff_id = ?", id).Count(&refs).Error; err != nil {
			return translateError("Staff", err)
		}
		if refs > 0 {
			return apperr.ConstraintViolation("Staff", "ID", "restrict", "staff member is referenced by quotation lines")
		}
		return r.store.delete(ctx, tx, id)
	})
}

func (r *GormStaffRepository) List(ctx context.Context, limit, offset int) (Page[model.Staff], error) {
	return r.store.list(ctx, limit, offset)
}
