package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/losalerces/backend/internal/apperr"
)

// gormStore holds the CRUD shared by the catalog repositories.
// Associations are never written implicitly.
type gormStore[T any] struct {
	db     *gorm.DB
	entity string
}

func (s gormStore[T]) create(ctx context.Context, v *T) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return translateError(s.entity, err)
	}
	return nil
}

func (s gormStore[T]) get(ctx context.Context, db *gorm.DB, id int64) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(s.entity, id)
		}
		return nil, translateError(s.entity, err)
	}
	return &v, nil
}

func (s gormStore[T]) exists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translateError(s.entity, err)
	}
	return n > 0, nil
}

// update replaces every column of row id except created_at.
func (s gormStore[T]) update(ctx context.Context, id int64, v *T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(s.entity, id)
		}
		if err := tx.Omit("created_at", clause.Associations).Save(v).Error; err != nil {
			return translateError(s.entity, err)
		}
		return tx.First(v, "id = ?", id).Error
	})
}

func (s gormStore[T]) delete(ctx context.Context, tx *gorm.DB, id int64) error {
	res := tx.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translateError(s.entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(s.entity, id)
	}
	return nil
}

func (s gormStore[T]) list(ctx context.Context, limit, offset int) (Page[T], error) {
	limit, offset = normalizePaging(limit, offset)

	var (
		items []T
		total int64
	)
	q := s.db.WithContext(ctx).Model(new(T))
	if err := q.Count(&total).Error; err != nil {
		return Page[T]{}, translateError(s.entity, err)
	}
	if err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return Page[T]{}, translateError(s.entity, err)
	}
	return newPage(items, total, limit, offset), nil
}
