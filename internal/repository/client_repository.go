package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/model"
)

type ClientRepository interface {
	// Create inserts the client and any Contacts it carries.
	Create(ctx context.Context, c *model.Client) error
	// GetByID returns the client with its contacts loaded.
	GetByID(ctx context.Context, id int64) (*model.Client, error)
	// Update replaces the client's own columns; contacts are managed separately.
	Update(ctx context.Context, c *model.Client) error
	// Delete removes the client together with its quotations and contacts.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) (Page[model.Client], error)

	AddContact(ctx context.Context, clientID int64, contact *model.Contact) error
	ListContacts(ctx context.Context, clientID int64) ([]model.Contact, error)
	RemoveContact(ctx context.Context, clientID, contactID int64) error
}

type GormClientRepository struct {
	db    *gorm.DB
	store gormStore[model.Client]
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db, store: gormStore[model.Client]{db: db, entity: "Client"}}
}

func (r *GormClientRepository) Create(ctx context.Context, c *model.Client) error {
	if err := validateEntity("Client", c); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return translateError("Client", err)
		}
		for i := range c.Contacts {
			c.Contacts[i].ID = 0
			c.Contacts[i].ClientID = c.ID
			if err := tx.Create(&c.Contacts[i]).Error; err != nil {
				return translateError("Contact", err)
			}
		}
		return nil
	})
}

func (r *GormClientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client", id)
		}
		return nil, translateError("Client", err)
	}
	return &c, nil
}

func (r *GormClientRepository) Update(ctx context.Context, c *model.Client) error {
	if err := validateEntity("Client", c); err != nil {
		return err
	}
	return r.store.update(ctx, c.ID, c)
}

func (r *GormClientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.store.exists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Client", id)
		}

		quotations := tx.Model(&model.Quotation{}).Select("id").Where("client_id = ?", id)
		if err := tx.Where("quotation_id IN (?)", quotations).Delete(&model.ProductQuotation{}).Error; err != nil {
			return translateError("ProductQuotation", err)
		}
		if err := tx.Where("quotation_id IN (?)", quotations).Delete(&model.StaffQuotation{}).Error; err != nil {
			return translateError("StaffQuotation", err)
		}
		if err := tx.Where("client_id = ?", id).Delete(&model.Quotation{}).Error; err != nil {
			return translateError("Quotation", err)
		}
		if err := tx.Where("client_id = ?", id).Delete(&model.Contact{}).Error; err != nil {
			return translateError("Contact", err)
		}
		return r.store.delete(ctx, tx, id)
	})
}

func (r *GormClientRepository) List(ctx context.Context, limit, offset int) (Page[model.Client], error) {
	return r.store.list(ctx, limit, offset)
}

func (r *GormClientRepository) AddContact(ctx context.Context, clientID int64, contact *model.Contact) error {
	contact.ClientID = clientID
	if err := validateEntity("Contact", contact); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.store.exists(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Client", clientID)
		}
		if err := tx.Create(contact).Error; err != nil {
			return translateError("Contact", err)
		}
		return nil
	})
}

func (r *GormClientRepository) ListContacts(ctx context.Context, clientID int64) ([]model.Contact, error) {
	ok, err := r.store.exists(ctx, r.db, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Client", clientID)
	}
	var contacts []model.Contact
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, translateError("Contact", err)
	}
	return contacts, nil
}

func (r *GormClientRepository) RemoveContact(ctx context.Context, clientID, contactID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND client_id = ?", contactID, clientID).Delete(&model.Contact{})
	if res.Error != nil {
		return translateError("Contact", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Contact", contactID)
	}
	return nil
}
