package model

import "time"

// Cliente
type Client struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	Name    string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Address string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Phone   string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Email   string `gorm:"type:varchar(255);not null" validate:"required,max=255"`

	// Primary contact stored inline; further contacts live in Contactos.
	ContactName     *string `gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	ContactLastname *string `gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	ContactEmail    *string `gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	ContactPhone    *string `gorm:"type:varchar(20)" validate:"omitempty,max=20"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Contacts []Contact `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" validate:"omitempty,dive"`
}

func (Client) TableName() string { return "Cliente" }

// Contactos — contacts owned by a client.
type Contact struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	ClientID int64 `gorm:"not null;index"`

	Name     string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Lastname string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Email    string `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Phone    string `gorm:"type:varchar(20)" validate:"max=20"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Contact) TableName() string { return "Contactos" }
