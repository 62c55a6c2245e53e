package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Productos
type Product struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	Name  string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Note  string          `gorm:"type:varchar(255)" validate:"max=255"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Product) TableName() string { return "Productos" }

func (p *Product) BeforeSave(*gorm.DB) error {
	p.Price = p.Price.Round(MoneyScale)
	return nil
}
