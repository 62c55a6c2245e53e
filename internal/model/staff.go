package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Personal
type Staff struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	Name       string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Lastname   string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Profession string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Salary     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Email      string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Address    string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Phone      string          `gorm:"type:varchar(255);not null" validate:"required,max=255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Staff) TableName() string { return "Personal" }

func (s *Staff) BeforeSave(*gorm.DB) error {
	s.Salary = s.Salary.Round(MoneyScale)
	return nil
}
