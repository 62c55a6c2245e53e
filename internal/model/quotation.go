package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Cotizacion
type Quotation struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	ClientID int64 `gorm:"not null;index" validate:"required"`

	// Date only, no time component.
	QuotationDate datatypes.Date `gorm:"type:date;not null"`

	Name              string `gorm:"type:text;not null" validate:"required"`
	QuantityOfProduct string `gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Client       *Client            `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" validate:"-"`
	ProductLines []ProductQuotation `gorm:"foreignKey:QuotationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" validate:"-"`
	StaffLines   []StaffQuotation   `gorm:"foreignKey:QuotationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" validate:"-"`
}

func (Quotation) TableName() string { return "Cotizacion" }

// Total sums price × quantity over the product lines whose Product is loaded.
func (q *Quotation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range q.ProductLines {
		if line.Product == nil {
			continue
		}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(MoneyScale)
}

// ProductoCotizacion — quotation ↔ product with quantity (composite PK).
type ProductQuotation struct {
	QuotationID int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID   int64 `gorm:"primaryKey;autoIncrement:false;index"`

	Quantity int `gorm:"not null" validate:"gt=0"`

	// Insertion order inside the quotation.
	Position int `gorm:"not null;default:0"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" validate:"-"`
}

func (ProductQuotation) TableName() string { return "ProductoCotizacion" }

// PersonalCotizacion — quotation ↔ staff (composite PK).
type StaffQuotation struct {
	QuotationID int64 `gorm:"primaryKey;autoIncrement:false"`
	StaffID     int64 `gorm:"primaryKey;autoIncrement:false;index"`

	Position int `gorm:"not null;default:0"`

	Staff *Staff `gorm:"foreignKey:StaffID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" validate:"-"`
}

func (StaffQuotation) TableName() string { return "PersonalCotizacion" }
