package model

import "github.com/shopspring/decimal"

// Money columns are DECIMAL(10,2).
const (
	MoneyPrecision = 10
	MoneyScale     = 2
)

// maxMoney is the first value that no longer fits DECIMAL(10,2).
var maxMoney = decimal.New(1, MoneyPrecision-MoneyScale)

// FitsMoneyColumn reports whether d can be stored in a DECIMAL(10,2) column after rounding.
func FitsMoneyColumn(d decimal.Decimal) bool {
	return d.Round(MoneyScale).Abs().LessThan(maxMoney)
}
