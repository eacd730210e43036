// Package calc holds the pure transaction arithmetic.
package calc

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MithqalToGram converts a price quoted per mithqal into grams of gold.
const MithqalToGram = "4.3318"

// ErrNonPositivePrice is returned when a unit price of zero or less reaches
// the calculator. The dialog layer rejects these earlier; the calculator
// re-checks rather than divide by zero.
var ErrNonPositivePrice = errors.New("calc: unit price must be positive")

var mithqalToGram = decimal.RequireFromString(MithqalToGram)

// GoldWeight derives the gram weight bought or sold for a given total
// amount at the daily mithqal price, rounded to three decimals:
//
//	weight = totalAmount / unitPrice * 4.3318
func GoldWeight(unitPrice, totalAmount decimal.Decimal) (decimal.Decimal, error) {
	if !unitPrice.IsPositive() {
		return decimal.Zero, ErrNonPositivePrice
	}
	w := totalAmount.DivRound(unitPrice, 16).Mul(mithqalToGram)
	return w.Round(3), nil
}

// Total derives the total amount of a coin or currency transaction.
func Total(unitPrice, quantity decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(quantity)
}
