package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateItemTax applies the line's own rate once against the after-discount
// amount: (amount * rate) / 100. Tax is never re-applied at invoice level.
func CalculateItemTax(afterDiscount decimal.Decimal, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return afterDiscount.Mul(taxRate).DivRound(decimal.NewFromInt(100), 4)
}

// CalculateDiscountAmount resolves a percentage ("P") or absolute ("A") discount
// against a subtotal.
func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {
	if discount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if discountType == "P" {
		return subTotal.Mul(discount).DivRound(decimal.NewFromInt(100), 4)
	}
	return discount
}

// DateKey formats a time as the YYYYMMDD key used by document numbers and the
// daybook date axis.
func DateKey(t time.Time) string {
	return t.Format("20060102")
}

// TruncateToDate drops the time-of-day component, keeping the location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
