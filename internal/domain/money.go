package domain

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (kobo, cents).
type Money int64

var (
	maxMoney = decimal.NewFromInt(math.MaxInt64)
	minMoney = decimal.NewFromInt(math.MinInt64)
)

// Add returns m+other or ErrAmountOverflow.
func (m Money) Add(other Money) (Money, error) {
	if (other > 0 && m > math.MaxInt64-other) || (other < 0 && m < math.MinInt64-other) {
		return 0, ErrAmountOverflow
	}
	return m + other, nil
}

// Sub returns m-other or ErrAmountOverflow.
func (m Money) Sub(other Money) (Money, error) {
	if (other < 0 && m > math.MaxInt64+other) || (other > 0 && m < math.MinInt64+other) {
		return 0, ErrAmountOverflow
	}
	return m - other, nil
}

// Neg returns -m. MinInt64 has no positive counterpart.
func (m Money) Neg() (Money, error) {
	if m == math.MinInt64 {
		return 0, ErrAmountOverflow
	}
	return -m, nil
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m < 0
}

// Decimal returns m as a decimal in minor units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// FeeOf returns amount*rate rounded half-up to the nearest minor unit.
func FeeOf(amount Money, rate decimal.Decimal) (Money, error) {
	if amount < 0 || rate.IsNegative() {
		return 0, ErrInvalidAmount
	}
	return MoneyFromDecimal(amount.Decimal().Mul(rate))
}

// MoneyFromDecimal rounds d half-up to whole minor units.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	rounded := d.Round(0)
	if rounded.GreaterThan(maxMoney) || rounded.LessThan(minMoney) {
		return 0, ErrAmountOverflow
	}
	return Money(rounded.IntPart()), nil
}

// ConvertSubunits divides a gateway subunit amount by divisor. The division
// must be exact; a remainder would silently drop value.
func ConvertSubunits(amount, divisor int64) (Money, error) {
	if divisor <= 0 {
		return 0, ErrInvalidAmount
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if amount%divisor != 0 {
		return 0, ErrInexactConversion
	}
	return Money(amount / divisor), nil
}

// SumMoney adds amounts, failing on overflow.
func SumMoney(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
