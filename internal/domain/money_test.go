package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_Add(t *testing.T) {
	tests := []struct {
		name        string
		a, b        Money
		want        Money
		expectError error
	}{
		{name: "simple", a: 100, b: 50, want: 150},
		{name: "negative delta", a: 100, b: -150, want: -50},
		{name: "max plus one", a: math.MaxInt64, b: 1, expectError: ErrAmountOverflow},
		{name: "min minus one", a: math.MinInt64, b: -1, expectError: ErrAmountOverflow},
		{name: "max plus zero", a: math.MaxInt64, b: 0, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Add(tt.b)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected error %v, got %v", tt.expectError, err)
			}
			if err == nil && got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMoney_Sub(t *testing.T) {
	got, err := Money(100).Sub(30)
	if err != nil || got != 70 {
		t.Fatalf("expected 70, got %d (%v)", got, err)
	}

	if _, err := Money(math.MinInt64).Sub(1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
	if _, err := Money(math.MaxInt64).Sub(-1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestMoney_Neg(t *testing.T) {
	if got, _ := Money(5).Neg(); got != -5 {
		t.Errorf("expected -5, got %d", got)
	}
	if _, err := Money(math.MinInt64).Neg(); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestFeeOf(t *testing.T) {
	rate := decimal.RequireFromString("0.015")

	tests := []struct {
		amount Money
		want   Money
	}{
		{amount: 10000, want: 150},
		{amount: 0, want: 0},
		{amount: 1, want: 0},
		{amount: 33, want: 0},    // 0.495
		{amount: 34, want: 1},    // 0.51
		{amount: 100, want: 2},   // 1.5 rounds up
		{amount: 300, want: 5},   // 4.5 rounds up
		{amount: 1234, want: 19}, // 18.51
	}

	for _, tt := range tests {
		got, err := FeeOf(tt.amount, rate)
		if err != nil {
			t.Fatalf("FeeOf(%d): unexpected error %v", tt.amount, err)
		}
		if got != tt.want {
			t.Errorf("FeeOf(%d) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestFeeOf_Invalid(t *testing.T) {
	rate := decimal.RequireFromString("0.015")

	if _, err := FeeOf(-1, rate); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := FeeOf(100, rate.Neg()); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := FeeOf(math.MaxInt64, decimal.NewFromInt(2)); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestConvertSubunits(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		divisor     int64
		want        Money
		expectError error
	}{
		{name: "exact", amount: 50000, divisor: 100, want: 500},
		{name: "identity", amount: 123, divisor: 1, want: 123},
		{name: "remainder", amount: 50050, divisor: 100, expectError: ErrInexactConversion},
		{name: "negative", amount: -100, divisor: 100, expectError: ErrInvalidAmount},
		{name: "zero divisor", amount: 100, divisor: 0, expectError: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertSubunits(tt.amount, tt.divisor)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected error %v, got %v", tt.expectError, err)
			}
			if err == nil && got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSumMoney(t *testing.T) {
	got, err := SumMoney(-10150, 10000, 150)
	if err != nil || got != 0 {
		t.Fatalf("expected 0, got %d (%v)", got, err)
	}

	if _, err := SumMoney(math.MaxInt64, 1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}
