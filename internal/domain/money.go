package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency code
type Currency string

const (
	CurrencyUSD Currency = "USD" // settlement currency
	CurrencyVES Currency = "VES" // local display currency
)

var centsFactor = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount to integer minor units (cents)
// for the payment gateway, which only accepts integer amounts.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(centsFactor).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units (cents) back to a decimal amount
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsFactor)
}

// ToDisplayCurrency converts a USD settlement amount to the local display
// currency at a fixed rate. Display only: all settlement math stays in USD.
func ToDisplayCurrency(usd decimal.Decimal, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("exchange rate must be positive")
	}
	return usd.Mul(rate).Round(2), nil
}

// FromDisplayCurrency converts a local display amount back to USD at a fixed rate
func FromDisplayCurrency(local decimal.Decimal, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("exchange rate must be positive")
	}
	return local.Div(rate).Round(2), nil
}
