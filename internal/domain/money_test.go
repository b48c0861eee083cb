package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1050), ToMinorUnits(decimal.NewFromFloat(10.50)))
	assert.Equal(t, int64(100), ToMinorUnits(decimal.NewFromInt(1)))
	assert.True(t, FromMinorUnits(1050).Equal(decimal.NewFromFloat(10.50)))
}

func TestDisplayCurrencyConversion(t *testing.T) {
	rate := decimal.NewFromFloat(36.50)

	local, err := ToDisplayCurrency(decimal.NewFromInt(10), rate)
	assert.NoError(t, err)
	assert.True(t, local.Equal(decimal.NewFromInt(365)))

	usd, err := FromDisplayCurrency(decimal.NewFromInt(365), rate)
	assert.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(10)))

	_, err = ToDisplayCurrency(decimal.NewFromInt(10), decimal.Zero)
	assert.Error(t, err)
}
