package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("en-US")
	require.NoError(t, err)
	assert.Equal(t, "USD", f.Currency())
	assert.Equal(t, "en-US", f.Language().String())

	f, err = NewFormatter("de-DE")
	require.NoError(t, err)
	assert.Equal(t, "EUR", f.Currency())

	_, err = NewFormatter("not a tag!")
	assert.ErrorContains(t, err, "invalid receipt language")
}

func TestFormatter_Money(t *testing.T) {
	us, err := NewFormatter("en-US")
	require.NoError(t, err)
	de, err := NewFormatter("de-DE")
	require.NoError(t, err)

	tests := []struct {
		amount string
		us     string
		de     string
	}{
		{"0", "0.00", "0,00"},
		{"3.5", "3.50", "3,50"},
		{"1234.567", "1,234.57", "1.234,57"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.us, us.Money(d))
			assert.Equal(t, tt.de, de.Money(d))
		})
	}
}

func TestFormatter_Labels(t *testing.T) {
	f, err := NewFormatter("en-US")
	require.NoError(t, err)

	assert.Equal(t, "E Wallet", f.Label("E_WALLET"))
	assert.Equal(t, "Cash", f.Label("CASH"))
	assert.Equal(t, "8.25%", f.Percent(decimal.RequireFromString("0.0825")))
	assert.Equal(t, "12,000", f.Int(12000))
	assert.Equal(t, "2026-01-05 14:30 UTC", f.DateTime(time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)))
}
