package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		cents  int64
		locale string
		code   string
		want   string
	}{
		{2550, "en-US", "USD", "$25.50"},
		{2550, "de-DE", "EUR", "25,50 €"},
		{2550, "en-US", "INVALID", "$25.50"},
		{2550, "xx", "usd", "$25.50"},
		{123456789, "en-US", "USD", "$1,234,567.89"},
		{123456, "fr-FR", "EUR", "1 234,56 €"},
		{123456, "de-DE", "EUR", "1.234,56 €"},
		{2550, "pt-BR", "BRL", "R$ 25,50"},
		{2550, "zh-CN", "CNY", "¥25.50"},
		{2550, "en-US", "EUR", "€25.50"},
		{-2550, "en-US", "USD", "-$25.50"},
		{0, "en-US", "USD", "$0.00"},
		{5, "en-US", "USD", "$0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.code+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.cents, tt.locale, tt.code))
		})
	}
}

func TestFormatCurrencyContainsLocaleDigits(t *testing.T) {
	assert.Contains(t, FormatCurrency(2550, "en-US", "USD"), "25.50")
	assert.Contains(t, FormatCurrency(2550, "de-DE", "EUR"), "25,50")
	assert.Contains(t, FormatCurrency(2550, "en-US", "INVALID"), "$")
}

func TestNormalizeCurrencyCode(t *testing.T) {
	code, ok := NormalizeCurrencyCode(" eur ")
	assert.True(t, ok)
	assert.Equal(t, "EUR", code)

	for _, bad := range []string{"", "US", "INVALID"} {
		code, ok := NormalizeCurrencyCode(bad)
		assert.False(t, ok, bad)
		assert.Equal(t, "USD", code)
	}
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "£", CurrencySymbol("GBP"))
	assert.Equal(t, "SEK", CurrencySymbol("SEK"))
	assert.Equal(t, "$", CurrencySymbol("nope"))
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "999", groupDigits("999", ','))
	assert.Equal(t, "123,456", groupDigits("123456", ','))
	assert.Equal(t, "1.234.567", groupDigits("1234567", '.'))
}
