package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw    string
		locale string
		want   int64
		found  bool
	}{
		{"€25,50", "de-DE", 2550, true},
		{"1.234,56", "de-DE", 123456, true},
		{"$25.50", "en-US", 2550, true},
		{"1,234.56", "en-US", 123456, true},
		{"25,50€", "fr-FR", 2550, true},
		{"1 234,56 €", "fr-FR", 123456, true},
		{"1\u00a0234,56\u00a0€", "fr-FR", 123456, true},
		{"1\u202f234,56 €", "fr-FR", 123456, true},
		{"R$ 1.234,56", "pt-BR", 123456, true},
		{"5 EUR", "de-DE", 500, true},
		{"20 lei", "ro", 2000, true},
		{"25,5", "de-DE", 2550, true},
		{"12.999", "en-US", 1299, true},
		{"42", "ua-UA", 4200, true},
		{"25.50", "xx-YY", 2550, true},
		{"-5.00", "en-US", 0, false},
		{"1,2,3", "de-DE", 0, false},
		{"12a", "en-US", 0, false},
		{"$", "en-US", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.raw, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw, tt.locale)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountRejectsInvalidInEveryLocale(t *testing.T) {
	for _, tag := range constants.SupportedLocales {
		for _, raw := range []string{"abc", ""} {
			_, ok := ParseAmount(raw, tag)
			assert.False(t, ok, "%q in %s", raw, tag)
		}
	}
}
