package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

func TestPatternTableCoversSupportedLocales(t *testing.T) {
	require.Len(t, patterns, len(constants.SupportedLocales))

	for _, tag := range constants.SupportedLocales {
		t.Run(tag, func(t *testing.T) {
			p, ok := patterns[tag]
			require.True(t, ok)
			assert.NotEmpty(t, p.Symbols)
			assert.NotEmpty(t, p.DateFormat)
			assert.NotEmpty(t, p.DecimalFormat)
			assert.Len(t, p.CurrencyCode, 3)
			assert.NotEqual(t, p.DecimalSeparator, p.ThousandsSeparator)
		})
	}
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"de-DE", "de-DE"},
		{"de_de", "de-DE"},
		{"DE-de", "de-DE"},
		{"de-AT", "de-DE"},
		{"fr-CA", "fr-FR"},
		{"es-MX", "es"},
		{"uk-UA", "ua-UA"},
		{"pt-PT", "pt-BR"},
		{"en-GB", "en-US"},
		{"", "en-US"},
		{"xx-YY", "en-US"},
		{"not a tag", "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLocale(tt.input))
		})
	}
}

func TestPatternUnknownFallsBackToDefault(t *testing.T) {
	p := Pattern("tlh-KLINGON")
	assert.Equal(t, "USD", p.CurrencyCode)
	assert.Equal(t, "$", p.Symbols[0])
}
