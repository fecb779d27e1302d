package nlp

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

var displaySymbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CNY": "¥", "TWD": "NT$",
	"PLN": "zł", "RUB": "₽", "UAH": "₴", "RON": "lei", "TRY": "₺", "BRL": "R$",
	"INR": "₹", "KRW": "₩", "CHF": "CHF", "CAD": "C$", "AUD": "A$",
}

// NormalizeCurrencyCode upper-cases code and checks it against ISO 4217.
// Unrecognized codes come back as the default currency with ok=false.
func NormalizeCurrencyCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return constants.DefaultCurrency, false
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return constants.DefaultCurrency, false
	}
	return unit.String(), true
}

// FormatCurrency renders cents with the grouping, decimal mark and symbol
// placement of locale. An unknown currency code is replaced by USD.
func FormatCurrency(cents int64, locale, code string) string {
	p := Pattern(locale)
	code, _ = NormalizeCurrencyCode(code)

	d := decimal.New(cents, -2)
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	num := groupDigits(whole, p.ThousandsSeparator) + string(p.DecimalSeparator) + frac

	out := strings.NewReplacer("#,##0.00", num, "¤", symbolFor(code, p)).Replace(p.DecimalFormat)
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// CurrencySymbol returns the display symbol for code, or the code itself.
func CurrencySymbol(code string) string {
	code, _ = NormalizeCurrencyCode(code)
	if s, ok := displaySymbols[code]; ok {
		return s
	}
	return code
}

func symbolFor(code string, p CurrencyPattern) string {
	if code == p.CurrencyCode {
		return p.Symbols[0]
	}
	return CurrencySymbol(code)
}

func groupDigits(digits string, sep rune) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
