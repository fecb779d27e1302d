package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

// Symbols accepted by ExtractAmount beyond the locale table.
var extraSymbols = []string{
	"£", "GBP", "¥", "JPY", "₹", "INR", "₩", "KRW", "CHF", "A$", "C$",
	"euros", "euro", "dollars", "dollar", "bucks", "pounds", "yen",
}

// numeral accepts grouped ("1,234.56", "1.234,56") and plain ("1234,5") forms.
const numeral = `\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`

const gap = `[\s\x{00A0}\x{202F}]?`

var (
	amountRE = buildAmountRE()
	looseRE  = regexp.MustCompile(`(?i)\b(?:paid|spent|cost|costs|costing|total|totalled|came to|charged)\s+(` + numeral + `)`)
)

func buildAmountRE() *regexp.Regexp {
	seen := map[string]struct{}{}
	var all []string
	add := func(s string) {
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		all = append(all, s)
	}
	for _, tag := range constants.SupportedLocales {
		for _, s := range patterns[tag].Symbols {
			add(s)
		}
	}
	for _, s := range extraSymbols {
		add(s)
	}

	sorted := sortedByLength(all)
	quoted := make([]string, len(sorted))
	for i, s := range sorted {
		quoted[i] = regexp.QuoteMeta(s)
	}
	sym := `(?i:` + strings.Join(quoted, "|") + `)`
	return regexp.MustCompile(`(` + sym + `)` + gap + `(` + numeral + `)|(` + numeral + `)` + gap + `(` + sym + `)`)
}

// ExtractAmount returns the first symbol-adjacent amount in text, in cents.
//
// Without a locale the separator role is decided by the last separator: one or
// two trailing digits make it decimal, exactly three make it a thousands
// separator. This is a heuristic and misreads currencies with three-digit
// minor units. Integers are scaled by 100, so "¥1000" yields 100000.
func ExtractAmount(text string) (int64, bool) {
	cents, _, ok := findAmount(text)
	return cents, ok
}

// findAmount returns the first accepted amount and the symbol written next to it.
func findAmount(text string) (int64, string, bool) {
	for _, m := range amountRE.FindAllStringSubmatchIndex(text, -1) {
		var num string
		var symStart, symEnd int
		if m[2] >= 0 {
			symStart, symEnd = m[2], m[3]
			num = text[m[4]:m[5]]
			if !numeralEndsCleanly(text, m[5]) {
				continue
			}
		} else {
			num = text[m[6]:m[7]]
			symStart, symEnd = m[8], m[9]
			if !numeralStartsCleanly(text, m[6]) {
				continue
			}
		}
		if !symbolStandsAlone(text, symStart, symEnd) {
			continue
		}
		if cents, ok := numeralToCents(num); ok {
			return cents, text[symStart:symEnd], true
		}
	}
	return 0, "", false
}

// ExtractAmountLoose finds a bare numeral right after a spend verb
// ("paid 50", "spent 12.5"). It is a fallback for text without a symbol.
func ExtractAmountLoose(text string) (int64, bool) {
	if cents, ok := ExtractAmount(text); ok {
		return cents, true
	}
	for _, m := range looseRE.FindAllStringSubmatchIndex(text, -1) {
		end := m[3]
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if unicode.IsDigit(r) || r == '/' || r == ':' || r == '%' || r == '-' {
				continue
			}
		}
		if cents, ok := numeralToCents(text[m[2]:m[3]]); ok {
			return cents, true
		}
	}
	return 0, false
}

func numeralToCents(num string) (int64, bool) {
	whole, frac := splitNumeral(num)
	return combineCents(whole, frac)
}

// splitNumeral applies the trailing-digit rule: the last separator is decimal
// unless exactly three digits follow it. Every other separator is grouping.
func splitNumeral(num string) (whole, frac string) {
	whole = num
	if last := strings.LastIndexAny(num, ".,"); last >= 0 {
		if tail := num[last+1:]; len(tail) != 3 {
			whole, frac = num[:last], tail
		}
	}
	whole = strings.NewReplacer(".", "", ",", "").Replace(whole)
	return whole, frac
}

// PlainNumeral rewrites a numeral such as "1.234,56" or "1,234" into dot-decimal
// form ("1234.56", "1234") with the same rule ExtractAmount uses.
func PlainNumeral(num string) string {
	whole, frac := splitNumeral(strings.TrimSpace(num))
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// A numeral cut short by the regexp ("1234.567") is not an amount.
func numeralEndsCleanly(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !unicode.IsDigit(r)
}

func numeralStartsCleanly(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !unicode.IsDigit(r) && r != '.' && r != ','
}

// Alphabetic symbols must not be part of a longer word ("EURO" is not "EUR" + "O").
func symbolStandsAlone(text string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:end])
	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if unicode.IsLetter(first) && start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); unicode.IsLetter(r) {
			return false
		}
	}
	if unicode.IsLetter(last) && end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
