package nlp

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount parses a numeral written in the conventions of locale and returns cents.
// Symbols of that locale are stripped, every thousands separator is removed and
// the single decimal separator splits whole from fraction. The fraction is padded
// or truncated to two digits. Anything else left over (letters, signs, a second
// decimal separator) makes the amount absent.
func ParseAmount(raw, locale string) (int64, bool) {
	p := Pattern(locale)

	s := p.symbolRE.ReplaceAllString(raw, "")
	s = strings.TrimFunc(s, isSpace)
	if s == "" {
		return 0, false
	}

	if unicode.IsSpace(p.ThousandsSeparator) {
		s = strings.Map(func(r rune) rune {
			if isSpace(r) {
				return -1
			}
			return r
		}, s)
	} else {
		s = strings.ReplaceAll(s, string(p.ThousandsSeparator), "")
	}

	parts := strings.Split(s, string(p.DecimalSeparator))
	if len(parts) > 2 {
		return 0, false
	}
	whole, frac := parts[0], ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	return combineCents(whole, frac)
}

// combineCents joins digit-only whole and fractional parts into cents.
func combineCents(whole, frac string) (int64, bool) {
	if whole == "" && frac == "" {
		return 0, false
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, false
	}

	switch {
	case len(frac) > 2:
		frac = frac[:2]
	case len(frac) == 1:
		frac += "0"
	case len(frac) == 0:
		frac = "00"
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v > math.MaxInt64/100 {
			return 0, false
		}
		units = v
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false
	}
	return units*100 + minor, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// unicode.IsSpace covers NBSP and the narrow NBSP used by fr-FR grouping.
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
