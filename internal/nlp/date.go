package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

// dateLayout is a compiled numeric date format such as "DD.MM.YYYY".
type dateLayout struct {
	re    *regexp.Regexp
	order []byte // 'Y', 'M', 'D' in capture order
}

var (
	usLayout  = compileLayout("MM/DD/YYYY")
	isoLayout = compileLayout("YYYY-MM-DD")

	todayRE     = regexp.MustCompile(`(?i)\btoday\b`)
	yesterdayRE = regexp.MustCompile(`(?i)\byesterday\b`)

	localeLayouts = map[string]dateLayout{}
)

func init() {
	for _, tag := range constants.SupportedLocales {
		localeLayouts[tag] = compileLayout(patterns[tag].DateFormat)
	}
}

func compileLayout(format string) dateLayout {
	var b strings.Builder
	var order []byte
	for i := 0; i < len(format); {
		switch {
		case strings.HasPrefix(format[i:], "YYYY"):
			b.WriteString(`(\d{4})`)
			order = append(order, 'Y')
			i += 4
		case strings.HasPrefix(format[i:], "MM"):
			b.WriteString(`(\d{1,2})`)
			order = append(order, 'M')
			i += 2
		case strings.HasPrefix(format[i:], "DD"):
			b.WriteString(`(\d{1,2})`)
			order = append(order, 'D')
			i += 2
		default:
			r, size := utf8.DecodeRuneInString(format[i:])
			b.WriteString(regexp.QuoteMeta(string(r)))
			i += size
		}
	}
	return dateLayout{re: regexp.MustCompile(b.String()), order: order}
}

// find returns the first valid date in text and where it starts.
func (l dateLayout) find(text string, loc *time.Location) (time.Time, int, bool) {
	for _, m := range l.re.FindAllStringSubmatchIndex(text, -1) {
		if !digitBoundary(text, m[0], m[1]) {
			continue
		}
		if t, ok := l.build(text, m, loc); ok {
			return t, m[0], true
		}
	}
	return time.Time{}, -1, false
}

// parse requires the whole of raw to be a date in this layout.
func (l dateLayout) parse(raw string, loc *time.Location) (time.Time, bool) {
	m := l.re.FindStringSubmatchIndex(raw)
	if m == nil || m[0] != 0 || m[1] != len(raw) {
		return time.Time{}, false
	}
	return l.build(raw, m, loc)
}

func (l dateLayout) build(text string, m []int, loc *time.Location) (time.Time, bool) {
	var y, mo, d int
	for i, part := range l.order {
		v, err := strconv.Atoi(text[m[2+2*i]:m[3+2*i]])
		if err != nil {
			return time.Time{}, false
		}
		switch part {
		case 'Y':
			y = v
		case 'M':
			mo = v
		case 'D':
			d = v
		}
	}
	return civilDate(y, mo, d, loc)
}

// civilDate rejects out-of-range parts instead of letting time.Date normalize them.
func civilDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func digitBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ExtractDate resolves "today", "yesterday" or an absolute date against the current time.
func ExtractDate(text string) (time.Time, bool) {
	return ExtractDateAt(text, time.Now())
}

// ExtractDateAt is ExtractDate with an explicit clock reading. Absolute dates
// (MM/DD/YYYY, YYYY-MM-DD) take precedence over relative keywords; malformed
// ones such as month 13 are skipped.
func ExtractDateAt(text string, now time.Time) (time.Time, bool) {
	loc := now.Location()

	best, bestAt := time.Time{}, -1
	for _, l := range []dateLayout{usLayout, isoLayout} {
		if t, at, ok := l.find(text, loc); ok && (bestAt < 0 || at < bestAt) {
			best, bestAt = t, at
		}
	}
	if bestAt >= 0 {
		return best, true
	}
	return relativeDate(text, now)
}

// ExtractDateFor tries the numeric date layout of locale before the generic rules.
func ExtractDateFor(text, locale string, now time.Time) (time.Time, bool) {
	if l, ok := localeLayouts[ResolveLocale(locale)]; ok {
		if t, _, ok := l.find(text, now.Location()); ok {
			return t, true
		}
	}
	return ExtractDateAt(text, now)
}

func relativeDate(text string, now time.Time) (time.Time, bool) {
	todayAt := todayRE.FindStringIndex(text)
	yesterdayAt := yesterdayRE.FindStringIndex(text)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case yesterdayAt != nil && (todayAt == nil || yesterdayAt[0] < todayAt[0]):
		return today.AddDate(0, 0, -1), true
	case todayAt != nil:
		return today, true
	}
	return time.Time{}, false
}

// FormatDate renders t using the date format of locale.
func FormatDate(t time.Time, locale string) string {
	return t.Format(GoLayout(Pattern(locale).DateFormat))
}

// ParseLocaleDate parses a date typed in the format of locale, accepting ISO as well.
func ParseLocaleDate(raw, locale string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	if l, ok := localeLayouts[ResolveLocale(locale)]; ok {
		if t, ok := l.parse(raw, loc); ok {
			return t, true
		}
	}
	return isoLayout.parse(raw, loc)
}

// GoLayout converts "DD.MM.YYYY" style formats to a time layout.
func GoLayout(format string) string {
	return strings.NewReplacer("YYYY", "2006", "MM", "01", "DD", "02").Replace(format)
}
