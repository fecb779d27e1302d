package nlp

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

// CurrencyPattern is the per-locale formatting metadata. Symbols[0] is the
// display symbol; the full set is accepted when parsing.
type CurrencyPattern struct {
	Symbols            []string
	DecimalFormat      string // ¤ marks the symbol, #,##0.00 the number
	ThousandsSeparator rune
	DecimalSeparator   rune
	DateFormat         string
	CurrencyCode       string

	symbolRE *regexp.Regexp
}

var patterns = map[string]CurrencyPattern{
	"en-US": {Symbols: []string{"$", "US$", "USD"}, DecimalFormat: "¤#,##0.00", ThousandsSeparator: ',', DecimalSeparator: '.', DateFormat: "MM/DD/YYYY", CurrencyCode: "USD"},
	"es":    {Symbols: []string{"€", "EUR"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD/MM/YYYY", CurrencyCode: "EUR"},
	"fr-FR": {Symbols: []string{"€", "EUR"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: ' ', DecimalSeparator: ',', DateFormat: "DD/MM/YYYY", CurrencyCode: "EUR"},
	"de-DE": {Symbols: []string{"€", "EUR"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "EUR"},
	"zh-CN": {Symbols: []string{"¥", "￥", "元", "CNY", "RMB"}, DecimalFormat: "¤#,##0.00", ThousandsSeparator: ',', DecimalSeparator: '.', DateFormat: "YYYY年MM月DD日", CurrencyCode: "CNY"},
	"zh-TW": {Symbols: []string{"NT$", "元", "TWD"}, DecimalFormat: "¤#,##0.00", ThousandsSeparator: ',', DecimalSeparator: '.', DateFormat: "YYYY年MM月DD日", CurrencyCode: "TWD"},
	"pl-PL": {Symbols: []string{"zł", "PLN"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: ' ', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "PLN"},
	"ru-RU": {Symbols: []string{"₽", "руб.", "руб", "RUB"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: ' ', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "RUB"},
	"it-IT": {Symbols: []string{"€", "EUR"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD/MM/YYYY", CurrencyCode: "EUR"},
	"ua-UA": {Symbols: []string{"₴", "грн.", "грн", "UAH"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: ' ', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "UAH"},
	"ro":    {Symbols: []string{"lei", "RON"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "RON"},
	"tr-TR": {Symbols: []string{"₺", "TL", "TRY"}, DecimalFormat: "¤#,##0.00", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "TRY"},
	"pt-BR": {Symbols: []string{"R$", "BRL"}, DecimalFormat: "¤ #,##0.00", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD/MM/YYYY", CurrencyCode: "BRL"},
	"nl-NL": {Symbols: []string{"€", "EUR"}, DecimalFormat: "¤ #,##0.00", ThousandsSeparator: '.', DecimalSeparator: ',', DateFormat: "DD-MM-YYYY", CurrencyCode: "EUR"},
	"fi":    {Symbols: []string{"€", "EUR"}, DecimalFormat: "#,##0.00 ¤", ThousandsSeparator: ' ', DecimalSeparator: ',', DateFormat: "DD.MM.YYYY", CurrencyCode: "EUR"},
}

// aliases cover tags users commonly send that differ from the table keys.
var aliases = map[string]string{
	"en": "en-US",
	"uk": "ua-UA",
	"ua": "ua-UA",
	"pt": "pt-BR",
	"zh": "zh-CN",
	"tr": "tr-TR",
	"nl": "nl-NL",
}

// baseIndex maps a base language to the first table tag using it.
var baseIndex = map[language.Base]string{}

func init() {
	for _, tag := range constants.SupportedLocales {
		p := patterns[tag]
		p.symbolRE = symbolAlternation(p.Symbols)
		patterns[tag] = p

		b, conf := language.Make(tag).Base()
		if conf != language.Exact {
			continue
		}
		if _, exists := baseIndex[b]; !exists {
			baseIndex[b] = tag
		}
	}
}

// Pattern returns the pattern for tag, degrading to en-US for unknown tags.
func Pattern(tag string) CurrencyPattern {
	p, _ := LookupPattern(tag)
	return p
}

// LookupPattern resolves tag and returns the pattern with the table key it matched.
func LookupPattern(tag string) (CurrencyPattern, string) {
	key := ResolveLocale(tag)
	return patterns[key], key
}

// ResolveLocale maps any tag to a table key: exact, case-insensitive, alias,
// same base language, then the default locale.
func ResolveLocale(tag string) string {
	tag = constants.NormalizeLocale(tag)
	if tag == "" {
		return constants.DefaultLocale
	}
	if _, ok := patterns[tag]; ok {
		return tag
	}
	for _, key := range constants.SupportedLocales {
		if strings.EqualFold(key, tag) {
			return key
		}
	}
	lower := strings.ToLower(tag)
	primary, _, _ := strings.Cut(lower, "-")
	if key, ok := aliases[primary]; ok {
		return key
	}
	if t, err := language.Parse(tag); err == nil {
		if b, conf := t.Base(); conf == language.Exact {
			if key, ok := baseIndex[b]; ok {
				return key
			}
		}
	}
	return constants.DefaultLocale
}

// symbolAlternation builds a case-insensitive alternation, longest symbol first
// so "NT$" wins over "$" and "руб." over "руб".
func symbolAlternation(symbols []string) *regexp.Regexp {
	sorted := sortedByLength(symbols)
	quoted := make([]string, len(sorted))
	for i, s := range sorted {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func sortedByLength(symbols []string) []string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	sort.SliceStable(out, func(i, j int) bool {
		return len([]rune(out[i])) > len([]rune(out[j]))
	})
	return out
}
