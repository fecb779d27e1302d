package constants

import "strings"

// DefaultLocale is the fallback for unknown locale tags.
const DefaultLocale = "en-US"

// DefaultCurrency is substituted for unrecognized currency codes.
const DefaultCurrency = "USD"

// SupportedLocales holds the locale tags the pattern table and formatter know about.
var SupportedLocales = []string{
	"en-US", "es", "fr-FR", "de-DE", "zh-CN", "zh-TW", "pl-PL", "ru-RU",
	"it-IT", "ua-UA", "ro", "tr-TR", "pt-BR", "nl-NL", "fi",
}

// NormalizeLocale trims and converts "de_DE" style tags to "de-DE".
func NormalizeLocale(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
}

// IsSupportedLocale does a case-insensitive lookup against SupportedLocales.
func IsSupportedLocale(tag string) bool {
	tag = NormalizeLocale(tag)
	for _, l := range SupportedLocales {
		if strings.EqualFold(l, tag) {
			return true
		}
	}
	return false
}
