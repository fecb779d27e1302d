package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// ExtractNames returns the participants mentioned in text as whole words,
// matched case-insensitively. Output keeps the canonical spelling and the order
// of participants, drops duplicates and is never nil.
func ExtractNames(text string, participants []string) []string {
	out := make([]string, 0, len(participants))
	if text == "" || len(participants) == 0 {
		return out
	}

	folded := fold(text)
	seen := make(map[string]struct{}, len(participants))
	for _, name := range participants {
		key := fold(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if containsWord(folded, key) {
			out = append(out, name)
		}
	}
	return out
}

// MatchParticipant maps a loosely-cased name onto the canonical list.
func MatchParticipant(name string, participants []string) (string, bool) {
	key := fold(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}
	for _, p := range participants {
		if fold(strings.TrimSpace(p)) == key {
			return p, true
		}
	}
	return "", false
}

// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// containsWord reports whether word occurs in text with no letter or digit on either side.
func containsWord(text, word string) bool {
	for offset := 0; offset <= len(text); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)
		if wordEdge(text, start, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func wordEdge(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
