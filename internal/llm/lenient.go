package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var listSplit = regexp.MustCompile(`\s*(?:,|;|\band\b|&)\s*`)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (total -> amount, people -> participants)
// - Drops null/empty values
// - Coerces numbers to decimal strings for amount
// - Splits a participants string into a list
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to the schema
	renamed("total", "amount")
	renamed("value", "amount")
	renamed("price", "amount")
	renamed("currency_code", "currency")
	renamed("tx_date", "date")
	renamed("expense_date", "date")
	renamed("description", "title")
	renamed("people", "participants")
	renamed("names", "participants")
	renamed("split_with", "participants")

	// 2) coerce amount to a string
	if v, ok := m["amount"]; ok {
		switch t := v.(type) {
		case float64:
			m["amount"] = decimal.NewFromFloat(t).StringFixed(2)
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, "amount")
				dropped = append(dropped, "amount(empty)")
			} else {
				m["amount"] = s
			}
		case nil:
			delete(m, "amount")
			dropped = append(dropped, "amount(null)")
		default:
			delete(m, "amount")
			dropped = append(dropped, "amount(type)")
		}
	}

	// 3) participants may arrive as "John and Jane"
	switch t := m["participants"].(type) {
	case string:
		var names []any
		for _, n := range listSplit.Split(t, -1) {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			delete(m, "participants")
			dropped = append(dropped, "participants(empty)")
		} else {
			m["participants"] = names
		}
	case nil:
		if _, ok := m["participants"]; ok {
			delete(m, "participants")
			dropped = append(dropped, "participants(null)")
		}
	}

	// 4) remove unknown keys (everything not in the schema set below)
	allowed := map[string]struct{}{
		"intent": {}, "amount": {}, "currency": {}, "date": {}, "title": {},
		"participants": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 5) trim obvious strings
	for _, k := range []string{"intent", "currency", "date", "title"} {
		switch v := m[k].(type) {
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			if _, ok := m[k]; ok {
				delete(m, k)
				dropped = append(dropped, k+"(null)")
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
