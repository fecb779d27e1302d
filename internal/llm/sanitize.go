package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/nlp"
)

var (
	reDecimal   = regexp.MustCompile(amountPattern)
	reCurrency  = regexp.MustCompile(`^[A-Z]{3}$`)
	reMoneyJunk = regexp.MustCompile(`[^\d.,\-]`)
)

// SanitizeOptionalFields removes or normalizes fields that don't meet the stricter schema,
// so the overall document can still validate. An unrecognized intent becomes "unclear"
// because intent is required.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	drop := func(k string) {
		delete(m, k)
		dropped = append(dropped, k)
	}

	// intent: required, so coerce instead of dropping
	in, _ := m["intent"].(string)
	canon, _ := constants.Canonicalize(in)
	m["intent"] = string(canon)

	// amount: strip symbols, resolve separators like the local extractor, refuse negatives
	if v, ok := m["amount"]; ok {
		s, _ := v.(string)
		s = nlp.PlainNumeral(reMoneyJunk.ReplaceAllString(s, ""))
		d, err := decimal.NewFromString(s)
		switch {
		case err != nil, d.IsNegative():
			drop("amount")
		default:
			fixed := d.StringFixed(2)
			if !reDecimal.MatchString(fixed) {
				drop("amount")
			} else {
				m["amount"] = fixed
			}
		}
	}

	// currency: ISO shape only; real ISO membership is checked downstream
	if v, ok := m["currency"]; ok {
		s, _ := v.(string)
		s = strings.ToUpper(strings.TrimSpace(s))
		if !reCurrency.MatchString(s) {
			drop("currency")
		} else {
			m["currency"] = s
		}
	}

	// date: accept full timestamps by keeping the calendar part
	if v, ok := m["date"]; ok {
		s, _ := v.(string)
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			s = s[:10]
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			drop("date")
		} else {
			m["date"] = s
		}
	}

	if v, ok := m["title"]; ok {
		s, _ := v.(string)
		s = strings.TrimSpace(s)
		if r := []rune(s); len(r) > 120 {
			s = string(r[:120])
		}
		if s == "" {
			drop("title")
		} else {
			m["title"] = s
		}
	}

	if v, ok := m["participants"]; ok {
		list, _ := v.([]any)
		seen := map[string]struct{}{}
		var names []any
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if _, dup := seen[key]; s == "" || dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, s)
		}
		if len(names) == 0 {
			drop("participants")
		} else {
			m["participants"] = names
		}
	}

	if v, ok := m["confidence"]; ok {
		var f float64
		var valid bool
		switch t := v.(type) {
		case float64:
			f, valid = t, true
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			f, valid = parsed, err == nil
		}
		switch {
		case !valid:
			drop("confidence")
		case f < 0:
			m["confidence"] = 0.0
		case f > 1:
			m["confidence"] = 1.0
		default:
			m["confidence"] = f
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
