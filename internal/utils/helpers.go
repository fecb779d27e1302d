package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/conversation"
	"github.com/joseph-ayodele/expense-assistant/internal/entity"
	"github.com/joseph-ayodele/expense-assistant/internal/expenses"
)

func toList(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ToPBTurn renders a conversation step. amount_cents and date are omitted
// when nothing was found.
func ToPBTurn(t *expenses.Turn) (*structpb.Struct, error) {
	r := t.Result
	m := map[string]interface{}{
		"session_id":   t.SessionID,
		"group_id":     t.GroupID.String(),
		"locale":       t.Locale,
		"state":        string(r.State),
		"outcome":      string(r.Outcome),
		"confidence":   r.Confidence,
		"intent":       string(r.Intent),
		"currency":     r.Currency,
		"title":        r.Title,
		"participants": toList(r.Participants),
	}
	if r.HasAmount {
		m["amount_cents"] = r.Amount
		m["amount_display"] = t.AmountDisplay
	}
	if r.HasDate {
		m["date"] = r.Date.Format(time.DateOnly)
		m["date_display"] = t.DateDisplay
	}
	if f := r.Failure; f != nil {
		failure := map[string]interface{}{
			"kind":    string(f.Kind),
			"message": f.Message,
		}
		if f.RetryAfter > 0 {
			failure["retry_after_seconds"] = f.RetryAfter.Seconds()
		}
		m["failure"] = failure
	}
	sources := make(map[string]interface{}, len(r.Sources))
	for k, v := range r.Sources {
		sources[k] = string(v)
	}
	m["sources"] = sources
	return structpb.NewStruct(m)
}

func ToPBExpense(e *entity.Expense) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":            e.ID.String(),
		"group_id":      e.GroupID.String(),
		"title":         e.Title,
		"amount_cents":  e.AmountCents,
		"currency_code": e.CurrencyCode,
		"tx_date":       e.TxDate.Format(time.DateOnly),
		"participants":  toList(e.Participants),
		"locale":        e.Locale,
		"confidence":    e.Confidence,
		"created_at":    e.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func ToPBGroup(g *entity.Group, participants []string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":               g.ID.String(),
		"name":             g.Name,
		"default_currency": g.DefaultCurrency,
		"locale":           g.Locale,
		"participants":     toList(participants),
	})
}

func ToPBParticipants(groupID uuid.UUID, participants []string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"group_id":     groupID.String(),
		"participants": toList(participants),
	})
}

// String returns a string field, or "" when absent.
func String(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// Strings returns a list-of-strings field; ok is false when the key is absent.
func Strings(s *structpb.Struct, key string) ([]string, bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, false, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, true, fmt.Errorf("%s must be a list of strings", key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		str, isStr := item.GetKind().(*structpb.Value_StringValue)
		if !isStr {
			return nil, true, fmt.Errorf("%s must be a list of strings", key)
		}
		out = append(out, str.StringValue)
	}
	return out, true, nil
}

// Cents reads a whole-number field; ok is false when the key is absent.
func Cents(s *structpb.Struct, key string) (int64, bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false, nil
	}
	num, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || num.NumberValue != math.Trunc(num.NumberValue) || math.Abs(num.NumberValue) > 1<<53 {
		return 0, true, fmt.Errorf("%s must be a whole number of cents", key)
	}
	return int64(num.NumberValue), true, nil
}

func UUID(s *structpb.Struct, key string) (uuid.UUID, error) {
	raw := String(s, key)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID", key)
	}
	return id, nil
}

// PatchFromPB reads the optional correction fields of an edit request.
func PatchFromPB(s *structpb.Struct) (conversation.Patch, error) {
	var p conversation.Patch

	cents, ok, err := Cents(s, "amount_cents")
	if err != nil {
		return p, err
	}
	if ok {
		p.Amount = &cents
	}

	if raw := String(s, "date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return p, fmt.Errorf("date must be YYYY-MM-DD")
		}
		p.Date = &d
	}

	names, ok, err := Strings(s, "participants")
	if err != nil {
		return p, err
	}
	if ok {
		p.Participants = names
	}

	if _, ok := s.GetFields()["currency"]; ok {
		c := String(s, "currency")
		p.Currency = &c
	}
	if _, ok := s.GetFields()["intent"]; ok {
		in := constants.Intent(String(s, "intent"))
		p.Intent = &in
	}
	if _, ok := s.GetFields()["title"]; ok {
		t := String(s, "title")
		p.Title = &t
	}
	return p, nil
}
