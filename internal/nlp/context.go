package nlp

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

var expenseKeywords = []string{
	"paid", "pay", "spent", "spend", "bought", "buy", "cost", "costs", "split",
	"bill", "dinner", "lunch", "breakfast", "brunch", "groceries", "coffee", "drinks",
	"taxi", "uber", "cab", "fuel", "gas", "rent", "hotel", "tickets", "ticket",
	"movie", "restaurant", "shopping", "snacks", "pizza", "flight", "train",
}

// Phrase lists per intent, checked in this order. Reimbursement comes before
// expense creation because "paid back" contains "paid".
var intentPhrases = []struct {
	intent  constants.Intent
	phrases []string
}{
	{constants.IntentReimbursementStatus, []string{"reimburse", "reimbursed", "reimbursement", "paid back", "paid me back", "pay back", "pay me back", "refund", "settled up"}},
	{constants.IntentBalanceQuery, []string{"balance", "balances", "owe", "owes", "owed", "how much do", "who owes"}},
	{constants.IntentExpenseHistory, []string{"history", "recent expenses", "last expenses", "past expenses", "show expenses", "list expenses", "what did we spend"}},
	{constants.IntentGroupManagement, []string{"add member", "remove member", "create group", "new group", "invite", "leave group", "rename group", "add participant", "remove participant"}},
	{constants.IntentExpenseCreation, []string{"paid", "spent", "bought", "split", "cost", "costs", "covered"}},
}

var titleRE = regexp.MustCompile(`(?i)\bfor\s+(?:the\s+|a\s+|an\s+|some\s+|our\s+)?(\p{L}[\p{L}'\- ]*?)\s*(?:\b(?:with|yesterday|today|at|on|and split|split|last|this|from|in)\b|[.,;!?(]|$)`)

// HasExpenseContext reports whether text carries a spending keyword.
func HasExpenseContext(text string) bool {
	folded := fold(text)
	for _, k := range expenseKeywords {
		if containsWord(folded, k) {
			return true
		}
	}
	return false
}

// ClassifyIntent is the keyword classifier used when the model gives no intent.
// A detected amount alone is enough for expense creation.
func ClassifyIntent(text string, hasAmount bool) constants.Intent {
	folded := fold(text)
	for _, group := range intentPhrases {
		for _, p := range group.phrases {
			if containsWord(folded, p) {
				return group.intent
			}
		}
	}
	if hasAmount {
		return constants.IntentExpenseCreation
	}
	return constants.IntentUnclear
}

// ExtractTitle pulls a short description from "... for <thing> ...".
func ExtractTitle(text string) string {
	m := titleRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := strings.TrimSpace(m[1])
	if len([]rune(title)) > 80 {
		title = string([]rune(title)[:80])
	}
	return title
}

// DetectCurrency maps the symbol of the amount ExtractAmount would pick to an
// ISO code. "¥" and "元" are read as CNY for Chinese locales and JPY elsewhere.
func DetectCurrency(text, locale string) (string, bool) {
	_, sym, ok := findAmount(text)
	if !ok {
		return "", false
	}
	key := ResolveLocale(locale)

	p := patterns[key]
	for _, s := range p.Symbols {
		if strings.EqualFold(s, sym) {
			return p.CurrencyCode, true
		}
	}
	switch strings.ToLower(sym) {
	case "¥", "￥", "元":
		if strings.HasPrefix(key, "zh") {
			return "CNY", true
		}
		return "JPY", true
	case "euro", "euros":
		return "EUR", true
	case "dollar", "dollars", "bucks":
		return "USD", true
	case "pounds":
		return "GBP", true
	case "yen":
		return "JPY", true
	case "a$":
		return "AUD", true
	case "c$":
		return "CAD", true
	}
	for code, s := range displaySymbols {
		if strings.EqualFold(s, sym) {
			return code, true
		}
	}
	for _, tag := range constants.SupportedLocales {
		for _, s := range patterns[tag].Symbols {
			if strings.EqualFold(s, sym) {
				return patterns[tag].CurrencyCode, true
			}
		}
	}
	if code, ok := NormalizeCurrencyCode(sym); ok {
		return code, true
	}
	return "", false
}
