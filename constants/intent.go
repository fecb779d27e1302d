package constants

import (
	"strings"
)

type Intent string

const (
	IntentExpenseCreation     Intent = "expense_creation"
	IntentBalanceQuery        Intent = "balance_query"
	IntentGroupManagement     Intent = "group_management"
	IntentExpenseHistory      Intent = "expense_history"
	IntentReimbursementStatus Intent = "reimbursement_status"
	IntentUnclear             Intent = "unclear"
)

var allIntents = []Intent{
	IntentExpenseCreation,
	IntentBalanceQuery,
	IntentGroupManagement,
	IntentExpenseHistory,
	IntentReimbursementStatus,
	IntentUnclear,
}

// AllIntents returns the supported intents as strings, in declaration order.
func AllIntents() []string {
	result := make([]string, len(allIntents))
	for i, in := range allIntents {
		result[i] = string(in)
	}
	return result
}

// IsValidIntent reports whether candidate is exactly one of the supported intents.
// Matching is case-sensitive; upstream is expected to send the canonical tag.
func IsValidIntent(candidate string) bool {
	for _, in := range allIntents {
		if candidate == string(in) {
			return true
		}
	}
	return false
}

// Canonicalize is the lenient counterpart used when sanitizing model output:
// it trims, lowercases and maps a few synonyms before the strict check.
func Canonicalize(input string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return IntentUnclear, false
	}
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	synonyms := map[string]Intent{
		"expense":        IntentExpenseCreation,
		"create_expense": IntentExpenseCreation,
		"add_expense":    IntentExpenseCreation,
		"balance":        IntentBalanceQuery,
		"history":        IntentExpenseHistory,
		"reimbursement":  IntentReimbursementStatus,
		"group":          IntentGroupManagement,
		"unknown":        IntentUnclear,
	}
	if in, ok := synonyms[normalized]; ok {
		return in, true
	}
	if IsValidIntent(normalized) {
		return Intent(normalized), true
	}
	return IntentUnclear, false
}
