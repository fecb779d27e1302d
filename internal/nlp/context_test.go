package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/expense-assistant/constants"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text      string
		hasAmount bool
		want      constants.Intent
	}{
		{"I paid $50 for dinner", true, constants.IntentExpenseCreation},
		{"Has Bob paid me back yet?", false, constants.IntentReimbursementStatus},
		{"Was the refund processed", false, constants.IntentReimbursementStatus},
		{"How much do I owe Alice?", false, constants.IntentBalanceQuery},
		{"Show my expense history", false, constants.IntentExpenseHistory},
		{"Add member Carol please", false, constants.IntentGroupManagement},
		{"€20 hmm", true, constants.IntentExpenseCreation},
		{"hello there", false, constants.IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.text, tt.hasAmount))
		})
	}
}

func TestHasExpenseContext(t *testing.T) {
	assert.True(t, HasExpenseContext("Dinner with John"))
	assert.True(t, HasExpenseContext("we SPLIT the bill"))
	assert.False(t, HasExpenseContext("hello world"))
	assert.False(t, HasExpenseContext("paidoff"))
}

func TestDetectCurrencyFollowsExtractedAmount(t *testing.T) {
	text := "abcUSD5 and €7"
	cents, ok := ExtractAmount(text)
	assert.True(t, ok)
	assert.Equal(t, int64(700), cents)

	code, ok := DetectCurrency(text, "en-US")
	assert.True(t, ok)
	assert.Equal(t, "EUR", code)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I paid $50 for dinner with John and Jane yesterday", "dinner"},
		{"Paid 20€ for the taxi.", "taxi"},
		{"$4 for coffee", "coffee"},
		{"for Bob's birthday gift at the mall", "Bob's birthday gift"},
		{"Spent 30 on groceries", ""},
		{"paid for 2 pizzas", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.text))
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		text   string
		locale string
		want   string
		found  bool
	}{
		{"$25 lunch", "en-US", "USD", true},
		{"25,50 € Essen", "de-DE", "EUR", true},
		{"£10 coffee", "en-US", "GBP", true},
		{"¥100", "zh-CN", "CNY", true},
		{"¥100", "en-US", "JPY", true},
		{"20 zł", "en-US", "PLN", true},
		{"NT$300", "en-US", "TWD", true},
		{"NT$300", "zh-TW", "TWD", true},
		{"5 EUR", "en-US", "EUR", true},
		{"100 GBP", "en-US", "GBP", true},
		{"₹500", "en-US", "INR", true},
		{"15 bucks", "de-DE", "USD", true},
		{"no money", "en-US", "", false},
		{"abcUSD5 and €7", "en-US", "EUR", true},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.text, func(t *testing.T) {
			got, ok := DetectCurrency(tt.text, tt.locale)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
