package llm

import "context"

// ExpenseFields is the structured guess we want back from the model.
// Amount is a decimal string in major units; Date is YYYY-MM-DD.
type ExpenseFields struct {
	Intent          string   `json:"intent"`
	Amount          string   `json:"amount,omitempty"`
	Currency        string   `json:"currency,omitempty"` // ISO 4217
	Date            string   `json:"date,omitempty"`
	Title           string   `json:"title,omitempty"`
	Participants    []string `json:"participants,omitempty"`
	ModelConfidence float32  `json:"confidence,omitempty"` // optional (0..1)
}

type ExtractRequest struct {
	Text            string
	Participants    []string // canonical names, in group order
	Intents         []string
	Locale          string
	DefaultCurrency string
	Today           string // YYYY-MM-DD anchor for relative dates
	Timezone        string
}

// FieldExtractor is the interface the conversation layer depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ExpenseFields, []byte /*rawJSON*/, error)
}
