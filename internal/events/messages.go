package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/expense-assistant/internal/entity"
)

// ExpenseConfirmedMessage announces an expense the user confirmed and that
// was persisted. Consumers fetch nothing else; the payload is complete.
type ExpenseConfirmedMessage struct {
	EventID      uuid.UUID `json:"event_id"`
	ExpenseID    uuid.UUID `json:"expense_id"`
	GroupID      uuid.UUID `json:"group_id"`
	Title        string    `json:"title,omitempty"`
	AmountCents  int64     `json:"amount_cents"`
	CurrencyCode string    `json:"currency_code"`
	TxDate       string    `json:"tx_date"`
	Participants []string  `json:"participants"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewExpenseConfirmedMessage builds the event for a stored expense.
func NewExpenseConfirmedMessage(e *entity.Expense) *ExpenseConfirmedMessage {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return &ExpenseConfirmedMessage{
		EventID:      uuid.New(),
		ExpenseID:    e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		AmountCents:  e.AmountCents,
		CurrencyCode: e.CurrencyCode,
		TxDate:       e.TxDate.Format(time.DateOnly),
		Participants: participants,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseConfirmedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseConfirmedMessageFromJSON decodes a message body.
func ExpenseConfirmedMessageFromJSON(data []byte) (*ExpenseConfirmedMessage, error) {
	var msg ExpenseConfirmedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
