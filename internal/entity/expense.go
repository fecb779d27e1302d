package entity

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a confirmed expense for data transfer between layers.
type Expense struct {
	ID           uuid.UUID `json:"id"`
	GroupID      uuid.UUID `json:"group_id"`
	Title        string    `json:"title"`
	AmountCents  int64     `json:"amount_cents"`
	CurrencyCode string    `json:"currency_code"`
	TxDate       time.Time `json:"tx_date"`
	Participants []string  `json:"participants"`
	Locale       string    `json:"locale"`
	Confidence   float64   `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
}
