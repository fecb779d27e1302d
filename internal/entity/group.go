package entity

import (
	"time"

	"github.com/google/uuid"
)

// Group is a set of people sharing expenses in one currency.
type Group struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DefaultCurrency string    `json:"default_currency"`
	Locale          string    `json:"locale"`
	CreatedAt       time.Time `json:"created_at"`
}

// Participant is a group member. Position fixes the canonical order.
type Participant struct {
	GroupID  uuid.UUID `json:"group_id"`
	Name     string    `json:"name"`
	Position int32     `json:"position"`
}
