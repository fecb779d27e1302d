package events

import (
	"context"
	"log/slog"
)

// Publisher delivers confirmed-expense events.
type Publisher interface {
	PublishExpenseConfirmed(ctx context.Context, msg *ExpenseConfirmedMessage) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	Logger *slog.Logger
}

func (p NoopPublisher) PublishExpenseConfirmed(ctx context.Context, msg *ExpenseConfirmedMessage) error {
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "events.publish.skipped", "expense_id", msg.ExpenseID)
	}
	return nil
}

func (NoopPublisher) Close() error { return nil }
