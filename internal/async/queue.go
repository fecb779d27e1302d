package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/expense-assistant/internal/events"
)

// Job is one confirmed-expense event waiting for delivery.
type Job struct {
	Message     *events.ExpenseConfirmedMessage
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
