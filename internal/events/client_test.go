package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/internal/entity"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testExpense() *entity.Expense {
	return &entity.Expense{
		ID:           uuid.New(),
		GroupID:      uuid.New(),
		Title:        "dinner",
		AmountCents:  5000,
		CurrencyCode: "USD",
		TxDate:       time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestAMQPClient_PublishExpenseConfirmed(t *testing.T) {
	ch := &fakeChannel{}
	c := &AMQPClient{channel: ch, exchangeName: "expenses", queueName: "expenses.confirmed", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	msg := NewExpenseConfirmedMessage(testExpense())
	require.NoError(t, c.PublishExpenseConfirmed(context.Background(), msg))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "expenses", ch.exchange)
	assert.Equal(t, "expenses.confirmed", ch.key)
	pub := ch.published[0]
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp091.Persistent, pub.DeliveryMode)
	assert.Equal(t, msg.EventID.String(), pub.MessageId)

	decoded, err := ExpenseConfirmedMessageFromJSON(pub.Body)
	require.NoError(t, err)
	assert.Equal(t, msg.ExpenseID, decoded.ExpenseID)
	assert.Equal(t, "2024-06-11", decoded.TxDate)
	assert.Equal(t, []string{}, decoded.Participants)

	require.NoError(t, c.Close())
	assert.True(t, ch.closed)
}

func TestAMQPClient_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	c := &AMQPClient{channel: ch, logger: slog.Default()}

	err := c.PublishExpenseConfirmed(context.Background(), NewExpenseConfirmedMessage(testExpense()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}

func TestNoopPublisher(t *testing.T) {
	p := NoopPublisher{}
	assert.NoError(t, p.PublishExpenseConfirmed(context.Background(), NewExpenseConfirmedMessage(testExpense())))
	assert.NoError(t, p.Close())
}
