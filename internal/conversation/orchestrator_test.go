package conversation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/llm"
)

var fixedNow = time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ExpenseFields, []byte, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(llm.ExpenseFields), nil, args.Error(1)
}

func newTestOrchestrator(model llm.FieldExtractor, cfg Config) *Orchestrator {
	return NewOrchestrator(model, cfg,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func dinnerRequest() Request {
	return Request{
		Text:         "I paid $50 for dinner with John and Jane yesterday",
		Participants: []string{"John", "Jane", "Bob"},
		Locale:       "en-US",
		Currency:     "USD",
	}
}

func TestExtractLocalFallbackWithoutModel(t *testing.T) {
	o := newTestOrchestrator(nil, Config{})

	res, err := o.Extract(context.Background(), dinnerRequest())
	require.NoError(t, err)

	assert.True(t, res.HasAmount)
	assert.Equal(t, int64(5000), res.Amount)
	assert.True(t, res.HasDate)
	assert.Equal(t, time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC), res.Date)
	assert.Equal(t, []string{"John", "Jane"}, res.Participants)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, constants.IntentExpenseCreation, res.Intent)
	assert.Equal(t, "dinner", res.Title)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, constants.OutcomeDegraded, res.Outcome)
	require.NotNil(t, res.Failure)
	assert.Equal(t, KindAPIUnavailable, res.Failure.Kind)
	assert.Equal(t, constants.SourceLocal, res.Sources[FieldAmount])
}

func TestExtractModelFieldsWin(t *testing.T) {
	model := &mockModel{}
	model.On("ExtractFields", mock.Anything, mock.MatchedBy(func(r llm.ExtractRequest) bool {
		return r.Today == "2024-06-12" && r.DefaultCurrency == "USD" && len(r.Intents) == 6
	})).Return(llm.ExpenseFields{
		Intent:       "expense_creation",
		Amount:       "52.30",
		Currency:     "usd",
		Date:         "2024-06-10",
		Title:        "Dinner at Luigi's",
		Participants: []string{"jane", "JOHN", "Zed"},
	}, nil)

	o := newTestOrchestrator(model, Config{})
	res, err := o.Extract(context.Background(), dinnerRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(5230), res.Amount)
	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), res.Date)
	assert.Equal(t, []string{"John", "Jane"}, res.Participants)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, "Dinner at Luigi's", res.Title)
	assert.Equal(t, constants.OutcomeSuccess, res.Outcome)
	assert.Nil(t, res.Failure)
	for _, f := range []string{FieldAmount, FieldDate, FieldParticipants, FieldCurrency, FieldIntent, FieldTitle} {
		assert.Equal(t, constants.SourceModel, res.Sources[f], f)
	}
	model.AssertExpectations(t)
}

func TestExtractBackfillsMissingAndInvalidFields(t *testing.T) {
	model := &mockModel{}
	model.On("ExtractFields", mock.Anything, mock.Anything).Return(llm.ExpenseFields{
		Intent:       "unclear",
		Amount:       "-5",
		Date:         "June 11",
		Currency:     "ZZ",
		Participants: []string{"Stranger"},
	}, nil)

	o := newTestOrchestrator(model, Config{})
	res, err := o.Extract(context.Background(), dinnerRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(5000), res.Amount)
	assert.Equal(t, time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC), res.Date)
	assert.Equal(t, []string{"John", "Jane"}, res.Participants)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, constants.IntentExpenseCreation, res.Intent)
	assert.Equal(t, constants.OutcomeSuccess, res.Outcome)
	for _, f := range []string{FieldAmount, FieldDate, FieldParticipants, FieldCurrency, FieldIntent, FieldTitle} {
		assert.Equal(t, constants.SourceLocal, res.Sources[f], f)
	}
}

func TestExtractModelTimeoutFallsBack(t *testing.T) {
	model := &mockModel{}
	model.On("ExtractFields", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(llm.ExpenseFields{}, context.DeadlineExceeded)

	o := newTestOrchestrator(model, Config{ModelTimeout: 20 * time.Millisecond})
	res, err := o.Extract(context.Background(), dinnerRequest())
	require.NoError(t, err)

	require.NotNil(t, res.Failure)
	assert.Equal(t, KindTimeout, res.Failure.Kind)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, constants.OutcomeDegraded, res.Outcome)
	assert.Equal(t, int64(5000), res.Amount)
}

func TestExtractFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"parse", llm.ErrMalformedOutput, KindParseError},
		{"rate limit", &llm.StatusError{StatusCode: 429, RetryAfter: time.Minute}, KindRateLimit},
		{"unknown", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &mockModel{}
			model.On("ExtractFields", mock.Anything, mock.Anything).Return(llm.ExpenseFields{}, tt.err)

			res, err := newTestOrchestrator(model, Config{}).Extract(context.Background(), dinnerRequest())
			require.NoError(t, err)
			require.NotNil(t, res.Failure)
			assert.Equal(t, tt.want, res.Failure.Kind)
			assert.Equal(t, constants.OutcomeDegraded, res.Outcome)
		})
	}
}

func TestExtractLowConfidence(t *testing.T) {
	o := newTestOrchestrator(nil, Config{})
	res, err := o.Extract(context.Background(), Request{Text: "hello there", Participants: []string{"Ann"}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, constants.OutcomeFailed, res.Outcome)
	assert.Equal(t, constants.IntentUnclear, res.Intent)
	assert.False(t, res.HasAmount)
	assert.False(t, res.HasDate)
	assert.NotNil(t, res.Participants)
	assert.Empty(t, res.Participants)
}

func TestExtractUsesGroupCurrencyAndLooseAmount(t *testing.T) {
	o := newTestOrchestrator(nil, Config{})
	res, err := o.Extract(context.Background(), Request{Text: "Spent 30 on groceries", Locale: "de-DE", Currency: "eur"})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), res.Amount)
	assert.Equal(t, "EUR", res.Currency)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, StateSuccess, res.State)
	_, sourced := res.Sources[FieldCurrency]
	assert.False(t, sourced)
}

func TestExtractMinConfidenceThreshold(t *testing.T) {
	o := newTestOrchestrator(nil, Config{MinConfidence: 0.75})
	res, err := o.Extract(context.Background(), Request{Text: "Spent 30 on groceries"})
	require.NoError(t, err)
	assert.Equal(t, StateError, res.State)
}

func TestExtractCallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(nil, Config{}).Extract(ctx, dinnerRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModelAmount(t *testing.T) {
	tests := []struct {
		in    string
		want  int64
		valid bool
	}{
		{"50", 5000, true},
		{"50.5", 5050, true},
		{"1234.56", 123456, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := modelAmount(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
