package conversation

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/llm"
	"github.com/joseph-ayodele/expense-assistant/internal/nlp"
	"github.com/joseph-ayodele/expense-assistant/internal/observability"
)

const (
	DefaultModelTimeout  = 15 * time.Second
	DefaultMinConfidence = 0.5
)

// Field names used in Result.Sources.
const (
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldParticipants = "participants"
	FieldCurrency     = "currency"
	FieldIntent       = "intent"
	FieldTitle        = "title"
)

type Config struct {
	ModelTimeout    time.Duration
	MinConfidence   float64
	DefaultLocale   string
	DefaultCurrency string
}

// Request is one user message plus the group context it was typed in.
type Request struct {
	Text         string
	Participants []string // canonical, in group order
	Locale       string
	Currency     string // group currency, used when the text names none
}

// Result is the merged candidate expense. Amount and Date are only meaningful
// when HasAmount / HasDate are set.
type Result struct {
	Amount       int64
	HasAmount    bool
	Date         time.Time
	HasDate      bool
	Participants []string
	Currency     string
	Intent       constants.Intent
	Title        string

	Confidence float64
	State      State
	Outcome    constants.Outcome
	Failure    *Failure
	Sources    map[string]constants.FieldSource
}

// Extractor is what a Session drives; *Orchestrator is the production one.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Result, error)
}

type Orchestrator struct {
	model  llm.FieldExtractor
	cfg    Config
	now    func() time.Time
	log    *slog.Logger
	tracer trace.Tracer
}

type Option func(*Orchestrator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// NewOrchestrator builds the extraction pipeline. model may be nil, in which
// case every extraction runs on the local extractors alone.
func NewOrchestrator(model llm.FieldExtractor, cfg Config, opts ...Option) *Orchestrator {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = constants.DefaultLocale
	}
	if code, ok := nlp.NormalizeCurrencyCode(cfg.DefaultCurrency); ok {
		cfg.DefaultCurrency = code
	} else {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}

	o := &Orchestrator{
		model:  model,
		cfg:    cfg,
		now:    time.Now,
		log:    slog.Default(),
		tracer: otel.Tracer("expense-assistant/conversation"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// localFields is what the regex and keyword extractors found.
type localFields struct {
	amount       int64
	hasAmount    bool
	date         time.Time
	hasDate      bool
	participants []string
	currency     string
	hasCurrency  bool
	intent       constants.Intent
	title        string
	context      bool
}

// Extract runs the model under a timeout, then the local extractors, and merges
// the two. The error is non-nil only when ctx itself is done; model failures are
// reported through Result.Failure.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ctx, span := o.tracer.Start(ctx, "conversation.Extract")
	defer span.End()

	start := time.Now()
	now := o.now()
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = o.cfg.DefaultLocale
	}
	groupCurrency, ok := nlp.NormalizeCurrencyCode(req.Currency)
	if !ok {
		groupCurrency = o.cfg.DefaultCurrency
	}

	fields, modelErr := o.callModel(ctx, req, locale, groupCurrency, now)
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	local := extractLocal(req.Text, locale, req.Participants, now)
	res := o.merge(fields, modelErr, local, req.Participants, groupCurrency, now)

	res.Confidence = Confidence(Signals{
		Amount:       res.HasAmount,
		Title:        res.Title != "",
		Participants: len(res.Participants) > 0,
		Context:      local.context,
	})
	if res.Confidence >= o.cfg.MinConfidence {
		res.State = StateSuccess
	} else {
		res.State = StateError
	}
	switch {
	case res.State == StateError:
		res.Outcome = constants.OutcomeFailed
	case modelErr == nil:
		res.Outcome = constants.OutcomeSuccess
	default:
		res.Outcome = constants.OutcomeDegraded
	}

	span.SetAttributes(
		attribute.String("extract.outcome", string(res.Outcome)),
		attribute.String("extract.state", string(res.State)),
		attribute.Float64("extract.confidence", res.Confidence),
	)
	observability.ExtractionsTotal.WithLabelValues(string(res.Outcome), string(res.State)).Inc()

	if res.Failure != nil {
		o.log.Warn("conversation.extract.fallback",
			"kind", res.Failure.Kind,
			"error", res.Failure.Message,
			"state", res.State,
			"confidence", res.Confidence,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else {
		o.log.Info("conversation.extract.ok",
			"state", res.State,
			"confidence", res.Confidence,
			"intent", res.Intent,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	return res, nil
}

func (o *Orchestrator) callModel(ctx context.Context, req Request, locale, currency string, now time.Time) (llm.ExpenseFields, error) {
	if o.model == nil {
		return llm.ExpenseFields{}, llm.ErrUnavailable
	}

	mctx, cancel := context.WithTimeout(ctx, o.cfg.ModelTimeout)
	defer cancel()

	start := time.Now()
	fields, _, err := o.model.ExtractFields(mctx, llm.ExtractRequest{
		Text:            req.Text,
		Participants:    req.Participants,
		Intents:         constants.AllIntents(),
		Locale:          locale,
		DefaultCurrency: currency,
		Today:           now.Format(time.DateOnly),
		Timezone:        now.Location().String(),
	})
	observability.ModelDuration.Observe(time.Since(start).Seconds())

	// A model that ignores its deadline still counts as timed out.
	if err == nil && mctx.Err() != nil {
		err = mctx.Err()
	}
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
	}
	return fields, err
}

func extractLocal(text, locale string, participants []string, now time.Time) localFields {
	var lf localFields
	lf.amount, lf.hasAmount = nlp.ExtractAmount(text)
	if !lf.hasAmount {
		lf.amount, lf.hasAmount = nlp.ExtractAmountLoose(text)
	}
	lf.date, lf.hasDate = nlp.ExtractDateFor(text, locale, now)
	lf.participants = nlp.ExtractNames(text, participants)
	lf.currency, lf.hasCurrency = nlp.DetectCurrency(text, locale)
	lf.intent = nlp.ClassifyIntent(text, lf.hasAmount)
	lf.title = nlp.ExtractTitle(text)
	lf.context = nlp.HasExpenseContext(text)
	return lf
}

// merge keeps every model field that validates and backfills the rest from local.
func (o *Orchestrator) merge(fields llm.ExpenseFields, modelErr error, local localFields, participants []string, groupCurrency string, now time.Time) Result {
	res := Result{
		Participants: []string{},
		Sources:      map[string]constants.FieldSource{},
	}
	if modelErr != nil {
		f := Classify(modelErr)
		res.Failure = &f
		observability.ModelFailuresTotal.WithLabelValues(string(f.Kind)).Inc()
		fields = llm.ExpenseFields{}
	}

	if cents, ok := modelAmount(fields.Amount); ok {
		res.Amount, res.HasAmount = cents, true
		res.Sources[FieldAmount] = constants.SourceModel
	} else if local.hasAmount {
		res.Amount, res.HasAmount = local.amount, true
		o.backfilled(res.Sources, FieldAmount)
	}

	if d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(fields.Date), now.Location()); err == nil {
		res.Date, res.HasDate = d, true
		res.Sources[FieldDate] = constants.SourceModel
	} else if local.hasDate {
		res.Date, res.HasDate = local.date, true
		o.backfilled(res.Sources, FieldDate)
	}

	if names := canonicalNames(fields.Participants, participants); len(names) > 0 {
		res.Participants = names
		res.Sources[FieldParticipants] = constants.SourceModel
	} else if len(local.participants) > 0 {
		res.Participants = local.participants
		o.backfilled(res.Sources, FieldParticipants)
	}

	if code, ok := validCurrency(fields.Currency); ok {
		res.Currency = code
		res.Sources[FieldCurrency] = constants.SourceModel
	} else if local.hasCurrency {
		res.Currency = local.currency
		o.backfilled(res.Sources, FieldCurrency)
	} else {
		res.Currency = groupCurrency
	}

	// "unclear" from the model is treated as unset so the keyword classifier can weigh in.
	if constants.IsValidIntent(fields.Intent) && constants.Intent(fields.Intent) != constants.IntentUnclear {
		res.Intent = constants.Intent(fields.Intent)
		res.Sources[FieldIntent] = constants.SourceModel
	} else {
		res.Intent = local.intent
		o.backfilled(res.Sources, FieldIntent)
	}

	if title := strings.TrimSpace(fields.Title); title != "" {
		res.Title = title
		res.Sources[FieldTitle] = constants.SourceModel
	} else if local.title != "" {
		res.Title = local.title
		o.backfilled(res.Sources, FieldTitle)
	}
	return res
}

func (o *Orchestrator) backfilled(sources map[string]constants.FieldSource, field string) {
	sources[field] = constants.SourceLocal
	observability.FieldBackfillsTotal.WithLabelValues(field).Inc()
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// modelAmount converts a non-negative decimal string in major units to cents.
func modelAmount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, false
	}
	return cents.IntPart(), true
}

func validCurrency(code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	return nlp.NormalizeCurrencyCode(code)
}

// canonicalNames maps model names onto the canonical list, in canonical order.
// Names the group does not know are dropped.
func canonicalNames(names, participants []string) []string {
	if len(names) == 0 {
		return nil
	}
	matched := make(map[string]struct{}, len(names))
	for _, n := range names {
		if c, ok := nlp.MatchParticipant(n, participants); ok {
			matched[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(matched))
	for _, p := range participants {
		if _, ok := matched[p]; ok {
			out = append(out, p)
			delete(matched, p)
		}
	}
	return out
}
