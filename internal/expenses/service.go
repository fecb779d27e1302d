package expenses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/async"
	"github.com/joseph-ayodele/expense-assistant/internal/cache"
	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/conversation"
	"github.com/joseph-ayodele/expense-assistant/internal/entity"
	"github.com/joseph-ayodele/expense-assistant/internal/events"
	"github.com/joseph-ayodele/expense-assistant/internal/nlp"
	"github.com/joseph-ayodele/expense-assistant/internal/repository"
)

const (
	defaultCacheSize  = 1000
	defaultCacheTTL   = 5 * time.Minute
	defaultSessionTTL = 30 * time.Minute
	maxTextLength     = 2000
	groupLoadTimeout  = 5 * time.Second
)

type Config struct {
	DefaultLocale   string
	DefaultCurrency string
	CacheSize       int
	CacheTTL        time.Duration
	SessionTTL      time.Duration
}

// groupContext is what an extraction needs to know about a group.
type groupContext struct {
	participants []string
	currency     string
	locale       string
}

type sessionEntry struct {
	session *conversation.Session
	groupID uuid.UUID
}

// Service runs conversations against group data and persists what the user confirms.
type Service struct {
	extractor    conversation.Extractor
	groups       repository.GroupRepository
	participants repository.ParticipantRepository
	expenses     repository.ExpenseRepository
	queue        async.Queue
	cfg          Config
	logger       *slog.Logger
	now          func() time.Time

	sessions *cache.LRUCache[*sessionEntry]
	groupsC  *cache.LRUCache[groupContext]
	flight   singleflight.Group
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	extractor conversation.Extractor,
	groups repository.GroupRepository,
	participants repository.ParticipantRepository,
	expenses repository.ExpenseRepository,
	queue async.Queue,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = constants.DefaultLocale
	}
	if code, ok := nlp.NormalizeCurrencyCode(cfg.DefaultCurrency); ok {
		cfg.DefaultCurrency = code
	} else {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}

	s := &Service{
		extractor:    extractor,
		groups:       groups,
		participants: participants,
		expenses:     expenses,
		queue:        queue,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		groupsC:      cache.NewLRUCache[groupContext](cfg.CacheSize, cfg.CacheTTL),
		sessions: cache.NewLRUCache[*sessionEntry](cfg.CacheSize, cfg.SessionTTL,
			cache.WithEvictHook(func(_ string, e *sessionEntry) { e.session.Cancel() })),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cleaners exposes the expiring caches to a janitor.
func (s *Service) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.sessions, s.groupsC}
}

// Turn is one step of a conversation as the client sees it.
type Turn struct {
	SessionID     string
	GroupID       uuid.UUID
	Locale        string
	Result        conversation.Result
	AmountDisplay string
	DateDisplay   string
}

// CreateGroupRequest represents group creation parameters.
type CreateGroupRequest struct {
	Name            string
	DefaultCurrency string
	Locale          string
	Participants    []string
}

// CreateGroup stores a group and its members in the given order.
func (s *Service) CreateGroup(ctx context.Context, req CreateGroupRequest) (*entity.Group, []string, error) {
	cur := strings.ToUpper(strings.TrimSpace(req.DefaultCurrency))
	if cur == "" {
		cur = s.cfg.DefaultCurrency
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}

	validator := common.NewValidator()
	validator.Field("name", req.Name, common.Required, common.MaxLength(120))
	validator.Field("default_currency", cur, common.CurrencyCode)
	validator.Field("locale", locale, common.LocaleTag)
	validator.Field("participants", req.Participants, common.NonEmptyList)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, nil, err
	}

	g, err := s.groups.CreateGroup(ctx, &entity.Group{
		Name:            strings.TrimSpace(req.Name),
		DefaultCurrency: cur,
		Locale:          nlp.ResolveLocale(locale),
	})
	if err != nil {
		return nil, nil, err
	}
	for _, name := range req.Participants {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.participants.AddParticipant(ctx, g.ID, name); err != nil {
			return nil, nil, err
		}
	}
	names, err := s.participants.ListNames(ctx, g.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("group created successfully", "group_id", g.ID, "participants", len(names))
	return g, names, nil
}

// AddParticipants appends members to a group, keeping existing ones and their
// order, and returns the updated list.
func (s *Service) AddParticipants(ctx context.Context, groupID uuid.UUID, names []string) ([]string, error) {
	if groupID == uuid.Nil {
		return nil, common.InvalidArgumentError("group_id is required")
	}
	validator := common.NewValidator()
	validator.Field("participants", names, common.NonEmptyList)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	defer s.InvalidateGroup(groupID)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.participants.AddParticipant(ctx, groupID, name); err != nil {
			return nil, err
		}
	}
	out, err := s.participants.ListNames(ctx, groupID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("participants added", "group_id", groupID, "participants", len(out))
	return out, nil
}

// ExtractRequest is a new user message, optionally continuing a session.
type ExtractRequest struct {
	SessionID string
	GroupID   uuid.UUID
	Text      string
	Locale    string
	Currency  string
}

// Extract runs one extraction. A message for an existing session supersedes
// whatever that session still has in flight.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*Turn, error) {
	if req.Locale == "" {
		req.Locale = common.LocaleFromContext(ctx, "")
	}
	validator := common.NewValidator()
	validator.Field("text", req.Text, common.Required, common.MaxLength(maxTextLength))
	validator.Field("locale", req.Locale, common.LocaleTag)
	if req.Currency != "" {
		validator.Field("currency", strings.ToUpper(strings.TrimSpace(req.Currency)), common.CurrencyCode)
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	var entry *sessionEntry
	if req.SessionID != "" {
		e, err := s.session(req.SessionID)
		if err != nil {
			return nil, err
		}
		entry = e
		if req.GroupID == uuid.Nil {
			req.GroupID = e.groupID
		} else if req.GroupID != e.groupID {
			return nil, fmt.Errorf("%w: session belongs to another group", common.ErrInvalidInput)
		}
	}
	if req.GroupID == uuid.Nil {
		return nil, common.InvalidArgumentError("group_id is required")
	}

	gc, err := s.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	locale := req.Locale
	if locale == "" {
		locale = gc.locale
	}
	currency := req.Currency
	if currency == "" {
		currency = gc.currency
	}

	if entry == nil {
		entry = &sessionEntry{session: conversation.NewSession(s.extractor), groupID: req.GroupID}
		s.sessions.Set(entry.session.ID, entry)
	} else {
		s.sessions.Touch(req.SessionID)
	}

	res, err := entry.session.Submit(ctx, conversation.Request{
		Text:         req.Text,
		Participants: gc.participants,
		Locale:       locale,
		Currency:     currency,
	})
	if err != nil {
		return nil, sessionError(err)
	}
	return s.turn(entry, res), nil
}

// Edit applies a manual correction to the latest result.
func (s *Service) Edit(ctx context.Context, sessionID string, p conversation.Patch) (*Turn, error) {
	entry, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := entry.session.Edit(p)
	if err != nil {
		return nil, sessionError(err)
	}
	s.sessions.Touch(sessionID)
	return s.turn(entry, res), nil
}

// Retry re-runs the last message of a session in the error state.
func (s *Service) Retry(ctx context.Context, sessionID string) (*Turn, error) {
	entry, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := entry.session.Retry(ctx)
	if err != nil {
		return nil, sessionError(err)
	}
	s.sessions.Touch(sessionID)
	return s.turn(entry, res), nil
}

// Cancel drops a session and anything it has in flight. Unknown ids are ignored.
func (s *Service) Cancel(sessionID string) {
	// the evict hook cancels the session
	s.sessions.Delete(sessionID)
}

// ConfirmRequest finalizes a session. AmountText and DateText are optional
// last-moment corrections typed in the user's locale.
type ConfirmRequest struct {
	SessionID  string
	AmountText string
	DateText   string
	RequestID  string
}

// Confirm validates the current result, stores it, queues the confirmed event
// and ends the session.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*entity.Expense, error) {
	entry, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	locale := nlp.ResolveLocale(entry.session.Request().Locale)

	var (
		patch   conversation.Patch
		patched bool
	)
	if strings.TrimSpace(req.AmountText) != "" {
		cents, ok := nlp.ParseAmount(req.AmountText, locale)
		if !ok {
			return nil, common.InvalidArgumentErrorf("amount %q is not a valid amount for %s", req.AmountText, locale)
		}
		patch.Amount, patched = &cents, true
	}
	if strings.TrimSpace(req.DateText) != "" {
		d, ok := nlp.ParseLocaleDate(req.DateText, locale, s.now().Location())
		if !ok {
			return nil, common.InvalidArgumentErrorf("date %q does not match %s", req.DateText, nlp.Pattern(locale).DateFormat)
		}
		patch.Date, patched = &d, true
	}
	if patched {
		if _, err := entry.session.Edit(patch); err != nil {
			return nil, sessionError(err)
		}
	}

	var saved *entity.Expense
	_, err = entry.session.Confirm(func(r conversation.Result) error {
		expense, err := s.toExpense(entry.groupID, locale, r)
		if err != nil {
			return err
		}
		saved, err = s.expenses.CreateExpense(ctx, expense)
		return err
	})
	if err != nil {
		return nil, sessionError(err)
	}
	s.sessions.Delete(req.SessionID)

	job := async.Job{
		Message:     events.NewExpenseConfirmedMessage(saved),
		SubmittedAt: s.now(),
		RequestID:   req.RequestID,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn("events.enqueue.error", "expense_id", saved.ID, "error", err)
	}

	s.logger.Info("expenses.confirm.ok",
		"expense_id", saved.ID,
		"group_id", saved.GroupID,
		"amount_cents", saved.AmountCents,
		"currency", saved.CurrencyCode)
	return saved, nil
}

// FormatAmount renders cents for display in locale.
func (s *Service) FormatAmount(cents int64, locale, currency string) string {
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	return nlp.FormatCurrency(cents, locale, currency)
}

func (s *Service) toExpense(groupID uuid.UUID, locale string, r conversation.Result) (*entity.Expense, error) {
	if !r.HasAmount {
		return nil, common.FailedPreconditionError("amount is missing; edit it before confirming")
	}
	if r.Intent != constants.IntentExpenseCreation {
		return nil, common.FailedPreconditionError(fmt.Sprintf("intent %q does not create an expense", r.Intent))
	}

	validator := common.NewValidator()
	validator.Field("amount", r.Amount, common.NonNegativeCents)
	validator.Field("currency", r.Currency, common.CurrencyCode)
	validator.Field("participants", r.Participants, common.NonEmptyList)
	validator.Field("title", r.Title, common.MaxLength(120))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	date := r.Date
	if !r.HasDate {
		now := s.now()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return &entity.Expense{
		GroupID:      groupID,
		Title:        r.Title,
		AmountCents:  r.Amount,
		CurrencyCode: r.Currency,
		TxDate:       date,
		Participants: r.Participants,
		Locale:       locale,
		Confidence:   r.Confidence,
	}, nil
}

func (s *Service) session(id string) (*sessionEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, common.InvalidArgumentError("session_id is required")
	}
	e, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", common.ErrNotFound, id)
	}
	return e, nil
}

// loadGroup reads a group's defaults and members once per TTL; concurrent
// misses for the same group share one load.
func (s *Service) loadGroup(ctx context.Context, groupID uuid.UUID) (groupContext, error) {
	key := groupID.String()
	if gc, ok := s.groupsC.Get(key); ok {
		return gc, nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), groupLoadTimeout)
		defer cancel()

		g, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return groupContext{}, err
		}
		names, err := s.participants.ListNames(ctx, groupID)
		if err != nil {
			return groupContext{}, err
		}
		gc := groupContext{participants: names, currency: g.DefaultCurrency, locale: g.Locale}
		s.groupsC.Set(key, gc)
		return gc, nil
	})
	if err != nil {
		return groupContext{}, err
	}
	return v.(groupContext), nil
}

// InvalidateGroup drops the cached members of a group.
func (s *Service) InvalidateGroup(groupID uuid.UUID) {
	key := groupID.String()
	s.flight.Forget(key)
	s.groupsC.Delete(key)
}

func (s *Service) turn(e *sessionEntry, r conversation.Result) *Turn {
	locale := nlp.ResolveLocale(e.session.Request().Locale)
	t := &Turn{
		SessionID: e.session.ID,
		GroupID:   e.groupID,
		Locale:    locale,
		Result:    r,
	}
	if r.HasAmount {
		t.AmountDisplay = nlp.FormatCurrency(r.Amount, locale, r.Currency)
	}
	if r.HasDate {
		t.DateDisplay = nlp.FormatDate(r.Date, locale)
	}
	return t
}

// sessionError maps conversation errors onto application sentinels.
func sessionError(err error) error {
	switch {
	case errors.Is(err, conversation.ErrInvalidTransition),
		errors.Is(err, conversation.ErrStaleResult),
		errors.Is(err, conversation.ErrNoResult):
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	case errors.Is(err, conversation.ErrInvalidEdit):
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	default:
		return err
	}
}
