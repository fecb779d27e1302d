package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/expense-assistant/constants"
	"github.com/joseph-ayodele/expense-assistant/internal/nlp"
	"github.com/joseph-ayodele/expense-assistant/internal/observability"
)

var (
	ErrNoResult    = errors.New("no extraction result yet")
	ErrInvalidEdit = errors.New("invalid edit")
)

// Patch is a manual correction. Nil fields are left alone.
type Patch struct {
	Amount       *int64
	Date         *time.Time
	Participants []string
	Currency     *string
	Intent       *constants.Intent
	Title        *string
}

// Session is one conversation: the state machine, the latest result, and the
// generation counter that keeps superseded extractions from landing.
type Session struct {
	ID string

	extractor Extractor
	machine   *Machine

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	lastReq Request
	last    *Result
}

func NewSession(extractor Extractor) *Session {
	return &Session{
		ID:        uuid.New().String(),
		extractor: extractor,
		machine:   NewMachine(),
	}
}

// State is the current machine state.
func (s *Session) State() State {
	return s.machine.State()
}

// Snapshot returns a copy of the latest result.
func (s *Session) Snapshot() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return s.copyLast(), true
}

// Request returns the message the latest extraction ran on.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

// Submit starts a new extraction and cancels any one still in flight.
// If another Submit, Retry or Cancel happens before this one finishes, it
// returns ErrStaleResult and its result is discarded.
func (s *Session) Submit(ctx context.Context, req Request) (Result, error) {
	return s.run(ctx, EventSubmit, &req)
}

// Retry re-runs the last message. Only legal from the error state.
func (s *Session) Retry(ctx context.Context) (Result, error) {
	return s.run(ctx, EventRetry, nil)
}

func (s *Session) run(ctx context.Context, ev Event, req *Request) (Result, error) {
	s.mu.Lock()
	if _, err := s.machine.Fire(ev); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	if req != nil {
		s.lastReq = *req
	}
	r := s.lastReq
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	res, err := s.extractor.Extract(runCtx, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if gen != s.gen {
		observability.StaleResultsTotal.Inc()
		return Result{}, ErrStaleResult
	}
	s.cancel = nil

	if err != nil {
		_, _ = s.machine.Fire(EventFail)
		return Result{}, err
	}
	if res.State == StateSuccess {
		res.State, _ = s.machine.Fire(EventSucceed)
	} else {
		res.State, _ = s.machine.Fire(EventFail)
	}
	s.last = &res
	return s.copyLast(), nil
}

// Edit applies a manual correction and moves to editing. Further edits while
// editing stay in editing.
func (s *Session) Edit(p Patch) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, ErrNoResult
	}

	next := s.copyLast()
	if err := applyPatch(&next, p, s.lastReq.Participants); err != nil {
		return Result{}, err
	}
	if s.machine.State() != StateEditing {
		if _, err := s.machine.Fire(EventEdit); err != nil {
			return Result{}, err
		}
	}
	next.State = StateEditing
	s.last = &next
	return s.copyLast(), nil
}

// Confirm runs commit on the current result and, if it succeeds, moves to success.
// The session stays locked while commit runs so the result cannot change under it.
func (s *Session) Confirm(commit func(Result) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, ErrNoResult
	}
	if _, err := Next(s.machine.State(), EventConfirm); err != nil {
		return Result{}, err
	}
	if commit != nil {
		if err := commit(s.copyLast()); err != nil {
			return Result{}, err
		}
	}
	state, err := s.machine.Fire(EventConfirm)
	if err != nil {
		return Result{}, err
	}
	s.last.State = state
	return s.copyLast(), nil
}

// Cancel discards whatever is in flight, e.g. when the user navigates away.
// An extraction cut short ends in error, from where Retry or Submit continue.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.machine.State() == StateExtracting {
		_, _ = s.machine.Fire(EventFail)
	}
}

func (s *Session) copyLast() Result {
	out := *s.last
	out.Participants = append([]string(nil), s.last.Participants...)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	out.Sources = make(map[string]constants.FieldSource, len(s.last.Sources))
	for k, v := range s.last.Sources {
		out.Sources[k] = v
	}
	if s.last.Failure != nil {
		f := *s.last.Failure
		out.Failure = &f
	}
	return out
}

func applyPatch(r *Result, p Patch, participants []string) error {
	if p.Amount != nil {
		if *p.Amount < 0 {
			return fmt.Errorf("%w: amount must not be negative", ErrInvalidEdit)
		}
		r.Amount, r.HasAmount = *p.Amount, true
		r.Sources[FieldAmount] = constants.SourceUser
	}
	if p.Date != nil {
		r.Date, r.HasDate = *p.Date, true
		r.Sources[FieldDate] = constants.SourceUser
	}
	if p.Participants != nil {
		picked := make(map[string]struct{}, len(p.Participants))
		for _, n := range p.Participants {
			c, ok := nlp.MatchParticipant(n, participants)
			if !ok {
				return fmt.Errorf("%w: unknown participant %q", ErrInvalidEdit, n)
			}
			picked[c] = struct{}{}
		}
		names := make([]string, 0, len(picked))
		for _, c := range participants {
			if _, ok := picked[c]; ok {
				names = append(names, c)
				delete(picked, c)
			}
		}
		r.Participants = names
		r.Sources[FieldParticipants] = constants.SourceUser
	}
	if p.Currency != nil {
		code, ok := nlp.NormalizeCurrencyCode(*p.Currency)
		if !ok {
			return fmt.Errorf("%w: unknown currency %q", ErrInvalidEdit, *p.Currency)
		}
		r.Currency = code
		r.Sources[FieldCurrency] = constants.SourceUser
	}
	if p.Intent != nil {
		if !constants.IsValidIntent(string(*p.Intent)) {
			return fmt.Errorf("%w: unknown intent %q", ErrInvalidEdit, *p.Intent)
		}
		r.Intent = *p.Intent
		r.Sources[FieldIntent] = constants.SourceUser
	}
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
		r.Sources[FieldTitle] = constants.SourceUser
	}
	return nil
}
