package conversation

import (
	"errors"
	"fmt"
	"sync"
)

// State is the UI state of one extraction conversation.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateSuccess    State = "success"
	StateError      State = "error"
	StateEditing    State = "editing"
)

type Event string

const (
	EventSubmit  Event = "submit"
	EventSucceed Event = "succeed"
	EventFail    Event = "fail"
	EventEdit    Event = "edit"
	EventRetry   Event = "retry"
	EventConfirm Event = "confirm"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// transitions is the whole state machine. Anything missing is illegal;
// editing cannot go back to extracting without a new submission.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSubmit: StateExtracting,
	},
	StateExtracting: {
		EventSubmit:  StateExtracting,
		EventSucceed: StateSuccess,
		EventFail:    StateError,
	},
	StateSuccess: {
		EventSubmit:  StateExtracting,
		EventEdit:    StateEditing,
		EventConfirm: StateSuccess,
	},
	StateError: {
		EventSubmit: StateExtracting,
		EventEdit:   StateEditing,
		EventRetry:  StateExtracting,
	},
	StateEditing: {
		EventSubmit:  StateExtracting,
		EventConfirm: StateSuccess,
	},
}

// Next returns the state reached from "from" on ev.
func Next(from State, ev Event) (State, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, ev)
}

// Machine holds the current state and applies events atomically.
type Machine struct {
	mu    sync.Mutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fire applies ev. On an illegal event the state is left unchanged.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	to, err := Next(m.state, ev)
	if err != nil {
		return m.state, err
	}
	m.state = to
	return to, nil
}
