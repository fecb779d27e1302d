package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextLegalTransitions(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
		want State
	}{
		{StateIdle, EventSubmit, StateExtracting},
		{StateSuccess, EventSubmit, StateExtracting},
		{StateError, EventSubmit, StateExtracting},
		{StateEditing, EventSubmit, StateExtracting},
		{StateExtracting, EventSubmit, StateExtracting},
		{StateExtracting, EventSucceed, StateSuccess},
		{StateExtracting, EventFail, StateError},
		{StateSuccess, EventEdit, StateEditing},
		{StateError, EventEdit, StateEditing},
		{StateError, EventRetry, StateExtracting},
		{StateEditing, EventConfirm, StateSuccess},
		{StateSuccess, EventConfirm, StateSuccess},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextIllegalTransitions(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
	}{
		{StateEditing, EventRetry},
		{StateSuccess, EventRetry},
		{StateIdle, EventRetry},
		{StateIdle, EventSucceed},
		{StateIdle, EventEdit},
		{StateExtracting, EventEdit},
		{StateExtracting, EventConfirm},
		{StateError, EventConfirm},
		{StateSuccess, EventFail},
		{StateEditing, EventEdit},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestMachineKeepsStateOnIllegalEvent(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.State())

	_, err := m.Fire(EventRetry)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateIdle, m.State())

	s, err := m.Fire(EventSubmit)
	require.NoError(t, err)
	assert.Equal(t, StateExtracting, s)

	s, err = m.Fire(EventFail)
	require.NoError(t, err)
	assert.Equal(t, StateError, s)

	s, err = m.Fire(EventEdit)
	require.NoError(t, err)
	assert.Equal(t, StateEditing, s)

	_, err = m.Fire(EventRetry)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateEditing, m.State())
}
