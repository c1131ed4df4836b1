package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{RequestStatusPending, RequestStatusAssigned, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusEnRoute, false},
		{RequestStatusPending, RequestStatusFinalized, false},
		{RequestStatusAssigned, RequestStatusEnRoute, true},
		{RequestStatusAssigned, RequestStatusCancelled, true},
		{RequestStatusAssigned, RequestStatusInService, false},
		{RequestStatusEnRoute, RequestStatusInService, true},
		{RequestStatusEnRoute, RequestStatusCancelled, false},
		{RequestStatusEnRoute, RequestStatusAssigned, false},
		{RequestStatusInService, RequestStatusFinalized, true},
		{RequestStatusInService, RequestStatusCancelled, false},
		{RequestStatusFinalized, RequestStatusPending, false},
		{RequestStatusCancelled, RequestStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, TerminalStatus(RequestStatusFinalized))
	assert.True(t, TerminalStatus(RequestStatusCancelled))
	assert.False(t, TerminalStatus(RequestStatusPending))
	assert.False(t, TerminalStatus(RequestStatusEnRoute))
}

func TestCancellable(t *testing.T) {
	assert.True(t, Cancellable(RequestStatusPending))
	assert.True(t, Cancellable(RequestStatusAssigned))
	assert.False(t, Cancellable(RequestStatusEnRoute))
	assert.False(t, Cancellable(RequestStatusInService))
	assert.False(t, Cancellable(RequestStatusFinalized))
	assert.False(t, Cancellable(RequestStatusCancelled))
}

func TestNextStates(t *testing.T) {
	assert.ElementsMatch(t,
		[]RequestStatus{RequestStatusAssigned, RequestStatusCancelled},
		NextStates(RequestStatusPending))
	assert.Empty(t, NextStates(RequestStatusFinalized))
}
