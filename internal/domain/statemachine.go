package domain

// allowedTransitions is the lifecycle table for assistance requests.
// FINALIZADO and CANCELADO are terminal.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned:  {RequestStatusEnRoute, RequestStatusCancelled},
	RequestStatusEnRoute:   {RequestStatusInService},
	RequestStatusInService: {RequestStatusFinalized},
	RequestStatusFinalized: {},
	RequestStatusCancelled: {},
}

// CanTransition reports whether moving from current to next is a legal edge.
func CanTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NextStates returns the legal successor states for current.
func NextStates(current RequestStatus) []RequestStatus {
	return allowedTransitions[current]
}

// TerminalStatus reports whether s has no outgoing transitions.
func TerminalStatus(s RequestStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// Cancellable reports whether a request in state s may still be cancelled.
func Cancellable(s RequestStatus) bool {
	return CanTransition(s, RequestStatusCancelled)
}
