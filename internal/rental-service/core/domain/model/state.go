package model

// allowedTransitions is the booking lifecycle as a directed graph.
// Terminal states (closed, canceled) have no outgoing edges.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingHold:       {BookingConfirmed, BookingCanceled},
	BookingConfirmed:  {BookingCheckedOut},
	BookingCheckedOut: {BookingReturned},
	BookingReturned:   {BookingClosed},
	BookingClosed:     {},
	BookingCanceled:   {},
}

// CanTransition reports whether from -> to is an allowed lifecycle step.
// Repeating a state is not allowed: confirming an already-confirmed
// booking is an error, not a no-op.
func CanTransition(from, to BookingStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Blocking statuses occupy the vehicle for overlap checks.
func BlockingStatuses() []BookingStatus {
	return []BookingStatus{BookingHold, BookingConfirmed, BookingCheckedOut}
}
