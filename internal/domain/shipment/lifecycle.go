package shipment

import "fmt"

// State machine for shipment status transitions
var validTransitions = map[Status][]Status{
	StatusCreated: {
		StatusAssigned,
		StatusCancelled,
	},
	StatusAssigned: {
		StatusInTransit,
		StatusCancelled,
	},
	StatusInTransit: {
		StatusDelivered,
		StatusCancelled,
	},
	StatusDelivered: {
		// Terminal state - no transitions
	},
	StatusCancelled: {
		// Terminal state - no transitions
	},
}

// ValidateStatusTransition checks the transition table. Rewriting the
// current status is always allowed.
func ValidateStatusTransition(current, next Status) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, next)
	}
	if current == next {
		return nil
	}

	allowed, exists := validTransitions[current]
	if !exists {
		return fmt.Errorf("%w: unknown current status %s", ErrInvalidStatusTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}

	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatusTransition, current, next)
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current Status) []Status {
	return validTransitions[current]
}
