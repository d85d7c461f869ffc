package booking

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// BlocksAvailability reports whether a booking in this status participates
// in conflict checks. Completed bookings are history only; they never block
// new bookings, matching the chosen business policy.
func (s Status) BlocksAvailability() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// AllowsDateEdit reports whether the booking interval may still change.
// Once the item is handed over the dates are immutable.
func (s Status) AllowsDateEdit() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo encodes the lifecycle state machine:
//
//	pending    -> confirmed, cancelled
//	confirmed  -> in_progress, cancelled
//	in_progress -> completed, cancelled
//	completed, cancelled -> (terminal)
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch target {
	case StatusConfirmed:
		return s == StatusPending
	case StatusInProgress:
		return s == StatusConfirmed
	case StatusCompleted:
		return s == StatusInProgress
	case StatusCancelled:
		return true
	default:
		return false
	}
}

// BlockingStatuses is the canonical status filter for availability queries.
// Every conflict check in the system goes through this single definition.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusInProgress}
}
