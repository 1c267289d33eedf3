package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusConfirmed, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}

// Occupies reports whether a booking in this status holds its slot.
// Pending bookings do not block the calendar until an admin or a payment
// confirms them.
func (s Status) Occupies() bool {
	return s == StatusAccepted || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCanceled
}

var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusConfirmed, StatusRejected, StatusCanceled},
	StatusAccepted:  {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCanceled},
	StatusRejected:  {},
	StatusCanceled:  {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
