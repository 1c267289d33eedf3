package payment

import (
	"errors"
	"strings"
)

var ErrUnknownStatus = errors.New("unknown payment status")

// Status formalizes the processor's free-form status strings. The
// processor owns the actual payment state machine; locally we only need
// to classify each notification.
type Status string

const (
	StatusCreated   Status = "created"
	StatusReceived  Status = "received"
	StatusConfirmed Status = "confirmed"
	StatusOverdue   Status = "overdue"
	StatusDeleted   Status = "deleted"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

// IsSuccess reports whether the notification means money arrived.
func (s Status) IsSuccess() bool {
	return s == StatusReceived || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusReceived, StatusConfirmed, StatusOverdue, StatusDeleted, StatusRefunded:
		return true
	default:
		return false
	}
}

// ParseStatus maps the processor's uppercase wire values. RECEIVED and
// CONFIRMED are both success; everything else is acknowledged and ignored.
func ParseStatus(wire string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(wire)) {
	case "PENDING", "CREATED", "AWAITING_RISK_ANALYSIS":
		return StatusCreated, nil
	case "RECEIVED", "RECEIVED_IN_CASH":
		return StatusReceived, nil
	case "CONFIRMED":
		return StatusConfirmed, nil
	case "OVERDUE":
		return StatusOverdue, nil
	case "DELETED":
		return StatusDeleted, nil
	case "REFUNDED", "REFUND_REQUESTED":
		return StatusRefunded, nil
	default:
		return "", ErrUnknownStatus
	}
}
