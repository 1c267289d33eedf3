package plan

type Cycle string

const (
	CycleMonthly Cycle = "monthly"
	CycleYearly  Cycle = "yearly"
)

func (c Cycle) String() string {
	return string(c)
}

func (c Cycle) IsValid() bool {
	switch c {
	case CycleMonthly, CycleYearly:
		return true
	default:
		return false
	}
}

func NewCycle(s string) (Cycle, error) {
	cycle := Cycle(s)
	if !cycle.IsValid() {
		return "", ErrInvalidCycle
	}
	return cycle, nil
}

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCanceled:
		return true
	default:
		return false
	}
}
