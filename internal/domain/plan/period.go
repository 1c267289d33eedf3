package plan

import "time"

// AddCycle advances a date by one billing period. The day of month is
// preserved where possible and clamped to the destination month's last
// valid day, so Jan 31 + monthly lands on Feb 28 (29 in leap years)
// instead of rolling over into March the way time.AddDate would.
func AddCycle(from time.Time, cycle Cycle) time.Time {
	if cycle == CycleYearly {
		return addMonthsClamped(from, 12)
	}
	return addMonthsClamped(from, 1)
}

func addMonthsClamped(from time.Time, months int) time.Time {
	year, month, day := from.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, from.Location())

	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}

	return time.Date(
		firstOfTarget.Year(), firstOfTarget.Month(), day,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(),
		from.Location(),
	)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
