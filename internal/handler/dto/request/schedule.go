package request

import "time"

type ToggleSlotRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Time string `json:"time" binding:"required"` // HH:MM
}

func (r ToggleSlotRequest) SlotTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, loc)
}

type ToggleDayRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

func (r ToggleDayRequest) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", r.Date, loc)
}
