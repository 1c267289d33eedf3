package bootstrap

import (
	"time"

	"studio-backend/internal/pkg/config"
	"studio-backend/internal/pkg/errs"

	"go.uber.org/fx"
)

// ScheduleModule provides the studio's local timezone and the calendar
// lower bound every date-aware component shares.
var ScheduleModule = fx.Module("schedule",
	fx.Provide(
		NewLocation,
		NewMinDate,
	),
)

func NewLocation(cfg config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.DB.TimeZone)
	if err != nil {
		return nil, errs.Wrap(err, "invalid timezone in configuration")
	}
	return loc, nil
}

// NewMinDate parses SCHEDULE_MIN_DATE. Unset means no lower bound.
func NewMinDate(cfg config.Config, loc *time.Location) (time.Time, error) {
	if cfg.Schedule.MinDate == "" {
		return time.Time{}, nil
	}
	minDate, err := time.ParseInLocation("2006-01-02", cfg.Schedule.MinDate, loc)
	if err != nil {
		return time.Time{}, errs.Wrap(err, "invalid SCHEDULE_MIN_DATE")
	}
	return minDate, nil
}
