package schedule

import "time"

// Notify modes select which day's schedule a daily notification covers.
const (
	ModeToday    = "today"
	ModeTomorrow = "tomorrow"
)

// WeekdayFor resolves a notify mode to an English weekday name for the
// given instant. An unrecognized mode is returned as-is, so a stored
// literal weekday keeps working.
func WeekdayFor(mode string, now time.Time) string {
	switch mode {
	case ModeToday:
		return now.Weekday().String()
	case ModeTomorrow:
		return now.AddDate(0, 0, 1).Weekday().String()
	}
	return mode
}
