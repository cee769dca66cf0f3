package subscription

import (
	"fmt"
	"regexp"
	"strconv"
)

// Subscription is one user's saved setup. The notification core treats it
// as read-only input per firing; only the onboarding flow writes it.
type Subscription struct {
	UserID         int64  `json:"user_id"`
	Faculty        string `json:"faculty"`
	FacultyID      string `json:"faculty_id"`
	Course         string `json:"course"`
	Specialization string `json:"specialization"`
	Group          string `json:"group"`
	NotifyTime     string `json:"notify_time"` // "HH:MM"
	NotifyMode     string `json:"notify_mode"` // "today" or "tomorrow"
}

// ErrInvalidNotifyTime reports a persisted notify time that cannot be
// scheduled. Rehydration logs and skips such subscriptions.
var ErrInvalidNotifyTime = fmt.Errorf("notify time is not in HH:MM form")

var notifyTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ParseNotifyTime validates and splits an "HH:MM" notify time.
func ParseNotifyTime(s string) (hour, minute int, err error) {
	m := notifyTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, ErrInvalidNotifyTime
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// Complete reports whether the subscription carries everything a schedule
// lookup needs.
func (s *Subscription) Complete() bool {
	return s.FacultyID != "" && s.Group != ""
}
