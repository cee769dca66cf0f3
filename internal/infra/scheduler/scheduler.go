package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
)

// FireFunc is invoked with the subscriber's ID when their trigger fires.
type FireFunc func(userID int64)

// TriggerScheduler keeps one daily trigger per subscribed user. Triggers
// are armed at the user's chosen wall-clock time in the bot's location and
// re-arm themselves after every firing by recomputing the next fire time
// from the current clock, so process suspension cannot accumulate drift.
//
// The trigger set is the single shared mutable resource: insert, replace
// and remove all run under one mutex, and each trigger carries a
// generation number so a timer belonging to a replaced or cancelled
// trigger can never fire or re-arm.
type TriggerScheduler struct {
	loc  *time.Location
	fire FireFunc
	log  *logrus.Entry
	now  func() time.Time

	mu         sync.Mutex
	triggers   map[int64]*trigger
	generation uint64
	stopped    bool
}

type trigger struct {
	hour, minute int
	generation   uint64
	timer        *time.Timer
}

func NewTriggerScheduler(loc *time.Location, fire FireFunc, log *logrus.Entry) *TriggerScheduler {
	return &TriggerScheduler{
		loc:      loc,
		fire:     fire,
		log:      log,
		now:      time.Now,
		triggers: make(map[int64]*trigger),
	}
}

// Schedule installs the daily trigger for userID, replacing any existing
// one. Replacement happens under the scheduler lock: the prior timer is
// stopped and its generation invalidated before the new timer is armed,
// so there is never a window with two live triggers for one user.
// Repeated calls with the same arguments leave exactly one trigger.
func (s *TriggerScheduler) Schedule(userID int64, hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old := s.triggers[userID]; old != nil {
		old.timer.Stop()
	}
	s.generation++
	t := &trigger{hour: hour, minute: minute, generation: s.generation}
	s.triggers[userID] = t
	s.armLocked(userID, t)

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"time":    fmt.Sprintf("%02d:%02d", hour, minute),
	}).Info("Daily trigger scheduled")
}

// Cancel stops and removes userID's trigger. Absent is a no-op.
func (s *TriggerScheduler) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.triggers[userID]
	if t == nil {
		return
	}
	t.timer.Stop()
	delete(s.triggers, userID)
	s.log.WithField("user_id", userID).Info("Daily trigger cancelled")
}

// RehydrateAll re-installs triggers for every persisted subscription at
// process start. A subscription with an unparsable notify time is logged
// and skipped; it never stops the remaining users from being scheduled.
func (s *TriggerScheduler) RehydrateAll(ctx context.Context, repo subscription.Repository) error {
	subs, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions for rehydration: %w", err)
	}

	scheduled := 0
	for _, sub := range subs {
		hour, minute, err := subscription.ParseNotifyTime(sub.NotifyTime)
		if err != nil {
			s.log.WithError(err).WithField("user_id", sub.UserID).
				Error("Skipping subscription with invalid notify time")
			continue
		}
		s.Schedule(sub.UserID, hour, minute)
		scheduled++
	}
	s.log.WithFields(logrus.Fields{"scheduled": scheduled, "total": len(subs)}).
		Info("Trigger rehydration complete")
	return nil
}

// Stop cancels every trigger. Later Schedule calls are ignored.
func (s *TriggerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for userID, t := range s.triggers {
		t.timer.Stop()
		delete(s.triggers, userID)
	}
	s.log.Info("Trigger scheduler stopped")
}

// armLocked arms t's timer for its next wall-clock fire time. Callers hold
// the lock.
func (s *TriggerScheduler) armLocked(userID int64, t *trigger) {
	now := s.now()
	next := nextFire(now.In(s.loc), t.hour, t.minute)
	gen := t.generation
	t.timer = time.AfterFunc(next.Sub(now), func() { s.fired(userID, gen) })
}

// fired runs on the timer's goroutine. The callback is handed off to its
// own goroutine so a slow dispatch never delays re-arming this trigger or
// blocks Schedule/Cancel for other users.
func (s *TriggerScheduler) fired(userID int64, gen uint64) {
	s.mu.Lock()
	t := s.triggers[userID]
	if s.stopped || t == nil || t.generation != gen {
		// Replaced or cancelled after the timer fired; stale, drop it.
		s.mu.Unlock()
		return
	}
	s.armLocked(userID, t)
	s.mu.Unlock()

	go s.fire(userID)
}

// nextFire is "today at hh:mm if that is still ahead, else tomorrow".
func nextFire(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
