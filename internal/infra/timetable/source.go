package timetable

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/schedule"
)

// fetchRetries is the number of extra attempts after a transport error.
// Parse-level problems are never retried; the markup won't change.
const fetchRetries = 2

const facultyCacheTTL = 6 * time.Hour

// Source is the read entry point for the timetable site. It combines the
// markup client with the parsers and keeps a short-lived per-group cache
// so triggers firing at the same minute for one group hit the network
// once. The faculty index is cached separately with a longer TTL and
// re-warmed by the periodic refresh job.
type Source struct {
	client *Client
	ttl    time.Duration
	log    *logrus.Entry

	mu      sync.Mutex
	entries map[string]*cacheEntry

	facMu      sync.Mutex
	faculties  map[string]string
	facExpires time.Time
}

type cacheEntry struct {
	ready     chan struct{}
	week      schedule.WeekSchedule
	err       error
	expiresAt time.Time
}

func NewSource(client *Client, ttl time.Duration, log *logrus.Entry) *Source {
	return &Source{
		client:  client,
		ttl:     ttl,
		log:     log,
		entries: make(map[string]*cacheEntry),
	}
}

// Faculties returns the faculty name -> ID index, cached.
func (s *Source) Faculties(ctx context.Context) (map[string]string, error) {
	s.facMu.Lock()
	if s.faculties != nil && time.Now().Before(s.facExpires) {
		cached := s.faculties
		s.facMu.Unlock()
		return cached, nil
	}
	s.facMu.Unlock()
	return s.RefreshFaculties(ctx)
}

// RefreshFaculties fetches the faculty index bypassing the cache and
// stores the result. An empty index is cached too; the site answering
// with an unrecognized layout is "no data", not a transport failure.
func (s *Source) RefreshFaculties(ctx context.Context) (map[string]string, error) {
	var faculties map[string]string
	err := s.withRetry(ctx, func(ctx context.Context) error {
		page, err := s.client.FetchIndex(ctx)
		if err != nil {
			return err
		}
		faculties, err = ParseFaculties(page)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.facMu.Lock()
	s.faculties = faculties
	s.facExpires = time.Now().Add(facultyCacheTTL)
	s.facMu.Unlock()
	return faculties, nil
}

// Groups returns the group names of one faculty, uncached: it is only hit
// during onboarding.
func (s *Source) Groups(ctx context.Context, facultyID string) ([]string, error) {
	var groups []string
	err := s.withRetry(ctx, func(ctx context.Context) error {
		page, err := s.client.FetchFacultyPage(ctx, facultyID)
		if err != nil {
			return err
		}
		groups, err = ParseGroups(page)
		return err
	})
	return groups, err
}

// WeekSchedule returns the week schedule for (facultyID, group), fetching
// it when absent or expired. Concurrent callers for the same key wait for
// the one in-flight fetch instead of issuing their own.
func (s *Source) WeekSchedule(ctx context.Context, facultyID, group string) (schedule.WeekSchedule, error) {
	key := facultyID + "|" + group

	s.mu.Lock()
	if entry := s.entries[key]; entry != nil {
		select {
		case <-entry.ready:
			if entry.err == nil && time.Now().Before(entry.expiresAt) {
				s.mu.Unlock()
				return entry.week, nil
			}
			// Expired: fall through and refetch under the same lock hold.
		default:
			// A fetch is in flight; wait for it outside the lock.
			s.mu.Unlock()
			select {
			case <-entry.ready:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return entry.week, entry.err
		}
	}
	entry := &cacheEntry{ready: make(chan struct{})}
	s.entries[key] = entry
	s.mu.Unlock()

	entry.week, entry.err = s.fetchWeek(ctx, facultyID, group)
	entry.expiresAt = time.Now().Add(s.ttl)
	close(entry.ready)

	if entry.err != nil {
		// Failed fetches are not cached; the next caller tries again.
		s.mu.Lock()
		if s.entries[key] == entry {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, entry.err
	}
	return entry.week, nil
}

// Sweep drops expired cache entries. Called by the periodic refresh job.
func (s *Source) Sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		select {
		case <-entry.ready:
			if now.After(entry.expiresAt) {
				delete(s.entries, key)
			}
		default:
			// In-flight fetch, leave it alone.
		}
	}
}

func (s *Source) fetchWeek(ctx context.Context, facultyID, group string) (schedule.WeekSchedule, error) {
	var week schedule.WeekSchedule
	err := s.withRetry(ctx, func(ctx context.Context) error {
		page, err := s.client.FetchTimetable(ctx, facultyID, group)
		if err != nil {
			return err
		}
		week, err = ParseWeekSchedule(page, s.log)
		return err
	})
	return week, err
}

// withRetry reruns fn on transport errors only, a bounded number of times
// with constant backoff.
func (s *Source) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(fetchRetries, retry.NewConstant(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			s.log.WithError(err).Debug("Transient timetable fetch failure, will retry")
			return retry.RetryableError(err)
		}
		return err
	})
}
