package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cacheSource is the slice of the timetable source the refresh job needs.
type cacheSource interface {
	RefreshFaculties(ctx context.Context) (map[string]string, error)
	Sweep()
}

// RefreshScheduler re-warms the faculty index once a day and drops expired
// schedule cache entries, so the first onboarding request of the day does
// not pay for the fetch.
type RefreshScheduler struct {
	cronEngine *cron.Cron
	source     cacheSource
	log        *logrus.Entry
	spec       string
}

func NewRefreshScheduler(source cacheSource, loc *time.Location, spec string, log *logrus.Entry) *RefreshScheduler {
	return &RefreshScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		source:     source,
		log:        log,
		spec:       spec,
	}
}

func (s *RefreshScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("add refresh cron job: %w", err)
	}
	s.cronEngine.Start()
	s.log.WithField("spec", s.spec).Info("Refresh scheduler started")
	return nil
}

func (s *RefreshScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("Refresh scheduler stopped")
}

func (s *RefreshScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.source.Sweep()
	faculties, err := s.source.RefreshFaculties(ctx)
	if err != nil {
		s.log.WithError(err).Error("Faculty index refresh failed")
		return
	}
	s.log.WithField("faculties", len(faculties)).Info("Faculty index refreshed")
}
