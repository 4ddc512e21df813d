package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// RefreshScheduler submits the refresh job to the pool on a cron schedule
// and on demand.
type RefreshScheduler struct {
	Name string
	Spec string
	Pool *WorkingPool

	cron    *cron.Cron
	refresh Job

	mu      sync.Mutex
	entryID cron.EntryID
	lastJob string
}

func NewRefreshScheduler(name, spec string, pool *WorkingPool, refresh Job) (*RefreshScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return &RefreshScheduler{
		Name:    name,
		Spec:    spec,
		Pool:    pool,
		cron:    cron.New(),
		refresh: refresh,
	}, nil
}

// Run registers the schedule and blocks until ctx is done.
func (s *RefreshScheduler) Run(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.Spec, func() {
		if _, err := s.TriggerNow(); err != nil {
			log.WithError(err).WithField("scheduler", s.Name).Warn("Scheduled refresh skipped")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.Spec, err)
	}

	s.mu.Lock()
	s.entryID = entryID
	s.mu.Unlock()

	log.WithFields(log.Fields{"scheduler": s.Name, "spec": s.Spec}).Info("Scheduler running")
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.WithField("scheduler", s.Name).Info("Scheduler shut down")
	return nil
}

// TriggerNow submits one refresh immediately and returns its job ID.
func (s *RefreshScheduler) TriggerNow() (string, error) {
	jobID := uuid.NewString()
	job := func(ctx context.Context) error {
		log.WithFields(log.Fields{"scheduler": s.Name, "job_id": jobID}).Info("Refresh job started")
		return s.refresh(ctx)
	}

	if err := s.Pool.SubmitJob(job); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.lastJob = jobID
	s.mu.Unlock()
	return jobID, nil
}

func (s *RefreshScheduler) LastJobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastJob
}

// NextRun reports when the scheduled refresh fires next. It is zero before Run.
func (s *RefreshScheduler) NextRun() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
