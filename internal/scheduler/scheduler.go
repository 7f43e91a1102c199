package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sosratings/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrRunInProgress is returned when a run is requested while another one
// has not finished yet
var ErrRunInProgress = errors.New("rating run already in progress")

// RunFunc computes a fresh rating snapshot
type RunFunc func(ctx context.Context) (*models.RatingSnapshot, error)

// Publisher receives every computed snapshot
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snapshot *models.RatingSnapshot) error
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRunOnStart runs once as soon as the scheduler starts
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = enabled
	}
}

// WithPublishTimeout bounds each publisher call
func WithPublishTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.publishTimeout = timeout
	}
}

// Scheduler re-rates on a cron schedule and hands every snapshot to the
// configured publishers
type Scheduler struct {
	schedule       string
	run            RunFunc
	publishers     []Publisher
	runOnStart     bool
	publishTimeout time.Duration

	cron    *cron.Cron
	running sync.Mutex
	wg      sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(schedule string, run RunFunc, publishers []Publisher, opts ...Option) *Scheduler {
	s := &Scheduler{
		schedule:       schedule,
		run:            run,
		publishers:     publishers,
		publishTimeout: 30 * time.Second,
		cron:           cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the rating job and starts the cron scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
			log.Error().Err(err).Msg("Scheduled rating run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule rating run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Int("publishers", len(s.publishers)).
		Msg("Rating run scheduled")

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.Info().Msg("Running initial rating run...")
			if err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Initial rating run failed, continuing anyway...")
			}
		}()
	}

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	<-s.cron.Stop().Done()
	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}

// RunOnce computes a snapshot and publishes it. Runs never overlap: a call
// made while another run is active returns ErrRunInProgress. Publisher
// failures are logged and returned together once every publisher ran.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.TryLock() {
		log.Warn().Msg("Previous rating run still in progress, skipping")
		return ErrRunInProgress
	}
	defer s.running.Unlock()

	snapshot, err := s.run(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute ratings: %w", err)
	}

	return s.publish(ctx, snapshot)
}

// publish hands the snapshot to every publisher in parallel
func (s *Scheduler) publish(ctx context.Context, snapshot *models.RatingSnapshot) error {
	errs := make([]error, len(s.publishers))

	var wg sync.WaitGroup
	for i, p := range s.publishers {
		wg.Add(1)
		go func(i int, p Publisher) {
			defer wg.Done()

			pctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
			defer cancel()

			start := time.Now()
			if err := p.Publish(pctx, snapshot); err != nil {
				log.Error().
					Err(err).
					Str("publisher", p.Name()).
					Str("run_id", snapshot.RunID.String()).
					Msg("Failed to publish ratings")
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
				return
			}

			log.Info().
				Str("publisher", p.Name()).
				Str("run_id", snapshot.RunID.String()).
				Int("teams", len(snapshot.Ratings)).
				Dur("duration", time.Since(start)).
				Msg("Ratings published")
		}(i, p)
	}
	wg.Wait()

	return errors.Join(errs...)
}
