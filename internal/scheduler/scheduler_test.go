package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sosratings/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	name string
	err  error

	mu        sync.Mutex
	snapshots []*models.RatingSnapshot
}

func (p *fakePublisher) Name() string { return p.name }

func (p *fakePublisher) Publish(_ context.Context, snapshot *models.RatingSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
	return p.err
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

func staticRun(calls *atomic.Int32) RunFunc {
	return func(ctx context.Context) (*models.RatingSnapshot, error) {
		calls.Add(1)
		return &models.RatingSnapshot{RunID: uuid.New(), ComputedAt: time.Now()}, nil
	}
}

func TestRunOnce_PublishesToEveryPublisher(t *testing.T) {
	var calls atomic.Int32
	pg := &fakePublisher{name: "postgres"}
	rd := &fakePublisher{name: "redis"}

	s := NewScheduler("@daily", staticRun(&calls), []Publisher{pg, rd})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, pg.count())
	assert.Equal(t, 1, rd.count())
	assert.Same(t, pg.snapshots[0], rd.snapshots[0])
}

func TestRunOnce_PublisherFailureDoesNotStopOthers(t *testing.T) {
	var calls atomic.Int32
	failing := &fakePublisher{name: "postgres", err: errors.New("connection refused")}
	ok := &fakePublisher{name: "redis"}

	s := NewScheduler("@daily", staticRun(&calls), []Publisher{failing, ok})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, failing.count())
}

func TestRunOnce_RunFailureSkipsPublishing(t *testing.T) {
	boom := errors.New("discovery failed")
	p := &fakePublisher{name: "redis"}

	s := NewScheduler("@daily", func(context.Context) (*models.RatingSnapshot, error) {
		return nil, boom
	}, []Publisher{p})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, p.count())
}

func TestRunOnce_NoOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	s := NewScheduler("@daily", func(context.Context) (*models.RatingSnapshot, error) {
		close(started)
		<-release
		return &models.RatingSnapshot{}, nil
	}, nil)

	done := make(chan error, 1)
	go func() { done <- s.RunOnce(context.Background()) }()

	<-started
	assert.ErrorIs(t, s.RunOnce(context.Background()), ErrRunInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestStart_InvalidSchedule(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler("not a cron line", staticRun(&calls), nil)

	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestStart_RunOnStart(t *testing.T) {
	var calls atomic.Int32
	p := &fakePublisher{name: "redis"}

	s := NewScheduler("@yearly", staticRun(&calls), []Publisher{p}, WithRunOnStart(true))
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return p.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32

	s := NewScheduler("@every 1s", staticRun(&calls), nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestPublish_Timeout(t *testing.T) {
	var calls atomic.Int32
	slow := publisherFunc{name: "slow", fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	s := NewScheduler("@daily", staticRun(&calls), []Publisher{slow}, WithPublishTimeout(20*time.Millisecond))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type publisherFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (p publisherFunc) Name() string { return p.name }

func (p publisherFunc) Publish(ctx context.Context, _ *models.RatingSnapshot) error {
	return p.fn(ctx)
}
