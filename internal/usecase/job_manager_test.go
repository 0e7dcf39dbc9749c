package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/pkg/metrics"
)

func monthJob() *entity.ScrapeJob {
	return &entity.ScrapeJob{
		Kind:    entity.JobKindMonth,
		Details: osakaDetails,
		Year:    2024,
		Month:   time.August,
		Nights:  1,
	}
}

func TestSubmitDeduplicates(t *testing.T) {
	queue := &memoryQueue{}
	submitted := newMemorySubmitted()
	manager := NewJobManager(submitted, newMemoryStates(), queue, 12*time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := manager.Submit(ctx, monthJob(), false)
	require.NoError(t, err)
	require.Equal(t, JobID(monthJob()), id)
	require.Equal(t, 12*time.Hour, submitted.keys[id])

	again, err := manager.Submit(ctx, monthJob(), false)
	require.ErrorIs(t, err, ErrJobRecentlySubmitted)
	require.Equal(t, id, again)
	require.Len(t, queue.jobs, 1)

	_, err = manager.Submit(ctx, monthJob(), true)
	require.NoError(t, err)
	require.Len(t, queue.jobs, 2)

	other := monthJob()
	other.Month = time.September
	otherID, err := manager.Submit(ctx, other, false)
	require.NoError(t, err)
	require.NotEqual(t, id, otherID)
}

func TestSubmitRejectsInvalidJob(t *testing.T) {
	manager := NewJobManager(newMemorySubmitted(), newMemoryStates(), &memoryQueue{}, time.Hour, zaptest.NewLogger(t))

	tests := map[string]func(*entity.ScrapeJob){
		"kind":     func(j *entity.ScrapeJob) { j.Kind = "year" },
		"city":     func(j *entity.ScrapeJob) { j.Details.City = "" },
		"currency": func(j *entity.ScrapeJob) { j.Details.Currency = "" },
		"adults":   func(j *entity.ScrapeJob) { j.Details.Adults = 0 },
		"month":    func(j *entity.ScrapeJob) { j.Month = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			job := monthJob()
			mutate(job)
			_, err := manager.Submit(context.Background(), job, false)
			require.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestGetStatus(t *testing.T) {
	states := newMemoryStates()
	manager := NewJobManager(newMemorySubmitted(), states, &memoryQueue{}, time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := manager.Submit(ctx, monthJob(), false)
	require.NoError(t, err)

	status, err := manager.GetStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, entity.JobStatePending, status.State)
	require.Equal(t, int64(1), status.QueueSize)

	status, err = manager.GetStatus(ctx, "nope")
	require.NoError(t, err)
	require.Equal(t, entity.JobStateUnknown, status.State)
}

func TestGetStatusFallsBackToSubmittedKey(t *testing.T) {
	submitted := newMemorySubmitted()
	manager := NewJobManager(submitted, newMemoryStates(), &memoryQueue{}, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, submitted.MarkSubmitted(context.Background(), "job-1", time.Hour))

	status, err := manager.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, entity.JobStatePending, status.State)
}

func TestStatusFollowsJobThroughRunner(t *testing.T) {
	ctx := context.Background()

	tests := map[string]struct {
		saveErr   error
		wantState entity.JobState
		wantRows  int
		wantError string
	}{
		"completed": {wantState: entity.JobStateCompleted, wantRows: 27},
		"failed":    {saveErr: errors.New("disk full"), wantState: entity.JobStateFailed, wantError: "disk full"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			queue := &memoryQueue{}
			states := newMemoryStates()
			store := &memoryRows{saveErr: tt.saveErr}
			manager := NewJobManager(newMemorySubmitted(), states, queue, time.Hour, zaptest.NewLogger(t))
			runner := NewJobRunner(queue, states, store,
				newTestOrchestrator(t, oneRowPerDay(reconcileNow), store, 1, reconcileNow),
				newTestReconciler(t, store, oneRowPerDay(reconcileNow)),
				time.Hour, metrics.New(prometheus.NewRegistry()), zaptest.NewLogger(t))

			id, err := manager.Submit(ctx, monthJob(), false)
			require.NoError(t, err)

			processed, err := runner.ProcessJobFromQueue(ctx)
			require.True(t, processed)
			if tt.saveErr != nil {
				require.ErrorIs(t, err, tt.saveErr)
			} else {
				require.NoError(t, err)
			}

			status, err := manager.GetStatus(ctx, id)
			require.NoError(t, err)
			require.Equal(t, tt.wantState, status.State)
			require.Equal(t, tt.wantRows, status.Rows)
			require.Contains(t, status.Error, tt.wantError)
			require.Zero(t, status.QueueSize)
			require.False(t, status.UpdatedAt.IsZero())
			require.Equal(t, []entity.JobState{entity.JobStatePending, entity.JobStateRunning, tt.wantState}, states.history)
		})
	}
}
