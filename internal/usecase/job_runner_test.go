package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/pkg/metrics"
)

func newTestRunner(t *testing.T, queue *memoryQueue, store *memoryRows, days DayScraper) (JobRunner, *metrics.Metrics) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	m := metrics.New(prometheus.NewRegistry())
	o := newTestOrchestrator(t, days, store, 1, reconcileNow)
	r := newTestReconciler(t, store, days)
	return NewJobRunner(queue, newMemoryStates(), store, o, r, time.Hour, m, logger), m
}

func TestProcessJobFromQueueEmpty(t *testing.T) {
	runner, _ := newTestRunner(t, &memoryQueue{}, &memoryRows{}, oneRowPerDay(reconcileNow))

	processed, err := runner.ProcessJobFromQueue(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
}

func TestProcessMonthJob(t *testing.T) {
	queue := &memoryQueue{}
	store := &memoryRows{}
	require.NoError(t, queue.Push(context.Background(), monthJob()))
	require.NoError(t, queue.Push(context.Background(), monthJob()))
	runner, m := newTestRunner(t, queue, store, oneRowPerDay(reconcileNow))

	processed, err := runner.ProcessJobFromQueue(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	// August 5th to 31st.
	require.Len(t, store.rows, 27)
	require.Equal(t, 1, store.saves)
	require.Equal(t, 1.0, testutil.ToFloat64(m.JobsInQueue))
}

func TestProcessMissingJob(t *testing.T) {
	queue := &memoryQueue{}
	store := &memoryRows{}
	store.storeDates("Osaka", reconcileNow, monthDays("2024-09", 1, 30, 3)...)
	require.NoError(t, queue.Push(context.Background(), &entity.ScrapeJob{Kind: entity.JobKindMissing, Details: osakaDetails, Year: 2024}))
	runner, _ := newTestRunner(t, queue, store, oneRowPerDay(reconcileNow))

	processed, err := runner.ProcessJobFromQueue(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Equal(t, "2024-09-03", store.rows[len(store.rows)-1].Date)
}

func TestRunStopsOnMismatch(t *testing.T) {
	queue := &memoryQueue{}
	require.NoError(t, queue.Push(context.Background(), monthJob()))
	days := dayScraperFunc(func(ctx context.Context, req entity.ScrapeRequest) ([]entity.HotelRow, error) {
		return nil, &booking.MismatchError{Field: "city", Requested: req.City, Returned: "Osaka-fu"}
	})
	runner, _ := newTestRunner(t, queue, &memoryRows{}, days)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := runner.Run(ctx, 10*time.Millisecond)
	require.ErrorIs(t, err, booking.ErrParameterMismatch)
}

func TestRunReturnsOnCancel(t *testing.T) {
	runner, _ := newTestRunner(t, &memoryQueue{}, &memoryRows{}, oneRowPerDay(reconcileNow))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, runner.Run(ctx, 10*time.Millisecond))
}
