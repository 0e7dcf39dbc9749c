package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/metrics"
)

// JobRunner consumes queued scrape jobs.
type JobRunner interface {
	// ProcessJobFromQueue runs at most one job. It reports whether a job was taken.
	ProcessJobFromQueue(ctx context.Context) (bool, error)
	// Run polls the queue until ctx is done or a job fails fatally.
	Run(ctx context.Context, pollInterval time.Duration) error
}

type jobRunnerUseCase struct {
	queueRepo    repository.JobQueueRepository
	stateRepo    repository.JobStateRepository
	rowRepo      repository.HotelRowRepository
	orchestrator *RangeOrchestrator
	reconciler   *MissingDateReconciler
	stateTTL     time.Duration
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewJobRunner creates a JobRunner that records each job's state for stateTTL.
func NewJobRunner(
	queueRepo repository.JobQueueRepository,
	stateRepo repository.JobStateRepository,
	rowRepo repository.HotelRowRepository,
	orchestrator *RangeOrchestrator,
	reconciler *MissingDateReconciler,
	stateTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) JobRunner {
	return &jobRunnerUseCase{
		queueRepo:    queueRepo,
		stateRepo:    stateRepo,
		rowRepo:      rowRepo,
		orchestrator: orchestrator,
		reconciler:   reconciler,
		stateTTL:     stateTTL,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

func (uc *jobRunnerUseCase) ProcessJobFromQueue(ctx context.Context) (bool, error) {
	job, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop job from queue: %w", err)
	}
	uc.updateQueueGauge(ctx)

	logger := uc.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("city", job.Details.City),
	)
	logger.Info("processing job from queue")
	uc.record(ctx, logger, &entity.JobStatus{ID: job.ID, State: entity.JobStateRunning})

	start := time.Now()
	rows, err := uc.run(ctx, logger, job)
	if err != nil {
		uc.record(ctx, logger, &entity.JobStatus{ID: job.ID, State: entity.JobStateFailed, Error: err.Error()})
		return true, fmt.Errorf("job %s failed: %w", job.ID, err)
	}
	uc.record(ctx, logger, &entity.JobStatus{ID: job.ID, State: entity.JobStateCompleted, Rows: rows})
	logger.Info("job finished", zap.Int("rows", rows), zap.Duration("elapsed", time.Since(start)))
	return true, nil
}

// record stores a job's state. The write outlives ctx so a job interrupted by
// shutdown is still marked failed.
func (uc *jobRunnerUseCase) record(ctx context.Context, logger *zap.Logger, status *entity.JobStatus) {
	status.UpdatedAt = uc.now().UTC()
	if err := uc.stateRepo.SetState(context.WithoutCancel(ctx), status, uc.stateTTL); err != nil {
		logger.Warn("failed to record job state", zap.String("state", string(status.State)), zap.Error(err))
	}
}

// run executes job and returns the number of rows it saved.
func (uc *jobRunnerUseCase) run(ctx context.Context, logger *zap.Logger, job *entity.ScrapeJob) (int, error) {
	nights := job.Nights
	if nights == 0 {
		nights = 1
	}

	switch job.Kind {
	case entity.JobKindMonth:
		rows, err := uc.orchestrator.ScrapeMonth(ctx, MonthRequest{
			Details:  job.Details,
			Year:     job.Year,
			Month:    job.Month,
			StartDay: job.StartDay,
			Nights:   nights,
		})
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			logger.Warn("month produced no rows")
			return 0, nil
		}
		if err := uc.rowRepo.Save(ctx, rows); err != nil {
			return 0, fmt.Errorf("failed to save rows: %w", err)
		}
		logger.Info("month saved", zap.Int("rows", len(rows)))
		return len(rows), nil

	case entity.JobKindMissing:
		result, err := uc.reconciler.Reconcile(ctx, job.Details, job.Year)
		if err != nil {
			return result.Rows, err
		}
		logger.Info("missing dates reconciled",
			zap.Int("missing", len(result.Missing)),
			zap.Int("recovered", len(result.Recovered)),
		)
		return result.Rows, nil
	}
	return 0, fmt.Errorf("unknown job kind %q", job.Kind)
}

// Run returns nil when ctx is cancelled. A parameter mismatch is returned so the
// caller can stop the process; any other failure is logged and polling goes on.
func (uc *jobRunnerUseCase) Run(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for {
			processed, err := uc.ProcessJobFromQueue(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				if errors.Is(err, booking.ErrParameterMismatch) {
					return err
				}
				uc.logger.Error("failed to process job", zap.Bool("dequeued", processed), zap.Error(err))
			}
			if !processed || err != nil {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			uc.updateQueueGauge(ctx)
		}
	}
}

func (uc *jobRunnerUseCase) updateQueueGauge(ctx context.Context) {
	size, err := uc.queueRepo.Size(ctx)
	if err != nil {
		uc.logger.Debug("failed to read queue size", zap.Error(err))
		return
	}
	uc.metrics.JobsInQueue.Set(float64(size))
}
