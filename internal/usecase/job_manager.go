package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/pkg/utils"
)

var (
	ErrJobRecentlySubmitted = errors.New("an identical job was submitted recently and force is false")
	ErrInvalidJob           = errors.New("invalid job")
)

// JobManager defines the interface for submitting scrape jobs and checking on them.
type JobManager interface {
	Submit(ctx context.Context, job *entity.ScrapeJob, force bool) (string, error)
	GetStatus(ctx context.Context, jobID string) (*entity.JobStatus, error)
}

type jobManagerUseCase struct {
	submittedRepo repository.SubmittedJobRepository
	stateRepo     repository.JobStateRepository
	queueRepo     repository.JobQueueRepository
	dedupWindow   time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewJobManager creates a JobManager that refuses identical jobs for dedupWindow.
// Job states are kept for the same window.
func NewJobManager(
	submittedRepo repository.SubmittedJobRepository,
	stateRepo repository.JobStateRepository,
	queueRepo repository.JobQueueRepository,
	dedupWindow time.Duration,
	logger *zap.Logger,
) JobManager {
	return &jobManagerUseCase{
		submittedRepo: submittedRepo,
		stateRepo:     stateRepo,
		queueRepo:     queueRepo,
		dedupWindow:   dedupWindow,
		logger:        logger,
		now:           time.Now,
	}
}

// JobID derives a stable id from everything that makes two jobs the same scrape.
func JobID(job *entity.ScrapeJob) string {
	d := job.Details
	return utils.HashKey(
		string(job.Kind),
		d.City, d.Country, d.Currency,
		strconv.Itoa(d.Adults), strconv.Itoa(d.Rooms), strconv.Itoa(d.Children),
		strconv.FormatBool(d.HotelOnly),
		strconv.Itoa(job.Year), strconv.Itoa(int(job.Month)),
		strconv.Itoa(job.StartDay), strconv.Itoa(job.Nights),
	)
}

func (uc *jobManagerUseCase) Submit(ctx context.Context, job *entity.ScrapeJob, force bool) (string, error) {
	if err := job.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	job.ID = JobID(job)
	job.SubmittedAt = uc.now().UTC()

	if force {
		if err := uc.submittedRepo.RemoveSubmitted(ctx, job.ID); err != nil {
			uc.logger.Warn("failed to clear submitted key for forced job", zap.String("job_id", job.ID), zap.Error(err))
		}
	} else {
		submitted, err := uc.submittedRepo.IsSubmitted(ctx, job.ID)
		if err != nil {
			return "", err
		}
		if submitted {
			return job.ID, ErrJobRecentlySubmitted
		}
	}

	if err := uc.queueRepo.Push(ctx, job); err != nil {
		return "", err
	}

	if err := uc.submittedRepo.MarkSubmitted(ctx, job.ID, uc.dedupWindow); err != nil {
		// The job is queued; an identical one may slip in before the key exists.
		uc.logger.Error("failed to mark job as submitted after queueing", zap.String("job_id", job.ID), zap.Error(err))
	}
	pending := &entity.JobStatus{ID: job.ID, State: entity.JobStatePending, UpdatedAt: job.SubmittedAt}
	if err := uc.stateRepo.SetState(ctx, pending, uc.dedupWindow); err != nil {
		uc.logger.Error("failed to record pending state", zap.String("job_id", job.ID), zap.Error(err))
	}

	uc.logger.Info("job queued",
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("city", job.Details.City),
	)
	return job.ID, nil
}

// GetStatus prefers the state the runner recorded. Without one, a live submitted
// key still means the job is waiting.
func (uc *jobManagerUseCase) GetStatus(ctx context.Context, jobID string) (*entity.JobStatus, error) {
	size, err := uc.queueRepo.Size(ctx)
	if err != nil {
		return nil, err
	}

	status, err := uc.stateRepo.GetState(ctx, jobID)
	switch {
	case err == nil:
		status.QueueSize = size
		return status, nil
	case !errors.Is(err, repository.ErrJobStateNotFound):
		return nil, err
	}

	submitted, err := uc.submittedRepo.IsSubmitted(ctx, jobID)
	if err != nil {
		return nil, err
	}
	state := entity.JobStateUnknown
	if submitted {
		state = entity.JobStatePending
	}
	return &entity.JobStatus{ID: jobID, State: state, QueueSize: size}, nil
}
