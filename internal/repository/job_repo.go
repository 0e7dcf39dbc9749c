package repository

import (
	"context"
	"time"

	"github.com/user/hotel-scraper/internal/entity"
)

// JobQueueRepository defines the interface for a FIFO queue of scrape jobs.
type JobQueueRepository interface {
	// Push adds a job to the end of the queue.
	Push(ctx context.Context, job *entity.ScrapeJob) error
	// Pop removes and returns the job at the front of the queue.
	// It returns ErrQueueEmpty when there is nothing to do.
	Pop(ctx context.Context) (*entity.ScrapeJob, error)
	// Size returns the current number of queued jobs.
	Size(ctx context.Context) (int64, error)
}

// SubmittedJobRepository remembers recently submitted jobs so the same scrape is
// not queued twice within the dedup window.
type SubmittedJobRepository interface {
	MarkSubmitted(ctx context.Context, jobID string, expiry time.Duration) error
	IsSubmitted(ctx context.Context, jobID string) (bool, error)
	// RemoveSubmitted forgets a job, used for forced resubmission.
	RemoveSubmitted(ctx context.Context, jobID string) error
}

// JobStateRepository keeps the latest status the runner recorded for a job.
type JobStateRepository interface {
	// SetState overwrites the stored status of status.ID. It expires after expiry.
	SetState(ctx context.Context, status *entity.JobStatus, expiry time.Duration) error
	// GetState returns ErrJobStateNotFound when nothing is stored for jobID.
	GetState(ctx context.Context, jobID string) (*entity.JobStatus, error)
}
