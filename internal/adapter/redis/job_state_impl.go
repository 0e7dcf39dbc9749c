package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
)

const jobStatePrefix = "scraper:state:"

// JobStateRepoImpl implements repository.JobStateRepository with one expiring
// JSON value per job.
type JobStateRepoImpl struct {
	client *redis.Client
}

func NewJobStateRepo(client *redis.Client) *JobStateRepoImpl {
	return &JobStateRepoImpl{client: client}
}

func (r *JobStateRepoImpl) SetState(ctx context.Context, status *entity.JobStatus, expiry time.Duration) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode state of job %s: %w", status.ID, err)
	}
	return r.client.Set(ctx, jobStatePrefix+status.ID, payload, expiry).Err()
}

func (r *JobStateRepoImpl) GetState(ctx context.Context, jobID string) (*entity.JobStatus, error) {
	payload, err := r.client.Get(ctx, jobStatePrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrJobStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var status entity.JobStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("failed to decode state of job %s: %w", jobID, err)
	}
	return &status, nil
}
