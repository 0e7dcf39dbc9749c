package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/repository"
)

const jobQueueKey = "scraper:jobs"

// JobQueueRepoImpl implements repository.JobQueueRepository on a Redis list.
// Jobs are stored as JSON; LPUSH plus RPOP gives FIFO order.
type JobQueueRepoImpl struct {
	client *redis.Client
}

func NewJobQueueRepo(client *redis.Client) *JobQueueRepoImpl {
	return &JobQueueRepoImpl{client: client}
}

func (r *JobQueueRepoImpl) Push(ctx context.Context, job *entity.ScrapeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	return r.client.LPush(ctx, jobQueueKey, payload).Err()
}

func (r *JobQueueRepoImpl) Pop(ctx context.Context) (*entity.ScrapeJob, error) {
	payload, err := r.client.RPop(ctx, jobQueueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	var job entity.ScrapeJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode queued job: %w", err)
	}
	return &job, nil
}

func (r *JobQueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, jobQueueKey).Result()
}
