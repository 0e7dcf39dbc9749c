package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const submittedJobPrefix = "scraper:submitted:"

// SubmittedJobRepoImpl implements repository.SubmittedJobRepository with expiring keys.
type SubmittedJobRepoImpl struct {
	client *redis.Client
}

func NewSubmittedJobRepo(client *redis.Client) *SubmittedJobRepoImpl {
	return &SubmittedJobRepoImpl{client: client}
}

func (r *SubmittedJobRepoImpl) key(jobID string) string {
	return submittedJobPrefix + jobID
}

// MarkSubmitted sets a key that lives for expiry.
func (r *SubmittedJobRepoImpl) MarkSubmitted(ctx context.Context, jobID string, expiry time.Duration) error {
	return r.client.Set(ctx, r.key(jobID), "1", expiry).Err()
}

func (r *SubmittedJobRepoImpl) IsSubmitted(ctx context.Context, jobID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jobID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SubmittedJobRepoImpl) RemoveSubmitted(ctx context.Context, jobID string) error {
	return r.client.Del(ctx, r.key(jobID)).Err()
}
