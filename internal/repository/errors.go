package repository

import "errors"

var (
	ErrQueueEmpty       = errors.New("job queue is empty")
	ErrJobStateNotFound = errors.New("job state not found")
)
