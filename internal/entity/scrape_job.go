package entity

import (
	"errors"
	"fmt"
	"time"
)

// JobKind selects what a queued ScrapeJob runs.
type JobKind string

const (
	JobKindMonth   JobKind = "month"
	JobKindMissing JobKind = "missing"
)

// ScrapeJob is a unit of work submitted through the API and consumed by the job runner.
// Month and StartDay are only used by month jobs.
type ScrapeJob struct {
	ID          string         `json:"id"`
	Kind        JobKind        `json:"kind"`
	Details     BookingDetails `json:"details"`
	Year        int            `json:"year"`
	Month       time.Month     `json:"month,omitempty"`
	StartDay    int            `json:"start_day,omitempty"`
	Nights      int            `json:"nights,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Validate reports the first problem that would stop the job from running.
func (j *ScrapeJob) Validate() error {
	switch {
	case j.Kind != JobKindMonth && j.Kind != JobKindMissing:
		return fmt.Errorf("unknown job kind %q", j.Kind)
	case j.Details.City == "":
		return errors.New("city is required")
	case j.Details.Currency == "":
		return errors.New("currency is required")
	case j.Details.Adults < 1 || j.Details.Rooms < 1:
		return errors.New("adults and rooms must be positive")
	case j.Details.Children < 0:
		return errors.New("children cannot be negative")
	case j.Year < 1:
		return errors.New("year is required")
	case j.Kind == JobKindMonth && (j.Month < time.January || j.Month > time.December):
		return fmt.Errorf("invalid month %d", j.Month)
	case j.Nights < 0:
		return errors.New("nights cannot be negative")
	}
	return nil
}

// JobState is the lifecycle stage of a submitted job.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateUnknown   JobState = "unknown"
)

// JobStatus describes where a submitted job stands. Error is set for failed jobs,
// Rows for completed ones.
type JobStatus struct {
	ID        string    `json:"id"`
	State     JobState  `json:"state"`
	Error     string    `json:"error,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	QueueSize int64     `json:"queue_size"`
}
