package response

import "time"

type SubmitJobResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type JobStatusResponse struct {
	JobID     string    `json:"job_id"`
	State     string    `json:"state"` // pending, running, completed or failed
	Error     string    `json:"error,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	QueueSize int64     `json:"queue_size"`
}

// CoverageResponse mirrors entity.DateCoverage with a completeness flag.
type CoverageResponse struct {
	City     string   `json:"city"`
	Month    string   `json:"month"`
	AsOf     string   `json:"as_of"`
	Expected int      `json:"expected"`
	Actual   int      `json:"actual"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}
