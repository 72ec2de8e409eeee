package jobstore

import "time"

// Status is the job lifecycle state. A job is created in processing and
// transitions exactly once, to completed or failed; both are terminal.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the lifecycle record persisted as status.json in the job's
// directory.
type Job struct {
	JobID       string     `json:"job_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Error       *string    `json:"error"`
	OutputURL   *string    `json:"output_url"`
}
