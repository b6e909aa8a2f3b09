package batch

import (
	"time"

	"rijal-backend/internal/analysis"
)

// Job statuses. A job moves pending -> processing -> completed or error and
// never leaves a terminal status.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Job is the observable state of one batch run. Results holds per-item
// outcomes in submission order; on failure it keeps the items finished
// before the failing one.
type Job struct {
	JobID       string            `json:"jobId"`
	Status      string            `json:"status"`
	Total       int               `json:"total"`
	Processed   int               `json:"processed"`
	CurrentItem *string           `json:"currentItem,omitempty"`
	Results     []analysis.Result `json:"results"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

func (j Job) clone() Job {
	out := j
	if j.Results != nil {
		out.Results = make([]analysis.Result, len(j.Results))
		copy(out.Results, j.Results)
	}
	if j.CurrentItem != nil {
		s := *j.CurrentItem
		out.CurrentItem = &s
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
