package domain

import "time"

// JobStatus is the lifecycle state of an asynchronous import job.
type JobStatus string

// Job states. A job always reaches done or failed; there is no
// cancellation protocol for an in-flight job.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// ImportJob tracks one asynchronous collection import. The triggering
// request only ever sees the "started" acknowledgment; completion is
// observed by polling the persisted job row.
type ImportJob struct {
	ID          string     `json:"id"` // UUID
	BarID       string     `json:"bar_id"`
	UserID      string     `json:"user_id"`
	Status      JobStatus  `json:"status"`
	Imported    int        `json:"imported"`
	Skipped     int        `json:"skipped"`
	ItemErrors  []JobError `json:"item_errors,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobError records a single failed item inside a job submission. A failed
// item never aborts its siblings.
type JobError struct {
	Item  string `json:"item"` // Cocktail name, or position when nameless
	Error string `json:"error"`
}
