package models

import "time"

// JobStatus is the lifecycle state of a ScheduledJob.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuting JobStatus = "executing"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScheduledJob is a deferred post. Only the scheduler loop mutates it.
type ScheduledJob struct {
	ID         string     `json:"id"`
	Platform   Platform   `json:"platform"`
	Message    string     `json:"message"`
	RunAt      time.Time  `json:"run_at"`
	Status     JobStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
