package domain

import "time"

// Ingestion result statuses. These strings are part of the public API
// responses and match the values clients already parse.
const (
	IngestStatusSuccess = "Sucesso"
	IngestStatusError   = "Erro"
)

// IngestResult is the structured outcome of ingesting one file.
type IngestResult struct {
	// Source is the base name of the ingested file.
	Source string `json:"source"`

	// Status is IngestStatusSuccess or IngestStatusError.
	Status string `json:"status"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`

	// Chunks is the number of chunks written.
	Chunks int `json:"chunks"`
}

// Succeeded returns true if the ingestion completed.
func (r IngestResult) Succeeded() bool {
	return r.Status == IngestStatusSuccess
}

// TaskState is the lifecycle state of a background ingestion task.
type TaskState string

// Task states.
const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// IsTerminal returns true once the task will not change again.
func (s TaskState) IsTerminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// Task is a queued ingestion job.
type Task struct {
	// ID is the unique identifier returned to the uploader.
	ID string

	// FilePath is the temporary file to ingest.
	FilePath string

	// State is the current lifecycle state.
	State TaskState

	// Result is set once the task reaches a terminal state.
	Result *IngestResult

	// CreatedAt is when the task was submitted.
	CreatedAt time.Time

	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time
}
