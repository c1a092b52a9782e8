package driven

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// TaskStore persists background ingestion task state.
type TaskStore interface {
	// Save creates or replaces a task.
	Save(ctx context.Context, task *domain.Task) error

	// Get returns a task by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// List returns tasks, most recent first, optionally restricted to a state.
	List(ctx context.Context, state domain.TaskState) ([]domain.Task, error)

	// Close releases resources.
	Close() error
}
