package driving

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

// TaskService runs ingestion off the request path.
type TaskService interface {
	// Submit queues a file for ingestion and returns the pending task.
	Submit(ctx context.Context, path string) (*domain.Task, error)

	// Get returns the current state of a task.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// Start launches the workers. It returns immediately.
	Start(ctx context.Context) error

	// Stop stops accepting tasks and waits for running ones to finish.
	Stop()
}
