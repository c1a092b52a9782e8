package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure TaskStore implements the interface.
var _ driven.TaskStore = (*TaskStore)(nil)

// TaskStore implements driven.TaskStore on badgerhold.
type TaskStore struct {
	store *badgerhold.Store
}

// NewTaskStore opens or creates the task database in dir.
func NewTaskStore(dir string) (*TaskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: task store directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Clean(dir), 0700); err != nil {
		return nil, fmt.Errorf("creating task store directory: %w", err)
	}

	logger.Debug("Opening task store at %s", dir)
	return open(badgerdb.DefaultOptions(dir))
}

// NewInMemoryTaskStore creates a task store that keeps nothing on disk.
func NewInMemoryTaskStore() (*TaskStore, error) {
	return open(badgerdb.DefaultOptions("").WithInMemory(true))
}

func open(opts badgerdb.Options) (*TaskStore, error) {
	options := badgerhold.DefaultOptions
	options.Options = opts.WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}
	return &TaskStore{store: store}, nil
}

// Save creates or replaces a task.
func (s *TaskStore) Save(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task == nil || task.ID == "" {
		return fmt.Errorf("%w: task ID is required", domain.ErrInvalidInput)
	}
	if err := s.store.Upsert(task.ID, task); err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// Get returns a task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task domain.Task
	if err := s.store.Get(id, &task); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return &task, nil
}

// List returns tasks, newest first. An empty state lists every task.
func (s *TaskStore) List(ctx context.Context, state domain.TaskState) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := badgerhold.Where("ID").Ne("")
	if state != "" {
		query = query.And("State").Eq(state)
	}

	var tasks []domain.Task
	if err := s.store.Find(&tasks, query.SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Close closes the database.
func (s *TaskStore) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
