package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// Ensure TaskStore implements the interface.
var _ driven.TaskStore = (*TaskStore)(nil)

// TaskStore is an in-memory implementation of driven.TaskStore.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]domain.Task)}
}

// Save stores a copy of the task.
func (s *TaskStore) Save(_ context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

// List returns tasks newest first. An empty state matches every task.
func (s *TaskStore) List(_ context.Context, state domain.TaskState) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if state == "" || task.State == state {
			result = append(result, cloneTask(task))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Close is a no-op.
func (s *TaskStore) Close() error {
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	if t.Result != nil {
		r := *t.Result
		t.Result = &r
	}
	return t
}
