package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure TaskService implements the interface.
var _ driving.TaskService = (*TaskService)(nil)

// ErrTaskServiceStopped is returned by Submit after Stop.
var ErrTaskServiceStopped = errors.New("task service stopped")

// Task service defaults.
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 64
)

// TaskService runs ingestion tasks on a fixed pool of workers.
// Uploaded files are deleted once their ingestion succeeds and kept on
// failure so the upload can be retried.
type TaskService struct {
	ingest  driving.IngestService
	store   driven.TaskStore
	workers int
	queue   chan string
	quit    chan struct{}

	removeOnSuccess bool

	quitOnce sync.Once
	mu       sync.RWMutex
	running  bool
	stopped  bool
	wg       sync.WaitGroup
}

// NewTaskService creates a dispatcher with the given number of workers.
func NewTaskService(ingest driving.IngestService, store driven.TaskStore, workers int) *TaskService {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &TaskService{
		ingest:          ingest,
		store:           store,
		workers:         workers,
		queue:           make(chan string, DefaultQueueSize),
		quit:            make(chan struct{}),
		removeOnSuccess: true,
	}
}

// SetQueueSize replaces the pending-task queue. Call it before Start.
func (s *TaskService) SetQueueSize(n int) {
	if n > 0 {
		s.queue = make(chan string, n)
	}
}

// KeepFiles disables deleting ingested files.
func (s *TaskService) KeepFiles() {
	s.removeOnSuccess = false
}

// Submit records a pending task and queues it. It blocks while the queue
// is full, until ctx is done or Stop is called; the recorded task is then
// marked failed.
func (s *TaskService) Submit(ctx context.Context, path string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return nil, ErrTaskServiceStopped
	}

	now := time.Now()
	task := &domain.Task{
		ID:        uuid.New().String(),
		FilePath:  path,
		State:     domain.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	select {
	case s.queue <- task.ID:
		logger.Debug("Queued task %s for %s", task.ID, path)
		return task, nil
	case <-ctx.Done():
		s.reject(task, ctx.Err())
		return nil, ctx.Err()
	case <-s.quit:
		s.reject(task, ErrTaskServiceStopped)
		return nil, ErrTaskServiceStopped
	}
}

// reject records a task that never reached the queue as failed.
func (s *TaskService) reject(task *domain.Task, cause error) {
	name := filepath.Base(task.FilePath)
	task.State = domain.TaskFailed
	task.UpdatedAt = time.Now()
	task.Result = &domain.IngestResult{
		Source:  name,
		Status:  domain.IngestStatusError,
		Message: fmt.Sprintf("Erro ao enfileirar o arquivo %s: %v", name, cause),
	}
	if err := s.store.Save(context.Background(), task); err != nil {
		logger.Warn("task %s: save rejection: %v", task.ID, err)
	}
}

// Get returns a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.store.Get(ctx, id)
}

// Start launches the workers.
func (s *TaskService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrTaskServiceStopped
	}
	if s.running {
		return nil
	}
	s.running = true

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work(ctx, i)
	}
	logger.Debug("Started %d ingestion workers", s.workers)
	return nil
}

// Stop closes the queue and waits for queued tasks to drain. Submits
// blocked on a full queue give up first.
func (s *TaskService) Stop() {
	s.quitOnce.Do(func() { close(s.quit) })
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *TaskService) work(ctx context.Context, worker int) {
	defer s.wg.Done()
	for id := range s.queue {
		s.run(ctx, worker, id)
	}
}

// run executes one task and records its outcome.
func (s *TaskService) run(ctx context.Context, worker int, id string) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		logger.Warn("task %s: load: %v", id, err)
		return
	}

	task.State = domain.TaskRunning
	task.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, task); err != nil {
		logger.Warn("task %s: save: %v", id, err)
	}
	logger.Debug("Worker %d running task %s", worker, id)

	result := s.ingestSafely(ctx, task.FilePath)
	task.Result = result
	task.UpdatedAt = time.Now()
	if result.Succeeded() {
		task.State = domain.TaskSucceeded
		if s.removeOnSuccess {
			if err := os.Remove(task.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("task %s: remove %s: %v", id, task.FilePath, err)
			}
		}
	} else {
		task.State = domain.TaskFailed
	}

	// The task context may already be cancelled; the outcome must still be recorded.
	if err := s.store.Save(context.WithoutCancel(ctx), task); err != nil {
		logger.Warn("task %s: save result: %v", id, err)
	}
}

// ingestSafely turns errors and panics into an error result.
func (s *TaskService) ingestSafely(ctx context.Context, path string) (result *domain.IngestResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Errorf("%v", r), "ingest %s panicked", path)
			result = &domain.IngestResult{
				Source:  filepath.Base(path),
				Status:  domain.IngestStatusError,
				Message: fmt.Sprintf("Erro ao processar o arquivo %s: %v", filepath.Base(path), r),
			}
		}
	}()

	result, err := s.ingest.Ingest(ctx, path)
	if result == nil {
		msg := "erro desconhecido"
		if err != nil {
			msg = err.Error()
		}
		result = &domain.IngestResult{
			Source:  filepath.Base(path),
			Status:  domain.IngestStatusError,
			Message: fmt.Sprintf("Erro ao processar o arquivo %s: %s", filepath.Base(path), msg),
		}
	}
	return result
}
