package mcp

import (
	"context"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

type mockQueryService struct {
	answer *domain.Answer
	chunks []domain.Chunk
	err    error
}

func (m *mockQueryService) Ask(context.Context, string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer == nil {
		return &domain.Answer{}, nil
	}
	return m.answer, nil
}

func (m *mockQueryService) Retrieve(context.Context, string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

type mockStatsService struct {
	stats *domain.CollectionStats
	err   error
}

func (m *mockStatsService) Stats(context.Context) (*domain.CollectionStats, error) {
	return m.stats, m.err
}

type mockTaskService struct {
	tasks map[string]*domain.Task
}

func (m *mockTaskService) Submit(context.Context, string) (*domain.Task, error) {
	return nil, domain.ErrUnsupportedType
}

func (m *mockTaskService) Get(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskService) Start(context.Context) error { return nil }
func (m *mockTaskService) Stop()                       {}

func chunk(source, law string, pos int, content string) domain.Chunk {
	return domain.Chunk{
		Content:  content,
		Position: pos,
		Metadata: domain.Metadata{
			domain.MetaSource:    source,
			domain.MetaLawNumber: law,
		},
	}
}
