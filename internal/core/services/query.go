package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Query outcome labels for metrics.
const (
	queryStatusOK    = "ok"
	queryStatusError = "error"
)

// QueryService answers questions by retrieving passages and synthesizing
// an answer from them.
type QueryService struct {
	retriever   driving.Retriever
	synthesizer driving.Synthesizer
	metrics     driven.Metrics
}

// NewQueryService creates a query service.
func NewQueryService(retriever driving.Retriever, synthesizer driving.Synthesizer) *QueryService {
	return &QueryService{
		retriever:   retriever,
		synthesizer: synthesizer,
		metrics:     nopMetrics{},
	}
}

// SetMetrics sets the metrics recorder.
func (s *QueryService) SetMetrics(m driven.Metrics) {
	s.metrics = metricsOrNop(m)
}

// Ask retrieves passages for the question and synthesizes an answer.
func (s *QueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Query")
	start := time.Now()

	answer, err := s.ask(ctx, question)
	status := queryStatusOK
	if err != nil {
		status = queryStatusError
		logger.Warn("query failed: %v", err)
	}
	s.metrics.QueryDone(s.retriever.Strategy(), status, time.Since(start))
	return answer, err
}

func (s *QueryService) ask(ctx context.Context, question string) (*domain.Answer, error) {
	chunks, err := s.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	answer.Strategy = s.retriever.Strategy()
	logger.Info("answered with %d passages from %d sources", len(chunks), len(answer.Sources))
	return answer, nil
}

// Retrieve returns the passages Ask would use.
func (s *QueryService) Retrieve(ctx context.Context, question string) ([]domain.Chunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	logger.Debug("Question: %q strategy=%s", question, s.retriever.Strategy())

	chunks, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return chunks, nil
}
