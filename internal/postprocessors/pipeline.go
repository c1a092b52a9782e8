// Package postprocessors turns loaded documents into annotated chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs its stages in order. The first stage receives nil chunks
// and creates them; later stages annotate what they receive.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// BuildPipeline builds the stages named in cfg from the registry.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no stages", domain.ErrInvalidInput)
	}
	stages := make([]driven.PostProcessor, 0, len(cfg.Stages))
	for _, name := range cfg.Stages {
		stage, err := r.Build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}

// Process runs doc through every stage.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		chunks, err = stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}
	return chunks, nil
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
