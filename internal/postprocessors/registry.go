package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// StageBuilder creates one pipeline stage from the pipeline settings.
type StageBuilder func(cfg domain.PipelineConfig) (driven.PostProcessor, error)

// Registry resolves stage names to builders.
type Registry struct {
	stages map[string]StageBuilder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]StageBuilder)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, build StageBuilder) {
	r.stages[name] = build
}

// Build creates the stage called name.
func (r *Registry) Build(name string, cfg domain.PipelineConfig) (driven.PostProcessor, error) {
	build, ok := r.stages[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pipeline stage %q (known: %v)", domain.ErrInvalidInput, name, r.Names())
	}
	return build(cfg)
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.stages))
}
