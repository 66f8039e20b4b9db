package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// BuilderFunc constructs a processor for one ingestion run. cfg carries the
// assistant's chunking parameters.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry builds processors by name.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the processor registered as name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	build, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor %q (have %v)", name, r.Names())
	}
	proc, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return proc, nil
}

// BuildPipeline builds names in order with a shared cfg.
func (r *Registry) BuildPipeline(names []string, cfg map[string]any) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		proc, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		stages = append(stages, proc)
	}
	return NewPipeline(stages...), nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
