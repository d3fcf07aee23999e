package scene

import (
	"github.com/charmbracelet/log"
)

// RegistryBuilderOption is a functional option for configuring a Registry.
// Use the With* functions to create options.
type RegistryBuilderOption func(r *registry)

// WithTextureSink sets where archetype textures are uploaded. Without a sink, texture slots
// are numbered in load order.
//
// Parameters:
//   - sink: the texture sink, typically the renderer
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithTextureSink(sink TextureSink) RegistryBuilderOption {
	return func(r *registry) {
		r.textures = sink
	}
}

// WithArchetypes defines archetypes up front. Definitions with an empty key are skipped.
//
// Parameters:
//   - defs: the archetype definitions
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithArchetypes(defs ...ArchetypeDef) RegistryBuilderOption {
	return func(r *registry) {
		for _, d := range defs {
			if d.Key == "" {
				continue
			}
			r.archetypes[d.Key] = &archetypeEntry{def: d.withDefaults()}
		}
	}
}

// WithLogger sets the registry's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithLogger(l *log.Logger) RegistryBuilderOption {
	return func(r *registry) {
		if l != nil {
			r.logger = l
		}
	}
}
