// -----------------------------------------------------------------------
// Scenario Registry - discovers and addresses named test scenarios
// -----------------------------------------------------------------------

package registry

import (
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/interfaces"
	"github.com/ternarybob/herrold/internal/models"
)

// Registry loads scenario descriptors from a backing source. Load re-scans
// the source on every call so scenario definitions can change between runs;
// the loaded set is replaced wholesale, never patched.
type Registry struct {
	source interfaces.ScenarioSource
	logger arbor.ILogger

	mu     sync.RWMutex
	loaded []interfaces.ScenarioDescriptor
}

// New creates a registry over the given scenario source
func New(source interfaces.ScenarioSource, logger arbor.ILogger) *Registry {
	return &Registry{
		source: source,
		logger: logger,
	}
}

// Load re-scans the backing source and replaces the loaded set. Definitions
// missing a name, description or body are skipped with a warning; duplicate
// names keep the first definition. An empty result is an error: a registry
// with nothing to run is a startup precondition failure, not a valid state.
func (r *Registry) Load() ([]interfaces.ScenarioDescriptor, error) {
	if r.source == nil {
		return nil, fmt.Errorf("scenario source not configured")
	}

	raw := r.source.Scenarios()

	loaded := make([]interfaces.ScenarioDescriptor, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, desc := range raw {
		if !desc.Valid() {
			r.logger.Warn().
				Str("name", desc.Name).
				Msg("Skipping invalid scenario definition")
			continue
		}
		if seen[desc.Name] {
			r.logger.Warn().
				Str("name", desc.Name).
				Msg("Skipping duplicate scenario name")
			continue
		}
		seen[desc.Name] = true
		loaded = append(loaded, desc)
	}

	if len(loaded) == 0 {
		return nil, fmt.Errorf("scenario source yielded no valid scenarios")
	}

	r.mu.Lock()
	r.loaded = loaded
	r.mu.Unlock()

	r.logger.Debug().
		Int("count", len(loaded)).
		Msg("Scenario registry loaded")

	// Return a copy so callers can't mutate the loaded set
	out := make([]interfaces.ScenarioDescriptor, len(loaded))
	copy(out, loaded)
	return out, nil
}

// List returns scenario metadata in registry order, without the executable
// bodies
func (r *Registry) List() []models.ScenarioInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]models.ScenarioInfo, 0, len(r.loaded))
	for _, desc := range r.loaded {
		infos = append(infos, models.ScenarioInfo{
			Name:        desc.Name,
			Description: desc.Description,
		})
	}
	return infos
}

// Get looks a scenario up by name in the currently loaded set
func (r *Registry) Get(name string) (interfaces.ScenarioDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, desc := range r.loaded {
		if desc.Name == name {
			return desc, true
		}
	}
	return interfaces.ScenarioDescriptor{}, false
}
