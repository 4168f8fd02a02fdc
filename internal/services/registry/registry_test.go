package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/interfaces"
)

// fakeSource is a scenario source with swappable contents
type fakeSource struct {
	scenarios []interfaces.ScenarioDescriptor
}

func (f *fakeSource) Scenarios() []interfaces.ScenarioDescriptor {
	return f.scenarios
}

func noopScenario(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	return nil
}

func descriptor(name string) interfaces.ScenarioDescriptor {
	return interfaces.ScenarioDescriptor{
		Name:        name,
		Description: "test scenario " + name,
		Run:         noopScenario,
	}
}

func TestLoadPreservesSourceOrder(t *testing.T) {
	source := &fakeSource{scenarios: []interfaces.ScenarioDescriptor{
		descriptor("alpha"),
		descriptor("beta"),
		descriptor("gamma"),
	}}
	registry := New(source, arbor.NewLogger())

	loaded, err := registry.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "alpha", loaded[0].Name)
	assert.Equal(t, "beta", loaded[1].Name)
	assert.Equal(t, "gamma", loaded[2].Name)
}

func TestLoadSkipsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name       string
		scenario   interfaces.ScenarioDescriptor
		wantLoaded int
	}{
		{
			name:       "missing name",
			scenario:   interfaces.ScenarioDescriptor{Description: "d", Run: noopScenario},
			wantLoaded: 1,
		},
		{
			name:       "missing description",
			scenario:   interfaces.ScenarioDescriptor{Name: "n", Run: noopScenario},
			wantLoaded: 1,
		},
		{
			name:       "missing body",
			scenario:   interfaces.ScenarioDescriptor{Name: "n", Description: "d"},
			wantLoaded: 1,
		},
		{
			name:       "complete definition",
			scenario:   descriptor("extra"),
			wantLoaded: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{scenarios: []interfaces.ScenarioDescriptor{
				descriptor("valid"),
				tt.scenario,
			}}
			registry := New(source, arbor.NewLogger())

			loaded, err := registry.Load()
			require.NoError(t, err)
			assert.Len(t, loaded, tt.wantLoaded)
		})
	}
}

func TestLoadSkipsDuplicateNames(t *testing.T) {
	first := descriptor("dup")
	first.Description = "first definition"
	second := descriptor("dup")
	second.Description = "second definition"

	source := &fakeSource{scenarios: []interfaces.ScenarioDescriptor{first, second}}
	registry := New(source, arbor.NewLogger())

	loaded, err := registry.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "first definition", loaded[0].Description)
}

func TestLoadFailsWhenNothingValid(t *testing.T) {
	tests := []struct {
		name      string
		scenarios []interfaces.ScenarioDescriptor
	}{
		{name: "empty source", scenarios: nil},
		{
			name: "only invalid definitions",
			scenarios: []interfaces.ScenarioDescriptor{
				{Name: "no body", Description: "d"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := New(&fakeSource{scenarios: tt.scenarios}, arbor.NewLogger())

			_, err := registry.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no valid scenarios")
		})
	}
}

func TestLoadReplacesLoadedSet(t *testing.T) {
	source := &fakeSource{scenarios: []interfaces.ScenarioDescriptor{descriptor("old")}}
	registry := New(source, arbor.NewLogger())

	_, err := registry.Load()
	require.NoError(t, err)
	_, ok := registry.Get("old")
	assert.True(t, ok)

	source.scenarios = []interfaces.ScenarioDescriptor{descriptor("new")}
	_, err = registry.Load()
	require.NoError(t, err)

	_, ok = registry.Get("old")
	assert.False(t, ok, "stale scenario should be gone after reload")
	_, ok = registry.Get("new")
	assert.True(t, ok)
}

func TestListReturnsMetadataOnly(t *testing.T) {
	source := &fakeSource{scenarios: []interfaces.ScenarioDescriptor{
		descriptor("alpha"),
		descriptor("beta"),
	}}
	registry := New(source, arbor.NewLogger())

	_, err := registry.Load()
	require.NoError(t, err)

	infos := registry.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "test scenario alpha", infos[0].Description)
	assert.Equal(t, "beta", infos[1].Name)
}

func TestGetUnknownName(t *testing.T) {
	registry := New(&fakeSource{scenarios: []interfaces.ScenarioDescriptor{descriptor("known")}}, arbor.NewLogger())
	_, err := registry.Load()
	require.NoError(t, err)

	_, ok := registry.Get("unknown")
	assert.False(t, ok)
}
