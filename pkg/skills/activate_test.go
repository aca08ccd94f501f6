package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillrig/skillrig/pkg/config"
)

func activationConfig() *config.Config {
	return config.FromTree(map[string]any{
		"skills": map[string]any{
			"entries": map[string]any{
				"weather": map[string]any{
					"apiKey": "secret-key",
					"env": map[string]any{
						"WEATHER_UNITS": "metric",
						"WEATHER_LANG":  "en",
					},
				},
			},
		},
	})
}

func weatherEntry() *Entry {
	return &Entry{
		Record:     Record{Name: "weather"},
		Capability: &Capability{PrimaryEnv: "WEATHER_KEY"},
	}
}

// clearEnv unsets the variables for the duration of the test, restoring
// whatever was there before.
func clearEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "sentinel")
		os.Unsetenv(name)
	}
}

func TestActivate_InjectsAndRestores(t *testing.T) {
	clearEnv(t, "WEATHER_KEY", "WEATHER_UNITS", "WEATHER_LANG")

	entries := map[string]*Entry{"weather": weatherEntry()}
	restore := Activate(entries, activationConfig())

	assert.Equal(t, "secret-key", os.Getenv("WEATHER_KEY"))
	assert.Equal(t, "metric", os.Getenv("WEATHER_UNITS"))
	assert.Equal(t, "en", os.Getenv("WEATHER_LANG"))

	require.NoError(t, restore())

	for _, name := range []string{"WEATHER_KEY", "WEATHER_UNITS", "WEATHER_LANG"} {
		_, exists := os.LookupEnv(name)
		assert.False(t, exists, "%s should be unset again", name)
	}
}

func TestActivate_NeverOverwritesExistingVariables(t *testing.T) {
	clearEnv(t, "WEATHER_KEY", "WEATHER_LANG")
	t.Setenv("WEATHER_UNITS", "imperial")

	entries := map[string]*Entry{"weather": weatherEntry()}
	restore := Activate(entries, activationConfig())

	assert.Equal(t, "imperial", os.Getenv("WEATHER_UNITS"), "already-set variables are left alone")
	assert.Equal(t, "secret-key", os.Getenv("WEATHER_KEY"))

	require.NoError(t, restore())

	assert.Equal(t, "imperial", os.Getenv("WEATHER_UNITS"))
	_, exists := os.LookupEnv("WEATHER_KEY")
	assert.False(t, exists)
}

func TestActivate_CredentialRequiresPrimaryEnv(t *testing.T) {
	clearEnv(t, "WEATHER_KEY")

	// Entry without a primary env: the API key has nowhere to go.
	entries := map[string]*Entry{
		"weather": {Record: Record{Name: "weather"}},
	}
	restore := Activate(entries, activationConfig())
	t.Cleanup(func() { require.NoError(t, restore()) })

	_, exists := os.LookupEnv("WEATHER_KEY")
	assert.False(t, exists)
}

func TestActivate_NoConfigNoMutation(t *testing.T) {
	clearEnv(t, "WEATHER_KEY")

	entries := map[string]*Entry{"weather": weatherEntry()}
	restore := Activate(entries, nil)
	require.NoError(t, restore())

	_, exists := os.LookupEnv("WEATHER_KEY")
	assert.False(t, exists)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	entries := map[string]*Entry{
		"weather": weatherEntry(),
		"plain":   {Record: Record{Name: "plain", Description: "No metadata"}},
	}

	snap := NewSnapshot(entries)
	assert.NotEmpty(t, snap.ID)
	assert.Contains(t, snap.Prompt, "## weather")
	require.Len(t, snap.Skills, 2)
	assert.Equal(t, []SnapshotSkill{
		{Name: "plain"},
		{Name: "weather", PrimaryEnv: "WEATHER_KEY"},
	}, snap.Skills)

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, snap.Save(path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	assert.Equal(t, snap.Skills, loaded.Skills)
	assert.Equal(t, snap.Prompt, loaded.Prompt)
}

func TestActivateSnapshot(t *testing.T) {
	clearEnv(t, "WEATHER_KEY", "WEATHER_UNITS", "WEATHER_LANG")

	snap := &Snapshot{
		Skills: []SnapshotSkill{{Name: "weather", PrimaryEnv: "WEATHER_KEY"}},
	}

	restore := ActivateSnapshot(snap, activationConfig())

	assert.Equal(t, "secret-key", os.Getenv("WEATHER_KEY"))
	assert.Equal(t, "metric", os.Getenv("WEATHER_UNITS"))

	require.NoError(t, restore())

	for _, name := range []string{"WEATHER_KEY", "WEATHER_UNITS", "WEATHER_LANG"} {
		_, exists := os.LookupEnv(name)
		assert.False(t, exists)
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
