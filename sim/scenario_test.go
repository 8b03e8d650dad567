package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScenario(t *testing.T) {
	sc := DefaultScenario()

	assert.Equal(t, int64(1), sc.Seed)
	assert.Equal(t, int64(0), sc.HorizonS)
	assert.False(t, sc.RandomEvents)
	assert.Equal(t, int64(30), sc.RandomEventCheckIntervalS)
	assert.Equal(t, 0.10, sc.RandomEventProbability)
	assert.Equal(t, int64(60), sc.CrossingRetryIntervalS)
	assert.LessOrEqual(t, sc.MinDisruptionDurationS, sc.MaxDisruptionDurationS)
}

func TestLoadScenario_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"seed: 99\n"+
			"random_events: true\n"+
			"random_event_probability: 0.25\n"+
			"trains_file: scenarios/peak/trains.csv\n"), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), sc.Seed)
	assert.True(t, sc.RandomEvents)
	assert.Equal(t, 0.25, sc.RandomEventProbability)
	assert.Equal(t, "scenarios/peak/trains.csv", sc.TrainsFile)

	// Untouched fields keep their defaults.
	assert.Equal(t, int64(30), sc.RandomEventCheckIntervalS)
	assert.Equal(t, DefaultScenario().StationsFile, sc.StationsFile)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [not a number\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
}
