package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario bundles the file paths and tunables of one simulation run.
// YAML scenario files overlay DefaultScenario, so omitted fields keep
// their defaults.
type Scenario struct {
	StationsFile    string `yaml:"stations_file"`
	SectionsFile    string `yaml:"sections_file"`
	TrainsFile      string `yaml:"trains_file"`
	DisruptionsFile string `yaml:"disruptions_file"`

	Seed     int64 `yaml:"seed"`
	HorizonS int64 `yaml:"horizon_s"`

	RandomEvents              bool    `yaml:"random_events"`
	RandomEventCheckIntervalS int64   `yaml:"random_event_check_interval_s"`
	RandomEventProbability    float64 `yaml:"random_event_probability"`
	MinDisruptionDurationS    int64   `yaml:"min_disruption_duration_s"`
	MaxDisruptionDurationS    int64   `yaml:"max_disruption_duration_s"`

	CrossingRetryIntervalS int64 `yaml:"crossing_retry_interval_s"`
}

// DefaultScenario returns the compiled-in defaults.
func DefaultScenario() Scenario {
	return Scenario{
		StationsFile:              "data/stations.csv",
		SectionsFile:              "data/sections.csv",
		TrainsFile:                "data/trains.csv",
		DisruptionsFile:           "data/disruptions.csv",
		Seed:                      1,
		HorizonS:                  0,
		RandomEvents:              false,
		RandomEventCheckIntervalS: 30,
		RandomEventProbability:    0.10,
		MinDisruptionDurationS:    6,
		MaxDisruptionDurationS:    10,
		CrossingRetryIntervalS:    60,
	}
}

// LoadScenario reads a YAML scenario file over the defaults.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("failed to read scenario file: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return sc, nil
}
