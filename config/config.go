// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Population  PopulationConfig  `yaml:"population"`
	Organism    OrganismConfig    `yaml:"organism"`
	Behavior    BehaviorConfig    `yaml:"behavior"`
	Movement    MovementConfig    `yaml:"movement"`
	Death       DeathConfig       `yaml:"death"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	HallOfFame  HallOfFameConfig  `yaml:"hall_of_fame"`
	Storage     StorageConfig     `yaml:"storage"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds arena dimensions and the spatial partition.
type WorldConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	SectorSize float64 `yaml:"sector_size"` // spatial grid cell size
}

// SimulationConfig holds run-level settings.
type SimulationConfig struct {
	Seed     int64   `yaml:"seed" env:"PETRI_SEED"` // 0 = time-based
	TickRate float64 `yaml:"tick_rate"`             // ticks per simulated second
}

// EnvironmentConfig holds the tunable environment parameters and their runtime bounds.
type EnvironmentConfig struct {
	Temperature    float64 `yaml:"temperature" env:"PETRI_TEMPERATURE"`
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	Radiation      float64 `yaml:"radiation" env:"PETRI_RADIATION"` // crossover mutation ratio, 0..100
	RadiationMin   float64 `yaml:"radiation_min"`
	RadiationMax   float64 `yaml:"radiation_max"`
}

// PopulationConfig holds initial population and reseeding parameters.
type PopulationConfig struct {
	InitialOrganisms int `yaml:"initial_organisms"`
	InitialProducers int `yaml:"initial_producers"`
	InitialResources int `yaml:"initial_resources"`
	ReseedThreshold  int `yaml:"reseed_threshold"` // reseed when organisms drop below this (0 = never)
	ReseedCount      int `yaml:"reseed_count"`
}

// OrganismConfig holds newborn and reproduction reset values.
type OrganismConfig struct {
	InitialFood     float64 `yaml:"initial_food"`
	NewbornSize     float64 `yaml:"newborn_size"`
	DivideFoodReset float64 `yaml:"divide_food_reset"`
	DivideSizeReset float64 `yaml:"divide_size_reset"`
	TicksPerAge     int64   `yaml:"ticks_per_age"` // ticks per unit of the max_age trait
	Texture         string  `yaml:"texture"`
	ProducerTexture string  `yaml:"producer_texture"`
}

// BehaviorConfig holds the probabilities and magnitudes of the per-tick roles.
type BehaviorConfig struct {
	TurnChance         float64 `yaml:"turn_chance"`
	TurnMaxDegrees     float64 `yaml:"turn_max_degrees"`
	SpeedChance        float64 `yaml:"speed_chance"`
	MinSpeed           float64 `yaml:"min_speed"`
	FertilityGainMax   float64 `yaml:"fertility_gain_max"`
	HungerMin          float64 `yaml:"hunger_min"` // food lost per elapsed millisecond
	HungerMax          float64 `yaml:"hunger_max"`
	MutationChance     float64 `yaml:"mutation_chance" env:"PETRI_MUTATION_CHANCE"`
	MutationSigma      float64 `yaml:"mutation_sigma"`
	ColorTempThreshold float64 `yaml:"color_temperature_threshold"`
	ColorRadThreshold  float64 `yaml:"color_radiation_threshold"`
	ColorShift         float64 `yaml:"color_shift"` // channel shift per unit past threshold
	DecayPerSecond     float64 `yaml:"decay_per_second"`
	ProducerChance     float64 `yaml:"producer_chance"`
	ProducerSizeFactor float64 `yaml:"producer_size_factor"`
}

// MovementConfig holds the forward-movement parameters.
type MovementConfig struct {
	UnitsPerSecond         float64 `yaml:"units_per_second"` // distance per unit of speed per second
	TemperatureCoefficient float64 `yaml:"temperature_coefficient"`
	MinTemperatureFactor   float64 `yaml:"min_temperature_factor"`
	Attempts               int     `yaml:"attempts"` // boundary retries before recentering
}

// DeathConfig holds carcass parameters.
type DeathConfig struct {
	SizePerResource float64 `yaml:"size_per_resource"` // floor(size / this) resources are released
	BiomassFraction float64 `yaml:"biomass_fraction"`  // share of size returned as resources
}

// ResourcesConfig holds periodic resource spawning parameters.
type ResourcesConfig struct {
	FeedRate    float64 `yaml:"feed_rate" env:"PETRI_FEED_RATE"` // resources per second; 0 = disabled
	FeedRateMax float64 `yaml:"feed_rate_max"`
	SizeMin     float64 `yaml:"size_min"`
	SizeMax     float64 `yaml:"size_max"`
	NoiseScale  float64 `yaml:"noise_scale"` // OpenSimplex frequency of the fertility field
	NoiseFloor  float64 `yaml:"noise_floor"` // minimum acceptance probability anywhere
	Attempts    int     `yaml:"attempts"`    // placement attempts per spawned resource
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	CrashDropPercent    float64 `yaml:"crash_drop_percent"`
	BoomGrowthPercent   float64 `yaml:"boom_growth_percent"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
}

// HallOfFameConfig holds hall of fame settings for reseeding.
type HallOfFameConfig struct {
	Enabled     bool                    `yaml:"enabled"`
	Size        int                     `yaml:"size"`
	Fitness     HallOfFameFitnessConfig `yaml:"fitness"`
	MinChildren int                     `yaml:"min_children"`
	MinAgeTicks int64                   `yaml:"min_age_ticks"`
}

// HallOfFameFitnessConfig holds fitness calculation weights.
type HallOfFameFitnessConfig struct {
	ChildrenWeight float64 `yaml:"children_weight"`
	SurvivalWeight float64 `yaml:"survival_weight"` // per second alive
	ForageWeight   float64 `yaml:"forage_weight"`   // per unit of food eaten
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"PETRI_STORAGE_DRIVER"` // "file" or "sqlite"
	Path   string `yaml:"path" env:"PETRI_STORAGE_PATH"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickDuration time.Duration // 1 / TickRate
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. PETRI_* environment variables
// override both.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error. Intended for tests.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	}
	if c.World.SectorSize <= 0 {
		return fmt.Errorf("world.sector_size must be positive, got %v", c.World.SectorSize)
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %v", c.Simulation.TickRate)
	}
	switch c.Storage.Driver {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickDuration = time.Duration(float64(time.Second) / c.Simulation.TickRate)

	if c.Organism.TicksPerAge < 1 {
		c.Organism.TicksPerAge = 1
	}
	if c.Movement.Attempts < 1 {
		c.Movement.Attempts = 1
	}
	if c.Resources.FeedRateMax < c.Resources.FeedRate {
		c.Resources.FeedRateMax = c.Resources.FeedRate
	}
	if c.Resources.Attempts < 1 {
		c.Resources.Attempts = 1
	}
	if c.Death.SizePerResource <= 0 {
		c.Death.SizePerResource = 10
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
