package main

import (
	"github.com/pthm-cable/petri/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(cfg *config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Environment
			{Name: "temperature", Path: "environment.temperature", Min: -60, Max: 60, Default: 0,
				get: func(c *config.Config) *float64 { return &c.Environment.Temperature }},
			{Name: "radiation", Path: "environment.radiation", Min: 0, Max: 100, Default: 50,
				get: func(c *config.Config) *float64 { return &c.Environment.Radiation }},
			// Resources
			{Name: "feed_rate", Path: "resources.feed_rate", Min: 0.5, Max: 40, Default: 5,
				get: func(c *config.Config) *float64 { return &c.Resources.FeedRate }},
			// Behavior
			{Name: "mutation_chance", Path: "behavior.mutation_chance", Min: 0, Max: 0.01, Default: 0.001,
				get: func(c *config.Config) *float64 { return &c.Behavior.MutationChance }},
			{Name: "hunger_max", Path: "behavior.hunger_max", Min: 0.005, Max: 0.05, Default: 0.02,
				get: func(c *config.Config) *float64 { return &c.Behavior.HungerMax }},
			{Name: "producer_chance", Path: "behavior.producer_chance", Min: 0, Max: 0.05, Default: 0.01,
				get: func(c *config.Config) *float64 { return &c.Behavior.ProducerChance }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in vector order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].get(cfg) = v
	}
	// The arena clamps the feed rate to its runtime maximum.
	cfg.Resources.FeedRateMax = max(cfg.Resources.FeedRateMax, cfg.Resources.FeedRate)
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.get(cfg)
	}
	return v
}
