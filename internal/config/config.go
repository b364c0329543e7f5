package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qfit/internal/hamiltonian"
	"github.com/san-kum/qfit/internal/model"
)

// Fit kinds.
const (
	KindCR = "cr"
	KindZZ = "zz"
)

const (
	DefaultShots    = 1024
	DefaultTimeUnit = "micro-seconds"
)

// Config describes one characterization run: the time sweep, the measured
// qubits and the fit inputs.
type Config struct {
	Kind       string    `yaml:"kind"`
	TimeUnit   string    `yaml:"time_unit"`
	Times      []float64 `yaml:"times"`
	Qubits     []int     `yaml:"qubits"`
	Spectators []int     `yaml:"spectators"`
	Shots      int       `yaml:"shots"`
	Guess      []float64 `yaml:"guess"`
	Lower      []float64 `yaml:"lower"`
	Upper      []float64 `yaml:"upper"`
	MaxIter    int       `yaml:"max_iter"`
}

// DefaultCR is a single-qubit CR tomography config with a linear sweep of
// 20 pulse durations.
func DefaultCR() *Config {
	return &Config{
		Kind:     KindCR,
		TimeUnit: DefaultTimeUnit,
		Times:    linspace(0.5, 10, 20),
		Qubits:   []int{0},
		Shots:    DefaultShots,
		Guess:    []float64{0.1, 0.0, 0.0},
		Lower:    []float64{-10, -10, -10},
		Upper:    []float64{10, 10, 10},
	}
}

// DefaultZZ is a single-qubit ZZ config with one spectator.
func DefaultZZ() *Config {
	return &Config{
		Kind:       KindZZ,
		TimeUnit:   DefaultTimeUnit,
		Times:      linspace(0.5, 10, 20),
		Qubits:     []int{0},
		Spectators: []int{1},
		Shots:      DefaultShots,
		Guess:      []float64{0.5, 0.1, 0.0, 0.5},
		Lower:      []float64{0, 0, -4, 0},
		Upper:      []float64{1, 5, 4, 1},
	}
}

// Load reads a config file on top of the defaults for its kind. A file
// without a kind inherits the CR defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Kind string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	cfg := DefaultCR()
	if probe.Kind == KindZZ {
		cfg = DefaultZZ()
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks internal consistency without touching any data.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindCR:
		if len(c.Guess) != model.BlochNumParams {
			return fmt.Errorf("config: cr guess has %d parameters, want %d", len(c.Guess), model.BlochNumParams)
		}
	case KindZZ:
		if len(c.Guess) != model.OscNumParams {
			return fmt.Errorf("config: zz guess has %d parameters, want %d", len(c.Guess), model.OscNumParams)
		}
		if len(c.Spectators) != len(c.Qubits) {
			return fmt.Errorf("config: %d spectators for %d qubits", len(c.Spectators), len(c.Qubits))
		}
	default:
		return fmt.Errorf("config: unknown kind %q", c.Kind)
	}
	if len(c.Times) == 0 {
		return fmt.Errorf("config: no time points")
	}
	if len(c.Qubits) == 0 {
		return fmt.Errorf("config: no qubits")
	}
	return nil
}

// CRConfig converts to the CR fitter's configuration.
func (c *Config) CRConfig() hamiltonian.CRConfig {
	return hamiltonian.CRConfig{
		Times:    c.Times,
		Qubits:   c.Qubits,
		Guess:    c.Guess,
		Lower:    c.Lower,
		Upper:    c.Upper,
		TimeUnit: c.TimeUnit,
		MaxIter:  c.MaxIter,
	}
}

// ZZConfig converts to the ZZ fitter's configuration.
func (c *Config) ZZConfig() hamiltonian.ZZConfig {
	return hamiltonian.ZZConfig{
		Times:      c.Times,
		Qubits:     c.Qubits,
		Spectators: c.Spectators,
		Guess:      c.Guess,
		Lower:      c.Lower,
		Upper:      c.Upper,
		TimeUnit:   c.TimeUnit,
		MaxIter:    c.MaxIter,
	}
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
