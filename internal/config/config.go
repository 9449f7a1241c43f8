// Package config loads editor and analysis settings for otc.
//
// Config file locations (priority order):
//  1. $OTC_CONFIG
//  2. ./otc.yaml
//  3. $XDG_CONFIG_HOME/otc/config.yaml
//  4. ~/.config/otc/config.yaml
//
// Any value left out of the file takes its default.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/network"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/router"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/solver"
)

// Config is the root of the YAML file.
type Config struct {
	Version      int                `yaml:"version"`
	Router       RouterConfig       `yaml:"router"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Solver       SolverConfig       `yaml:"solver"`
	Network      NetworkConfig      `yaml:"network"`
}

// RouterConfig holds the wire drawing settings.
type RouterConfig struct {
	Mode                  string  `yaml:"mode"`
	SnapRadius            float64 `yaml:"snap_radius"`
	HitRadius             float64 `yaml:"hit_radius"`
	MergeRadius           float64 `yaml:"merge_radius"`
	IntersectionTolerance float64 `yaml:"intersection_tolerance"`
	GridSize              float64 `yaml:"grid_size"`
	MaxExpansions         int     `yaml:"max_expansions"`
	StarBendRatio         float64 `yaml:"star_bend_ratio"`
	StarBendCap           float64 `yaml:"star_bend_cap"`
}

// ConnectivityConfig holds the adjacency rebuild settings.
type ConnectivityConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	EndpointsOnly bool    `yaml:"endpoints_only"`
}

// SolverConfig bounds the DC fixed-point iteration.
type SolverConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Epsilon       float64 `yaml:"epsilon"`
}

// NetworkConfig holds the terminal matching tolerance for the classifier.
type NetworkConfig struct {
	Tolerance float64 `yaml:"tolerance"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned path is empty when defaults are used.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the stock settings.
func DefaultConfig() *Config {
	ro := router.DefaultOptions()
	dc := solver.DefaultDCOptions()
	return &Config{
		Version: 1,
		Router: RouterConfig{
			Mode:                  router.ModeFree.String(),
			SnapRadius:            ro.SnapRadius,
			HitRadius:             ro.HitRadius,
			MergeRadius:           ro.MergeRadius,
			IntersectionTolerance: ro.IntersectionTolerance,
			GridSize:              ro.GridSize,
			MaxExpansions:         ro.MaxExpansions,
			StarBendRatio:         ro.StarBendRatio,
			StarBendCap:           ro.StarBendCap,
		},
		Connectivity: ConnectivityConfig{Tolerance: connectivity.DefaultConnectionTolerance},
		Solver:       SolverConfig{MaxIterations: dc.MaxIterations, Epsilon: dc.Epsilon},
		Network:      NetworkConfig{Tolerance: network.DefaultTolerance},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}

	r, dr := &c.Router, d.Router
	if r.Mode == "" {
		r.Mode = dr.Mode
	}
	setIfZero(&r.SnapRadius, dr.SnapRadius)
	setIfZero(&r.HitRadius, dr.HitRadius)
	setIfZero(&r.MergeRadius, dr.MergeRadius)
	setIfZero(&r.IntersectionTolerance, dr.IntersectionTolerance)
	setIfZero(&r.GridSize, dr.GridSize)
	setIfZero(&r.StarBendRatio, dr.StarBendRatio)
	setIfZero(&r.StarBendCap, dr.StarBendCap)
	if r.MaxExpansions == 0 {
		r.MaxExpansions = dr.MaxExpansions
	}

	setIfZero(&c.Connectivity.Tolerance, d.Connectivity.Tolerance)
	setIfZero(&c.Solver.Epsilon, d.Solver.Epsilon)
	if c.Solver.MaxIterations == 0 {
		c.Solver.MaxIterations = d.Solver.MaxIterations
	}
	setIfZero(&c.Network.Tolerance, d.Network.Tolerance)
}

func setIfZero(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Validate checks every setting and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}

	if _, err := router.ParseMode(c.Router.Mode); err != nil {
		errs = append(errs, err)
	}
	positive("router.snap_radius", c.Router.SnapRadius)
	positive("router.hit_radius", c.Router.HitRadius)
	positive("router.merge_radius", c.Router.MergeRadius)
	positive("router.intersection_tolerance", c.Router.IntersectionTolerance)
	positive("router.grid_size", c.Router.GridSize)
	positive("connectivity.tolerance", c.Connectivity.Tolerance)
	positive("solver.epsilon", c.Solver.Epsilon)
	positive("network.tolerance", c.Network.Tolerance)
	if c.Router.StarBendRatio < 0 || c.Router.StarBendCap < 0 {
		errs = append(errs, fmt.Errorf("router star bend ratio and cap must not be negative"))
	}
	if c.Router.MaxExpansions < 1 {
		errs = append(errs, fmt.Errorf("router.max_expansions must be at least 1, got %d", c.Router.MaxExpansions))
	}
	if c.Solver.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("solver.max_iterations must be at least 1, got %d", c.Solver.MaxIterations))
	}
	if c.Router.MergeRadius > c.Connectivity.Tolerance {
		errs = append(errs, fmt.Errorf("router.merge_radius %v exceeds connectivity.tolerance %v; merged nodes would lose their wires",
			c.Router.MergeRadius, c.Connectivity.Tolerance))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// AnalyzerOptions returns the connectivity options.
func (c *Config) AnalyzerOptions() connectivity.Options {
	return connectivity.Options{
		ConnectionTolerance: c.Connectivity.Tolerance,
		EndpointsOnly:       c.Connectivity.EndpointsOnly,
	}
}

// RouterOptions returns the router options, including the analyzer options
// used for every rebuild.
func (c *Config) RouterOptions() router.Options {
	return router.Options{
		SnapRadius:            c.Router.SnapRadius,
		HitRadius:             c.Router.HitRadius,
		MergeRadius:           c.Router.MergeRadius,
		IntersectionTolerance: c.Router.IntersectionTolerance,
		GridSize:              c.Router.GridSize,
		MaxExpansions:         c.Router.MaxExpansions,
		StarBendRatio:         c.Router.StarBendRatio,
		StarBendCap:           c.Router.StarBendCap,
		Connectivity:          c.AnalyzerOptions(),
	}
}

// RouterMode returns the configured default drawing mode.
func (c *Config) RouterMode() router.Mode {
	m, err := router.ParseMode(c.Router.Mode)
	if err != nil {
		return router.ModeFree
	}
	return m
}

// DCOptions returns the DC solver options.
func (c *Config) DCOptions() solver.DCOptions {
	return solver.DCOptions{MaxIterations: c.Solver.MaxIterations, Epsilon: c.Solver.Epsilon}
}

// NetworkOptions returns the classifier options.
func (c *Config) NetworkOptions() network.Options {
	return network.Options{Tolerance: c.Network.Tolerance}
}
