package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/lox/arenaforbots/internal/controller"
)

// Config is a complete tournament description.
type Config struct {
	Tournament  *TournamentConfig  `hcl:"tournament,block" yaml:"tournament"`
	Controllers []ControllerConfig `hcl:"controller,block" yaml:"controllers"`
}

// TournamentConfig holds the batch settings.
type TournamentConfig struct {
	Runs     int    `hcl:"runs,optional" yaml:"runs"`
	Seed     int64  `hcl:"seed,optional" yaml:"seed"`
	Workers  int    `hcl:"workers,optional" yaml:"workers"`
	Database string `hcl:"database,optional" yaml:"database"`
}

// ControllerConfig declares one controller.
type ControllerConfig struct {
	Name    string `hcl:"name,label" yaml:"name"`
	Kind    string `hcl:"kind" yaml:"kind"`
	Value   *int   `hcl:"value,optional" yaml:"value"`
	Values  []int  `hcl:"values,optional" yaml:"values"`
	URL     string `hcl:"url,optional" yaml:"url"`
	Timeout string `hcl:"timeout,optional" yaml:"timeout"`
}

// DefaultConfig returns a single match between three random controllers.
func DefaultConfig() *Config {
	return &Config{
		Tournament: &TournamentConfig{
			Runs:    1,
			Workers: 1,
		},
		Controllers: []ControllerConfig{
			{Name: "Alice", Kind: controller.KindRandom},
			{Name: "Bob", Kind: controller.KindRandom},
			{Name: "Carol", Kind: controller.KindRandom},
		},
	}
}

// Load reads a tournament file. HCL is the default format; files ending in
// .yaml or .yml are decoded as YAML. A missing file yields DefaultConfig.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		cfg, err = loadYAML(filename)
	default:
		cfg, err = loadHCL(filename)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func loadHCL(filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return &cfg, nil
}

func loadYAML(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tournament == nil {
		c.Tournament = &TournamentConfig{}
	}
	if c.Tournament.Runs == 0 {
		c.Tournament.Runs = 1
	}
	if c.Tournament.Workers == 0 {
		c.Tournament.Workers = 1
	}
}

// Validate checks the configuration against the kinds known to reg.
func (c *Config) Validate(reg *controller.Registry) error {
	if c.Tournament == nil {
		return errors.New("missing tournament settings")
	}
	if c.Tournament.Runs < 1 {
		return fmt.Errorf("invalid runs: %d", c.Tournament.Runs)
	}
	if c.Tournament.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Tournament.Workers)
	}
	if len(c.Controllers) < 2 {
		return fmt.Errorf("at least two controllers must be configured, got %d", len(c.Controllers))
	}

	seen := make(map[string]bool, len(c.Controllers))
	for _, ctrl := range c.Controllers {
		if ctrl.Name == "" {
			return errors.New("controller name must not be empty")
		}
		if seen[ctrl.Name] {
			return fmt.Errorf("controller %s: duplicate name", ctrl.Name)
		}
		seen[ctrl.Name] = true

		if reg != nil && !reg.Has(ctrl.Kind) {
			return fmt.Errorf("controller %s: %w %q", ctrl.Name, controller.ErrUnknownKind, ctrl.Kind)
		}
		if _, err := ctrl.Spec(); err != nil {
			return err
		}
	}
	return nil
}

// Spec converts the declaration into a registry spec.
func (c ControllerConfig) Spec() (controller.Spec, error) {
	spec := controller.Spec{
		Name:   c.Name,
		Kind:   c.Kind,
		Value:  c.Value,
		Values: c.Values,
		URL:    c.URL,
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return controller.Spec{}, fmt.Errorf("controller %s: invalid timeout %q: %w", c.Name, c.Timeout, err)
		}
		spec.Timeout = d
	}
	return spec, nil
}

// Specs converts every controller declaration.
func (c *Config) Specs() ([]controller.Spec, error) {
	specs := make([]controller.Spec, 0, len(c.Controllers))
	for _, ctrl := range c.Controllers {
		spec, err := ctrl.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
