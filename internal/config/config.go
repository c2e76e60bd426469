// Package config loads the table setup for a simulation from HCL or YAML.
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
)

// Policy kinds accepted in player blocks
const (
	PolicyMonteCarlo = "montecarlo"
	PolicyRandom     = "random"
	PolicyCall       = "call"
	PolicyHuman      = "human"
	PolicyExternal   = "external"
)

// Defaults applied to omitted fields
const (
	DefaultPlayers         = 8
	DefaultStack           = 2000
	DefaultSmallBlind      = 1
	DefaultMaxRaise        = 30
	DefaultDecisionRetries = 5
	DefaultTrials          = 100
	DefaultSubject         = "holdem"
	DefaultEventBuffer     = 256
)

// MaxPlayers is the largest table a single deck can deal
const MaxPlayers = (52 - 5) / 2

// Config represents the complete simulation configuration
type Config struct {
	Game    *GameSettings  `hcl:"game,block" yaml:"game"`
	Events  *EventSettings `hcl:"events,block" yaml:"events"`
	Players []PlayerConfig `hcl:"player,block" yaml:"players"`
}

// GameSettings contains table-wide rules
type GameSettings struct {
	SmallBlind      int   `hcl:"small_blind,optional" yaml:"small_blind"`
	MaxRaise        int   `hcl:"max_raise,optional" yaml:"max_raise"`
	Seed            int64 `hcl:"seed,optional" yaml:"seed"`
	MaxRounds       int   `hcl:"max_rounds,optional" yaml:"max_rounds"`
	DecisionRetries int   `hcl:"decision_retries,optional" yaml:"decision_retries"`
}

// EventSettings configures where game events are broadcast
type EventSettings struct {
	NatsURL string `hcl:"nats_url,optional" yaml:"nats_url"`
	Subject string `hcl:"subject,optional" yaml:"subject"`
	Buffer  int    `hcl:"buffer,optional" yaml:"buffer"`
}

// PlayerConfig defines one seat
type PlayerConfig struct {
	Name    string `hcl:"name,label" yaml:"name"`
	Stack   int    `hcl:"stack,optional" yaml:"stack"`
	Policy  string `hcl:"policy,optional" yaml:"policy"`
	Trials  int    `hcl:"trials,optional" yaml:"trials"`
	Workers int    `hcl:"workers,optional" yaml:"workers"`
	Command string `hcl:"command,optional" yaml:"command"`
	URL     string `hcl:"url,optional" yaml:"url"`
	Timeout string `hcl:"timeout,optional" yaml:"timeout"`
}

// TimeoutDuration parses Timeout, returning zero when it is unset
func (p PlayerConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("player %q: invalid timeout: %w", p.Name, err)
	}
	return d, nil
}

// Default returns eight Monte Carlo players with 2000 chips each
func Default() *Config {
	cfg := &Config{}
	for i := 1; i <= DefaultPlayers; i++ {
		cfg.Players = append(cfg.Players, PlayerConfig{Name: fmt.Sprintf("Player %d", i)})
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. A missing file yields Default. Files
// ending in .yaml or .yml are read as YAML, everything else as HCL.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
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

	if len(cfg.Players) == 0 {
		cfg.Players = Default().Players
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes HCL source held in memory
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func loadHCL(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

func loadYAML(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(src, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Game.SmallBlind == 0 {
		c.Game.SmallBlind = DefaultSmallBlind
	}
	if c.Game.MaxRaise == 0 {
		c.Game.MaxRaise = DefaultMaxRaise
	}
	if c.Game.DecisionRetries == 0 {
		c.Game.DecisionRetries = DefaultDecisionRetries
	}

	if c.Events == nil {
		c.Events = &EventSettings{}
	}
	if c.Events.Subject == "" {
		c.Events.Subject = DefaultSubject
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = DefaultEventBuffer
	}

	for i := range c.Players {
		p := &c.Players[i]
		if p.Stack == 0 {
			p.Stack = DefaultStack
		}
		if p.Policy == "" {
			p.Policy = PolicyMonteCarlo
		}
		if p.Trials == 0 && p.Policy == PolicyMonteCarlo {
			p.Trials = DefaultTrials
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("invalid small blind: %d", c.Game.SmallBlind)
	}
	if c.Game.MaxRaise <= 0 {
		return fmt.Errorf("invalid max raise: %d", c.Game.MaxRaise)
	}
	if c.Game.MaxRounds < 0 {
		return fmt.Errorf("invalid max rounds: %d", c.Game.MaxRounds)
	}
	if c.Events.Buffer < 0 {
		return fmt.Errorf("invalid event buffer: %d", c.Events.Buffer)
	}
	if len(c.Players) < 2 {
		return fmt.Errorf("at least 2 players required, got %d", len(c.Players))
	}
	if len(c.Players) > MaxPlayers {
		return fmt.Errorf("at most %d players allowed, got %d", MaxPlayers, len(c.Players))
	}

	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p.Name == "" {
			return errors.New("player name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		seen[p.Name] = true

		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single player block
func (p PlayerConfig) Validate() error {
	if p.Stack <= 0 {
		return fmt.Errorf("player %q: stack must be positive, got %d", p.Name, p.Stack)
	}
	if p.Trials < 0 || p.Workers < 0 {
		return fmt.Errorf("player %q: trials and workers must not be negative", p.Name)
	}
	if _, err := p.TimeoutDuration(); err != nil {
		return err
	}

	switch p.Policy {
	case PolicyMonteCarlo, PolicyRandom, PolicyCall, PolicyHuman:
		return nil
	case PolicyExternal:
		if (p.Command == "") == (p.URL == "") {
			return fmt.Errorf("player %q: external policy needs exactly one of command or url", p.Name)
		}
		return nil
	default:
		return fmt.Errorf("player %q: unknown policy %q", p.Name, p.Policy)
	}
}

// Humans counts the players driven from the terminal
func (c *Config) Humans() int {
	n := 0
	for _, p := range c.Players {
		if p.Policy == PolicyHuman {
			n++
		}
	}
	return n
}
