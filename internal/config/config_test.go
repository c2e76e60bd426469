package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHCL = `
game {
  small_blind = 5
  seed        = 42
  max_rounds  = 100
}

events {
  nats_url = "nats://127.0.0.1:4222"
}

player "Alice" {
  stack  = 500
  policy = "random"
}

player "Bob" {
  policy = "montecarlo"
  trials = 250
}

player "Remote" {
  policy  = "external"
  command = "python3 bot.py"
  timeout = "2s"
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Players, 8)
	assert.Equal(t, 1, cfg.Game.SmallBlind)
	assert.Equal(t, 30, cfg.Game.MaxRaise)
	assert.Equal(t, "Player 1", cfg.Players[0].Name)
	for _, p := range cfg.Players {
		assert.Equal(t, 2000, p.Stack)
		assert.Equal(t, PolicyMonteCarlo, p.Policy)
		assert.Equal(t, 100, p.Trials)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadHCL(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, "table.hcl", sampleHCL))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Game.SmallBlind)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, 100, cfg.Game.MaxRounds)
	assert.Equal(t, DefaultMaxRaise, cfg.Game.MaxRaise)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Events.NatsURL)
	assert.Equal(t, DefaultSubject, cfg.Events.Subject)

	require.Len(t, cfg.Players, 3)
	assert.Equal(t, PlayerConfig{Name: "Alice", Stack: 500, Policy: PolicyRandom}, cfg.Players[0])
	assert.Equal(t, 250, cfg.Players[1].Trials)
	assert.Equal(t, DefaultStack, cfg.Players[1].Stack)

	timeout, err := cfg.Players[2].TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	src := `
game:
  small_blind: 2
players:
  - name: Alice
    policy: call
  - name: Bob
    stack: 300
`
	cfg, err := Load(writeFile(t, "table.yaml", src))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Game.SmallBlind)
	require.Len(t, cfg.Players, 2)
	assert.Equal(t, PolicyCall, cfg.Players[0].Policy)
	assert.Equal(t, 0, cfg.Players[0].Trials)
	assert.Equal(t, 300, cfg.Players[1].Stack)
	assert.Equal(t, PolicyMonteCarlo, cfg.Players[1].Policy)
}

func TestLoadWithoutPlayersSeatsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, "table.hcl", "game {\n  small_blind = 3\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Game.SmallBlind)
	assert.Len(t, cfg.Players, DefaultPlayers)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"hcl syntax", "bad.hcl", "game {", "failed to parse HCL"},
		{"hcl unknown attribute", "bad.hcl", "game {\n  blinds = 1\n}\n", "failed to decode HCL"},
		{"hcl missing label", "bad.hcl", "player {\n}\n", "failed to decode HCL"},
		{"yaml syntax", "bad.yml", "players: [", "failed to decode YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg, err := Parse([]byte(`
player "A" {}
player "B" {}
`), "test.hcl")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative small blind", func(c *Config) { c.Game.SmallBlind = -1 }, "invalid small blind"},
		{"negative max raise", func(c *Config) { c.Game.MaxRaise = -1 }, "invalid max raise"},
		{"negative max rounds", func(c *Config) { c.Game.MaxRounds = -1 }, "invalid max rounds"},
		{"one player", func(c *Config) { c.Players = c.Players[:1] }, "at least 2 players"},
		{"too many players", func(c *Config) {
			for i := len(c.Players); i <= MaxPlayers; i++ {
				c.Players = append(c.Players, PlayerConfig{Name: fmt.Sprintf("P%d", i), Stack: 10, Policy: PolicyCall})
			}
		}, "at most 23 players"},
		{"full table", func(c *Config) {
			for i := len(c.Players); i < MaxPlayers; i++ {
				c.Players = append(c.Players, PlayerConfig{Name: fmt.Sprintf("P%d", i), Stack: 10, Policy: PolicyCall})
			}
		}, ""},
		{"duplicate name", func(c *Config) { c.Players[1].Name = "A" }, "duplicate player name"},
		{"negative stack", func(c *Config) { c.Players[0].Stack = -5 }, "stack must be positive"},
		{"unknown policy", func(c *Config) { c.Players[0].Policy = "shark" }, "unknown policy"},
		{"external without target", func(c *Config) { c.Players[0].Policy = PolicyExternal }, "exactly one of command or url"},
		{"external with both", func(c *Config) {
			c.Players[0].Policy = PolicyExternal
			c.Players[0].Command = "bot"
			c.Players[0].URL = "ws://localhost/decide"
		}, "exactly one of command or url"},
		{"external with url", func(c *Config) {
			c.Players[0].Policy = PolicyExternal
			c.Players[0].URL = "ws://localhost/decide"
		}, ""},
		{"bad timeout", func(c *Config) { c.Players[0].Timeout = "soon" }, "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHumans(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 0, cfg.Humans())
	cfg.Players[3].Policy = PolicyHuman
	assert.Equal(t, 1, cfg.Humans())
}

func TestExampleTableIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join("..", "..", "examples", "table.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Players, 5)
	assert.Equal(t, PolicyExternal, cfg.Players[4].Policy)
}
