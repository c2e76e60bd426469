package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemsim/internal/config"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("holdemsim"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		command string
	}{
		{"play is the default", []string{}, "play"},
		{"play with config", []string{"play", "table.hcl"}, "play"},
		{"odds", []string{"odds", "AsKd", "-b", "Td7s8h", "-o", "3"}, "odds"},
		{"rank", []string{"rank", "AsKs", "QsJsTs"}, "rank"},
		{"bench", []string{"bench", "-n", "10", "table.hcl"}, "bench"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ctx := parse(t, tt.args...)
			assert.Equal(t, tt.command, strings.Fields(ctx.Command())[0])
		})
	}
}

func TestParseGlobals(t *testing.T) {
	t.Parallel()

	cli, _ := parse(t, "--verbose", "--log-format=json", "odds", "AsKd")
	assert.True(t, cli.Verbose)
	assert.Equal(t, "json", cli.LogFormat)
	assert.Equal(t, 1, cli.Odds.Opponents)
	assert.Equal(t, 10000, cli.Odds.Trials)

	cli, _ = parse(t, "bench", "--timeout=30s", "--seed=5")
	assert.Equal(t, 100, cli.Bench.Games)
	assert.Equal(t, "30s", cli.Bench.Timeout.String())
	require.NotNil(t, cli.Bench.Seed)
	assert.Equal(t, int64(5), *cli.Bench.Seed)
}

func TestSetupLoggerLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "info", setupLogger(&Globals{}).GetLevel().String())
	assert.Equal(t, "debug", setupLogger(&Globals{Verbose: true}).GetLevel().String())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "table.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
game {
  seed = 1
}
player "Alice" {
  policy = "random"
}
player "Bob" {
  policy = "call"
}
`), 0o600))

	seed := int64(77)
	rounds := 10
	flags := TableFlags{Config: path, Seed: &seed, MaxRounds: &rounds}
	cfg, err := flags.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(77), cfg.Game.Seed)
	assert.Equal(t, 10, cfg.Game.MaxRounds)
	require.Len(t, cfg.Players, 2)
	assert.Equal(t, config.PolicyRandom, cfg.Players[0].Policy)

	flags = TableFlags{Config: path, Players: 3}
	cfg, err = flags.loadConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Players, 3)
	assert.Equal(t, "Player 3", cfg.Players[2].Name)
	assert.Equal(t, config.PolicyMonteCarlo, cfg.Players[2].Policy)

	flags = TableFlags{Config: path, Players: 1}
	_, err = flags.loadConfig()
	require.ErrorContains(t, err, "at least 2 players")
}
