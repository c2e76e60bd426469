package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/coder/quartz"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemsim/internal/broadcast"
	"github.com/lox/holdemsim/internal/config"
	"github.com/lox/holdemsim/internal/fileutil"
	"github.com/lox/holdemsim/internal/game"
	"github.com/lox/holdemsim/internal/policy"
	"github.com/lox/holdemsim/internal/randutil"
)

// TableFlags select and override the table configuration
type TableFlags struct {
	Config    string `arg:"" optional:"" default:"holdemsim.hcl" help:"Table configuration (HCL, or YAML by extension)"`
	Seed      *int64 `help:"Deterministic RNG seed, overrides the config"`
	MaxRounds *int   `help:"Stop after this many rounds, overrides the config"`
	Players   int    `short:"p" help:"Seat this many default Monte Carlo players instead of the config roster"`
}

// PlayCmd runs a full game from a configuration file
type PlayCmd struct {
	TableFlags

	NatsURL string `name:"nats" help:"Broadcast events to this NATS server, overrides the config"`
	JSON    bool   `help:"Print the result as JSON"`
	Out     string `short:"o" type:"path" help:"Also write the JSON summary to this file"`
	Quiet   bool   `short:"q" help:"Do not print the per-round log"`
}

// playSummary is the JSON form of a finished game
type playSummary struct {
	GameID    string   `json:"game_id"`
	Seed      int64    `json:"seed"`
	Winner    string   `json:"winner"`
	Money     int      `json:"money"`
	Rounds    int      `json:"rounds"`
	Truncated bool     `json:"truncated"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Busted    []string `json:"busted"`
	Log       []string `json:"log"`
}

func (c *PlayCmd) Run(g *Globals) error {
	logger := setupLogger(g)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.NatsURL != "" {
		cfg.Events.NatsURL = c.NatsURL
	}

	rng, seed := randutil.FromSeed(cfg.Game.Seed)
	logger.Info("Using seed", "seed", seed)

	ctx, cancel := signalContext(logger)
	defer cancel()

	clock := quartz.NewReal()
	deps := policy.Deps{
		Rand:   rng,
		Logger: logger,
		Clock:  clock,
		In:     os.Stdin,
		Out:    os.Stdout,
	}

	roster := game.NewRoster()
	var closers []io.Closer
	defer func() {
		for _, cl := range slices.Backward(closers) {
			if err := cl.Close(); err != nil {
				logger.Warn("Failed to release policy", "error", err)
			}
		}
	}()
	for _, pc := range cfg.Players {
		p, closer, err := policy.FromConfig(ctx, pc, deps)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
		roster.Add(pc.Name, pc.Stack, p)
		logger.Debug("Seated player", "name", pc.Name, "stack", pc.Stack, "policy", pc.Policy)
	}

	opts := []game.Option{
		game.WithSmallBlind(cfg.Game.SmallBlind),
		game.WithMaxRaise(cfg.Game.MaxRaise),
		game.WithDecisionRetries(cfg.Game.DecisionRetries),
		game.WithMaxRounds(cfg.Game.MaxRounds),
		game.WithRand(rng),
		game.WithLogger(logger),
		game.WithClock(clock),
	}

	group, groupCtx := errgroup.WithContext(context.WithoutCancel(ctx))
	if cfg.Events.NatsURL != "" {
		nc, err := broadcast.Connect(cfg.Events.NatsURL)
		if err != nil {
			return err
		}
		defer nc.Close()

		bus := game.NewEventBus()
		sub := bus.Subscribe(cfg.Events.Buffer)
		fwd := broadcast.NewForwarder(nc, cfg.Events.Subject, logger)
		group.Go(func() error { return fwd.Run(groupCtx, sub) })
		opts = append(opts, game.WithEventBus(bus))
		defer func() {
			logger.Debug("Broadcast finished", "sent", fwd.Sent(), "failed", fwd.Failed(), "dropped", bus.Dropped())
		}()
	}

	gm, err := game.New(roster, opts...)
	if err != nil {
		return err
	}

	if !c.JSON {
		fmt.Println(titleStyle.Render(" ♠ ♥ Texas Hold'em ♦ ♣ "))
		fmt.Println(infoStyle.Render(fmt.Sprintf("Game %s, %d players, blinds %d/%d, seed %d",
			gm.ID(), roster.Len(), cfg.Game.SmallBlind, 2*cfg.Game.SmallBlind, seed)))
		fmt.Println()
	}

	result, runErr := gm.Run(ctx)
	// Run closes the bus, which ends the forwarder
	if err := group.Wait(); err != nil {
		logger.Warn("Broadcast stopped", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("game %s: %w", gm.ID(), runErr)
	}

	summary := summarize(result, seed)
	if c.Out != "" {
		if err := fileutil.WriteJSON(c.Out, summary); err != nil {
			return err
		}
		logger.Info("Wrote summary", "path", c.Out)
	}
	if c.JSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	c.printResult(result)
	return nil
}

func (c *TableFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Players > 0 {
		cfg.Players = make([]config.PlayerConfig, 0, c.Players)
		for i := 1; i <= c.Players; i++ {
			cfg.Players = append(cfg.Players, config.PlayerConfig{
				Name:   fmt.Sprintf("Player %d", i),
				Stack:  config.DefaultStack,
				Policy: config.PolicyMonteCarlo,
				Trials: config.DefaultTrials,
			})
		}
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.MaxRounds != nil {
		cfg.Game.MaxRounds = *c.MaxRounds
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", c.Config, err)
	}
	return cfg, nil
}

func (c *PlayCmd) printResult(result *game.Result) {
	if !c.Quiet {
		for _, line := range result.Log {
			fmt.Println(infoStyle.Render(line))
		}
		fmt.Println()
	}

	status := "won the game"
	if result.Truncated {
		status = "leads after the round limit"
	}
	fmt.Printf("%s %s with %s after %d rounds\n",
		winnerStyle.Render(result.Winner.Name), status,
		potStyle.Render(fmt.Sprintf("%d chips", result.Winner.Money)), result.Rounds)
	fmt.Println(infoStyle.Render(fmt.Sprintf("Elapsed: %s", result.Elapsed)))
}

func summarize(result *game.Result, seed int64) playSummary {
	summary := playSummary{
		GameID:    result.ID,
		Seed:      seed,
		Winner:    result.Winner.Name,
		Money:     result.Winner.Money,
		Rounds:    result.Rounds,
		Truncated: result.Truncated,
		ElapsedMs: result.Elapsed.Milliseconds(),
		Log:       result.Log,
	}
	for _, p := range result.Finished {
		summary.Busted = append(summary.Busted, p.Name)
	}
	return summary
}
