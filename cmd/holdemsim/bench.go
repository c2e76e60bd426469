package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdemsim/internal/fileutil"
	"github.com/lox/holdemsim/internal/randutil"
	"github.com/lox/holdemsim/internal/simulator"
	"github.com/lox/holdemsim/internal/statistics"
)

// BenchCmd plays many unattended games and reports how often each
// player wins
type BenchCmd struct {
	TableFlags

	Games   int           `short:"n" default:"100" help:"Number of games to play"`
	Workers int           `short:"w" help:"Concurrent games (default GOMAXPROCS)"`
	Timeout time.Duration `default:"5m" help:"Abort a single game after this long"`
	Out     string        `short:"o" type:"path" help:"Also write the JSON report to this file"`
}

// benchReport is the JSON form of a batch
type benchReport struct {
	Games       int            `json:"games"`
	Seed        int64          `json:"seed"`
	Truncated   int            `json:"truncated"`
	MeanRounds  float64        `json:"mean_rounds"`
	RoundsP95   float64        `json:"rounds_p95"`
	Wins        map[string]int `json:"wins"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	GamesPerSec float64        `json:"games_per_sec"`
}

func (c *BenchCmd) Run(g *Globals) error {
	logger := setupLogger(g)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	_, seed := randutil.FromSeed(cfg.Game.Seed)

	ctx, cancel := signalContext(logger)
	defer cancel()

	clock := quartz.NewReal()
	start := clock.Now()
	sim := simulator.New(simulator.Config{
		Games:   c.Games,
		Seed:    seed,
		Workers: c.Workers,
		Timeout: c.Timeout,
		Table:   cfg,
		Logger:  logger.WithPrefix("bench"),
		Clock:   clock,
	})
	logger.Info("Running games", "games", c.Games, "seed", seed, "players", len(cfg.Players))

	tally, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := clock.Since(start)

	report := benchReport{
		Games:      tally.Games,
		Seed:       seed,
		Truncated:  tally.Truncated,
		MeanRounds: tally.Rounds.Mean(),
		RoundsP95:  tally.Rounds.Percentile(0.95),
		Wins:       make(map[string]int, len(tally.Players)),
		ElapsedMs:  elapsed.Milliseconds(),
	}
	if elapsed > 0 {
		report.GamesPerSec = float64(tally.Games) / elapsed.Seconds()
	}
	for name, p := range tally.Players {
		report.Wins[name] = p.Wins
	}
	if c.Out != "" {
		if err := fileutil.WriteJSON(c.Out, report); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Out)
	}

	return printTally(tally, elapsed)
}

func printTally(tally *statistics.Tally, elapsed time.Duration) error {
	fmt.Println(titleStyle.Render(fmt.Sprintf(" %d games ", tally.Games)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("Player")+"\t"+headerStyle.Render("Wins")+"\t"+
		headerStyle.Render("Win rate")+"\t"+headerStyle.Render("Busted"))
	for _, p := range tally.Ranked() {
		rate, margin := tally.WinRate(p.Name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", p.Name, p.Wins,
			percentStyle.Render(fmt.Sprintf("%.1f%% ± %.1f", 100*rate, 100*margin)), p.Busted)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	lo, hi := tally.Rounds.ConfidenceInterval95()
	fmt.Println()
	fmt.Println(infoStyle.Render(fmt.Sprintf("Rounds per game: mean %.1f (95%% CI %.1f-%.1f), median %.0f, p95 %.0f",
		tally.Rounds.Mean(), lo, hi, tally.Rounds.Median(), tally.Rounds.Percentile(0.95))))
	if tally.Truncated > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("%d games hit the round limit", tally.Truncated)))
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed.Round(time.Millisecond))))
	return nil
}
