package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/evaluator"
	"github.com/lox/holdemsim/internal/randutil"
)

// OddsCmd estimates win shares for a pocket against random opponents
type OddsCmd struct {
	Pocket    string `arg:"" help:"Your two cards, e.g. 'AsKd'"`
	Board     string `short:"b" help:"Community cards, e.g. 'Td7s8h'"`
	Opponents int    `short:"o" default:"1" help:"Number of opponents with unknown cards"`
	Trials    int    `short:"i" default:"10000" help:"Number of Monte Carlo trials"`
	Workers   int    `short:"w" help:"Worker goroutines (default GOMAXPROCS, at most 8)"`
	Seed      int64  `help:"Random seed for reproducible results (0 = time seeded)"`
}

func (c *OddsCmd) Run(g *Globals) error {
	logger := setupLogger(g)

	pocket, err := deck.ParseCards(c.Pocket)
	if err != nil {
		return fmt.Errorf("parsing pocket: %w", err)
	}
	board, err := deck.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("parsing board: %w", err)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	rng, seed := randutil.FromSeed(c.Seed)
	logger.Debug("Running rollout", "trials", c.Trials, "opponents", c.Opponents, "seed", seed)

	rollout := evaluator.Rollout{Trials: c.Trials, Workers: c.Workers}
	res, err := rollout.Run(ctx, rng, pocket, board, c.Opponents)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s", headerStyle.Render("Pocket:"), renderCards(pocket))
	if len(board) > 0 {
		fmt.Printf("   %s %s", headerStyle.Render("Board:"), renderCards(board))
	}
	fmt.Println()
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("Seat")+"\t"+headerStyle.Render("Wins")+"\t"+headerStyle.Render("Share"))
	for seat, wins := range res.Wins {
		name := "You"
		if seat > 0 {
			name = fmt.Sprintf("Opponent %d", seat)
		}
		share := 100 * float64(wins) / float64(res.Trials)
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, wins, percentStyle.Render(fmt.Sprintf("%.1f%%", share)))
	}
	fmt.Fprintf(w, "Tied\t%d\t%s\n", res.Ties, percentStyle.Render(fmt.Sprintf("%.1f%%", 100*float64(res.Ties)/float64(res.Trials))))
	if err := w.Flush(); err != nil {
		return err
	}

	verdict := "trails"
	if res.HeroLeadsOutright() {
		verdict = "leads outright"
	}
	fmt.Println()
	fmt.Println(infoStyle.Render(fmt.Sprintf("Your hand %s (ratio to leader %.2f) over %d trials", verdict, res.Ratio(), res.Trials)))
	return nil
}
