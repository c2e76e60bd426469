package policy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/holdemsim/internal/deck"
	"github.com/lox/holdemsim/internal/game"
)

// ErrNoInput is returned when the console input ends before a decision
var ErrNoInput = errors.New("console input closed")

// ConsoleStyles contains styling for the console
type ConsoleStyles struct {
	Prompt  lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	RedCard lipgloss.Style
	Card    lipgloss.Style
	Pot     lipgloss.Style
	Player  lipgloss.Style
}

// DefaultConsoleStyles returns the console colour scheme
func DefaultConsoleStyles() ConsoleStyles {
	return ConsoleStyles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		RedCard: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Card:    lipgloss.NewStyle().Bold(true),
		Pot:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		Player:  lipgloss.NewStyle().Foreground(lipgloss.Color("#74B9FF")),
	}
}

// Console asks a person at a terminal for each decision
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles ConsoleStyles
}

// NewConsole creates a console policy reading answers from in
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		styles: DefaultConsoleStyles(),
	}
}

func (c *Console) Decide(ctx context.Context, v game.View) (game.ActionKind, error) {
	c.renderTable(v)
	for i, kind := range v.Actions {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, kind)
	}

	for {
		line, err := c.ask(ctx, "Action> ")
		if err != nil {
			return game.Fold, err
		}
		if kind, ok := pickAction(line, v.Actions); ok {
			return kind, nil
		}
		fmt.Fprintln(c.out, c.styles.Error.Render(fmt.Sprintf("Unknown action %q, choose 1-%d or a name", line, len(v.Actions))))
	}
}

func (c *Console) Amount(ctx context.Context, _ game.View, minBet, maxBet int) (int, error) {
	for {
		line, err := c.ask(ctx, fmt.Sprintf("Amount [%d-%d]> ", minBet, maxBet))
		if err != nil {
			return minBet, err
		}
		amount, err := strconv.Atoi(line)
		if err == nil && amount >= minBet && amount <= maxBet {
			return amount, nil
		}
		fmt.Fprintln(c.out, c.styles.Error.Render(fmt.Sprintf("Enter a whole number between %d and %d", minBet, maxBet)))
	}
}

// ask prints a prompt and returns the next trimmed input line
func (c *Console) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, c.styles.Prompt.Render(prompt))

	line, err := c.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("reading console input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) renderTable(v game.View) {
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "%s %s\n",
		c.styles.Info.Render(fmt.Sprintf("Round %d, %s.", v.Round, v.Street)),
		c.styles.Pot.Render(fmt.Sprintf("Pot: %d", v.Pot)))
	for _, s := range v.Seats {
		status := ""
		if s.Folded {
			status = " (folded)"
		}
		fmt.Fprintf(c.out, "  %s money %d, bet %d%s\n", c.styles.Player.Render(s.Name), s.Money, s.Bet, status)
	}
	if len(v.Community) > 0 {
		fmt.Fprintf(c.out, "Board: %s\n", c.renderCards(v.Community))
	}
	fmt.Fprintf(c.out, "%s, your cards: %s, money %d, to call %d\n",
		c.styles.Player.Render(v.Name), c.renderCards(v.Pocket), v.Money, v.ToCall)
}

func (c *Console) renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			parts[i] = c.styles.RedCard.Render(card.String())
		} else {
			parts[i] = c.styles.Card.Render(card.String())
		}
	}
	return strings.Join(parts, " ")
}

// pickAction accepts either a 1-based menu number or an action name
func pickAction(input string, actions []game.ActionKind) (game.ActionKind, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(actions) {
			return actions[n-1], true
		}
		return game.Fold, false
	}
	kind, err := game.ParseActionKind(input)
	if err != nil {
		return game.Fold, false
	}
	for _, k := range actions {
		if k == kind {
			return kind, true
		}
	}
	return game.Fold, false
}
