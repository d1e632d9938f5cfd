package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokersim/internal/config"
	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/evaluator"
	"github.com/lox/pokersim/internal/rules"
	"github.com/lox/pokersim/internal/simulator"
)

type CLI struct {
	Hands         []string `arg:"" optional:"" help:"Fixed hole cards per seat in format 'AsAh' (remaining seats are dealt randomly)"`
	Variant       string   `default:"holdem" help:"Game variant: holdem, omaha4, omaha5, omaha6"`
	Players       int      `default:"2" help:"Number of players"`
	Board         string   `short:"b" help:"Fixed community cards (e.g., 'Td7s8h')"`
	Iterations    int      `short:"i" help:"Number of Monte Carlo iterations" default:"100000"`
	Seed          *int64   `help:"Random seed for reproducible results"`
	Workers       int      `help:"Parallel workers (0 = one per CPU)"`
	Possibilities bool     `short:"p" help:"Show per-player hand type probabilities"`
	Matrix        bool     `short:"m" help:"Show the hand-type head-to-head matrix"`
	Config        string   `short:"c" type:"path" help:"Load a simulation scenario from an HCL file"`
	Progress      bool     `help:"Report progress while running"`
	Verbose       bool     `short:"v" help:"Verbose logging"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokersim"),
		kong.Description("Poker equity simulation by Monte Carlo sampling."))

	var logger *log.Logger
	if cli.Verbose {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
	} else {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	}

	cfg, err := buildConfig(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}
	cfg.Logger = logger

	sim, err := simulator.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var progress simulator.ProgressFunc
	if cli.Progress {
		progress = func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d trials (%.0f%%)", completed, total,
				float64(completed)/float64(total)*100)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	result, err := sim.Run(ctx, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}

	displayResult(result, cfg, cli.Possibilities, cli.Matrix)
}

func buildConfig(cli *CLI) (simulator.Config, error) {
	if cli.Config != "" {
		scenario, err := config.Load(cli.Config)
		if err != nil {
			return simulator.Config{}, err
		}
		return scenario.SimulatorConfig()
	}

	cfg := simulator.Config{
		Variant:    rules.Variant(cli.Variant),
		Players:    cli.Players,
		Iterations: cli.Iterations,
		Seed:       cli.Seed,
		Workers:    cli.Workers,
	}

	if len(cli.Hands) > cli.Players {
		cfg.Players = len(cli.Hands)
	}

	if len(cli.Hands) > 0 {
		cfg.FixedHands = make([][]deck.Card, cfg.Players)
		for i, handStr := range cli.Hands {
			hand, err := deck.ParseCards(strings.ReplaceAll(strings.TrimSpace(handStr), " ", ""))
			if err != nil {
				return simulator.Config{}, fmt.Errorf("hand %d: %w", i+1, err)
			}
			cfg.FixedHands[i] = hand
		}
	}

	if cli.Board != "" {
		board, err := deck.ParseCards(cli.Board)
		if err != nil {
			return simulator.Config{}, fmt.Errorf("board: %w", err)
		}
		cfg.FixedBoard = board
	}

	return cfg, nil
}

func displayResult(result *simulator.Result, cfg simulator.Config, possibilities, matrix bool) {
	if len(cfg.FixedBoard) > 0 {
		fmt.Printf("%s\n", headerStyle.Render("board"))
		fmt.Printf("%s\n\n", deck.FormatCards(cfg.FixedBoard))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"),
		headerStyle.Render("lose"))

	stats := result.Stats
	for p := 0; p < result.Metadata.Players; p++ {
		lossPct := float64(stats.Losses(p)) / float64(stats.Trials) * 100
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			handStyle.Render(seatLabel(cfg, p)),
			winStyle.Render(fmt.Sprintf("%.1f%%", stats.WinPercent(p))),
			tieStyle.Render(fmt.Sprintf("%.1f%%", stats.TiePercent(p))),
			percentStyle.Render(fmt.Sprintf("%.1f%%", lossPct)))
	}

	w.Flush()

	if possibilities {
		fmt.Printf("\n")
		displayPossibilities(result, cfg)
	}

	if matrix {
		fmt.Printf("\n")
		displayMatrix(result)
	}

	fmt.Printf("\n%d iterations in %v (seed %d, %d workers)\n",
		result.Metadata.Iterations,
		result.Metadata.Duration.Truncate(time.Millisecond),
		result.Metadata.Seed,
		result.Metadata.Workers)
}

func seatLabel(cfg simulator.Config, p int) string {
	if p < len(cfg.FixedHands) && cfg.FixedHands[p] != nil {
		return deck.FormatCards(cfg.FixedHands[p])
	}
	return fmt.Sprintf("seat %d (random)", p+1)
}

// displayPossibilities prints how often each player made each hand type,
// strongest types first.
func displayPossibilities(result *simulator.Result, cfg simulator.Config) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", categoryStyle.Render("hand"))
	for p := 0; p < result.Metadata.Players; p++ {
		fmt.Fprintf(w, "\t%s", handStyle.Render(seatLabel(cfg, p)))
	}
	fmt.Fprintf(w, "\n")

	for t := evaluator.RoyalFlush; t >= evaluator.HighCard; t-- {
		seen := false
		for p := 0; p < result.Metadata.Players; p++ {
			if result.Stats.HandTypePercent(p, t) > 0 {
				seen = true
				break
			}
		}
		if !seen {
			continue
		}

		fmt.Fprintf(w, "%s", categoryStyle.Render(t.String()))
		for p := 0; p < result.Metadata.Players; p++ {
			pct := result.Stats.HandTypePercent(p, t)
			if pct > 0 {
				fmt.Fprintf(w, "\t%s", percentStyle.Render(fmt.Sprintf("%.1f%%", pct)))
			} else {
				fmt.Fprintf(w, "\t%s", percentStyle.Render("."))
			}
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
}

// displayMatrix prints the head-to-head hand-type matrix: how often the
// row type beat the column type when both occurred.
func displayMatrix(result *simulator.Result) {
	matrix := result.Stats.ProbabilityMatrix()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s", categoryStyle.Render("beats →"))
	for t := evaluator.HandType(0); t < evaluator.NumHandTypes; t++ {
		fmt.Fprintf(w, "\t%s", headerStyle.Render(shortTypeName(t)))
	}
	fmt.Fprintf(w, "\n")

	for i := evaluator.HandType(0); i < evaluator.NumHandTypes; i++ {
		fmt.Fprintf(w, "%s", categoryStyle.Render(i.String()))
		for j := evaluator.HandType(0); j < evaluator.NumHandTypes; j++ {
			if result.Stats.MatrixSamples(i, j) == 0 {
				fmt.Fprintf(w, "\t%s", percentStyle.Render("."))
				continue
			}
			fmt.Fprintf(w, "\t%s", percentStyle.Render(fmt.Sprintf("%.0f%%", matrix[i][j])))
		}
		fmt.Fprintf(w, "\n")
	}

	w.Flush()
}

func shortTypeName(t evaluator.HandType) string {
	switch t {
	case evaluator.HighCard:
		return "HC"
	case evaluator.OnePair:
		return "1P"
	case evaluator.TwoPair:
		return "2P"
	case evaluator.ThreeOfAKind:
		return "3K"
	case evaluator.Straight:
		return "ST"
	case evaluator.Flush:
		return "FL"
	case evaluator.FullHouse:
		return "FH"
	case evaluator.FourOfAKind:
		return "4K"
	case evaluator.StraightFlush:
		return "SF"
	case evaluator.RoyalFlush:
		return "RF"
	default:
		return "?"
	}
}
