// Package simulator is the Monte Carlo driver: it repeatedly deals, asks
// the rules for each player's legal hands, scores them, and aggregates
// win/tie/loss statistics and a hand-type probability matrix.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/evaluator"
	"github.com/lox/pokersim/internal/randutil"
	"github.com/lox/pokersim/internal/rules"
)

// ErrInvalidConfig is returned by New before any trial runs.
var ErrInvalidConfig = errors.New("invalid config")

// progressInterval is how often the reporter samples the trial counter.
const progressInterval = 200 * time.Millisecond

// maxWorkers caps parallelism; returns diminish beyond this.
const maxWorkers = 8

// sampleStreamOffset keeps sampling streams disjoint from deck streams
// regardless of worker count.
const sampleStreamOffset = 1 << 16

// ProgressFunc receives (completed, total) at a regular cadence during a
// run. It is advisory: invoked from a reporting goroutine, never from a
// worker, so a slow callback cannot stall trials.
type ProgressFunc func(completed, total int)

// Config holds the parameters for a simulation run.
type Config struct {
	Variant    rules.Variant
	Players    int
	Iterations int

	// Seed makes the entire run deterministic for a fixed worker count.
	// Nil selects fresh randomness.
	Seed *int64

	// Workers is the number of parallel trial partitions. 0 selects a
	// count based on available CPUs.
	Workers int

	// FixedHands pins hole cards by seat index; nil entries are dealt
	// randomly. FixedBoard pins the first community cards; the rest of
	// the board is dealt.
	FixedHands [][]deck.Card
	FixedBoard []deck.Card

	// StoreHandRecords enables sampling of full trial records at
	// SampleRate (defaulting to every trial when the rate is unset).
	StoreHandRecords bool
	SampleRate       float64

	Logger *log.Logger
	Clock  quartz.Clock
}

// Simulator runs Monte Carlo equity simulations.
type Simulator struct {
	config     Config
	rules      rules.Rules
	logger     *log.Logger
	clock      quartz.Clock
	seed       int64
	seeded     bool
	sampleRate float64
	fixedCards []deck.Card
}

// New validates the configuration and returns a simulator. All
// configuration errors surface here, before any trial runs.
func New(config Config) (*Simulator, error) {
	r, err := rules.ForVariant(config.Variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if config.Players < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidConfig, config.Players)
	}
	if config.Iterations < 1 {
		return nil, fmt.Errorf("%w: need at least 1 iteration, got %d", ErrInvalidConfig, config.Iterations)
	}
	if config.SampleRate < 0 || config.SampleRate > 1 {
		return nil, fmt.Errorf("%w: sample rate %v outside [0,1]", ErrInvalidConfig, config.SampleRate)
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, config.Workers)
	}

	demand := config.Players*r.HoleCards() + rules.BoardCards
	if demand > deck.Size {
		return nil, fmt.Errorf("%w: %d players need %d cards, deck has %d",
			ErrInvalidConfig, config.Players, demand, deck.Size)
	}

	if len(config.FixedHands) > config.Players {
		return nil, fmt.Errorf("%w: %d fixed hands for %d players",
			ErrInvalidConfig, len(config.FixedHands), config.Players)
	}
	if len(config.FixedBoard) > rules.BoardCards {
		return nil, fmt.Errorf("%w: fixed board has %d cards, max %d",
			ErrInvalidConfig, len(config.FixedBoard), rules.BoardCards)
	}

	var fixedCards []deck.Card
	var seen deck.CardSet
	addFixed := func(cards []deck.Card) error {
		for _, card := range cards {
			if seen.Contains(card) {
				return fmt.Errorf("%w: duplicate fixed card %s", ErrInvalidConfig, card)
			}
			seen.Add(card)
			fixedCards = append(fixedCards, card)
		}
		return nil
	}
	for i, hand := range config.FixedHands {
		if hand == nil {
			continue
		}
		if len(hand) != r.HoleCards() {
			return nil, fmt.Errorf("%w: fixed hand %d has %d cards, %s deals %d",
				ErrInvalidConfig, i, len(hand), config.Variant, r.HoleCards())
		}
		if err := addFixed(hand); err != nil {
			return nil, err
		}
	}
	if err := addFixed(config.FixedBoard); err != nil {
		return nil, err
	}

	seeded := config.Seed != nil
	seed := rand.Int64()
	if seeded {
		seed = *config.Seed
	}

	sampleRate := config.SampleRate
	if config.StoreHandRecords && sampleRate == 0 {
		sampleRate = 1
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Simulator{
		config:     config,
		rules:      r,
		logger:     logger,
		clock:      clock,
		seed:       seed,
		seeded:     seeded,
		sampleRate: sampleRate,
		fixedCards: fixedCards,
	}, nil
}

// Run executes all trials and returns the aggregated result. Trials are
// partitioned across workers, each with an independent random stream
// derived from the run seed and worker index; partial tallies merge by
// commutative sums. Cancellation is cooperative and checked between
// trials, never mid-trial.
func (s *Simulator) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	total := s.config.Iterations
	workers := s.config.Workers
	if workers == 0 {
		workers = min(runtime.NumCPU(), maxWorkers)
	}
	workers = min(workers, total)

	s.logger.Debug("starting simulation",
		"variant", s.config.Variant,
		"players", s.config.Players,
		"iterations", total,
		"workers", workers,
		"seed", s.seed)

	started := s.clock.Now()

	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	// The reporter samples the trial counter on its own goroutine so a
	// slow callback never blocks a worker.
	var stopReporter func()
	if progress != nil {
		ticker := s.clock.NewTicker(progressInterval, "progress")
		done := make(chan struct{})
		finished := make(chan struct{})
		go func() {
			defer close(finished)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					progress(int(completed.Load()), total)
				}
			}
		}()
		var once sync.Once
		stopReporter = func() {
			once.Do(func() {
				close(done)
				<-finished
			})
		}
		defer stopReporter()
	}

	tallies := make([]*trialWorker, workers)
	base := total / workers
	remainder := total % workers
	offset := 0
	for i := 0; i < workers; i++ {
		iterations := base
		if i < remainder {
			iterations++
		}
		w := s.newWorker(i, offset, iterations)
		tallies[i] = w
		offset += iterations

		g.Go(func() error {
			for t := 0; t < w.iterations; t++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := w.runTrial(t); err != nil {
					return err
				}
				completed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := newStatistics(s.config.Players)
	var records []HandRecord
	for _, w := range tallies {
		stats.merge(w.stats)
		records = append(records, w.records...)
	}

	duration := s.clock.Since(started)
	if progress != nil {
		stopReporter()
		progress(total, total)
	}

	s.logger.Debug("simulation complete", "trials", stats.Trials, "duration", duration)

	return &Result{
		Metadata: Metadata{
			Variant:    s.config.Variant,
			Players:    s.config.Players,
			Iterations: total,
			Seed:       s.seed,
			Seeded:     s.seeded,
			Workers:    workers,
			StartedAt:  started,
			Duration:   duration,
		},
		Stats:   stats,
		Records: records,
	}, nil
}

// trialWorker owns one partition of trials: its own deck, random streams
// and partial tally. Nothing here is shared with other workers.
type trialWorker struct {
	sim        *Simulator
	offset     int
	iterations int

	d         *deck.Deck
	sampleRng *rand.Rand
	stats     *Statistics
	records   []HandRecord

	holes [][]deck.Card
	board []deck.Card
	ranks []evaluator.HandRank
}

func (s *Simulator) newWorker(index, offset, iterations int) *trialWorker {
	d := deck.NewFromSource(randutil.StreamPCG(s.seed, index))
	d.Remove(s.fixedCards)

	// The sampling decision draws from a separate stream so that the
	// dealt card sequence does not depend on the sample rate.
	return &trialWorker{
		sim:        s,
		offset:     offset,
		iterations: iterations,
		d:          d,
		sampleRng:  randutil.Stream(s.seed, sampleStreamOffset+index),
		stats:      newStatistics(s.config.Players),
		holes:      make([][]deck.Card, s.config.Players),
		ranks:      make([]evaluator.HandRank, s.config.Players),
	}
}

func (w *trialWorker) runTrial(trial int) error {
	s := w.sim
	w.d.Shuffle()

	for p := 0; p < s.config.Players; p++ {
		if fixed := s.fixedHand(p); fixed != nil {
			w.holes[p] = fixed
			continue
		}
		hole, err := w.d.DealMany(s.rules.HoleCards())
		if err != nil {
			return err
		}
		w.holes[p] = hole
	}

	dealt, err := w.d.DealMany(rules.BoardCards - len(s.config.FixedBoard))
	if err != nil {
		return err
	}
	w.board = w.board[:0]
	w.board = append(w.board, s.config.FixedBoard...)
	w.board = append(w.board, dealt...)

	for p := 0; p < s.config.Players; p++ {
		rank, err := evaluator.EvaluateBestHand(w.holes[p], w.board, s.rules)
		if err != nil {
			return err
		}
		w.ranks[p] = rank
	}

	best := w.ranks[0].Score
	for _, rank := range w.ranks[1:] {
		if rank.Score > best {
			best = rank.Score
		}
	}

	var winners []int
	for p, rank := range w.ranks {
		if rank.Score == best {
			winners = append(winners, p)
		}
	}

	if len(winners) == 1 {
		w.stats.Players[winners[0]].Wins++
	} else {
		for _, p := range winners {
			w.stats.Players[p].Ties++
		}
	}

	for p, rank := range w.ranks {
		w.stats.Players[p].HandTypeCounts[rank.Type]++
	}

	// Head-to-head outcomes over every ordered pair of seats.
	for i, ri := range w.ranks {
		for j, rj := range w.ranks {
			if i == j {
				continue
			}
			w.stats.matrixTotals[ri.Type][rj.Type]++
			if ri.Score > rj.Score {
				w.stats.matrixWins[ri.Type][rj.Type]++
			}
		}
	}

	w.stats.Trials++

	if s.sampleRate > 0 && w.sampleRng.Float64() < s.sampleRate {
		w.records = append(w.records, w.snapshot(trial, winners))
	}

	return nil
}

// snapshot deep-copies the trial state; the worker's scratch slices are
// reused on the next trial.
func (w *trialWorker) snapshot(trial int, winners []int) HandRecord {
	holes := make([][]deck.Card, len(w.holes))
	for p, hole := range w.holes {
		holes[p] = append([]deck.Card(nil), hole...)
	}
	return HandRecord{
		Trial:     w.offset + trial,
		HoleCards: holes,
		Board:     append([]deck.Card(nil), w.board...),
		Hands:     append([]evaluator.HandRank(nil), w.ranks...),
		Winners:   append([]int(nil), winners...),
	}
}

func (s *Simulator) fixedHand(player int) []deck.Card {
	if player < len(s.config.FixedHands) {
		return s.config.FixedHands[player]
	}
	return nil
}
