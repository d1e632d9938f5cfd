package simulator

import (
	"time"

	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/evaluator"
	"github.com/lox/pokersim/internal/rules"
)

// PlayerStats holds the aggregated outcomes for one seat.
type PlayerStats struct {
	Wins           int
	Ties           int
	HandTypeCounts [evaluator.NumHandTypes]int
}

// Statistics aggregates outcomes across all trials. Partial tallies from
// workers merge by commutative sums, so merge order never affects the
// final aggregate.
type Statistics struct {
	Trials  int
	Players []PlayerStats

	// Head-to-head matrix over ordered pairwise comparisons:
	// matrixWins[i][j] counts comparisons where a hand of type i beat a
	// hand of type j, matrixTotals[i][j] counts comparisons where the
	// two types co-occurred.
	matrixWins   [evaluator.NumHandTypes][evaluator.NumHandTypes]int
	matrixTotals [evaluator.NumHandTypes][evaluator.NumHandTypes]int
}

func newStatistics(players int) *Statistics {
	return &Statistics{Players: make([]PlayerStats, players)}
}

// merge folds another partial tally into s.
func (s *Statistics) merge(other *Statistics) {
	s.Trials += other.Trials
	for i := range s.Players {
		s.Players[i].Wins += other.Players[i].Wins
		s.Players[i].Ties += other.Players[i].Ties
		for t := range s.Players[i].HandTypeCounts {
			s.Players[i].HandTypeCounts[t] += other.Players[i].HandTypeCounts[t]
		}
	}
	for i := 0; i < evaluator.NumHandTypes; i++ {
		for j := 0; j < evaluator.NumHandTypes; j++ {
			s.matrixWins[i][j] += other.matrixWins[i][j]
			s.matrixTotals[i][j] += other.matrixTotals[i][j]
		}
	}
}

// Losses returns the number of trials the player neither won nor tied.
func (s *Statistics) Losses(player int) int {
	return s.Trials - s.Players[player].Wins - s.Players[player].Ties
}

// WinPercent returns the player's win rate as a percentage of all trials.
func (s *Statistics) WinPercent(player int) float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Players[player].Wins) / float64(s.Trials) * 100
}

// TiePercent returns the player's tie rate as a percentage of all trials.
func (s *Statistics) TiePercent(player int) float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Players[player].Ties) / float64(s.Trials) * 100
}

// HandTypePercent returns how often the player's best hand was of the
// given type, as a percentage of all trials.
func (s *Statistics) HandTypePercent(player int, t evaluator.HandType) float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Players[player].HandTypeCounts[t]) / float64(s.Trials) * 100
}

// ProbabilityMatrix returns cell [i][j] = percentage of head-to-head
// comparisons where hand type i beat hand type j, computed over only the
// comparisons where both types co-occurred. Cells with no co-occurrences
// are zero.
func (s *Statistics) ProbabilityMatrix() [evaluator.NumHandTypes][evaluator.NumHandTypes]float64 {
	var matrix [evaluator.NumHandTypes][evaluator.NumHandTypes]float64
	for i := 0; i < evaluator.NumHandTypes; i++ {
		for j := 0; j < evaluator.NumHandTypes; j++ {
			if s.matrixTotals[i][j] > 0 {
				matrix[i][j] = float64(s.matrixWins[i][j]) / float64(s.matrixTotals[i][j]) * 100
			}
		}
	}
	return matrix
}

// MatrixSamples returns the co-occurrence count behind a matrix cell.
func (s *Statistics) MatrixSamples(i, j evaluator.HandType) int {
	return s.matrixTotals[i][j]
}

// HandRecord is a full snapshot of one sampled trial.
type HandRecord struct {
	Trial     int
	HoleCards [][]deck.Card
	Board     []deck.Card
	Hands     []evaluator.HandRank
	Winners   []int
}

// Metadata echoes the configuration a result was produced under, plus
// timing. Worker count is part of reproducibility: a seeded run is
// deterministic for a fixed worker count.
type Metadata struct {
	Variant    rules.Variant
	Players    int
	Iterations int
	Seed       int64
	Seeded     bool
	Workers    int
	StartedAt  time.Time
	Duration   time.Duration
}

// Result is the immutable outcome of a completed run.
type Result struct {
	Metadata Metadata
	Stats    *Statistics
	Records  []HandRecord
}
