package simulator

import (
	"context"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/evaluator"
	"github.com/lox/pokersim/internal/rules"
)

func seedPtr(s int64) *int64 {
	return &s
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "one player",
			config: Config{Variant: rules.Holdem, Players: 1, Iterations: 100},
		},
		{
			name:   "zero iterations",
			config: Config{Variant: rules.Holdem, Players: 2, Iterations: 0},
		},
		{
			name:   "unknown variant",
			config: Config{Variant: "omaha7", Players: 2, Iterations: 100},
		},
		{
			name:   "sample rate above one",
			config: Config{Variant: rules.Holdem, Players: 2, Iterations: 100, SampleRate: 1.5},
		},
		{
			name:   "negative workers",
			config: Config{Variant: rules.Holdem, Players: 2, Iterations: 100, Workers: -1},
		},
		{
			// 10 players * 6 hole cards + 5 board = 65 > 52
			name:   "too many players for omaha6",
			config: Config{Variant: rules.Omaha6, Players: 10, Iterations: 100},
		},
		{
			name: "fixed hand wrong size",
			config: Config{
				Variant: rules.Holdem, Players: 2, Iterations: 100,
				FixedHands: [][]deck.Card{deck.MustParseCards("AsAhKd")},
			},
		},
		{
			name: "duplicate fixed cards",
			config: Config{
				Variant: rules.Holdem, Players: 2, Iterations: 100,
				FixedHands: [][]deck.Card{
					deck.MustParseCards("AsAh"),
					deck.MustParseCards("AsKd"),
				},
			},
		},
		{
			name: "fixed board card repeated in hand",
			config: Config{
				Variant: rules.Holdem, Players: 2, Iterations: 100,
				FixedHands: [][]deck.Card{deck.MustParseCards("AsAh")},
				FixedBoard: deck.MustParseCards("As2c3d"),
			},
		},
		{
			name: "oversized fixed board",
			config: Config{
				Variant: rules.Holdem, Players: 2, Iterations: 100,
				FixedBoard: deck.MustParseCards("2c3d4h5s6c7d"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		sim, err := New(Config{
			Variant:    rules.Holdem,
			Players:    3,
			Iterations: 2000,
			Seed:       seedPtr(42),
			Workers:    2,
		})
		require.NoError(t, err)

		result, err := sim.Run(context.Background(), nil)
		require.NoError(t, err)
		return result
	}

	r1 := run()
	r2 := run()

	require.Equal(t, r1.Stats.Trials, r2.Stats.Trials)
	for p := 0; p < 3; p++ {
		assert.Equal(t, r1.Stats.Players[p].Wins, r2.Stats.Players[p].Wins, "player %d wins", p)
		assert.Equal(t, r1.Stats.Players[p].Ties, r2.Stats.Players[p].Ties, "player %d ties", p)
		assert.Equal(t, r1.Stats.Players[p].HandTypeCounts, r2.Stats.Players[p].HandTypeCounts, "player %d types", p)
	}
	assert.Equal(t, r1.Stats.ProbabilityMatrix(), r2.Stats.ProbabilityMatrix())
}

func TestAcesVersusKingsConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence test in short mode")
	}

	sim, err := New(Config{
		Variant:    rules.Holdem,
		Players:    2,
		Iterations: 100000,
		Seed:       seedPtr(7),
		FixedHands: [][]deck.Card{
			deck.MustParseCards("AsAh"),
			deck.MustParseCards("KsKh"),
		},
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)

	// Known heads-up baseline: AA beats KK roughly 82% of the time.
	assert.InDelta(t, 82.0, result.Stats.WinPercent(0), 2.0)
}

func TestPlayedBoardSplitsEveryPot(t *testing.T) {
	sim, err := New(Config{
		Variant:    rules.Holdem,
		Players:    4,
		Iterations: 200,
		Seed:       seedPtr(1),
		FixedBoard: deck.MustParseCards("AhKhQhJhTh"),
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)

	for p := 0; p < 4; p++ {
		assert.Zero(t, result.Stats.Players[p].Wins, "player %d wins", p)
		assert.Equal(t, 200, result.Stats.Players[p].Ties, "player %d ties", p)
		assert.Zero(t, result.Stats.Losses(p), "player %d losses", p)
	}

	// Every comparison was royal flush against royal flush: co-occurring,
	// never beating.
	rf := evaluator.RoyalFlush
	assert.Equal(t, 200*4*3, result.Stats.MatrixSamples(rf, rf))
	matrix := result.Stats.ProbabilityMatrix()
	assert.Zero(t, matrix[rf][rf])
}

func TestOmahaRun(t *testing.T) {
	for _, variant := range []rules.Variant{rules.Omaha4, rules.Omaha5, rules.Omaha6} {
		t.Run(string(variant), func(t *testing.T) {
			sim, err := New(Config{
				Variant:    variant,
				Players:    3,
				Iterations: 500,
				Seed:       seedPtr(11),
			})
			require.NoError(t, err)

			result, err := sim.Run(context.Background(), nil)
			require.NoError(t, err)

			require.Equal(t, 500, result.Stats.Trials)
			wins, ties := 0, 0
			for p := 0; p < 3; p++ {
				wins += result.Stats.Players[p].Wins
				ties += result.Stats.Players[p].Ties
			}
			// Every trial produced either a single winner or >=2 tied players.
			assert.GreaterOrEqual(t, wins+ties, 500)
		})
	}
}

func TestHandRecordSampling(t *testing.T) {
	sim, err := New(Config{
		Variant:          rules.Holdem,
		Players:          2,
		Iterations:       50,
		Seed:             seedPtr(3),
		StoreHandRecords: true,
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)

	// StoreHandRecords with no explicit rate samples every trial.
	require.Len(t, result.Records, 50)

	for _, record := range result.Records {
		assert.Len(t, record.HoleCards, 2)
		for _, hole := range record.HoleCards {
			assert.Len(t, hole, 2)
		}
		assert.Len(t, record.Board, 5)
		assert.Len(t, record.Hands, 2)
		assert.NotEmpty(t, record.Winners)
	}
}

func TestHandRecordPartialSampling(t *testing.T) {
	sim, err := New(Config{
		Variant:          rules.Holdem,
		Players:          2,
		Iterations:       1000,
		Seed:             seedPtr(3),
		StoreHandRecords: true,
		SampleRate:       0.1,
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Greater(t, len(result.Records), 0)
	assert.Less(t, len(result.Records), 1000)
}

func TestProgressReported(t *testing.T) {
	var mu sync.Mutex
	var calls [][2]int
	progress := func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, [2]int{completed, total})
	}

	sim, err := New(Config{
		Variant:    rules.Holdem,
		Players:    2,
		Iterations: 5000,
		Seed:       seedPtr(9),
	})
	require.NoError(t, err)

	_, err = sim.Run(context.Background(), progress)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, calls)

	last := calls[len(calls)-1]
	assert.Equal(t, [2]int{5000, 5000}, last)

	prev := 0
	for _, call := range calls {
		assert.GreaterOrEqual(t, call[0], prev)
		assert.Equal(t, 5000, call[1])
		prev = call[0]
	}
}

func TestCancellation(t *testing.T) {
	sim, err := New(Config{
		Variant:    rules.Holdem,
		Players:    2,
		Iterations: 1000000,
		Seed:       seedPtr(2),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sim.Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMetadata(t *testing.T) {
	clock := quartz.NewMock(t)

	sim, err := New(Config{
		Variant:    rules.Omaha4,
		Players:    2,
		Iterations: 10,
		Seed:       seedPtr(42),
		Workers:    1,
		Clock:      clock,
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, rules.Omaha4, result.Metadata.Variant)
	assert.Equal(t, 2, result.Metadata.Players)
	assert.Equal(t, 10, result.Metadata.Iterations)
	assert.Equal(t, int64(42), result.Metadata.Seed)
	assert.True(t, result.Metadata.Seeded)
	assert.Equal(t, 1, result.Metadata.Workers)
	// No mock time advanced during the run.
	assert.Zero(t, result.Metadata.Duration)
}

func TestUnseededRunsGetDistinctSeeds(t *testing.T) {
	s1, err := New(Config{Variant: rules.Holdem, Players: 2, Iterations: 10})
	require.NoError(t, err)
	s2, err := New(Config{Variant: rules.Holdem, Players: 2, Iterations: 10})
	require.NoError(t, err)

	assert.False(t, s1.seeded)
	assert.NotEqual(t, s1.seed, s2.seed)
}
