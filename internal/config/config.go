// Package config loads simulation scenarios from HCL files, so repeated
// runs (fixed matchups, seeds, variants) can be described declaratively
// instead of via flags.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokersim/internal/deck"
	"github.com/lox/pokersim/internal/rules"
	"github.com/lox/pokersim/internal/simulator"
)

// Scenario is a complete simulation description.
//
//	simulation {
//	  variant    = "omaha4"
//	  players    = 3
//	  iterations = 100000
//	  seed       = 42
//	}
//
//	player "hero" {
//	  seat  = 1
//	  cards = "AsAhKsKh"
//	}
type Scenario struct {
	Simulation SimulationSettings `hcl:"simulation,block"`
	Players    []PlayerConfig     `hcl:"player,block"`
}

// SimulationSettings mirrors simulator.Config's scalar fields.
type SimulationSettings struct {
	Variant          string  `hcl:"variant"`
	Players          int     `hcl:"players"`
	Iterations       int     `hcl:"iterations,optional"`
	Seed             *int64  `hcl:"seed,optional"`
	Workers          int     `hcl:"workers,optional"`
	Board            string  `hcl:"board,optional"`
	SampleRate       float64 `hcl:"sample_rate,optional"`
	StoreHandRecords bool    `hcl:"store_hand_records,optional"`
}

// PlayerConfig pins a named player's hole cards to a seat (1-based).
type PlayerConfig struct {
	Name  string `hcl:"name,label"`
	Seat  int    `hcl:"seat"`
	Cards string `hcl:"cards"`
}

// Default returns the scenario used when no file is given: heads-up
// hold'em with random hands.
func Default() *Scenario {
	return &Scenario{
		Simulation: SimulationSettings{
			Variant:    string(rules.Holdem),
			Players:    2,
			Iterations: 100000,
		},
	}
}

// Load reads a scenario from an HCL file. A missing file yields the
// default scenario.
func Load(filename string) (*Scenario, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var scenario Scenario
	diags = gohcl.DecodeBody(file.Body, nil, &scenario)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scenario: %s", diags.Error())
	}

	if scenario.Simulation.Iterations == 0 {
		scenario.Simulation.Iterations = Default().Simulation.Iterations
	}

	return &scenario, nil
}

// SimulatorConfig translates the scenario into a simulator.Config.
// Validation of counts and duplicates is left to simulator.New.
func (s *Scenario) SimulatorConfig() (simulator.Config, error) {
	cfg := simulator.Config{
		Variant:          rules.Variant(s.Simulation.Variant),
		Players:          s.Simulation.Players,
		Iterations:       s.Simulation.Iterations,
		Seed:             s.Simulation.Seed,
		Workers:          s.Simulation.Workers,
		SampleRate:       s.Simulation.SampleRate,
		StoreHandRecords: s.Simulation.StoreHandRecords,
	}

	if s.Simulation.Board != "" {
		board, err := deck.ParseCards(s.Simulation.Board)
		if err != nil {
			return simulator.Config{}, fmt.Errorf("board: %w", err)
		}
		cfg.FixedBoard = board
	}

	if len(s.Players) > 0 {
		cfg.FixedHands = make([][]deck.Card, s.Simulation.Players)
		for _, player := range s.Players {
			if player.Seat < 1 || player.Seat > s.Simulation.Players {
				return simulator.Config{}, fmt.Errorf("player %q: seat %d outside 1-%d",
					player.Name, player.Seat, s.Simulation.Players)
			}
			if cfg.FixedHands[player.Seat-1] != nil {
				return simulator.Config{}, fmt.Errorf("player %q: seat %d already taken",
					player.Name, player.Seat)
			}
			cards, err := deck.ParseCards(player.Cards)
			if err != nil {
				return simulator.Config{}, fmt.Errorf("player %q: %w", player.Name, err)
			}
			cfg.FixedHands[player.Seat-1] = cards
		}
	}

	return cfg, nil
}
