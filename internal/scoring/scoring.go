// Package scoring turns a completed puzzle into points.
//
// Everything here is a pure function of its inputs. The same formulas are
// used by the client when a puzzle is solved and by the server gate when a
// submission is checked, so changing a constant changes which submissions
// the server accepts.
package scoring

import (
	"math"

	"github.com/roach88/looper/internal/puzzle"
)

const (
	// TimeBonusWindow is the number of seconds over which the time bonus
	// decays from TimeBonusMax to zero.
	TimeBonusWindow = 300

	// TimeBonusMax is the bonus for an instant solve.
	TimeBonusMax = 100

	// HintPenalty is subtracted per hint used.
	HintPenalty = 20

	// MaxTime is the longest accepted solve time in seconds.
	MaxTime = 3600

	// MaxHints is the most hints any submission may report.
	MaxHints = 3
)

// Base returns the base points for a difficulty, or 0 for an unknown one.
func Base(d puzzle.Difficulty) int {
	switch d {
	case puzzle.Easy:
		return 100
	case puzzle.Medium:
		return 200
	case puzzle.Hard:
		return 300
	}
	return 0
}

// Score computes points for a solve:
//
//	max(0, base + floor(max(0, (300 - t) / 300) * 100) - 20*hints)
//
// Inputs are not range-checked. Callers that accept untrusted values check
// them against MinTime, MaxTime and MaxHints first.
func Score(timeTaken, hintsUsed int, d puzzle.Difficulty) int {
	ratio := math.Max(0, float64(TimeBonusWindow-timeTaken)/TimeBonusWindow)
	bonus := int(math.Floor(ratio * TimeBonusMax))
	score := Base(d) + bonus - HintPenalty*hintsUsed
	if score < 0 {
		return 0
	}
	return score
}

// MaxScore is the highest score a difficulty can produce.
func MaxScore(d puzzle.Difficulty) int {
	return Base(d) + TimeBonusMax
}

// MinTime is the shortest plausible solve time in seconds for a difficulty.
// Faster submissions are rejected by the server gate.
func MinTime(d puzzle.Difficulty) int {
	switch d {
	case puzzle.Easy:
		return 10
	case puzzle.Medium:
		return 20
	case puzzle.Hard:
		return 30
	}
	return 0
}
