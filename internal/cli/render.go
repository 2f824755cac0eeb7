package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/looper/internal/puzzle"
)

// renderPuzzle writes a plain-text view of p. With solution set the
// hidden answer is appended.
func renderPuzzle(p puzzle.Puzzle, solution bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  (%s, %s)\n", p.Title, p.Category, p.Difficulty)
	fmt.Fprintf(&b, "%s  %s\n\n", p.Date, p.ID)
	fmt.Fprintf(&b, "%s\n\n", p.Description)

	switch pl := p.Payload.(type) {
	case puzzle.Matrix:
		writeGrid(&b, pl.Grid)
		for _, r := range pl.Rules {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
		if solution {
			b.WriteString("\nSolution:\n")
			writeGrid(&b, pl.Solution)
		}
	case puzzle.Pattern:
		fmt.Fprintf(&b, "  %s\n\n", strings.Join(pl.Sequence, " "))
		fmt.Fprintf(&b, "  Options: %s\n", strings.Join(pl.Options, " "))
		if solution {
			fmt.Fprintf(&b, "\nSolution: %s\n", pl.CorrectAnswer)
		}
	case puzzle.Sequence:
		cells := make([]string, len(pl.Numbers))
		for i, n := range pl.Numbers {
			if n == nil {
				cells[i] = "?"
				continue
			}
			cells[i] = formatNumber(*n)
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(cells, ", "))
		if solution {
			values := make([]string, len(pl.Solution))
			for i, v := range pl.Solution {
				values[i] = formatNumber(v)
			}
			fmt.Fprintf(&b, "\nSolution: %s (%s)\n", strings.Join(values, ", "), pl.Rule)
		}
	case puzzle.Deduction:
		for _, c := range pl.Clues {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
		fmt.Fprintf(&b, "\n  People: %s\n  Colors: %s\n", strings.Join(pl.Rows, ", "), strings.Join(pl.Cols, ", "))
		if solution {
			b.WriteString("\nSolution:\n")
			people := make([]string, 0, len(pl.Solution))
			for person := range pl.Solution {
				people = append(people, person)
			}
			sort.Strings(people)
			for _, person := range people {
				fmt.Fprintf(&b, "  %s: %s\n", person, pl.Solution[person])
			}
		}
	case puzzle.Binary:
		for i, g := range pl.Gates {
			inputs := make([]string, len(g.Inputs))
			for j, in := range g.Inputs {
				inputs[j] = bit(in)
			}
			fmt.Fprintf(&b, "  %d. %s(%s) = ?\n", i+1, g.Kind, strings.Join(inputs, ", "))
		}
		if solution {
			out := make([]string, len(pl.Solution))
			for i, v := range pl.Solution {
				out[i] = bit(v)
			}
			fmt.Fprintf(&b, "\nSolution: %s\n", strings.Join(out, " "))
		}
	}

	fmt.Fprintf(&b, "\nHints available: %d", p.MaxHints)
	return b.String()
}

func writeGrid(b *strings.Builder, g [4][4]int) {
	for _, row := range g {
		b.WriteString("  ")
		for c, v := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			if v == 0 {
				b.WriteByte('.')
			} else {
				b.WriteString(strconv.Itoa(v))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
