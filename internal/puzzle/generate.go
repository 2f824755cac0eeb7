package puzzle

import (
	"fmt"
	"time"
)

// CategoryFor returns the category served on date.
//
// The rotation depends only on the calendar day of year, never on the seed:
// Categories[dayOfYear % 5].
func CategoryFor(date string) (Category, error) {
	day, err := DayOfYear(date)
	if err != nil {
		return "", err
	}
	return Categories[day%len(Categories)], nil
}

// Generate builds the puzzle for date.
//
// Generate is a pure function of date: repeated calls, in any process,
// return deeply equal puzzles.
func Generate(date string) (Puzzle, error) {
	category, err := CategoryFor(date)
	if err != nil {
		return Puzzle{}, fmt.Errorf("generate: %w", err)
	}

	rng := NewRNG(Seed(date))

	switch category {
	case CategoryMatrix:
		return generateMatrix(rng, date), nil
	case CategoryPattern:
		return generatePattern(rng, date), nil
	case CategorySequence:
		return generateSequence(rng, date), nil
	case CategoryDeduction:
		return generateDeduction(rng, date), nil
	case CategoryBinary:
		return generateBinary(date), nil
	}
	return Puzzle{}, fmt.Errorf("generate: no generator for category %q", category)
}

// MustGenerate is like Generate but panics on error.
// Use only in tests or when the date is known to be valid.
func MustGenerate(date string) Puzzle {
	p, err := Generate(date)
	if err != nil {
		panic(err)
	}
	return p
}

// Today generates the puzzle for now's local calendar date.
func Today(now time.Time) (Puzzle, error) {
	return Generate(now.Format(DateLayout))
}

func puzzleID(c Category, date string) string {
	return fmt.Sprintf("%s-%s", c, date)
}

func generateMatrix(rng *RNG, date string) Puzzle {
	order := Shuffle(rng, []int{0, 1, 2, 3})

	var solution [4][4]int
	for i, row := range order {
		solution[i] = matrixBase[row]
	}

	// Blank positions may repeat, so the number of distinct blanks can be
	// lower than the drawn count. Difficulty follows the drawn count.
	grid := solution
	blanks := rng.NextInt(8, 12)
	for i := 0; i < blanks; i++ {
		r := rng.NextInt(0, 3)
		c := rng.NextInt(0, 3)
		grid[r][c] = 0
	}

	difficulty := Easy
	switch {
	case blanks > 10:
		difficulty = Hard
	case blanks > 8:
		difficulty = Medium
	}

	rules := make([]string, len(matrixRules))
	copy(rules, matrixRules)

	return Puzzle{
		ID:          puzzleID(CategoryMatrix, date),
		Category:    CategoryMatrix,
		Difficulty:  difficulty,
		Date:        date,
		Title:       "4x4 Number Grid",
		Description: "Fill in the missing numbers. Each row and column must contain 1, 2, 3, and 4 exactly once.",
		MaxHints:    3,
		Payload: Matrix{
			Grid:     grid,
			Solution: solution,
			Rules:    rules,
		},
	}
}

func generatePattern(rng *RNG, date string) Puzzle {
	entry := patternCatalog[rng.NextInt(0, len(patternCatalog)-1)]

	sequence := make([]string, len(entry.sequence))
	copy(sequence, entry.sequence)

	return Puzzle{
		ID:          puzzleID(CategoryPattern, date),
		Category:    CategoryPattern,
		Difficulty:  Medium,
		Date:        date,
		Title:       "Pattern Recognition",
		Description: "What comes next in the sequence?",
		MaxHints:    2,
		Payload: Pattern{
			Sequence:      sequence,
			Options:       Shuffle(rng, entry.options),
			CorrectAnswer: entry.correctAnswer,
		},
	}
}

func generateSequence(rng *RNG, date string) Puzzle {
	entry := sequenceCatalog[rng.NextInt(0, len(sequenceCatalog)-1)]

	// Deep-copy so callers can never reach the catalogue through a puzzle.
	numbers := make([]*float64, len(entry.numbers))
	for i, v := range entry.numbers {
		if v != nil {
			numbers[i] = num(*v)
		}
	}
	solution := make([]float64, len(entry.solution))
	copy(solution, entry.solution)

	return Puzzle{
		ID:          puzzleID(CategorySequence, date),
		Category:    CategorySequence,
		Difficulty:  Easy,
		Date:        date,
		Title:       "Number Sequence",
		Description: "Find the missing number in the sequence",
		MaxHints:    2,
		Payload: Sequence{
			Numbers:  numbers,
			Solution: solution,
			Rule:     entry.rule,
		},
	}
}

func generateDeduction(rng *RNG, date string) Puzzle {
	colors := Shuffle(rng, deductionColors)

	solution := make(map[string]string, len(deductionPeople))
	for i, person := range deductionPeople {
		solution[person] = colors[i]
	}

	// Each clue is true under the permutation above: person 0 holds
	// colors[0], person 1 holds colors[1], person 2 holds colors[2].
	clues := []string{
		fmt.Sprintf("%s does not have %s", deductionPeople[0], colors[1]),
		fmt.Sprintf("%s has %s", deductionPeople[1], colors[1]),
		fmt.Sprintf("%s does not have %s", deductionPeople[2], colors[0]),
	}

	rows := make([]string, len(deductionPeople))
	copy(rows, deductionPeople)
	cols := make([]string, len(deductionColors))
	copy(cols, deductionColors)

	return Puzzle{
		ID:          puzzleID(CategoryDeduction, date),
		Category:    CategoryDeduction,
		Difficulty:  Medium,
		Date:        date,
		Title:       "Logic Deduction",
		Description: "Match each person with their color based on the clues",
		MaxHints:    1,
		Payload: Deduction{
			Clues:    clues,
			Rows:     rows,
			Cols:     cols,
			Solution: solution,
		},
	}
}

// generateBinary takes no RNG: the gate catalogue is served as-is.
func generateBinary(date string) Puzzle {
	gates := make([]Gate, len(binaryCatalog))
	solution := make([]bool, len(binaryCatalog))
	for i, g := range binaryCatalog {
		inputs := make([]bool, len(g.Inputs))
		copy(inputs, g.Inputs)
		gates[i] = Gate{Inputs: inputs, Kind: g.Kind, Expected: g.Expected}
		solution[i] = g.Expected
	}

	return Puzzle{
		ID:          puzzleID(CategoryBinary, date),
		Category:    CategoryBinary,
		Difficulty:  Hard,
		Date:        date,
		Title:       "Logic Gates",
		Description: "Determine the output of each logic gate",
		MaxHints:    1,
		Payload: Binary{
			Gates:    gates,
			Solution: solution,
		},
	}
}
