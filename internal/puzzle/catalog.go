package puzzle

// The catalogues below are part of the served-puzzle contract: editing an
// entry or changing the order changes the puzzle for past and future dates.

// matrixBase is a valid 4x4 Latin square. Generators permute its rows.
var matrixBase = [4][4]int{
	{1, 2, 3, 4},
	{3, 4, 1, 2},
	{2, 3, 4, 1},
	{4, 1, 2, 3},
}

var matrixRules = []string{
	"Each row must contain 1, 2, 3, 4",
	"Each column must contain 1, 2, 3, 4",
	"No repeating numbers in any row or column",
}

type patternEntry struct {
	sequence      []string
	options       []string
	correctAnswer string
}

var patternCatalog = []patternEntry{
	{
		sequence:      []string{"🔴", "🔵", "🔴", "🔵", "🔴", "?"},
		options:       []string{"🔵", "🔴", "🟢", "🟡"},
		correctAnswer: "🔵",
	},
	{
		sequence:      []string{"⬛", "⬜", "⬛", "⬛", "⬜", "⬜", "⬛", "⬛", "⬛", "?"},
		options:       []string{"⬜", "⬛", "🟦", "🟥"},
		correctAnswer: "⬜",
	},
	{
		sequence:      []string{"🔺", "🔺", "🔻", "🔺", "🔺", "🔺", "🔻", "?"},
		options:       []string{"🔺", "🔻", "🔶", "🔷"},
		correctAnswer: "🔺",
	},
}

type sequenceEntry struct {
	numbers  []*float64
	solution []float64
	rule     string
}

// num returns a pointer to a catalogue number; gap marks a missing value.
func num(v float64) *float64 { return &v }

var gap *float64

var sequenceCatalog = []sequenceEntry{
	{
		numbers:  []*float64{num(2), num(4), num(6), gap, num(10), num(12)},
		solution: []float64{8},
		rule:     "Even numbers sequence (+2)",
	},
	{
		numbers:  []*float64{num(1), num(1), num(2), num(3), num(5), gap, num(13)},
		solution: []float64{8},
		rule:     "Fibonacci sequence",
	},
	{
		numbers:  []*float64{num(3), num(6), num(12), gap, num(48)},
		solution: []float64{24},
		rule:     "Each number doubles",
	},
	{
		numbers:  []*float64{num(100), num(50), gap, num(12.5)},
		solution: []float64{25},
		rule:     "Each number halves",
	},
}

var (
	deductionPeople = []string{"Alice", "Bob", "Carol"}
	deductionColors = []string{"Red", "Blue", "Green"}
)

var binaryCatalog = []Gate{
	{Inputs: []bool{true, false}, Kind: GateAND, Expected: false},
	{Inputs: []bool{true, true}, Kind: GateOR, Expected: true},
	{Inputs: []bool{true, false}, Kind: GateXOR, Expected: true},
}
