package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

var sampleDates = []string{"2026-02-14", "2026-02-15", "2026-02-16", "2026-02-17", "2026-02-18"}

func TestValidateAcceptsSolution(t *testing.T) {
	for _, date := range sampleDates {
		t.Run(date, func(t *testing.T) {
			p := MustGenerate(date)
			assert.True(t, Validate(p, SolutionOf(p)))
		})
	}
}

func TestValidateMatrix(t *testing.T) {
	p := MustGenerate("2026-02-14")
	sol := p.Payload.(Matrix).Solution

	wrong := MatrixAnswer(sol)
	wrong[0][0], wrong[0][1] = wrong[0][1], wrong[0][0]
	assert.False(t, Validate(p, wrong))

	blank := MatrixAnswer(sol)
	blank[3][3] = 0
	assert.False(t, Validate(p, blank))

	assert.False(t, Validate(p, MatrixAnswer(p.Payload.(Matrix).Grid)), "unfilled grid")
}

func TestValidatePattern(t *testing.T) {
	p := MustGenerate("2026-02-15")

	assert.True(t, Validate(p, PatternAnswer("🔺")))
	assert.False(t, Validate(p, PatternAnswer("🔻")))
	assert.False(t, Validate(p, PatternAnswer("")))
}

func TestValidatePatternNormalisesUnicode(t *testing.T) {
	p := Puzzle{
		Category: CategoryPattern,
		Payload:  Pattern{CorrectAnswer: "é"},
	}
	decomposed := norm.NFD.String("é")
	require.NotEqual(t, "é", decomposed)

	assert.True(t, Validate(p, PatternAnswer(decomposed)))
}

func TestValidateSequence(t *testing.T) {
	p := MustGenerate("2026-02-16")

	assert.True(t, Validate(p, SequenceAnswer{num(8)}))
	assert.False(t, Validate(p, SequenceAnswer{num(7)}))
	assert.False(t, Validate(p, SequenceAnswer{nil}))
	assert.False(t, Validate(p, SequenceAnswer{}))
	assert.False(t, Validate(p, SequenceAnswer{num(8), num(8)}))
}

func TestValidateDeduction(t *testing.T) {
	p := MustGenerate("2026-02-17")

	assert.True(t, Validate(p, DeductionAnswer{"Alice": "Blue", "Bob": "Red", "Carol": "Green"}))
	assert.False(t, Validate(p, DeductionAnswer{"Alice": "Red", "Bob": "Blue", "Carol": "Green"}))
	assert.False(t, Validate(p, DeductionAnswer{"Alice": "Blue", "Bob": "Red"}))
	assert.False(t, Validate(p, DeductionAnswer{"Alice": "Blue", "Bob": "Red", "Dave": "Green"}))
}

func TestValidateBinary(t *testing.T) {
	p := MustGenerate("2026-02-18")

	assert.True(t, Validate(p, BinaryAnswer{false, true, true}))
	assert.False(t, Validate(p, BinaryAnswer{true, true, true}))
	assert.False(t, Validate(p, BinaryAnswer{false, true}))
}

func TestValidateFailsClosed(t *testing.T) {
	matrix := MustGenerate("2026-02-14")

	tests := []struct {
		name   string
		puzzle Puzzle
		answer Answer
	}{
		{"nil answer", matrix, nil},
		{"nil payload", Puzzle{Category: CategoryMatrix}, MatrixAnswer{}},
		{"wrong answer variant", matrix, PatternAnswer("🔺")},
		{
			"category disagrees with payload",
			Puzzle{Category: CategoryPattern, Payload: matrix.Payload},
			SolutionOf(matrix),
		},
		{
			"unknown category",
			Puzzle{Category: Category("riddle"), Payload: matrix.Payload},
			SolutionOf(matrix),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, Validate(tt.puzzle, tt.answer))
			})
		})
	}
}

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		data     string
		date     string
		want     bool
	}{
		{"matrix", CategoryMatrix, `[[2,3,4,1],[1,2,3,4],[3,4,1,2],[4,1,2,3]]`, "2026-02-14", true},
		{"matrix with null", CategoryMatrix, `[[null,3,4,1],[1,2,3,4],[3,4,1,2],[4,1,2,3]]`, "2026-02-14", false},
		{"pattern", CategoryPattern, `"🔺"`, "2026-02-15", true},
		{"sequence", CategorySequence, `[8]`, "2026-02-16", true},
		{"sequence gap", CategorySequence, `[null]`, "2026-02-16", false},
		{"deduction", CategoryDeduction, `{"Alice":"Blue","Bob":"Red","Carol":"Green"}`, "2026-02-17", true},
		{"binary", CategoryBinary, `[false,true,true]`, "2026-02-18", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := DecodeAnswer(tt.category, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Validate(MustGenerate(tt.date), a))
		})
	}
}

func TestDecodeAnswerErrors(t *testing.T) {
	_, err := DecodeAnswer(Category("riddle"), []byte(`1`))
	assert.Error(t, err)

	_, err = DecodeAnswer(CategoryBinary, []byte(`"yes"`))
	assert.Error(t, err)
}

func TestSolutionOfIsACopy(t *testing.T) {
	p := MustGenerate("2026-02-17")
	a := SolutionOf(p).(DeductionAnswer)
	a["Alice"] = "Red"

	assert.Equal(t, "Blue", p.Payload.(Deduction).Solution["Alice"])
}
