package puzzle

import (
	"encoding/json"
	"fmt"
)

// Category identifies one of the five puzzle kinds.
type Category string

const (
	CategoryMatrix    Category = "matrix"
	CategoryPattern   Category = "pattern"
	CategorySequence  Category = "sequence"
	CategoryDeduction Category = "deduction"
	CategoryBinary    Category = "binary"
)

// Categories lists every category in rotation order.
// The order is part of the puzzle contract and must never change.
var Categories = [...]Category{
	CategoryMatrix,
	CategoryPattern,
	CategorySequence,
	CategoryDeduction,
	CategoryBinary,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Difficulty grades a puzzle and selects its base score.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// ParseDifficulty converts a wire string into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q: must be easy, medium or hard", s)
	}
	return d, nil
}

// Puzzle is the fully generated puzzle for one date.
//
// Puzzles are values: generated on demand, never mutated. The hidden
// solution lives inside Payload.
type Puzzle struct {
	ID          string
	Category    Category
	Difficulty  Difficulty
	Date        string
	Title       string
	Description string
	MaxHints    int
	Payload     Payload
}

// Payload is the category-specific body of a Puzzle.
//
// The interface is sealed: only the variants in this package implement it.
type Payload interface {
	Category() Category
	isPayload()
}

// Matrix is a 4x4 Latin-square fill-in. Zero cells in Grid are blanks.
type Matrix struct {
	Grid     [4][4]int `json:"grid"`
	Solution [4][4]int `json:"solution"`
	Rules    []string  `json:"rules"`
}

// Pattern asks for the next symbol in a repeating sequence.
type Pattern struct {
	Sequence      []string `json:"sequence"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Sequence is a numeric progression with gaps. A nil entry in Numbers is a gap;
// Solution holds the omitted values in order.
type Sequence struct {
	Numbers  []*float64 `json:"numbers"`
	Solution []float64  `json:"solution"`
	Rule     string     `json:"rule"`
}

// Deduction is a people-to-label matching puzzle driven by clues.
type Deduction struct {
	Clues    []string          `json:"clues"`
	Rows     []string          `json:"rows"`
	Cols     []string          `json:"cols"`
	Solution map[string]string `json:"solution"`
}

// Binary asks for the output of each logic gate.
type Binary struct {
	Gates    []Gate `json:"gates"`
	Solution []bool `json:"solution"`
}

func (Matrix) Category() Category    { return CategoryMatrix }
func (Pattern) Category() Category   { return CategoryPattern }
func (Sequence) Category() Category  { return CategorySequence }
func (Deduction) Category() Category { return CategoryDeduction }
func (Binary) Category() Category    { return CategoryBinary }

func (Matrix) isPayload()    {}
func (Pattern) isPayload()   {}
func (Sequence) isPayload()  {}
func (Deduction) isPayload() {}
func (Binary) isPayload()    {}

// puzzleJSON is the wire shape of a Puzzle.
type puzzleJSON struct {
	ID          string          `json:"id"`
	Category    Category        `json:"type"`
	Difficulty  Difficulty      `json:"difficulty"`
	Date        string          `json:"date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	MaxHints    int             `json:"maxHints"`
	Payload     json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the puzzle with its payload nested under "payload".
func (p Puzzle) MarshalJSON() ([]byte, error) {
	if p.Payload == nil {
		return nil, fmt.Errorf("marshal puzzle %q: nil payload", p.ID)
	}
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal puzzle %q: %w", p.ID, err)
	}
	return json.Marshal(puzzleJSON{
		ID:          p.ID,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		Date:        p.Date,
		Title:       p.Title,
		Description: p.Description,
		MaxHints:    p.MaxHints,
		Payload:     payload,
	})
}

// UnmarshalJSON decodes a puzzle, selecting the payload variant from "type".
func (p *Puzzle) UnmarshalJSON(data []byte) error {
	var raw puzzleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var payload Payload
	var err error
	switch raw.Category {
	case CategoryMatrix:
		payload, err = decodePayload[Matrix](raw.Payload)
	case CategoryPattern:
		payload, err = decodePayload[Pattern](raw.Payload)
	case CategorySequence:
		payload, err = decodePayload[Sequence](raw.Payload)
	case CategoryDeduction:
		payload, err = decodePayload[Deduction](raw.Payload)
	case CategoryBinary:
		payload, err = decodePayload[Binary](raw.Payload)
	default:
		return fmt.Errorf("unmarshal puzzle: unknown type %q", raw.Category)
	}
	if err != nil {
		return fmt.Errorf("unmarshal puzzle %q: %w", raw.ID, err)
	}

	*p = Puzzle{
		ID:          raw.ID,
		Category:    raw.Category,
		Difficulty:  raw.Difficulty,
		Date:        raw.Date,
		Title:       raw.Title,
		Description: raw.Description,
		MaxHints:    raw.MaxHints,
		Payload:     payload,
	}
	return nil
}

func decodePayload[T Payload](data json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
