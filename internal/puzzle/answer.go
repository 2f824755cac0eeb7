package puzzle

import (
	"encoding/json"
	"fmt"
)

// Answer is a player's submitted answer. Each category has its own variant.
type Answer interface {
	isAnswer()
}

// MatrixAnswer is a filled 4x4 grid. Zero means the cell is still blank;
// a JSON null decodes to zero.
type MatrixAnswer [4][4]int

// PatternAnswer is the chosen symbol.
type PatternAnswer string

// SequenceAnswer lists the values for each gap, in order. Nil means unanswered.
type SequenceAnswer []*float64

// DeductionAnswer maps each person to a label.
type DeductionAnswer map[string]string

// BinaryAnswer lists the predicted output of each gate, in order.
type BinaryAnswer []bool

func (MatrixAnswer) isAnswer()    {}
func (PatternAnswer) isAnswer()   {}
func (SequenceAnswer) isAnswer()  {}
func (DeductionAnswer) isAnswer() {}
func (BinaryAnswer) isAnswer()    {}

// DecodeAnswer parses a JSON answer for category.
func DecodeAnswer(category Category, data []byte) (Answer, error) {
	var (
		a   Answer
		err error
	)
	switch category {
	case CategoryMatrix:
		var v MatrixAnswer
		err = json.Unmarshal(data, &v)
		a = v
	case CategoryPattern:
		var v PatternAnswer
		err = json.Unmarshal(data, &v)
		a = v
	case CategorySequence:
		var v SequenceAnswer
		err = json.Unmarshal(data, &v)
		a = v
	case CategoryDeduction:
		var v DeductionAnswer
		err = json.Unmarshal(data, &v)
		a = v
	case CategoryBinary:
		var v BinaryAnswer
		err = json.Unmarshal(data, &v)
		a = v
	default:
		return nil, fmt.Errorf("decode answer: unknown category %q", category)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s answer: %w", category, err)
	}
	return a, nil
}

// SolutionOf returns the answer that solves p, or nil for an unknown payload.
func SolutionOf(p Puzzle) Answer {
	switch pl := p.Payload.(type) {
	case Matrix:
		return MatrixAnswer(pl.Solution)
	case Pattern:
		return PatternAnswer(pl.CorrectAnswer)
	case Sequence:
		out := make(SequenceAnswer, len(pl.Solution))
		for i, v := range pl.Solution {
			out[i] = num(v)
		}
		return out
	case Deduction:
		out := make(DeductionAnswer, len(pl.Solution))
		for k, v := range pl.Solution {
			out[k] = v
		}
		return out
	case Binary:
		out := make(BinaryAnswer, len(pl.Solution))
		copy(out, pl.Solution)
		return out
	}
	return nil
}
