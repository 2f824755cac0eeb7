package puzzle

import "golang.org/x/text/unicode/norm"

// Validate reports whether answer solves p.
//
// Validate never panics. It fails closed: a nil or unknown payload, a
// payload that disagrees with p.Category, or an answer of the wrong
// variant all return false.
func Validate(p Puzzle, answer Answer) bool {
	if p.Payload == nil || answer == nil {
		return false
	}
	if p.Payload.Category() != p.Category {
		return false
	}

	switch pl := p.Payload.(type) {
	case Matrix:
		a, ok := answer.(MatrixAnswer)
		return ok && validateMatrix(pl, a)
	case Pattern:
		a, ok := answer.(PatternAnswer)
		return ok && validatePattern(pl, a)
	case Sequence:
		a, ok := answer.(SequenceAnswer)
		return ok && validateSequence(pl, a)
	case Deduction:
		a, ok := answer.(DeductionAnswer)
		return ok && validateDeduction(pl, a)
	case Binary:
		a, ok := answer.(BinaryAnswer)
		return ok && validateBinary(pl, a)
	}
	return false
}

func validateMatrix(m Matrix, a MatrixAnswer) bool {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if a[r][c] == 0 || a[r][c] != m.Solution[r][c] {
				return false
			}
		}
	}
	return true
}

// validatePattern compares NFC forms so that a symbol typed or pasted in
// decomposed form still matches.
func validatePattern(p Pattern, a PatternAnswer) bool {
	return norm.NFC.String(string(a)) == norm.NFC.String(p.CorrectAnswer)
}

func validateSequence(s Sequence, a SequenceAnswer) bool {
	if len(a) != len(s.Solution) {
		return false
	}
	for i, want := range s.Solution {
		if a[i] == nil || *a[i] != want {
			return false
		}
	}
	return true
}

func validateDeduction(d Deduction, a DeductionAnswer) bool {
	if len(a) != len(d.Solution) {
		return false
	}
	for person, label := range d.Solution {
		got, ok := a[person]
		if !ok || got != label {
			return false
		}
	}
	return true
}

func validateBinary(b Binary, a BinaryAnswer) bool {
	if len(a) != len(b.Solution) {
		return false
	}
	for i, want := range b.Solution {
		if a[i] != want {
			return false
		}
	}
	return true
}
