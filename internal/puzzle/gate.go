package puzzle

import "fmt"

// GateKind is a boolean logic gate.
type GateKind string

const (
	GateAND  GateKind = "AND"
	GateOR   GateKind = "OR"
	GateXOR  GateKind = "XOR"
	GateNOT  GateKind = "NOT"
	GateNAND GateKind = "NAND"
	GateNOR  GateKind = "NOR"
)

// Gate is one question in a Binary puzzle.
type Gate struct {
	Inputs   []bool   `json:"inputs"`
	Kind     GateKind `json:"gate"`
	Expected bool     `json:"expected"`
}

// Eval computes the gate output for inputs.
//
// NOT takes exactly one input; the others take one or more and fold
// left to right (XOR is odd parity).
func (k GateKind) Eval(inputs []bool) (bool, error) {
	if len(inputs) == 0 {
		return false, fmt.Errorf("gate %s: no inputs", k)
	}

	switch k {
	case GateNOT:
		if len(inputs) != 1 {
			return false, fmt.Errorf("gate NOT: want 1 input, got %d", len(inputs))
		}
		return !inputs[0], nil
	case GateAND, GateNAND:
		out := true
		for _, in := range inputs {
			out = out && in
		}
		if k == GateNAND {
			return !out, nil
		}
		return out, nil
	case GateOR, GateNOR:
		out := false
		for _, in := range inputs {
			out = out || in
		}
		if k == GateNOR {
			return !out, nil
		}
		return out, nil
	case GateXOR:
		out := false
		for _, in := range inputs {
			out = out != in
		}
		return out, nil
	}
	return false, fmt.Errorf("unknown gate %q", k)
}
