package submission

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/scoring"
	"github.com/roach88/looper/internal/signature"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "submission.json"

// Gate decides whether a submission is accepted.
//
// Checks run in a fixed order and the first failure wins:
//
//  1. shape (JSON schema, real calendar date)
//  2. signature
//  3. date not in the future
//  4. score within [0, MaxScore(difficulty)]
//  5. time within [MinTime(difficulty), 3600]
//  6. hints within [0, 3]
//
// Every failure is a VALIDATION or SIGNATURE fault whose message can be
// returned to the client as is.
type Gate struct {
	signer *signature.Signer
	clock  clock.Clock
	schema *jsonschema.Schema
}

// NewGate compiles the submission schema and returns a gate.
func NewGate(signer *signature.Signer, c clock.Clock) (*Gate, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse submission schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add submission schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile submission schema: %w", err)
	}
	if c == nil {
		c = clock.System{}
	}
	return &Gate{signer: signer, clock: c, schema: sch}, nil
}

// CheckJSON validates a raw JSON submission and decodes it.
func (g *Gate) CheckJSON(raw []byte) (Submission, error) {
	if err := g.checkShape(raw); err != nil {
		return Submission{}, err
	}
	var sub Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return Submission{}, fault.Validationf("submission.check", "malformed submission: %v", err)
	}
	if err := g.checkRules(sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Check validates an already decoded submission.
func (g *Gate) Check(sub Submission) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return fault.Validationf("submission.check", "malformed submission: %v", err)
	}
	if err := g.checkShape(raw); err != nil {
		return err
	}
	return g.checkRules(sub)
}

func (g *Gate) checkShape(raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fault.Validationf("submission.check", "malformed submission: %v", err)
	}
	if err := g.schema.Validate(inst); err != nil {
		return fault.Validationf("submission.check", "invalid submission shape: %v", err)
	}
	return nil
}

func (g *Gate) checkRules(sub Submission) error {
	const op = "submission.check"

	if _, err := puzzle.ParseDate(sub.Date); err != nil {
		return fault.Validation(op, "invalid date format. Use YYYY-MM-DD")
	}

	if !g.signer.Verify(sub.Fields(), sub.Signature) {
		return fault.Signature(op)
	}

	// Both sides are YYYY-MM-DD, so string order is date order.
	if sub.Date > clock.Today(g.clock) {
		return fault.Validation(op, "future dates not allowed")
	}

	maxScore := scoring.MaxScore(sub.Difficulty)
	if sub.Score < 0 || sub.Score > maxScore {
		return fault.Validationf(op, "invalid score range. Max: %d", maxScore)
	}

	minTime := scoring.MinTime(sub.Difficulty)
	if sub.TimeTaken < minTime {
		return fault.Validationf(op, "unrealistic completion time. Min: %ds", minTime)
	}
	if sub.TimeTaken > scoring.MaxTime {
		return fault.Validation(op, "time taken exceeds maximum (1 hour)")
	}

	if sub.HintsUsed < 0 || sub.HintsUsed > scoring.MaxHints {
		return fault.Validation(op, "invalid hints count (0-3 allowed)")
	}

	return nil
}
