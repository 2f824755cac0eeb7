// Package submission defines the signed score submission and both ends of
// its transport: the validation Gate and HTTP Server that accept scores,
// and the HTTP Client the sync queue uses to send them.
package submission

import (
	"github.com/roach88/looper/internal/puzzle"
	"github.com/roach88/looper/internal/signature"
)

// Submission is a completed puzzle as sent to the server.
// It is immutable once signed.
type Submission struct {
	Date       string            `json:"date"`
	PuzzleID   string            `json:"puzzleId"`
	PuzzleType puzzle.Category   `json:"puzzleType"`
	Score      int               `json:"score"`
	TimeTaken  int               `json:"timeTaken"`
	HintsUsed  int               `json:"hintsUsed"`
	Difficulty puzzle.Difficulty `json:"difficulty"`
	Signature  string            `json:"signature"`
}

// Fields returns the signed subset of s.
func (s Submission) Fields() signature.Fields {
	return signature.Fields{
		Date:      s.Date,
		PuzzleID:  s.PuzzleID,
		Score:     s.Score,
		TimeTaken: s.TimeTaken,
		HintsUsed: s.HintsUsed,
	}
}

// Signed returns a copy of s carrying signer's signature.
func (s Submission) Signed(signer *signature.Signer) Submission {
	s.Signature = signer.Sign(s.Fields())
	return s
}

// ForPuzzle builds an unsigned submission for a solved puzzle.
func ForPuzzle(p puzzle.Puzzle, score, timeTaken, hintsUsed int) Submission {
	return Submission{
		Date:       p.Date,
		PuzzleID:   p.ID,
		PuzzleType: p.Category,
		Score:      score,
		TimeTaken:  timeTaken,
		HintsUsed:  hintsUsed,
		Difficulty: p.Difficulty,
	}
}
