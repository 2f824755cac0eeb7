// Package signature signs and verifies score submissions with HMAC-SHA256.
//
// The signature binds exactly five fields:
//
//	date|puzzleId|score|timeTaken|hintsUsed
//
// Integers are written in base 10 with no padding. Any change to one of
// those fields invalidates the signature; fields outside that list
// (puzzle type, difficulty) are not covered.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ErrEmptySecret is returned when a Signer is built without a secret.
// There is no default secret.
var ErrEmptySecret = errors.New("signature: HMAC secret is empty")

// Fields are the signed parts of a submission.
type Fields struct {
	Date      string
	PuzzleID  string
	Score     int
	TimeTaken int
	HintsUsed int
}

// Canonical returns the string that is signed for f.
func Canonical(f Fields) string {
	var b strings.Builder
	b.WriteString(f.Date)
	b.WriteByte('|')
	b.WriteString(f.PuzzleID)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.Score))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.TimeTaken))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.HintsUsed))
	return b.String()
}

// Signer holds the shared secret. It is safe for concurrent use.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer for secret, or ErrEmptySecret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of Canonical(f).
func (s *Signer) Sign(f Fields) string {
	return hex.EncodeToString(s.mac(f))
}

// Verify reports whether sig is the signature of f.
// The comparison is constant time; a malformed hex string never verifies.
func (s *Signer) Verify(f Fields, sig string) bool {
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(f))
}

func (s *Signer) mac(f Fields) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(Canonical(f)))
	return m.Sum(nil)
}
