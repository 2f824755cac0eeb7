package signature

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() Fields {
	return Fields{
		Date:      "2026-02-14",
		PuzzleID:  "matrix-2026-02-14",
		Score:     250,
		TimeTaken: 45,
		HintsUsed: 1,
	}
}

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner("test-secret")
	require.NoError(t, err)
	return s
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "2026-02-14|matrix-2026-02-14|250|45|1", Canonical(sampleFields()))
}

func TestSignKnownVector(t *testing.T) {
	s := newTestSigner(t)
	assert.Equal(t,
		"f283355a3c44212aa7ea23fdec35698cabfd094abd17a59f89de699bc5516998",
		s.Sign(sampleFields()))
}

func TestNewSignerRejectsEmptySecret(t *testing.T) {
	s, err := NewSigner("")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestVerify(t *testing.T) {
	s := newTestSigner(t)
	f := sampleFields()
	sig := s.Sign(f)

	assert.True(t, s.Verify(f, sig))

	tampered := f
	tampered.Score = 251
	assert.False(t, s.Verify(tampered, sig))

	assert.False(t, s.Verify(f, ""))
	assert.False(t, s.Verify(f, "not-hex"))
	assert.False(t, s.Verify(f, sig[:len(sig)-2]))
}

func TestVerifyDifferentSecret(t *testing.T) {
	a := newTestSigner(t)
	b, err := NewSigner("other-secret")
	require.NoError(t, err)

	assert.False(t, b.Verify(sampleFields(), a.Sign(sampleFields())))
}

func TestPropertyAnyFieldChangeBreaksSignature(t *testing.T) {
	s := newTestSigner(t)
	properties := gopter.NewProperties(nil)

	properties.Property("signature round-trips", prop.ForAll(
		func(score, tm, hints int) bool {
			f := sampleFields()
			f.Score, f.TimeTaken, f.HintsUsed = score, tm, hints
			return s.Verify(f, s.Sign(f))
		},
		gen.IntRange(0, 400),
		gen.IntRange(0, 3600),
		gen.IntRange(0, 3),
	))

	properties.Property("mutating a signed field invalidates", prop.ForAll(
		func(field, delta int) bool {
			f := sampleFields()
			sig := s.Sign(f)
			switch field {
			case 0:
				f.Score += delta
			case 1:
				f.TimeTaken += delta
			case 2:
				f.HintsUsed += delta
			case 3:
				f.Date = "2026-02-15"
			case 4:
				f.PuzzleID = "pattern-2026-02-15"
			}
			return !s.Verify(f, sig)
		},
		gen.IntRange(0, 4),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t)
}
