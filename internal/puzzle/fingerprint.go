package puzzle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// DomainPuzzle is the hash domain for puzzle fingerprints.
// The version suffix allows a future change of encoding.
const DomainPuzzle = "looper/puzzle/v1"

// Canonical returns the RFC 8785 canonical JSON encoding of p.
//
// Two puzzles are the same puzzle exactly when their canonical encodings
// are byte-equal. This is the form used for golden files and fingerprints.
func Canonical(p Puzzle) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	return out, nil
}

// Fingerprint returns the domain-separated SHA-256 of p's canonical JSON.
func Fingerprint(p Puzzle) (string, error) {
	canonical, err := Canonical(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", p.ID, err)
	}
	return hashWithDomain(DomainPuzzle, canonical), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
