package puzzle

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// DateLayout is the only accepted puzzle date format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	return t, nil
}

// Seed derives the generator seed for a date: the first 8 hex digits of
// SHA-256(date) read as an unsigned integer.
//
// The date string is hashed as given; callers must pass the canonical
// YYYY-MM-DD form for cross-process agreement.
func Seed(date string) uint32 {
	sum := sha256.Sum256([]byte(date))
	// 8 hex digits are exactly the first 4 bytes, big-endian.
	return binary.BigEndian.Uint32(sum[:4])
}

// DayOfYear returns the 1-based day of year for a date.
func DayOfYear(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.YearDay(), nil
}
