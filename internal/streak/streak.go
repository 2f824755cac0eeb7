// Package streak tracks consecutive days played.
//
// A streak counts calendar dates, not 24-hour periods. Dates are compared
// as UTC midnights so daylight-saving shifts never change a day count.
package streak

import (
	"fmt"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// State is one player's streak record.
type State struct {
	CurrentStreak  int      `json:"currentStreak"`
	LongestStreak  int      `json:"longestStreak"`
	LastPlayedDate string   `json:"lastPlayedDate,omitempty"`
	PlayedDates    []string `json:"playedDates"`
}

// Played reports whether date is in the played set.
func (s State) Played(date string) bool {
	_, found := slices.BinarySearch(s.PlayedDates, date)
	return found
}

// Next returns the streak after completing a puzzle on completion, given
// the previous lastPlayed date and current streak.
//
//	no previous date       -> 1
//	same day               -> current (a replay never double counts)
//	exactly one day later  -> current + 1
//	anything else          -> 1 (a gap, or a completion dated in the past)
func Next(lastPlayed string, current int, completion string) (int, error) {
	done, err := parseDate(completion)
	if err != nil {
		return 0, err
	}
	if lastPlayed == "" {
		return 1, nil
	}
	last, err := parseDate(lastPlayed)
	if err != nil {
		return 0, err
	}

	switch daysBetween(last, done) {
	case 0:
		return current, nil
	case 1:
		return current + 1, nil
	}
	return 1, nil
}

// Apply records a completion and returns the new state. s is not modified.
func Apply(s State, completion string) (State, error) {
	current, err := Next(s.LastPlayedDate, s.CurrentStreak, completion)
	if err != nil {
		return s, fmt.Errorf("apply streak: %w", err)
	}

	out := State{
		CurrentStreak:  current,
		LongestStreak:  max(s.LongestStreak, current),
		LastPlayedDate: completion,
		PlayedDates:    slices.Clone(s.PlayedDates),
	}
	if i, found := slices.BinarySearch(out.PlayedDates, completion); !found {
		out.PlayedDates = slices.Insert(out.PlayedDates, i, completion)
	}
	if out.PlayedDates == nil {
		out.PlayedDates = []string{}
	}
	return out, nil
}

// Day is one cell of a heatmap.
type Day struct {
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

// Heatmap lists every date from from to to inclusive with its played flag.
func Heatmap(s State, from, to string) ([]Day, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("heatmap: %s is before %s", to, from)
	}

	days := make([]Day, 0, daysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		days = append(days, Day{Date: date, Played: s.Played(date)})
	}
	return days, nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	return t, nil
}

// daysBetween counts calendar days from a to b. Both are UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
