// Package puzzle is the deterministic daily puzzle engine.
//
// A calendar date fully determines the puzzle served for it:
//
//	date ──Seed──▶ seed ──NewRNG──▶ generator ──▶ Puzzle
//	  └──CategoryFor──▶ category ──┘
//
// The category rotates by day of year through matrix, pattern, sequence,
// deduction and binary. The seed is derived from SHA-256 of the date string
// and drives a small linear-congruential generator, so every process that
// generates the puzzle for a date gets a byte-identical result.
//
// Each Puzzle carries a Payload, a closed set of variants (Matrix, Pattern,
// Sequence, Deduction, Binary) holding both what the player sees and the
// hidden solution. Generate and Validate switch exhaustively on the variant;
// unknown variants fail closed.
//
// Everything in this package is pure and safe to call concurrently.
package puzzle
