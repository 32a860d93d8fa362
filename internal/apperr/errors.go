// Package apperr defines the sentinel errors the CLI layer maps to exit
// codes. These are exactly the "global, surfaced" half of spec.md §7's error
// taxonomy - everything else (framing misses, decompression failures, schema
// misses, proto parse errors) is local and never reaches this package.
package apperr

import "errors"

var (
	// ErrInputNotFound means the capture or JSONL input path does not exist
	// or could not be opened.
	ErrInputNotFound = errors.New("input file not found")

	// ErrInputTooLarge means the input exceeds its command's size cap (100
	// MiB for combat/trade captures, 50 MiB for the DPS reducer's JSONL).
	ErrInputTooLarge = errors.New("input exceeds the maximum allowed size")

	// ErrListingsEmpty means a trade-decode run completed but found zero
	// listings - a clean run, not a usage error, but still surfaced with a
	// nonzero exit so callers can distinguish it from "found some".
	ErrListingsEmpty = errors.New("no trading listings found in capture")

	// ErrReducerParse means a JSONL line failed to parse. Unlike the local
	// errors the decoder swallows, a malformed decoded record aborts the
	// reducer run entirely, to avoid masking upstream bugs.
	ErrReducerParse = errors.New("malformed decoded record")

	// ErrNoItemSources means update-items found no readable candidate source
	// file among the ones it was given or the defaults it probed.
	ErrNoItemSources = errors.New("no item mapping sources found")

	// ErrOutputIsDirectory means the requested output path already exists as
	// a directory.
	ErrOutputIsDirectory = errors.New("output path is a directory")
)
