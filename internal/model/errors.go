package model

import "errors"

// Error kinds raised while parsing and aggregating. Parse failures are always
// wrapped with context; compare with errors.Is or unwrap with errors.Cause.
var (
	// ErrGrammarMismatch is returned when a line does not match the CLF pattern.
	ErrGrammarMismatch = errors.New("no grammar match")

	// ErrMalformedTimestamp is returned when a timestamp field is not numeric
	// or does not form a valid calendar date.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrUnknownMonth is returned for a month abbreviation outside Jan..Dec.
	ErrUnknownMonth = errors.New("unknown month")

	// ErrMalformedContentSize is returned when the size field is neither "-"
	// nor a non-negative integer.
	ErrMalformedContentSize = errors.New("malformed content size")

	// ErrEmptyDataset is returned by statistics that are undefined without records.
	ErrEmptyDataset = errors.New("empty dataset")
)
