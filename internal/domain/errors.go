package domain

import "errors"

var (
	// ErrResourceNotFound is returned when a resource ID is not in the graph
	ErrResourceNotFound = errors.New("resource not found")

	// ErrMalformedEvidence is returned when a single evidence item fails to parse
	ErrMalformedEvidence = errors.New("malformed evidence")

	// ErrCollectorUnavailable is returned when an evidence collector call fails
	ErrCollectorUnavailable = errors.New("collector unavailable")

	// ErrInvalidParameter is returned for out-of-range caller input
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData is returned when a trend or prediction cannot be computed
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnknownScenario is returned for unrecognised scenario kinds
	ErrUnknownScenario = errors.New("unknown scenario kind")
)
