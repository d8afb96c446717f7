package fractile

import "errors"

// Errors returned when a request or renderer configuration is rejected.
// They are wrapped with the offending value; test with errors.Is.
var (
	// ErrEscapeRadius is returned for an escape radius below MinEscapeRadius.
	// Smaller radii push the inner logarithm of the smoothing formula to or
	// below zero, which produces non-finite colour indices.
	ErrEscapeRadius = errors.New("fractile: escape radius must be at least 3")

	// ErrSideLength is returned for tiles with fewer than two pixels per side.
	ErrSideLength = errors.New("fractile: side length must be at least 2")

	// ErrExponent is returned for exponents below 2.
	ErrExponent = errors.New("fractile: exponent must be at least 2")

	// ErrNonFinite is returned when a tile coordinate or zoom is NaN or infinite.
	ErrNonFinite = errors.New("fractile: tile coordinates must be finite")

	// ErrSupersample is returned for a supersampling factor outside [1, MaxSupersample].
	ErrSupersample = errors.New("fractile: invalid supersampling factor")
)
