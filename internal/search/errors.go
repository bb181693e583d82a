package search

import "errors"

// ErrNoActiveComponents is returned when a request has no active component
// left after parsing. No search is started.
var ErrNoActiveComponents = errors.New("search: no active components")

// ErrInvalidTarget reports a missing, non-finite or non-positive target value.
var ErrInvalidTarget = errors.New("search: target must be a positive finite value")

// ErrInvalidChunk reports a chunk index outside [0, count) or a count below 1.
var ErrInvalidChunk = errors.New("search: invalid chunk spec")

// ErrInvalidRatio reports a divider ratio outside (0, 1).
var ErrInvalidRatio = errors.New("search: divider ratio must be between 0 and 1")
