package datasets

import "errors"

var (
	// ErrMissingSourceData is returned when a subject file cannot be read or
	// lacks one of the required columns.
	ErrMissingSourceData = errors.New("missing source data")

	// ErrLabelInvariant is returned when a timestep does not carry exactly one
	// active label, or a stored label id falls outside the label alphabet.
	ErrLabelInvariant = errors.New("label invariant violation")

	// ErrCacheCorrupt is returned when a cache blob exists but cannot be
	// decoded into consistent arrays.
	ErrCacheCorrupt = errors.New("cache corrupt")

	// ErrIndexOutOfRange is returned by indexed dataset access.
	ErrIndexOutOfRange = errors.New("index out of range")
)
