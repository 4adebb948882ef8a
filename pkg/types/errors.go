package types

import "errors"

// Domain errors for dictionary types
var (
	// Metadata errors
	ErrMissingLanguagePair = errors.New("language pair code is required")
	ErrInvalidLanguagePair = errors.New("language pair code must look like XX-XX")
	ErrMissingTimestamp    = errors.New("timestamp is required")
)

// ErrImportInProgress is returned when an import is requested while
// another one holds the import lock
var ErrImportInProgress = errors.New("import already running")
