package correction

import "errors"

// Correction domain errors
var (
	ErrEntryNotFound = errors.New("correction entry not found")
	ErrEmptyChanges  = errors.New("correction must change at least one field")
)
