package store

import "errors"

// Sentinel errors surfaced by repositories and persistence services.
// Check with errors.Is.
var (
	// ErrNotFound indicates the referenced aggregate id is absent from the
	// materialized store. Recoverable by the caller.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateName indicates a user rename would collide with another
	// stored user's name. Rejected before any write. Recoverable.
	ErrDuplicateName = errors.New("store: duplicate name")

	// ErrConsistencyViolation indicates a completed removal left data behind,
	// so the projection no longer matches what the event log implies. Fatal;
	// never retried.
	ErrConsistencyViolation = errors.New("store: consistency violation")
)
