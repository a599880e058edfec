package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrStatusConflict is returned when a conditional status update matched no row
// because the record was not in the expected state.
var ErrStatusConflict = errors.New("status precondition not met")

// ErrLimitReached is returned when a participant already holds the maximum
// number of entries allowed for a configuration.
var ErrLimitReached = errors.New("participant entry limit reached")

// ErrEntriesClosed is returned when an entry targets a configuration that is
// no longer scheduled.
var ErrEntriesClosed = errors.New("configuration no longer accepts entries")

// ErrAlreadyWon is returned when a replacement winner already holds a live
// win that the configuration's rules forbid them from holding twice.
var ErrAlreadyWon = errors.New("participant already holds a live win")
