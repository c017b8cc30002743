package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	// ErrStaleStatus is returned by guarded status updates when the row is no longer in
	// the expected state, i.e. the transition precondition failed.
	ErrStaleStatus = errors.New("status precondition failed")
)
