package repository

import "errors"

// ErrNotFound is returned by single-row reads, updates and deletes
// when the id does not exist in the store.
var ErrNotFound = errors.New("not found")
