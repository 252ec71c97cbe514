package repositories

import "errors"

// ErrNotFound is returned, wrapped with context, when a record does not exist.
var ErrNotFound = errors.New("record not found")
