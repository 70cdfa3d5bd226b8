package entities

import "errors"

// ErrNotFound is returned by writes that target a row which does not exist.
// Reads report absence with a nil result instead.
var ErrNotFound = errors.New("record not found")
