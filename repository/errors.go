package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate it to a 404; everything else is an internal fault.
var ErrNotFound = errors.New("not found")
