package catalog

import "errors"

// ErrNotFound is returned by Rename and Remove when no record matches the
// requested world id. Callers distinguish it from I/O failures with
// errors.Is.
var ErrNotFound = errors.New("record not found")
