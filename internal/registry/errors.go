package registry

import "errors"

// Errors
var (
	// ErrNoSuchClient is returned by Deliver when the target id is not
	// currently registered.
	ErrNoSuchClient = errors.New("no such client")
)
