package dashboard

import "errors"

// Sentinel errors for dashboard operations.
var (
	ErrNotFound   = errors.New("task not found")
	ErrNoSnapshot = errors.New("no snapshot available yet")
	ErrUpstream   = errors.New("upstream fetch failed")
)
