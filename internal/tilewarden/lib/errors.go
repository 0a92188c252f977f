// Package lib contains the core, reusable services for the tilewarden application.
package lib

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a CDN listing holds no versions for the
// requested area. Callers abort that area and move on.
var ErrNotFound = errors.New("no versions found")

// TransientFetchError wraps a network or remote-listing failure. These are
// local to the area being processed; a multi-area run logs them and
// continues with the next area.
type TransientFetchError struct {
	URL string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch error for %s: %v", e.URL, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// InsufficientSpaceError is returned by the disk-space preflight when the
// staging filesystem lacks the required headroom. It carries both byte
// counts for operator diagnostics.
type InsufficientSpaceError struct {
	Free     uint64
	Required uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("not enough disk space: %.1fGB free, %.1fGB needed",
		float64(e.Free)/(1<<30), float64(e.Required)/(1<<30))
}

// ExternalToolFailure wraps a non-zero exit (or spawn failure) of one of
// the external tools the pipeline shells out to. The failing tool's exit
// status is the whole contract; no structured output is consumed.
type ExternalToolFailure struct {
	Tool string
	Err  error
}

func (e *ExternalToolFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExternalToolFailure) Unwrap() error { return e.Err }
