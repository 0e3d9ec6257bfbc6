// SPDX-License-Identifier: MPL-2.0

package transit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArtifactNotFound is the sentinel error wrapped by ArtifactNotFoundError.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrCache is matched by every CacheError.
	ErrCache = errors.New("cache error")
	// ErrUnknownLayout is the sentinel error wrapped by UnknownLayoutError.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrArtifactExists is returned when installing over an existing artifact.
	ErrArtifactExists = errors.New("artifact already exists")
	// ErrInvalidDirective is returned by directive validation.
	ErrInvalidDirective = errors.New("invalid directive")

	// errNotFound is returned by hosts for missing resources.
	errNotFound = errors.New("not found")
)

type (
	// ArtifactNotFoundError is returned when no host could supply an artifact.
	// Cause is the last transport failure, if any host failed rather than
	// reporting the artifact missing.
	ArtifactNotFoundError struct {
		URI   string
		Hosts []string
		Cause error
	}

	// CacheError reports an I/O failure while materializing a cached artifact.
	CacheError struct {
		Op   string
		Path string
		Err  error
	}

	// UnknownLayoutError is returned when a layout id is not registered.
	UnknownLayoutError struct {
		ID string
	}
)

// Error implements the error interface.
func (e *ArtifactNotFoundError) Error() string {
	msg := fmt.Sprintf("artifact %s not found (no eligible hosts)", e.URI)
	if len(e.Hosts) > 0 {
		msg = fmt.Sprintf("artifact %s not found (hosts consulted: %s)", e.URI, strings.Join(e.Hosts, ", "))
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrArtifactNotFound and the transport failure, if any.
func (e *ArtifactNotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrArtifactNotFound}
	}
	return []error{ErrArtifactNotFound, e.Cause}
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *CacheError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCache.
func (e *CacheError) Is(target error) bool { return target == ErrCache }

// Error implements the error interface.
func (e *UnknownLayoutError) Error() string {
	return fmt.Sprintf("unknown layout %q", e.ID)
}

// Unwrap returns ErrUnknownLayout so callers can use errors.Is for programmatic detection.
func (e *UnknownLayoutError) Unwrap() error { return ErrUnknownLayout }
