// SPDX-License-Identifier: MPL-2.0

package library

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownResource is the sentinel error wrapped by UnknownResourceError.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrDuplicateResource is returned when two declarations share a key.
	ErrDuplicateResource = errors.New("duplicate resource")
)

type (
	// UnknownResourceError is returned when a key does not name a resource in the index.
	// Referrer is the key of the resource holding the reference, if any.
	UnknownResourceError struct {
		Key      string
		Referrer string
	}

	// UnresolvableModuleError is returned when a resource's enclosing module key
	// does not resolve.
	UnresolvableModuleError struct {
		Resource string
		Module   string
		Err      error
	}
)

// Error implements the error interface.
func (e *UnknownResourceError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown resource %q", e.Key)
	}
	return fmt.Sprintf("unknown resource %q referenced by %q", e.Key, e.Referrer)
}

// Unwrap returns ErrUnknownResource so callers can use errors.Is for programmatic detection.
func (e *UnknownResourceError) Unwrap() error { return ErrUnknownResource }

// Error implements the error interface.
func (e *UnresolvableModuleError) Error() string {
	return fmt.Sprintf("resource %q declares an unresolvable enclosing module %q: %v", e.Resource, e.Module, e.Err)
}

// Unwrap returns the resolution failure.
func (e *UnresolvableModuleError) Unwrap() error { return e.Err }
