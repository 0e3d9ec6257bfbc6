// SPDX-License-Identifier: MPL-2.0

package part

import (
	"errors"
	"fmt"
)

// Stages of a part load, in order.
const (
	StageRead      Stage = "read"
	StageNamespace Stage = "namespace"
	StageClasspath Stage = "classpath"
	StageStructure Stage = "structure"
	StageStrategy  Stage = "strategy"
)

var (
	// ErrDecoding is the sentinel matched by every descriptor decoding failure.
	ErrDecoding = errors.New("part decoding error")
	// ErrUnknownPlugin is returned when a plugin class has no registered factory.
	ErrUnknownPlugin = errors.New("unknown plugin class")
	// ErrHandlerCycle is returned when resolving a strategy handler needs the
	// part being loaded, directly or through other handler parts.
	ErrHandlerCycle = errors.New("cyclic handler reference")
	// ErrNotInstantiable is returned when a part strategy cannot be instantiated.
	ErrNotInstantiable = errors.New("part is not instantiable")
)

type (
	// Stage names the step of a part load at which a failure occurred.
	Stage string

	// DecodingError reports a malformed descriptor or a strategy that could not be resolved.
	DecodingError struct {
		Stage   Stage
		URI     string
		Element string
		Reason  string
		Err     error
	}

	// UnrecognizedNamespaceError is returned when the descriptor root is not a
	// part element in the urn:depot:part namespace.
	UnrecognizedNamespaceError struct {
		URI       string
		Namespace string
		Element   string
	}

	// UnknownPluginError is returned when instantiating a plugin whose class has no factory.
	UnknownPluginError struct {
		Class string
	}
)

// Error implements the error interface.
func (e *DecodingError) Error() string {
	msg := fmt.Sprintf("decode part %s (%s)", e.URI, e.Stage)
	if e.Element != "" {
		msg += fmt.Sprintf(" <%s>", e.Element)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrDecoding and the underlying cause.
func (e *DecodingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecoding}
	}
	return []error{ErrDecoding, e.Err}
}

// Error implements the error interface.
func (e *UnrecognizedNamespaceError) Error() string {
	return fmt.Sprintf("decode part %s: root <%s> namespace %q not recognized (expecting %q)",
		e.URI, e.Element, e.Namespace, Namespace)
}

// Unwrap returns ErrDecoding.
func (e *UnrecognizedNamespaceError) Unwrap() error { return ErrDecoding }

// Error implements the error interface.
func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("plugin class %q is not registered", e.Class)
}

// Unwrap returns ErrUnknownPlugin.
func (e *UnknownPluginError) Unwrap() error { return ErrUnknownPlugin }
