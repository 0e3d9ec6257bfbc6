// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SchemeArtifact addresses an artifact by identity.
	SchemeArtifact Scheme = "artifact"
	// SchemeLink addresses a link file that redirects to another URI.
	SchemeLink Scheme = "link"
	// SchemeLocal addresses an artifact in the local preferences area.
	SchemeLocal Scheme = "local"

	illegalVersionChars = `/%\*!(@)+'{}[]?,#=`
)

// ErrInvalidURI is the sentinel error wrapped by all URI parse errors.
var ErrInvalidURI = errors.New("invalid artifact uri")

type (
	// Scheme is an artifact URI scheme.
	Scheme string

	// Artifact is a parsed artifact URI:
	//
	//	scheme:type:group/name[#version][!/internal/path]
	Artifact struct {
		scheme   Scheme
		typ      string
		group    string
		name     string
		version  string
		internal string
	}

	// InvalidURIError is returned when an artifact URI is malformed.
	InvalidURIError struct {
		URI    string
		Reason string
	}

	// UnsupportedSchemeError is returned for URIs outside the artifact, link and local schemes.
	UnsupportedSchemeError struct {
		URI    string
		Scheme string
	}

	// MissingGroupError is returned when an artifact URI does not declare a group.
	MissingGroupError struct {
		URI string
	}
)

// Error implements the error interface.
func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid artifact uri %q: %s", e.URI, e.Reason)
}

// Unwrap returns ErrInvalidURI so callers can use errors.Is for programmatic detection.
func (e *InvalidURIError) Unwrap() error { return ErrInvalidURI }

// Error implements the error interface.
func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme %q in %q (expected artifact, link or local)", e.Scheme, e.URI)
}

// Unwrap returns ErrInvalidURI so callers can use errors.Is for programmatic detection.
func (e *UnsupportedSchemeError) Unwrap() error { return ErrInvalidURI }

// Error implements the error interface.
func (e *MissingGroupError) Error() string {
	return fmt.Sprintf("artifact uri %q does not declare a group", e.URI)
}

// Unwrap returns ErrInvalidURI so callers can use errors.Is for programmatic detection.
func (e *MissingGroupError) Unwrap() error { return ErrInvalidURI }

// IsValid returns whether the scheme is one of the recognized artifact schemes.
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeArtifact, SchemeLink, SchemeLocal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Scheme.
func (s Scheme) String() string { return string(s) }

// IsArtifactURI reports whether uri uses one of the recognized artifact schemes.
func IsArtifactURI(uri string) bool {
	scheme, _, ok := strings.Cut(uri, ":")
	return ok && Scheme(scheme).IsValid()
}

// Parse parses an artifact URI.
func Parse(uri string) (Artifact, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(uri), ":")
	if !ok {
		return Artifact{}, &InvalidURIError{URI: uri, Reason: "missing scheme"}
	}
	if !Scheme(scheme).IsValid() {
		return Artifact{}, &UnsupportedSchemeError{URI: uri, Scheme: scheme}
	}

	var internal string
	if idx := strings.Index(rest, "!"); idx >= 0 {
		internal = rest[idx+1:]
		rest = rest[:idx]
		if internal == "" || internal == "/" {
			return Artifact{}, &InvalidURIError{URI: uri, Reason: "empty internal reference"}
		}
		if !strings.HasPrefix(internal, "/") {
			internal = "/" + internal
		}
	}

	ssp, version, _ := strings.Cut(rest, "#")
	if err := checkVersion(version); err != nil {
		return Artifact{}, &InvalidURIError{URI: uri, Reason: err.Error()}
	}

	if strings.Contains(ssp, "//") || strings.Contains(ssp, ":/") || strings.HasSuffix(ssp, "/") {
		return Artifact{}, &InvalidURIError{URI: uri, Reason: "malformed scheme-specific part"}
	}

	slash := strings.LastIndex(ssp, "/")
	if slash < 0 {
		return Artifact{}, &MissingGroupError{URI: uri}
	}
	head, name := ssp[:slash], ssp[slash+1:]

	typ, group, ok := strings.Cut(head, ":")
	if !ok || typ == "" {
		return Artifact{}, &InvalidURIError{URI: uri, Reason: "missing type"}
	}
	if group == "" {
		return Artifact{}, &MissingGroupError{URI: uri}
	}
	if name == "" {
		return Artifact{}, &InvalidURIError{URI: uri, Reason: "missing name"}
	}

	return Artifact{
		scheme:   Scheme(scheme),
		typ:      typ,
		group:    group,
		name:     name,
		version:  version,
		internal: internal,
	}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(uri string) Artifact {
	a, err := Parse(uri)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Artifact) Scheme() Scheme   { return a.scheme }
func (a Artifact) Type() string     { return a.typ }
func (a Artifact) Group() string    { return a.group }
func (a Artifact) Name() string     { return a.name }
func (a Artifact) Version() string  { return a.version }
func (a Artifact) Internal() string { return a.internal }

// IsInternal reports whether the URI addresses an entry inside an archive artifact.
func (a Artifact) IsInternal() bool { return a.internal != "" }

// IsLink reports whether the URI uses the link scheme.
func (a Artifact) IsLink() bool { return a.scheme == SchemeLink }

// Info returns the identity addressed by the URI, typed with the URI type.
func (a Artifact) Info() Info {
	return Info{
		group:   a.group,
		name:    a.name,
		version: a.version,
		types:   []string{a.typ},
	}
}

// WithScheme returns a copy of a using the given scheme.
func (a Artifact) WithScheme(s Scheme) Artifact {
	a.scheme = s
	return a
}

// WithType returns a copy of a addressing a different type facet.
func (a Artifact) WithType(typ string) Artifact {
	a.typ = typ
	return a
}

// WithoutInternal returns a copy of a addressing the enclosing archive.
func (a Artifact) WithoutInternal() Artifact {
	a.internal = ""
	return a
}

// String renders the canonical URI.
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(string(a.scheme))
	b.WriteByte(':')
	b.WriteString(a.typ)
	b.WriteByte(':')
	b.WriteString(a.group)
	b.WriteByte('/')
	b.WriteString(a.name)
	if a.version != "" {
		b.WriteByte('#')
		b.WriteString(a.version)
	}
	if a.internal != "" {
		b.WriteByte('!')
		b.WriteString(a.internal)
	}
	return b.String()
}

func checkVersion(version string) error {
	if i := strings.IndexAny(version, illegalVersionChars); i >= 0 {
		return fmt.Errorf("illegal character %q in version %q", version[i], version)
	}
	if strings.ContainsAny(version, " \t\r\n") {
		return fmt.Errorf("whitespace in version %q", version)
	}
	return nil
}
