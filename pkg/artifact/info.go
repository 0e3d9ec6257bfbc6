// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidIdentity is the sentinel error wrapped by InvalidIdentityError.
var ErrInvalidIdentity = errors.New("invalid artifact identity")

type (
	// Info is the identity of an artifact. The zero value is not a valid identity;
	// use NewInfo or ParseInfo.
	//
	// Two Info values are equal when group, name and version match. Types are
	// facets of the same artifact and do not take part in equality.
	Info struct {
		group   string
		name    string
		version string
		types   []string
	}

	// InvalidIdentityError is returned when an identity is missing a group,
	// a name or a type, or when one of them contains a URI delimiter.
	InvalidIdentityError struct {
		Group  string
		Name   string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid artifact identity %s/%s: %s", e.Group, e.Name, e.Reason)
}

// Unwrap returns ErrInvalidIdentity so callers can use errors.Is for programmatic detection.
func (e *InvalidIdentityError) Unwrap() error { return ErrInvalidIdentity }

// NewInfo creates an identity. An empty version means the artifact is unversioned.
// At least one type is required; the first type is the primary type.
func NewInfo(group, name, version string, types ...string) (Info, error) {
	group = strings.TrimSpace(group)
	name = strings.TrimSpace(name)
	switch {
	case group == "":
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: "group is required"}
	case name == "":
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: "name is required"}
	case len(types) == 0:
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: "at least one type is required"}
	}
	if reason := checkGroup(group); reason != "" {
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: reason}
	}
	if strings.ContainsAny(name, "/#!:") {
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: "name must not contain '/', '#', '!' or ':'"}
	}
	trimmed := make([]string, len(types))
	for i, t := range types {
		t = strings.TrimSpace(t)
		switch {
		case t == "":
			return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: "type must not be empty"}
		case strings.ContainsAny(t, "/#!:"):
			return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: fmt.Sprintf("type %q must not contain '/', '#', '!' or ':'", t)}
		}
		trimmed[i] = t
	}
	if err := checkVersion(version); err != nil {
		return Info{}, &InvalidIdentityError{Group: group, Name: name, Reason: err.Error()}
	}

	return Info{
		group:   group,
		name:    name,
		version: version,
		types:   trimmed,
	}, nil
}

// checkGroup returns why group cannot appear in an artifact URI, or "".
func checkGroup(group string) string {
	switch {
	case strings.ContainsAny(group, "#!:"):
		return "group must not contain '#', '!' or ':'"
	case strings.HasPrefix(group, "/"), strings.HasSuffix(group, "/"):
		return "group must not start or end with '/'"
	case strings.Contains(group, "//"):
		return "group must not contain empty segments"
	}
	return ""
}

// MustInfo is like NewInfo but panics on error. Intended for tests and static tables.
func MustInfo(group, name, version string, types ...string) Info {
	info, err := NewInfo(group, name, version, types...)
	if err != nil {
		panic(err)
	}
	return info
}

// ParseInfo parses an artifact URI into a single-typed identity.
func ParseInfo(uri string) (Info, error) {
	a, err := Parse(uri)
	if err != nil {
		return Info{}, err
	}
	return a.Info(), nil
}

func (i Info) Group() string   { return i.group }
func (i Info) Name() string    { return i.name }
func (i Info) Version() string { return i.version }

// Types returns a copy of the declared types in declaration order.
func (i Info) Types() []string { return slices.Clone(i.types) }

// Type returns the primary (first declared) type.
func (i Info) Type() string {
	if len(i.types) == 0 {
		return ""
	}
	return i.types[0]
}

// Isa reports whether the artifact declares the given type.
func (i Info) Isa(typ string) bool {
	return slices.Contains(i.types, typ)
}

// IsZero reports whether i is the zero value.
func (i Info) IsZero() bool {
	return i.group == "" && i.name == "" && len(i.types) == 0
}

// ShortFilename returns name[-version].
func (i Info) ShortFilename() string {
	if i.version == "" {
		return i.name
	}
	return i.name + "-" + i.version
}

// Filename returns name[-version].type for the given type, or for the primary
// type when typ is empty.
func (i Info) Filename(typ string) string {
	if typ == "" {
		typ = i.Type()
	}
	return i.ShortFilename() + "." + typ
}

// Path returns the classic cache-relative path group/{type}s/name[-version].type.
func (i Info) Path(typ string) string {
	if typ == "" {
		typ = i.Type()
	}
	return i.group + "/" + typ + "s/" + i.Filename(typ)
}

// URI returns artifact:{type}:{group}/{name}[#version].
func (i Info) URI(typ string) string {
	if typ == "" {
		typ = i.Type()
	}
	return string(SchemeArtifact) + ":" + typ + ":" + i.Spec()
}

// URIs returns the artifact URI for every declared type.
func (i Info) URIs() []string {
	uris := make([]string, 0, len(i.types))
	for _, t := range i.types {
		uris = append(uris, i.URI(t))
	}
	return uris
}

// Spec returns {group}/{name}[#version].
func (i Info) Spec() string {
	if i.version == "" {
		return i.group + "/" + i.name
	}
	return i.group + "/" + i.name + "#" + i.version
}

// DocPath returns {group}/{name}[/{version}].
func (i Info) DocPath() string {
	if i.version == "" {
		return i.group + "/" + i.name
	}
	return i.group + "/" + i.name + "/" + i.version
}

// Equal reports whether both identities name the same artifact.
func (i Info) Equal(other Info) bool {
	return i.group == other.group && i.name == other.name && i.version == other.version
}

// String returns the spec form of the identity.
func (i Info) String() string { return i.Spec() }
