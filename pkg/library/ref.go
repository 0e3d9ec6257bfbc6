// SPDX-License-Identifier: MPL-2.0

package library

import (
	"fmt"
	"strings"
)

// KeyPrefix marks a value as an index key rather than a URI.
const KeyPrefix = "key:"

type (
	// ResourceRef is a dependency edge to the resource identified by Key.
	// ResourceRef is comparable; two refs are the same edge when all fields match.
	ResourceRef struct {
		Key      string
		Policy   Policy
		Category Category
		Scope    Scope
	}

	moduleRefKind int

	// ModuleRef names the module that encloses a resource. It is either a
	// direct module URI or an indirect index key resolved on demand.
	ModuleRef struct {
		kind  moduleRefKind
		value string
	}
)

const (
	moduleNone moduleRefKind = iota
	moduleDirect
	moduleIndirect
)

// NewResourceRef returns an edge to key with the default policy, CategoryAny and ScopeLink.
func NewResourceRef(key string) ResourceRef {
	return ResourceRef{
		Key:      key,
		Policy:   DefaultPolicy(),
		Category: CategoryAny,
		Scope:    ScopeLink,
	}
}

// Matches reports whether the edge is visible under category. Either side
// being CategoryAny is a match.
func (r ResourceRef) Matches(category Category) bool {
	return category == CategoryAny || r.Category == CategoryAny || r.Category == category
}

// TargetKey returns the index key of the target, without the key: prefix.
func (r ResourceRef) TargetKey() string {
	return strings.TrimPrefix(r.Key, KeyPrefix)
}

// String returns a compact representation used in logs and CLI output.
func (r ResourceRef) String() string {
	return fmt.Sprintf("%s[%s,%s,%s]", r.Key, r.Policy, r.Category, r.Scope)
}

// DirectModule returns a ModuleRef holding a module URI.
func DirectModule(uri string) ModuleRef {
	return ModuleRef{kind: moduleDirect, value: uri}
}

// IndirectModule returns a ModuleRef resolved through the index by key.
func IndirectModule(key string) ModuleRef {
	return ModuleRef{kind: moduleIndirect, value: key}
}

// ParseModuleRef parses the declared form of an enclosing module: a
// key:-prefixed index key or a module URI. The empty string means no module.
func ParseModuleRef(s string) (ModuleRef, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ModuleRef{}, nil
	case strings.HasPrefix(s, KeyPrefix):
		key := strings.TrimPrefix(s, KeyPrefix)
		if key == "" {
			return ModuleRef{}, fmt.Errorf("module key binding %q is undefined", s)
		}
		return IndirectModule(key), nil
	default:
		return DirectModule(s), nil
	}
}

// IsZero reports whether no module is declared.
func (m ModuleRef) IsZero() bool { return m.kind == moduleNone }

// IsIndirect reports whether the module is an index key.
func (m ModuleRef) IsIndirect() bool { return m.kind == moduleIndirect }

// Value returns the URI or key held by the reference.
func (m ModuleRef) Value() string { return m.value }

// String returns the declared form.
func (m ModuleRef) String() string {
	if m.kind == moduleIndirect {
		return KeyPrefix + m.value
	}
	return m.value
}
