// SPDX-License-Identifier: MPL-2.0

package library

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModeBuild selects edges needed to compile a resource.
	ModeBuild Mode = "build"
	// ModeTest selects edges needed to test a resource.
	ModeTest Mode = "test"
	// ModeRuntime selects edges needed to run a resource.
	ModeRuntime Mode = "runtime"
	// ModeAny matches every policy.
	ModeAny Mode = "any"

	// CategoryAPI marks an edge as part of the public API.
	CategoryAPI Category = "api"
	// CategorySPI marks an edge as part of the service provider interface.
	CategorySPI Category = "spi"
	// CategoryImpl marks an edge as an implementation detail.
	CategoryImpl Category = "impl"
	// CategoryAny is the wildcard category.
	CategoryAny Category = "any"

	// ScopeLink marks an edge resolved through the artifact repository.
	ScopeLink Scope = "link"
	// ScopePart marks an edge to a part descriptor.
	ScopePart Scope = "part"
)

var (
	// ErrInvalidMode is the sentinel error for unknown modes.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidCategory is the sentinel error for unknown categories.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidScope is the sentinel error for unknown scopes.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrInvalidPolicy is the sentinel error for malformed policy strings.
	ErrInvalidPolicy = errors.New("invalid policy")
)

type (
	// Mode selects one lifecycle axis of a Policy.
	Mode string

	// Category is the visibility tag carried by a ResourceRef.
	Category string

	// Scope tells how the target of a ResourceRef is materialized.
	Scope string

	// Policy records the lifecycle phases an edge applies to.
	// The zero value applies to no phase; use DefaultPolicy for "all".
	Policy struct {
		Build   bool
		Test    bool
		Runtime bool
	}
)

// DefaultPolicy enables build, test and runtime.
func DefaultPolicy() Policy {
	return Policy{Build: true, Test: true, Runtime: true}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "*" {
		m = ModeAny
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate returns an error wrapping ErrInvalidMode for unknown modes.
func (m Mode) Validate() error {
	switch m {
	case ModeBuild, ModeTest, ModeRuntime, ModeAny:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected build, test, runtime or any)", ErrInvalidMode, string(m))
	}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// ParseCategory parses a category name, case-insensitively. The empty string is CategoryAny.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" || c == "*" {
		return CategoryAny, nil
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate returns an error wrapping ErrInvalidCategory for unknown categories.
func (c Category) Validate() error {
	switch c {
	case CategoryAPI, CategorySPI, CategoryImpl, CategoryAny:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected api, spi, impl or any)", ErrInvalidCategory, string(c))
	}
}

// String returns the string representation of the Category.
func (c Category) String() string { return string(c) }

// ParseScope parses a scope name. The empty string is ScopeLink.
func ParseScope(s string) (Scope, error) {
	sc := Scope(strings.ToLower(strings.TrimSpace(s)))
	if sc == "" {
		return ScopeLink, nil
	}
	if err := sc.Validate(); err != nil {
		return "", err
	}
	return sc, nil
}

// Validate returns an error wrapping ErrInvalidScope for unknown scopes.
func (s Scope) Validate() error {
	switch s {
	case ScopeLink, ScopePart:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected link or part)", ErrInvalidScope, string(s))
	}
}

// String returns the string representation of the Scope.
func (s Scope) String() string { return string(s) }

// ParsePolicy parses a comma separated list of modes such as "build,runtime".
// The empty string, "any" and "*" yield DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPolicy(), nil
	}
	var p Policy
	for field := range strings.SplitSeq(s, ",") {
		m, err := ParseMode(field)
		if err != nil {
			return Policy{}, fmt.Errorf("%w %q: %w", ErrInvalidPolicy, s, err)
		}
		switch m {
		case ModeBuild:
			p.Build = true
		case ModeTest:
			p.Test = true
		case ModeRuntime:
			p.Runtime = true
		case ModeAny:
			p = DefaultPolicy()
		}
	}
	return p, nil
}

// Matches reports whether the policy applies to mode. ModeAny always matches.
func (p Policy) Matches(mode Mode) bool {
	switch mode {
	case ModeBuild:
		return p.Build
	case ModeTest:
		return p.Test
	case ModeRuntime:
		return p.Runtime
	case ModeAny:
		return true
	default:
		return false
	}
}

// String renders the policy in the form accepted by ParsePolicy.
func (p Policy) String() string {
	if p == DefaultPolicy() {
		return "any"
	}
	var parts []string
	if p.Build {
		parts = append(parts, string(ModeBuild))
	}
	if p.Test {
		parts = append(parts, string(ModeTest))
	}
	if p.Runtime {
		parts = append(parts, string(ModeRuntime))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}
