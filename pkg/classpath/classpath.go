// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// System entries are shared with the host process.
	System Category = "system"
	// Public entries are visible to every consumer of a unit.
	Public Category = "public"
	// Protected entries are visible to service providers.
	Protected Category = "protected"
	// Private entries are visible only inside the unit.
	Private Category = "private"
)

// ErrInvalidCategory is returned for unknown classpath categories.
var ErrInvalidCategory = errors.New("invalid classpath category")

type (
	// Category is one of the four classpath isolation tiers.
	Category string

	// Classpath holds ordered artifact URIs per tier.
	Classpath struct {
		System    []string `json:"system,omitempty" yaml:"system,omitempty"`
		Public    []string `json:"public,omitempty" yaml:"public,omitempty"`
		Protected []string `json:"protected,omitempty" yaml:"protected,omitempty"`
		Private   []string `json:"private,omitempty" yaml:"private,omitempty"`
	}
)

// Categories returns the tiers from the outermost to the innermost.
func Categories() []Category {
	return []Category{System, Public, Protected, Private}
}

// ParseCategory parses a tier name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate returns an error wrapping ErrInvalidCategory for unknown tiers.
func (c Category) Validate() error {
	switch c {
	case System, Public, Protected, Private:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
}

// String returns the string representation of the Category.
func (c Category) String() string { return string(c) }

// Get returns a copy of the URIs of one tier.
func (cp *Classpath) Get(c Category) []string {
	switch c {
	case System:
		return slices.Clone(cp.System)
	case Public:
		return slices.Clone(cp.Public)
	case Protected:
		return slices.Clone(cp.Protected)
	case Private:
		return slices.Clone(cp.Private)
	default:
		return nil
	}
}

// All returns every URI in tier order.
func (cp *Classpath) All() []string {
	all := make([]string, 0, len(cp.System)+len(cp.Public)+len(cp.Protected)+len(cp.Private))
	all = append(all, cp.System...)
	all = append(all, cp.Public...)
	all = append(all, cp.Protected...)
	return append(all, cp.Private...)
}

// IsEmpty reports whether every tier is empty.
func (cp *Classpath) IsEmpty() bool {
	return len(cp.System) == 0 && len(cp.Public) == 0 && len(cp.Protected) == 0 && len(cp.Private) == 0
}

// Equal reports whether both classpaths hold the same URIs in the same order.
func (cp *Classpath) Equal(other *Classpath) bool {
	if cp == nil || other == nil {
		return cp == other
	}
	return slices.Equal(cp.System, other.System) &&
		slices.Equal(cp.Public, other.Public) &&
		slices.Equal(cp.Protected, other.Protected) &&
		slices.Equal(cp.Private, other.Private)
}

// Clone returns a deep copy.
func (cp *Classpath) Clone() *Classpath {
	return &Classpath{
		System:    slices.Clone(cp.System),
		Public:    slices.Clone(cp.Public),
		Protected: slices.Clone(cp.Protected),
		Private:   slices.Clone(cp.Private),
	}
}

// String renders the non-empty tiers, one per line.
func (cp *Classpath) String() string {
	var b strings.Builder
	for _, c := range Categories() {
		uris := cp.Get(c)
		if len(uris) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", c)
		for _, uri := range uris {
			fmt.Fprintf(&b, "  %s\n", uri)
		}
	}
	return b.String()
}
