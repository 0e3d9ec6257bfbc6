// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"slices"

	"github.com/depotkit/depot/pkg/library"
)

// DefaultCodebaseType is the artifact type placed on a classpath.
const DefaultCodebaseType = "jar"

// ErrMissingCodebase is the sentinel error wrapped by MissingCodebaseError.
var ErrMissingCodebase = errors.New("missing codebase")

type (
	// Assembler builds classpaths from the resource graph.
	Assembler struct {
		codebase string
		system   []string
	}

	// Option configures an Assembler.
	Option func(*Assembler)

	// MissingCodebaseError is returned when a dependency does not produce the
	// codebase artifact type.
	MissingCodebaseError struct {
		Resource string
		Target   string
		Type     string
	}
)

// Error implements the error interface.
func (e *MissingCodebaseError) Error() string {
	return fmt.Sprintf("resource %q depends on %q which does not declare a %s codebase", e.Resource, e.Target, e.Type)
}

// Unwrap returns ErrMissingCodebase so callers can use errors.Is for programmatic detection.
func (e *MissingCodebaseError) Unwrap() error { return ErrMissingCodebase }

// WithCodebaseType overrides DefaultCodebaseType.
func WithCodebaseType(typ string) Option {
	return func(a *Assembler) { a.codebase = typ }
}

// WithSystem sets the URIs placed in the system tier of every classpath.
func WithSystem(uris ...string) Option {
	return func(a *Assembler) { a.system = slices.Clone(uris) }
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{codebase: DefaultCodebaseType}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build returns the classpath of r. API edges feed the public tier, SPI
// edges the protected tier and implementation edges the private tier. A
// resource reached through an earlier tier is not repeated in a later one.
// When r itself produces the codebase type it is appended to the private tier.
//
// Every target must declare the codebase type or Build fails with a
// *MissingCodebaseError. Module-typed targets are the exception: they add
// nothing themselves, since their members are reached through the module's
// own refs.
func (a *Assembler) Build(r *library.Resource) (*Classpath, error) {
	visited := map[string]bool{r.Key(): true}

	public, err := a.tier(r, visited, library.CategoryAPI)
	if err != nil {
		return nil, err
	}
	protected, err := a.tier(r, visited, library.CategorySPI)
	if err != nil {
		return nil, err
	}
	private, err := a.tier(r, visited, library.CategoryImpl)
	if err != nil {
		return nil, err
	}
	if r.Info().Isa(a.codebase) {
		private = append(private, r.URI(a.codebase))
	}

	return &Classpath{
		System:    slices.Clone(a.system),
		Public:    public,
		Protected: protected,
		Private:   private,
	}, nil
}

// Category returns a single tier of the classpath of r.
func (a *Assembler) Category(r *library.Resource, c Category) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cp, err := a.Build(r)
	if err != nil {
		return nil, err
	}
	return cp.Get(c), nil
}

func (a *Assembler) tier(r *library.Resource, visited map[string]bool, category library.Category) ([]string, error) {
	refs, err := r.QualifiedRefs(visited, category)
	if err != nil {
		return nil, fmt.Errorf("classpath of %q: %w", r.Key(), err)
	}

	uris := make([]string, 0, len(refs))
	for _, ref := range refs {
		target, err := r.Target(ref)
		if err != nil {
			return nil, fmt.Errorf("classpath of %q: %w", r.Key(), err)
		}
		info := target.Info()
		switch {
		case info.Isa(a.codebase):
			uris = append(uris, target.URI(a.codebase))
		case target.IsModule():
			// members are reached through the module's own refs
		default:
			return nil, &MissingCodebaseError{Resource: r.Key(), Target: target.Key(), Type: a.codebase}
		}
	}
	return uris, nil
}
