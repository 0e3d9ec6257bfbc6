// SPDX-License-Identifier: MPL-2.0

package library

import (
	"slices"
)

const (
	// PathAnyType selects every declared type in Resource.Path.
	PathAnyType = "*"
	// TypeTheme marks documentation themes. Paths never list them.
	TypeTheme = "theme"
)

type (
	// ResolveOptions configures Resource.Resolve.
	ResolveOptions struct {
		// Mode filters edges by policy at every hop.
		Mode Mode
		// Category filters the edges of the root only; edges pulled in
		// transitively are walked with CategoryAny.
		Category Category
		// Transitive walks the targets of selected edges.
		Transitive bool
		// SameModule keeps only refs whose target shares the root's enclosing
		// module. A target whose module cannot be resolved is left out, and
		// when the root's own module cannot be resolved the result is empty.
		// Neither case is an error; call Resource.Module to tell them apart.
		SameModule bool
	}

	// refSet is an insertion-ordered set of refs.
	refSet struct {
		order []ResourceRef
		seen  map[ResourceRef]struct{}
	}
)

func newRefSet() *refSet {
	return &refSet{seen: make(map[ResourceRef]struct{})}
}

func (s *refSet) contains(ref ResourceRef) bool {
	_, ok := s.seen[ref]
	return ok
}

func (s *refSet) add(ref ResourceRef) {
	s.seen[ref] = struct{}{}
	s.order = append(s.order, ref)
}

// ResolveRefs walks the graph depth first from r and returns every selected
// edge once, in traversal order. An edge is selected when its policy matches
// mode and it matches category. The walk is deterministic for an unchanged
// index. An unknown target aborts the walk with an *UnknownResourceError.
func (r *Resource) ResolveRefs(mode Mode, category Category, transitive bool) ([]ResourceRef, error) {
	return r.Resolve(ResolveOptions{Mode: mode, Category: category, Transitive: transitive})
}

// Resolve is ResolveRefs with module filtering.
func (r *Resource) Resolve(opts ResolveOptions) ([]ResourceRef, error) {
	if err := opts.Mode.Validate(); err != nil {
		return nil, err
	}
	if opts.Category == "" {
		opts.Category = CategoryAny
	}
	if err := opts.Category.Validate(); err != nil {
		return nil, err
	}

	set := newRefSet()
	if err := r.collect(set, opts.Mode, opts.Category, opts.Transitive); err != nil {
		return nil, err
	}
	if !opts.SameModule {
		return set.order, nil
	}
	return r.filterModule(set.order)
}

func (r *Resource) collect(set *refSet, mode Mode, category Category, transitive bool) error {
	for _, ref := range r.Refs() {
		if set.contains(ref) {
			continue
		}
		if !ref.Policy.Matches(mode) || !ref.Matches(category) {
			continue
		}
		set.add(ref)
		if !transitive {
			continue
		}
		target, err := r.index.Lookup(ref, r.key)
		if err != nil {
			return err
		}
		if err := target.collect(set, mode, CategoryAny, true); err != nil {
			return err
		}
	}
	return nil
}

// filterModule keeps refs whose target has the same enclosing module as r.
// If r's module cannot be resolved nothing is kept; a target whose module
// cannot be resolved is dropped.
func (r *Resource) filterModule(refs []ResourceRef) ([]ResourceRef, error) {
	own, err := r.Module()
	if err != nil {
		return nil, nil
	}
	kept := make([]ResourceRef, 0, len(refs))
	for _, ref := range refs {
		target, err := r.index.Lookup(ref, r.key)
		if err != nil {
			return nil, err
		}
		module, err := target.Module()
		if err != nil || module != own {
			continue
		}
		kept = append(kept, ref)
	}
	return kept, nil
}

// QualifiedRefs returns the runtime edges of category reachable from r whose
// targets are not yet in visited. Each selected target is added to visited,
// so repeated calls with a shared set partition the closure.
func (r *Resource) QualifiedRefs(visited map[string]bool, category Category) ([]ResourceRef, error) {
	refs, err := r.ResolveRefs(ModeRuntime, category, true)
	if err != nil {
		return nil, err
	}
	var out []ResourceRef
	for _, ref := range refs {
		target, err := r.index.Lookup(ref, r.key)
		if err != nil {
			return nil, err
		}
		if visited[target.key] || slices.Contains(out, ref) {
			continue
		}
		out = append(out, ref)
		visited[target.key] = true
	}
	return out, nil
}

// Path returns the artifact URIs of the transitive closure of r under mode.
// typ selects one artifact type (resources not declaring it are skipped) or
// PathAnyType for all but themes. When self is set r itself is listed first.
func (r *Resource) Path(mode Mode, typ string, sameModule, self bool) ([]string, error) {
	refs, err := r.Resolve(ResolveOptions{Mode: mode, Category: CategoryAny, Transitive: true, SameModule: sameModule})
	if err != nil {
		return nil, err
	}

	var uris []string
	if self {
		uris = appendURIs(uris, r, typ)
	}
	visited := make(map[string]bool, len(refs))
	for _, ref := range refs {
		target, err := r.index.Lookup(ref, r.key)
		if err != nil {
			return nil, err
		}
		if visited[target.key] {
			continue
		}
		visited[target.key] = true
		uris = appendURIs(uris, target, typ)
	}
	return uris, nil
}

func appendURIs(uris []string, r *Resource, typ string) []string {
	if typ == PathAnyType {
		for _, t := range r.info.Types() {
			if t != TypeTheme {
				uris = append(uris, r.info.URI(t))
			}
		}
		return uris
	}
	if typ != TypeTheme && r.info.Isa(typ) {
		return append(uris, r.info.URI(typ))
	}
	return uris
}
