// SPDX-License-Identifier: MPL-2.0

package library

import (
	"fmt"

	"github.com/depotkit/depot/internal/dag"
)

// BuildOrder returns the resources reachable from keys ordered so that every
// resource follows the resources it depends on. With no keys the whole index
// is ordered. Resources at the same depth keep declaration order.
// A dependency cycle is reported as a *dag.CycleError.
func (idx *Index) BuildOrder(keys ...string) ([]*Resource, error) {
	roots := idx.resources
	if len(keys) > 0 {
		roots = make([]*Resource, 0, len(keys))
		for _, key := range keys {
			r, err := idx.Resource(key)
			if err != nil {
				return nil, err
			}
			roots = append(roots, r)
		}
	}

	g := dag.New()
	seen := make(map[string]bool)
	var visit func(r *Resource) error
	visit = func(r *Resource) error {
		if seen[r.key] {
			return nil
		}
		seen[r.key] = true
		g.AddNode(r.key)
		for _, ref := range r.Refs() {
			target, err := idx.Lookup(ref, r.key)
			if err != nil {
				return err
			}
			if err := visit(target); err != nil {
				return err
			}
			g.AddEdge(target.key, r.key)
		}
		return nil
	}
	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("order resources: %w", err)
	}
	out := make([]*Resource, 0, len(order))
	for _, key := range order {
		out = append(out, idx.byKey[key])
	}
	return out, nil
}
