// SPDX-License-Identifier: MPL-2.0

// Package dag orders the nodes of a directed graph so that every node comes
// after its predecessors. It backs the resource build order of a library.
package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError reports the nodes left unordered because they sit on, or
	// behind, a cycle.
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph keyed by node name. An edge from A to B means
	// A must be ordered before B. Node insertion order breaks ties.
	Graph struct {
		edges map[string][]string
		nodes []string
		known map[string]struct{}
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle so callers can use errors.Is for programmatic detection.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		edges: make(map[string][]string),
		known: make(map[string]struct{}),
	}
}

// AddNode adds name if it is not already present.
func (g *Graph) AddNode(name string) {
	if _, ok := g.known[name]; ok {
		return
	}
	g.known[name] = struct{}{}
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from must precede to. Missing nodes are added.
// Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	for _, n := range g.edges[from] {
		if n == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// TopologicalSort orders the graph with Kahn's algorithm. Nodes that become
// ready at the same time keep insertion order, so the result is stable.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.nodes))
	for _, targets := range g.edges {
		for _, t := range targets {
			pending[t]++
		}
	}

	var ready []string
	for _, n := range g.nodes {
		if pending[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, t := range g.edges[n] {
			pending[t]--
			if pending[t] == 0 {
				ready = append(ready, t)
			}
		}
	}

	if len(order) < len(g.nodes) {
		var stuck []string
		for _, n := range g.nodes {
			if pending[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, &CycleError{Cycle: stuck}
	}
	return order, nil
}
