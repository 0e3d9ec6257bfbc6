// SPDX-License-Identifier: MPL-2.0

package part

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/depotkit/depot/pkg/classpath"
)

// Repository resolves the URIs a part refers to. *transit.Cache implements it.
type Repository interface {
	// Open opens a descriptor or classpath entry.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	// Resolve returns a local file for uri.
	Resolve(ctx context.Context, uri string) (string, error)
	// ResolveLink returns the target of a link URI, or uri itself.
	ResolveLink(ctx context.Context, uri string) (string, error)
}

// Unit is an isolated loading unit: the classpath of one part, anchored
// under a parent unit. The root of every chain is SystemUnit.
type Unit struct {
	id        string
	name      string
	parent    *Unit
	classpath classpath.Classpath
	repo      Repository

	mu    sync.Mutex
	files *classpath.Classpath
}

var systemUnit = sync.OnceValue(func() *Unit {
	return &Unit{id: uuid.NewString(), name: "system"}
})

// SystemUnit returns the process-wide root unit. It has no classpath.
func SystemUnit() *Unit { return systemUnit() }

// NewUnit creates a unit for cp under parent. A nil parent anchors the unit
// under SystemUnit.
func NewUnit(name string, parent *Unit, cp classpath.Classpath, repo Repository) *Unit {
	if parent == nil {
		parent = SystemUnit()
	}
	return &Unit{
		id:        uuid.NewString(),
		name:      name,
		parent:    parent,
		classpath: *cp.Clone(),
		repo:      repo,
	}
}

// ID returns the unit identity used in part cache keys.
func (u *Unit) ID() string { return u.id }

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Parent returns the anchoring unit, nil for SystemUnit.
func (u *Unit) Parent() *Unit { return u.parent }

// Classpath returns a copy of the unit's classpath URIs.
func (u *Unit) Classpath() classpath.Classpath { return *u.classpath.Clone() }

// Files materializes every classpath entry to a local file, tier by tier.
// The result is computed once; a failed attempt is retried on the next call.
func (u *Unit) Files(ctx context.Context) (classpath.Classpath, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.files != nil {
		return *u.files.Clone(), nil
	}
	if u.classpath.IsEmpty() {
		u.files = &classpath.Classpath{}
		return classpath.Classpath{}, nil
	}
	if u.repo == nil {
		return classpath.Classpath{}, fmt.Errorf("unit %s: no repository to resolve its classpath", u.name)
	}

	var files classpath.Classpath
	tiers := map[classpath.Category]*[]string{
		classpath.System:    &files.System,
		classpath.Public:    &files.Public,
		classpath.Protected: &files.Protected,
		classpath.Private:   &files.Private,
	}
	for _, c := range classpath.Categories() {
		for _, uri := range u.classpath.Get(c) {
			p, err := u.repo.Resolve(ctx, uri)
			if err != nil {
				return classpath.Classpath{}, fmt.Errorf("unit %s: resolve %s entry %s: %w", u.name, c, uri, err)
			}
			*tiers[c] = append(*tiers[c], p)
		}
	}
	u.files = &files
	return *files.Clone(), nil
}

// Chain returns the unit followed by its ancestors.
func (u *Unit) Chain() []*Unit {
	var chain []*Unit
	for cur := u; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// String returns the unit name and id.
func (u *Unit) String() string { return u.name + "@" + u.id }
