// SPDX-License-Identifier: MPL-2.0

package library

import (
	"slices"

	"github.com/depotkit/depot/pkg/artifact"
)

// TypeModule is the artifact type of module resources. A module implicitly
// depends on every resource nested under its group.
const TypeModule = "module"

// Resource is a node of the graph. It is created by an Index and keeps a
// back-reference to it for traversal.
type Resource struct {
	key    string
	info   artifact.Info
	refs   []ResourceRef
	module ModuleRef
	index  *Index
}

func (r *Resource) Key() string         { return r.key }
func (r *Resource) Info() artifact.Info { return r.info }

// DeclaredModule returns the enclosing module as declared, without resolving it.
func (r *Resource) DeclaredModule() ModuleRef { return r.module }

// DeclaredRefs returns a copy of the explicitly declared edges.
func (r *Resource) DeclaredRefs() []ResourceRef { return slices.Clone(r.refs) }

// IsModule reports whether the resource is a module.
func (r *Resource) IsModule() bool { return r.info.Isa(TypeModule) }

// Refs returns the edges of the resource. For modules the subsidiary refs
// supplied by the index come first, followed by the declared edges.
func (r *Resource) Refs() []ResourceRef {
	if !r.IsModule() {
		return slices.Clone(r.refs)
	}
	return append(r.index.SubsidiaryRefs(r), r.refs...)
}

// Module returns the URI of the enclosing module. Indirect references are
// resolved through the index to the module-typed URI of the target.
// The empty string means the resource declares no module.
func (r *Resource) Module() (string, error) {
	switch {
	case r.module.IsZero():
		return "", nil
	case !r.module.IsIndirect():
		return r.module.Value(), nil
	}
	target, err := r.index.Resource(r.module.Value())
	if err != nil {
		return "", &UnresolvableModuleError{Resource: r.key, Module: r.module.String(), Err: err}
	}
	return target.info.URI(TypeModule), nil
}

// Target returns the resource ref points to, reporting r as the referrer
// when it is unknown.
func (r *Resource) Target(ref ResourceRef) (*Resource, error) {
	return r.index.Lookup(ref, r.key)
}

// URI returns the artifact URI of the resource for typ, or for the primary type when typ is empty.
func (r *Resource) URI(typ string) string { return r.info.URI(typ) }

// String returns the resource key.
func (r *Resource) String() string { return r.key }
