// SPDX-License-Identifier: MPL-2.0

package library

import (
	"fmt"
	"strings"

	"github.com/depotkit/depot/pkg/artifact"
)

type (
	// ResourceSpec declares a resource to be added to an Index.
	ResourceSpec struct {
		Key    string
		Info   artifact.Info
		Refs   []ResourceRef
		Module string
	}

	// Index owns the resources of a library, in declaration order.
	Index struct {
		resources []*Resource
		byKey     map[string]*Resource
	}
)

// NewIndex builds an index from declarations. Keys must be unique, every
// ref must carry a valid category and scope, and every module binding must
// be well formed. References are not checked here; unknown targets are
// reported when the graph is walked.
func NewIndex(specs ...ResourceSpec) (*Index, error) {
	idx := &Index{
		resources: make([]*Resource, 0, len(specs)),
		byKey:     make(map[string]*Resource, len(specs)),
	}
	for _, spec := range specs {
		if err := idx.add(spec); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *Index) add(spec ResourceSpec) error {
	key := strings.TrimSpace(spec.Key)
	if key == "" {
		return fmt.Errorf("resource %s: key is required", spec.Info)
	}
	if _, ok := idx.byKey[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateResource, key)
	}
	if spec.Info.IsZero() {
		return fmt.Errorf("resource %q: identity is required", key)
	}
	module, err := ParseModuleRef(spec.Module)
	if err != nil {
		return fmt.Errorf("resource %q: %w", key, err)
	}
	for _, ref := range spec.Refs {
		if strings.TrimSpace(ref.TargetKey()) == "" {
			return fmt.Errorf("resource %q: ref with empty key", key)
		}
		if err := ref.Category.Validate(); err != nil {
			return fmt.Errorf("resource %q: ref %q: %w", key, ref.Key, err)
		}
		if err := ref.Scope.Validate(); err != nil {
			return fmt.Errorf("resource %q: ref %q: %w", key, ref.Key, err)
		}
	}

	r := &Resource{
		key:    key,
		info:   spec.Info,
		refs:   append([]ResourceRef(nil), spec.Refs...),
		module: module,
		index:  idx,
	}
	idx.resources = append(idx.resources, r)
	idx.byKey[key] = r
	return nil
}

// Resource returns the resource for key. A key: prefix is accepted.
func (idx *Index) Resource(key string) (*Resource, error) {
	key = strings.TrimPrefix(key, KeyPrefix)
	r, ok := idx.byKey[key]
	if !ok {
		return nil, &UnknownResourceError{Key: key}
	}
	return r, nil
}

// Lookup returns the target of ref. referrer names the resource holding the
// edge and is reported when the target is unknown.
func (idx *Index) Lookup(ref ResourceRef, referrer string) (*Resource, error) {
	r, ok := idx.byKey[ref.TargetKey()]
	if !ok {
		return nil, &UnknownResourceError{Key: ref.TargetKey(), Referrer: referrer}
	}
	return r, nil
}

// Resources returns every resource in declaration order.
func (idx *Index) Resources() []*Resource {
	return append([]*Resource(nil), idx.resources...)
}

// Keys returns every resource key in declaration order.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.resources))
	for _, r := range idx.resources {
		keys = append(keys, r.key)
	}
	return keys
}

// Len returns the number of resources.
func (idx *Index) Len() int { return len(idx.resources) }

// SubsidiaryRefs returns default edges to every resource nested under the
// group of module: resources in the same group (other than module itself)
// and resources in a subgroup. Non-module resources have none.
func (idx *Index) SubsidiaryRefs(module *Resource) []ResourceRef {
	if !module.IsModule() {
		return nil
	}
	group := module.info.Group()
	var refs []ResourceRef
	for _, r := range idx.resources {
		g := r.info.Group()
		if strings.HasPrefix(g, group+"/") || (g == group && r.key != module.key) {
			refs = append(refs, NewResourceRef(r.key))
		}
	}
	return refs
}
