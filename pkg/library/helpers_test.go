// SPDX-License-Identifier: MPL-2.0

package library

import (
	"testing"

	"github.com/depotkit/depot/pkg/artifact"
)

var (
	runtimeOnly = Policy{Runtime: true}
	buildOnly   = Policy{Build: true}
)

func jar(key, group string, refs ...ResourceRef) ResourceSpec {
	return ResourceSpec{
		Key:  key,
		Info: artifact.MustInfo(group, key, "1.0", "jar"),
		Refs: refs,
	}
}

func ref(key string, policy Policy, category Category) ResourceRef {
	return ResourceRef{Key: key, Policy: policy, Category: category, Scope: ScopeLink}
}

func mustIndex(t *testing.T, specs ...ResourceSpec) *Index {
	t.Helper()
	idx, err := NewIndex(specs...)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func mustResource(t *testing.T, idx *Index, key string) *Resource {
	t.Helper()
	r, err := idx.Resource(key)
	if err != nil {
		t.Fatalf("Resource(%q): %v", key, err)
	}
	return r
}

func keysOf(refs []ResourceRef) []string {
	keys := make([]string, 0, len(refs))
	for _, r := range refs {
		keys = append(keys, r.Key)
	}
	return keys
}
