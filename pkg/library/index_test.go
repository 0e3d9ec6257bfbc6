// SPDX-License-Identifier: MPL-2.0

package library

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/depotkit/depot/internal/dag"
	"github.com/depotkit/depot/pkg/artifact"
)

func TestNewIndex_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		specs []ResourceSpec
	}{
		{"duplicate key", []ResourceSpec{jar("a", "acme"), jar("a", "acme")}},
		{"empty key", []ResourceSpec{{Key: " ", Info: artifact.MustInfo("acme", "a", "", "jar")}}},
		{"missing identity", []ResourceSpec{{Key: "a"}}},
		{"empty module binding", []ResourceSpec{{Key: "a", Info: artifact.MustInfo("acme", "a", "", "jar"), Module: "key:"}}},
		{"bad category", []ResourceSpec{jar("a", "acme", ResourceRef{Key: "b", Category: "internal", Scope: ScopeLink})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewIndex(tt.specs...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIndex_Lookup(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t, jar("a", "acme"), jar("b", "acme"))
	if !slices.Equal(idx.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys() = %v", idx.Keys())
	}
	if r, err := idx.Resource("key:b"); err != nil || r.Key() != "b" {
		t.Errorf("Resource(key:b) = %v, %v", r, err)
	}
	_, err := idx.Lookup(NewResourceRef("zz"), "a")
	var unknown *UnknownResourceError
	if !errors.As(err, &unknown) || unknown.Referrer != "a" {
		t.Errorf("Lookup(zz) error = %v", err)
	}
	if !strings.Contains(err.Error(), `"zz"`) || !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("error message should name both keys: %v", err)
	}
}

func TestBuildOrder(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("app", "acme", NewResourceRef("impl"), NewResourceRef("api")),
		jar("impl", "acme", NewResourceRef("api")),
		jar("api", "acme"),
		jar("unrelated", "other"),
	)

	order, err := idx.BuildOrder("app")
	if err != nil {
		t.Fatalf("BuildOrder: %v", err)
	}
	var keys []string
	for _, r := range order {
		keys = append(keys, r.Key())
	}
	if want := []string{"api", "impl", "app"}; !slices.Equal(keys, want) {
		t.Errorf("BuildOrder(app) = %v, want %v", keys, want)
	}

	all, err := idx.BuildOrder()
	if err != nil || len(all) != 4 {
		t.Errorf("BuildOrder() = %d resources, %v", len(all), err)
	}
}

func TestBuildOrder_Cycle(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("a", "acme", NewResourceRef("b")),
		jar("b", "acme", NewResourceRef("a")),
	)
	if _, err := idx.BuildOrder(); !errors.Is(err, dag.ErrCycle) {
		t.Errorf("expected dag.ErrCycle, got %v", err)
	}
}

const testLibrary = `
group: "acme"
resources: [
	{key: "acme", group: "", name: "acme", version: "1.0", types: ["module"]},
	{
		key: "api", group: "core", name: "api", version: "1.0", module: "key:acme"
	},
	{
		key: "impl", group: "core", name: "impl", version: "1.0", types: ["jar", "part"]
		module: "key:acme"
		refs: [
			{key: "api", category: "api"},
			{key: "tools", policy: "build", category: "impl"},
		]
	},
	{key: "tools", group: "build", name: "tools"},
]
`

func TestParse(t *testing.T) {
	t.Parallel()

	idx, err := Parse([]byte(testLibrary), "library.cue")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if idx.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", idx.Len())
	}

	impl := mustResource(t, idx, "impl")
	if got := impl.URI("part"); got != "artifact:part:acme/core/impl#1.0" {
		t.Errorf("impl URI = %q", got)
	}
	refs := impl.DeclaredRefs()
	if refs[1].Policy != buildOnly || refs[1].Category != CategoryImpl || refs[1].Scope != ScopeLink {
		t.Errorf("tools ref = %+v", refs[1])
	}
	if !mustResource(t, idx, "api").Info().Isa("jar") {
		t.Error("types should default to jar")
	}

	module := mustResource(t, idx, "acme")
	if got := keysOf(module.Refs()); !slices.Equal(got, []string{"api", "impl", "tools"}) {
		t.Errorf("module refs = %v", got)
	}
}

func TestParse_SchemaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown category", `resources: [{key: "a", group: "g", name: "a", refs: [{key: "b", category: "internal"}]}]`},
		{"slash in name", `resources: [{key: "a", group: "g", name: "a/b"}]`},
		{"bang in name", `resources: [{key: "a", group: "g", name: "w!x"}]`},
		{"trailing slash in group", `resources: [{key: "a", group: "g/", name: "a"}]`},
		{"empty group segment", `resources: [{key: "a", group: "g//h", name: "a"}]`},
		{"colon in library group", `group: "acme:x", resources: [{key: "a", group: "g", name: "a"}]`},
		{"colon in type", `resources: [{key: "a", group: "g", name: "a", types: ["ja:r"]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc), "bad.cue")
			if err == nil {
				t.Fatal("expected schema error")
			}
			if !strings.Contains(err.Error(), "bad.cue") {
				t.Errorf("error should name the file: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), DefaultFilename)
	if err := os.WriteFile(file, []byte(testLibrary), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := idx.Resource("tools"); err != nil {
		t.Error(err)
	}
}
