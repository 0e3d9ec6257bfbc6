// SPDX-License-Identifier: MPL-2.0

package library

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/depotkit/depot/pkg/artifact"
)

func TestResolveRefs_PolicyFiltersDirectRefs(t *testing.T) {
	t.Parallel()

	a := ref("a", runtimeOnly, CategoryAPI)
	b := ref("b", buildOnly, CategoryImpl)
	idx := mustIndex(t,
		jar("a", "acme"),
		jar("b", "acme"),
		jar("x", "acme", a, b),
	)

	got, err := mustResource(t, idx, "x").ResolveRefs(ModeRuntime, CategoryAny, false)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	if !slices.Equal(got, []ResourceRef{a}) {
		t.Errorf("ResolveRefs(runtime, any) = %v, want [a]", got)
	}

	got, _ = mustResource(t, idx, "x").ResolveRefs(ModeBuild, CategoryAny, false)
	if !slices.Equal(got, []ResourceRef{b}) {
		t.Errorf("ResolveRefs(build, any) = %v, want [b]", got)
	}
}

func TestResolveRefs_ModuleSubsidiaryRefsComeFirst(t *testing.T) {
	t.Parallel()

	e1 := NewResourceRef("e1")
	idx := mustIndex(t,
		jar("s1", "acme"),
		ResourceSpec{Key: "acme", Info: artifact.MustInfo("acme", "acme", "1.0", "module"), Refs: []ResourceRef{e1}},
		jar("s2", "acme/util"),
		jar("e1", "other"),
		jar("outside", "acme-tools"),
	)

	got := mustResource(t, idx, "acme").Refs()
	if want := []string{"s1", "s2", "e1"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("Refs() = %v, want %v", keysOf(got), want)
	}
	if got[2] != e1 {
		t.Errorf("explicit ref changed: %v", got[2])
	}
}

func TestResolveRefs_TransitiveWidensCategory(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("app", "acme",
			ref("api", DefaultPolicy(), CategoryAPI),
			ref("impl", DefaultPolicy(), CategoryImpl)),
		jar("api", "acme", ref("spi", DefaultPolicy(), CategorySPI)),
		jar("impl", "acme"),
		jar("spi", "acme"),
	)

	got, err := mustResource(t, idx, "app").ResolveRefs(ModeRuntime, CategoryAPI, true)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	if want := []string{"api", "spi"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("got %v, want %v", keysOf(got), want)
	}
}

func TestResolveRefs_PolicyGatesReachability(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("root", "acme", ref("tool", buildOnly, CategoryAny), NewResourceRef("lib")),
		jar("tool", "acme", NewResourceRef("only-via-tool")),
		jar("lib", "acme"),
		jar("only-via-tool", "acme"),
	)

	got, err := mustResource(t, idx, "root").ResolveRefs(ModeRuntime, CategoryAny, true)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	if want := []string{"lib"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("got %v, want %v", keysOf(got), want)
	}
}

func TestResolveRefs_CyclesAndDuplicates(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("a", "acme", NewResourceRef("b"), NewResourceRef("c")),
		jar("b", "acme", NewResourceRef("c"), NewResourceRef("a")),
		jar("c", "acme", NewResourceRef("a"), NewResourceRef("b")),
	)

	got, err := mustResource(t, idx, "a").ResolveRefs(ModeAny, CategoryAny, true)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	if want := []string{"b", "c", "a"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("got %v, want %v", keysOf(got), want)
	}
	seen := make(map[ResourceRef]bool)
	for _, r := range got {
		if seen[r] {
			t.Errorf("duplicate ref %v", r)
		}
		seen[r] = true
	}
}

func TestResolveRefs_Deterministic(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("root", "acme", NewResourceRef("x"), NewResourceRef("y"), NewResourceRef("z")),
		jar("x", "acme", NewResourceRef("z"), NewResourceRef("w")),
		jar("y", "acme", NewResourceRef("w")),
		jar("z", "acme"),
		jar("w", "acme"),
	)
	root := mustResource(t, idx, "root")

	first, err := root.ResolveRefs(ModeRuntime, CategoryAny, true)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			again, err := root.ResolveRefs(ModeRuntime, CategoryAny, true)
			if err != nil {
				t.Errorf("ResolveRefs: %v", err)
				return
			}
			if !slices.Equal(first, again) {
				t.Errorf("non-deterministic traversal: %v vs %v", keysOf(first), keysOf(again))
			}
		})
	}
	wg.Wait()
}

func TestResolveRefs_UnknownResource(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("root", "acme", NewResourceRef("lib")),
		jar("lib", "acme", NewResourceRef("missing")),
	)

	got, err := mustResource(t, idx, "root").ResolveRefs(ModeRuntime, CategoryAny, true)
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	var unknown *UnknownResourceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownResourceError, got %v", err)
	}
	if unknown.Key != "missing" || unknown.Referrer != "lib" {
		t.Errorf("error = %+v", unknown)
	}
	if !errors.Is(err, ErrUnknownResource) {
		t.Error("errors.Is(err, ErrUnknownResource) = false")
	}
}

func TestResolveRefs_IndirectKey(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("root", "acme", NewResourceRef("key:lib")),
		jar("lib", "acme", NewResourceRef("dep")),
		jar("dep", "acme"),
	)
	got, err := mustResource(t, idx, "root").ResolveRefs(ModeAny, CategoryAny, true)
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	if want := []string{"key:lib", "dep"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("got %v, want %v", keysOf(got), want)
	}
}

func TestResolve_SameModule(t *testing.T) {
	t.Parallel()

	in := func(s ResourceSpec, module string) ResourceSpec {
		s.Module = module
		return s
	}
	idx := mustIndex(t,
		ResourceSpec{Key: "acme", Info: artifact.MustInfo("acme", "acme", "1.0", "module")},
		in(jar("app", "acme", NewResourceRef("core"), NewResourceRef("ext")), "key:acme"),
		in(jar("core", "acme"), "artifact:module:acme/acme#1.0"),
		in(jar("ext", "other"), "artifact:module:other/other"),
	)

	got, err := mustResource(t, idx, "app").Resolve(ResolveOptions{
		Mode: ModeRuntime, Category: CategoryAny, Transitive: true, SameModule: true,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := []string{"core"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("got %v, want %v", keysOf(got), want)
	}
}

func TestResolve_SameModuleUnresolvable(t *testing.T) {
	t.Parallel()

	in := func(s ResourceSpec, module string) ResourceSpec {
		s.Module = module
		return s
	}
	idx := mustIndex(t,
		ResourceSpec{Key: "acme", Info: artifact.MustInfo("acme", "acme", "1.0", "module")},
		in(jar("app", "acme", NewResourceRef("core"), NewResourceRef("orphan")), "key:acme"),
		in(jar("core", "acme"), "key:acme"),
		in(jar("orphan", "acme"), "key:ghost"),
		in(jar("lost", "acme", NewResourceRef("core")), "key:ghost"),
	)
	opts := ResolveOptions{Mode: ModeRuntime, Category: CategoryAny, SameModule: true}

	got, err := mustResource(t, idx, "app").Resolve(opts)
	if err != nil {
		t.Fatalf("Resolve(app): %v", err)
	}
	if want := []string{"core"}; !slices.Equal(keysOf(got), want) {
		t.Errorf("Resolve(app) = %v, want %v", keysOf(got), want)
	}

	lost := mustResource(t, idx, "lost")
	got, err = lost.Resolve(opts)
	if err != nil || len(got) != 0 {
		t.Errorf("Resolve(lost) = %v, %v; want empty, nil", keysOf(got), err)
	}
	var modErr *UnresolvableModuleError
	if _, err := lost.Module(); !errors.As(err, &modErr) {
		t.Errorf("Module() error = %v, want *UnresolvableModuleError", err)
	}
}

func TestResource_Module(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		ResourceSpec{Key: "acme", Info: artifact.MustInfo("acme", "acme", "2.0", "module")},
		ResourceSpec{Key: "lib", Info: artifact.MustInfo("acme", "lib", "2.0", "jar"), Module: "key:acme"},
		ResourceSpec{Key: "broken", Info: artifact.MustInfo("acme", "broken", "", "jar"), Module: "key:nowhere"},
	)

	module, err := mustResource(t, idx, "lib").Module()
	if err != nil || module != "artifact:module:acme/acme#2.0" {
		t.Errorf("Module() = %q, %v", module, err)
	}

	_, err = mustResource(t, idx, "broken").Module()
	var unresolvable *UnresolvableModuleError
	if !errors.As(err, &unresolvable) || !errors.Is(err, ErrUnknownResource) {
		t.Errorf("expected unresolvable module error, got %v", err)
	}
}

func TestQualifiedRefs_SharedVisitedSet(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("app", "acme",
			ref("api", DefaultPolicy(), CategoryAPI),
			ref("impl", DefaultPolicy(), CategoryImpl)),
		jar("api", "acme"),
		jar("impl", "acme", NewResourceRef("api"), NewResourceRef("util")),
		jar("util", "acme"),
	)
	app := mustResource(t, idx, "app")

	visited := make(map[string]bool)
	public, err := app.QualifiedRefs(visited, CategoryAPI)
	if err != nil {
		t.Fatalf("QualifiedRefs(api): %v", err)
	}
	private, err := app.QualifiedRefs(visited, CategoryImpl)
	if err != nil {
		t.Fatalf("QualifiedRefs(impl): %v", err)
	}

	if want := []string{"api"}; !slices.Equal(keysOf(public), want) {
		t.Errorf("public = %v, want %v", keysOf(public), want)
	}
	if want := []string{"impl", "util"}; !slices.Equal(keysOf(private), want) {
		t.Errorf("private = %v, want %v", keysOf(private), want)
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	idx := mustIndex(t,
		jar("app", "acme", NewResourceRef("lib"), NewResourceRef("docs")),
		jar("lib", "acme"),
		ResourceSpec{Key: "docs", Info: artifact.MustInfo("acme", "docs", "1.0", "zip", "theme", "jar")},
	)
	app := mustResource(t, idx, "app")

	got, err := app.Path(ModeRuntime, "jar", false, true)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	want := []string{
		"artifact:jar:acme/app#1.0",
		"artifact:jar:acme/lib#1.0",
		"artifact:jar:acme/docs#1.0",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Path(jar) = %v, want %v", got, want)
	}

	got, _ = app.Path(ModeRuntime, PathAnyType, false, false)
	want = []string{
		"artifact:jar:acme/lib#1.0",
		"artifact:zip:acme/docs#1.0",
		"artifact:jar:acme/docs#1.0",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Path(*) = %v, want %v", got, want)
	}

	if got, _ = app.Path(ModeRuntime, TypeTheme, false, false); len(got) != 0 {
		t.Errorf("Path(theme) = %v, want none", got)
	}
}
