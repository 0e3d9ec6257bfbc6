// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"slices"
	"strings"
	"testing"
)

func TestClasspath_AllAndGet(t *testing.T) {
	t.Parallel()

	cp := &Classpath{
		System:  []string{"s"},
		Public:  []string{"p1", "p2"},
		Private: []string{"x"},
	}

	if got := cp.All(); !slices.Equal(got, []string{"s", "p1", "p2", "x"}) {
		t.Errorf("All() = %v", got)
	}
	pub := cp.Get(Public)
	pub[0] = "mutated"
	if cp.Public[0] != "p1" {
		t.Error("Get() must return a copy")
	}
	if cp.IsEmpty() || !(&Classpath{}).IsEmpty() {
		t.Error("IsEmpty() mismatch")
	}
	if !cp.Equal(cp.Clone()) {
		t.Error("Clone() should be equal")
	}
	if s := cp.String(); !strings.Contains(s, "public:\n  p1\n  p2\n") || strings.Contains(s, "protected") {
		t.Errorf("String() = %q", s)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		got, err := ParseCategory(strings.ToUpper(string(c)))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("shared"); err == nil {
		t.Error("expected error")
	}
}
