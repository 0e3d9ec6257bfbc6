// SPDX-License-Identifier: MPL-2.0

package library

import (
	"errors"
	"testing"
)

func TestPolicy_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		policy Policy
		mode   Mode
		want   bool
	}{
		{DefaultPolicy(), ModeBuild, true},
		{DefaultPolicy(), ModeRuntime, true},
		{runtimeOnly, ModeRuntime, true},
		{runtimeOnly, ModeBuild, false},
		{runtimeOnly, ModeTest, false},
		{buildOnly, ModeBuild, true},
		{Policy{}, ModeAny, true},
		{Policy{}, ModeTest, false},
		{DefaultPolicy(), Mode("deploy"), false},
	}

	for _, tt := range tests {
		if got := tt.policy.Matches(tt.mode); got != tt.want {
			t.Errorf("%v.Matches(%s) = %v, want %v", tt.policy, tt.mode, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Policy
	}{
		{"", DefaultPolicy()},
		{"any", DefaultPolicy()},
		{"*", DefaultPolicy()},
		{"runtime", runtimeOnly},
		{"build, test", Policy{Build: true, Test: true}},
		{"RUNTIME,build", Policy{Build: true, Runtime: true}},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if err != nil {
			t.Errorf("ParsePolicy(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back, err := ParsePolicy(got.String()); err != nil || back != got {
			t.Errorf("ParsePolicy(%q.String()) = %v, %v", tt.in, back, err)
		}
	}

	if _, err := ParsePolicy("build,deploy"); !errors.Is(err, ErrInvalidPolicy) || !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidPolicy wrapping ErrInvalidMode, got %v", err)
	}
}

func TestResourceRef_Matches(t *testing.T) {
	t.Parallel()

	api := ref("a", DefaultPolicy(), CategoryAPI)
	anyRef := ref("b", DefaultPolicy(), CategoryAny)

	if !api.Matches(CategoryAPI) || !api.Matches(CategoryAny) {
		t.Error("api ref should match api and any")
	}
	if api.Matches(CategoryImpl) {
		t.Error("api ref should not match impl")
	}
	if !anyRef.Matches(CategorySPI) {
		t.Error("wildcard ref should match every category")
	}
}

func TestParseCategoryAndScope(t *testing.T) {
	t.Parallel()

	if c, err := ParseCategory(""); err != nil || c != CategoryAny {
		t.Errorf("ParseCategory(\"\") = %q, %v", c, err)
	}
	if c, err := ParseCategory("SPI"); err != nil || c != CategorySPI {
		t.Errorf("ParseCategory(SPI) = %q, %v", c, err)
	}
	if _, err := ParseCategory("internal"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
	if s, err := ParseScope(""); err != nil || s != ScopeLink {
		t.Errorf("ParseScope(\"\") = %q, %v", s, err)
	}
	if _, err := ParseScope("plugin"); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestParseModuleRef(t *testing.T) {
	t.Parallel()

	m, err := ParseModuleRef("key:acme")
	if err != nil || !m.IsIndirect() || m.Value() != "acme" || m.String() != "key:acme" {
		t.Errorf("ParseModuleRef(key:acme) = %+v, %v", m, err)
	}
	m, err = ParseModuleRef("artifact:module:acme/acme#1.0")
	if err != nil || m.IsIndirect() || m.IsZero() {
		t.Errorf("ParseModuleRef(uri) = %+v, %v", m, err)
	}
	if m, _ := ParseModuleRef(""); !m.IsZero() {
		t.Error("empty module should be zero")
	}
	if _, err := ParseModuleRef("key:"); err == nil {
		t.Error("expected error for empty key binding")
	}
}
