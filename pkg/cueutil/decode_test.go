// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Host: {
	id:       string & !=""
	priority: int | *100
	enabled:  bool | *true
}
#Doc: {
	hosts: [...#Host]
}
`

type (
	testHost struct {
		ID       string `json:"id"`
		Priority int    `json:"priority"`
		Enabled  bool   `json:"enabled"`
	}

	testDoc struct {
		Hosts []testHost `json:"hosts"`
	}
)

func TestDecode(t *testing.T) {
	t.Parallel()

	doc, err := Decode[testDoc]([]byte(testSchema), "#Doc", []byte(`hosts: [{id: "central"}, {id: "mirror", priority: 10}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(doc.Hosts))
	}
	if doc.Hosts[0].Priority != 100 || !doc.Hosts[0].Enabled {
		t.Errorf("defaults not applied: %+v", doc.Hosts[0])
	}
	if doc.Hosts[1].Priority != 10 {
		t.Errorf("priority = %d, want 10", doc.Hosts[1].Priority)
	}
}

func TestDecode_ValidationErrorHasPath(t *testing.T) {
	t.Parallel()

	_, err := Decode[testDoc]([]byte(testSchema), "#Doc", []byte(`hosts: [{id: "a"}, {id: "b", priority: "high"}]`),
		WithFilename("hosts.cue"))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "hosts.cue") || !strings.Contains(msg, "hosts[1].priority") {
		t.Errorf("error should name file and path, got: %s", msg)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := Decode[testDoc]([]byte(testSchema), "#Doc", []byte(`hosts: []`), WithMaxFileSize(4))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.cue")
	if err := os.WriteFile(path, []byte(`hosts: [{id: "local"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := DecodeFile[testDoc]([]byte(testSchema), "#Doc", path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if doc.Hosts[0].ID != "local" {
		t.Errorf("ID = %q", doc.Hosts[0].ID)
	}

	if _, err := DecodeFile[testDoc]([]byte(testSchema), "#Doc", filepath.Join(t.TempDir(), "missing.cue")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"hosts"}, "hosts"},
		{[]string{"hosts", "0", "priority"}, "hosts[0].priority"},
		{[]string{"resources", "2", "refs", "10"}, "resources[2].refs[10]"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
