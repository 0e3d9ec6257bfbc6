// SPDX-License-Identifier: MPL-2.0

package library

import (
	_ "embed"
	"fmt"
	"path"

	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/cueutil"
)

// DefaultFilename is the conventional name of a library definition.
const DefaultFilename = "library.cue"

//go:embed library_schema.cue
var librarySchema []byte

type (
	libraryDoc struct {
		Group     string        `json:"group,omitempty"`
		Resources []resourceDoc `json:"resources"`
	}

	resourceDoc struct {
		Key     string   `json:"key"`
		Group   string   `json:"group"`
		Name    string   `json:"name"`
		Version string   `json:"version,omitempty"`
		Types   []string `json:"types"`
		Module  string   `json:"module,omitempty"`
		Refs    []refDoc `json:"refs,omitempty"`
	}

	refDoc struct {
		Key      string `json:"key"`
		Policy   string `json:"policy,omitempty"`
		Category string `json:"category,omitempty"`
		Scope    string `json:"scope,omitempty"`
	}
)

// Parse decodes a library definition and builds its index.
func Parse(data []byte, filename string) (*Index, error) {
	doc, err := cueutil.Decode[libraryDoc](librarySchema, "#Library", data, cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return doc.index(filename)
}

// Load reads and parses the library definition at file.
func Load(file string) (*Index, error) {
	doc, err := cueutil.DecodeFile[libraryDoc](librarySchema, "#Library", file)
	if err != nil {
		return nil, err
	}
	return doc.index(file)
}

func (d *libraryDoc) index(filename string) (*Index, error) {
	specs := make([]ResourceSpec, 0, len(d.Resources))
	for i, rd := range d.Resources {
		spec, err := rd.spec(d.Group)
		if err != nil {
			return nil, fmt.Errorf("%s: resources[%d]: %w", filename, i, err)
		}
		specs = append(specs, spec)
	}
	idx, err := NewIndex(specs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return idx, nil
}

func (rd resourceDoc) spec(baseGroup string) (ResourceSpec, error) {
	group := rd.Group
	if baseGroup != "" {
		group = path.Join(baseGroup, group)
	}
	types := rd.Types
	if len(types) == 0 {
		types = []string{"jar"}
	}
	info, err := artifact.NewInfo(group, rd.Name, rd.Version, types...)
	if err != nil {
		return ResourceSpec{}, err
	}

	refs := make([]ResourceRef, 0, len(rd.Refs))
	for _, d := range rd.Refs {
		ref, err := d.ref()
		if err != nil {
			return ResourceSpec{}, fmt.Errorf("ref %q: %w", d.Key, err)
		}
		refs = append(refs, ref)
	}

	return ResourceSpec{
		Key:    rd.Key,
		Info:   info,
		Refs:   refs,
		Module: rd.Module,
	}, nil
}

func (d refDoc) ref() (ResourceRef, error) {
	policy, err := ParsePolicy(d.Policy)
	if err != nil {
		return ResourceRef{}, err
	}
	category, err := ParseCategory(d.Category)
	if err != nil {
		return ResourceRef{}, err
	}
	scope, err := ParseScope(d.Scope)
	if err != nil {
		return ResourceRef{}, err
	}
	return ResourceRef{Key: d.Key, Policy: policy, Category: category, Scope: scope}, nil
}
