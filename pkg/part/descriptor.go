// SPDX-License-Identifier: MPL-2.0

package part

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/depotkit/depot/pkg/artifact"
	"github.com/depotkit/depot/pkg/classpath"
)

// Namespace is the XML namespace of part descriptors and of the built-in
// plugin and resource strategies.
const Namespace = "urn:depot:part"

const (
	rootElement      = "part"
	infoElement      = "info"
	classpathElement = "classpath"
	entryElement     = "uri"
)

type (
	// Info describes a part.
	Info struct {
		// URI is the canonical location the part was loaded from.
		URI         string `json:"uri" yaml:"uri"`
		Title       string `json:"title,omitempty" yaml:"title,omitempty"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
	}

	// Descriptor is a decoded part document.
	Descriptor struct {
		Info      Info
		Classpath classpath.Classpath
		Strategy  Element
	}
)

// Decode reads a part descriptor. uri is recorded in the returned info and
// in errors.
func Decode(r io.Reader, uri string) (*Descriptor, error) {
	var root Element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, &DecodingError{Stage: StageRead, URI: uri, Err: err}
	}
	if root.Name.Space != Namespace || root.Name.Local != rootElement {
		return nil, &UnrecognizedNamespaceError{URI: uri, Namespace: root.Name.Space, Element: root.Name.Local}
	}

	desc := &Descriptor{Info: Info{URI: uri}}
	var strategies []Element
	for _, child := range root.Children {
		switch {
		case child.Name.Space == Namespace && child.Name.Local == infoElement:
			desc.Info.Title, _ = child.Attr("title")
			if d := child.Child("description"); d != nil {
				desc.Info.Description = d.Text
			}
		case child.Name.Space == Namespace && child.Name.Local == classpathElement:
			cp, err := decodeClasspath(uri, &child)
			if err != nil {
				return nil, err
			}
			desc.Classpath = cp
		default:
			strategies = append(strategies, child)
		}
	}
	if len(strategies) != 1 {
		return nil, &DecodingError{
			Stage:   StageStructure,
			URI:     uri,
			Element: rootElement,
			Reason:  fmt.Sprintf("expecting exactly one strategy element, found %d", len(strategies)),
		}
	}
	desc.Strategy = strategies[0]
	return desc, nil
}

func decodeClasspath(uri string, el *Element) (classpath.Classpath, error) {
	var cp classpath.Classpath
	tiers := map[string]*[]string{
		string(classpath.System):    &cp.System,
		string(classpath.Public):    &cp.Public,
		string(classpath.Protected): &cp.Protected,
		string(classpath.Private):   &cp.Private,
	}
	for _, tier := range el.Children {
		dst, ok := tiers[tier.Name.Local]
		if !ok {
			return cp, &DecodingError{
				Stage: StageClasspath, URI: uri, Element: tier.Name.Local,
				Reason: "unknown classpath category",
			}
		}
		for _, entry := range tier.ChildrenNamed(entryElement) {
			if entry.Text == "" {
				return cp, &DecodingError{Stage: StageClasspath, URI: uri, Element: tier.Name.Local, Reason: "empty uri entry"}
			}
			if artifact.IsArtifactURI(entry.Text) {
				if _, err := artifact.Parse(entry.Text); err != nil {
					return cp, &DecodingError{Stage: StageClasspath, URI: uri, Element: tier.Name.Local, Err: err}
				}
			}
			*dst = append(*dst, entry.Text)
		}
	}
	return cp, nil
}

// Encode writes the descriptor as a part document.
func (d *Descriptor) Encode(w io.Writer) error {
	root := Element{Name: xml.Name{Space: Namespace, Local: rootElement}}

	if d.Info.Title != "" || d.Info.Description != "" {
		info := Element{Name: xml.Name{Space: Namespace, Local: infoElement}}
		if d.Info.Title != "" {
			info.Attrs = []xml.Attr{{Name: xml.Name{Local: "title"}, Value: d.Info.Title}}
		}
		if d.Info.Description != "" {
			info.Children = []Element{{Name: xml.Name{Space: Namespace, Local: "description"}, Text: d.Info.Description}}
		}
		root.Children = append(root.Children, info)
	}

	if !d.Classpath.IsEmpty() {
		cpEl := Element{Name: xml.Name{Space: Namespace, Local: classpathElement}}
		for _, c := range classpath.Categories() {
			uris := d.Classpath.Get(c)
			if len(uris) == 0 {
				continue
			}
			tier := Element{Name: xml.Name{Space: Namespace, Local: string(c)}}
			for _, u := range uris {
				tier.Children = append(tier.Children, Element{Name: xml.Name{Space: Namespace, Local: entryElement}, Text: u})
			}
			cpEl.Children = append(cpEl.Children, tier)
		}
		root.Children = append(root.Children, cpEl)
	}
	root.Children = append(root.Children, d.Strategy)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
