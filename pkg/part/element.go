// SPDX-License-Identifier: MPL-2.0

package part

import (
	"encoding/xml"
	"strings"
)

// Element is a generic XML element tree. Strategy handlers receive the
// strategy element of a descriptor in this form.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []Element
}

// UnmarshalXML decodes an element and all of its descendants.
func (e *Element) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	e.Name = start.Name
	e.Attrs = nil
	for _, a := range start.Attr {
		if isNamespaceDecl(a) {
			continue
		}
		e.Attrs = append(e.Attrs, a)
	}

	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child Element
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			e.Text = strings.TrimSpace(text.String())
			return nil
		}
	}
}

// MarshalXML encodes the element tree. Children in the same namespace as
// their parent inherit it rather than redeclaring it.
func (e Element) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	return e.encode(enc, "")
}

func (e Element) encode(enc *xml.Encoder, parentSpace string) error {
	name := e.Name
	if name.Space == parentSpace {
		name.Space = ""
	}
	start := xml.StartElement{Name: name, Attr: e.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.encode(enc, e.Name.Space); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Attr returns the value of the unqualified attribute with the given local name.
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given local name, or nil.
func (e *Element) Child(local string) *Element {
	for i := range e.Children {
		if e.Children[i].Name.Local == local {
			return &e.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns the children with the given local name.
func (e *Element) ChildrenNamed(local string) []Element {
	var out []Element
	for _, c := range e.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

func isNamespaceDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}
