// Package android reads and writes Android string resource files
// (res/values*/strings.xml).
//
// Three resource elements carry text: <string>, <string-array> and
// <plurals>. All of them are modelled as a Resource holding a list of
// Items, so a plain string has one item, an array one per <item> and a
// plurals block one per quantity. Comments between resources are kept as
// resources of kind Comment.
//
// Resources marked translatable="false" are parsed and written back into
// source files, but MarshalTarget leaves them out of locale files because
// Android falls back to the default values for them.
package android

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Kind is the element a resource was read from.
type Kind int

const (
	String Kind = iota
	StringArray
	Plurals
	Comment
)

func (k Kind) element() string {
	switch k {
	case String:
		return "string"
	case StringArray:
		return "string-array"
	case Plurals:
		return "plurals"
	}
	return ""
}

func kindOf(element string) (Kind, bool) {
	switch element {
	case "string":
		return String, true
	case "string-array":
		return StringArray, true
	case "plurals":
		return Plurals, true
	}
	return Comment, false
}

// Item is one text of a resource. Quantity is only set inside <plurals>.
// Text holds apostrophes unescaped.
type Item struct {
	Quantity string
	Text     string
	CDATA    bool
}

// Resource is a child of <resources>.
type Resource struct {
	Kind         Kind
	Name         string
	Translatable bool
	Items        []Item
	// Comment is the comment text for resources of kind Comment.
	Comment string
}

// Editable reports whether the resource carries translatable text.
func (r *Resource) Editable() bool { return r.Kind != Comment && r.Translatable }

// Texts returns the item texts in document order.
func (r *Resource) Texts() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Text
	}
	return out
}

// Clone returns a deep copy of r.
func (r *Resource) Clone() *Resource {
	c := *r
	c.Items = slices.Clone(r.Items)
	return &c
}

// File is a parsed strings.xml document.
type File struct {
	Resources []*Resource
	names     map[string]*Resource
}

// Lookup returns the resource called name or nil.
func (f *File) Lookup(name string) *Resource { return f.names[name] }

// Add appends r. Resource names are unique within a file.
func (f *File) Add(r *Resource) error {
	if r.Name == "" {
		return errors.New("resource without name")
	}
	if f.names == nil {
		f.names = make(map[string]*Resource)
	}
	if _, ok := f.names[r.Name]; ok {
		return fmt.Errorf("resource %q already exists", r.Name)
	}
	f.names[r.Name] = r
	f.Resources = append(f.Resources, r)
	return nil
}

// Remove deletes the resource called name.
func (f *File) Remove(name string) bool {
	r, ok := f.names[name]
	if !ok {
		return false
	}
	delete(f.names, name)
	f.Resources = slices.DeleteFunc(f.Resources, func(x *Resource) bool { return x == r })
	return true
}

// parser walks the token stream while keeping the raw input around, so
// element content can be sliced out verbatim by offset. encoding/xml hides
// whether text came from a CDATA section; the raw bytes still show it.
type parser struct {
	data []byte
	dec  *xml.Decoder
}

// Parse parses strings.xml data.
func Parse(data []byte) (*File, error) {
	p := &parser{data: data, dec: xml.NewDecoder(bytes.NewReader(data))}
	p.dec.Entity = xml.HTMLEntity
	f, err := p.document()
	if err != nil {
		return nil, fmt.Errorf("parsing strings.xml: %w", err)
	}
	return f, nil
}

func (p *parser) document() (*File, error) {
	f := &File{names: make(map[string]*Resource)}
	found, inside := false, false
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !inside {
				if t.Name.Local == "resources" {
					found, inside = true, true
				}
				continue
			}
			kind, ok := kindOf(t.Name.Local)
			if !ok {
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			r, err := p.resource(kind, t)
			if err != nil {
				return nil, err
			}
			if err := f.Add(r); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "resources" {
				inside = false
			}
		case xml.Comment:
			if text := strings.TrimSpace(string(t)); inside && text != "" {
				f.Resources = append(f.Resources, &Resource{Kind: Comment, Comment: text})
			}
		}
	}
	if !found {
		return nil, errors.New("no <resources> element")
	}
	return f, nil
}

func (p *parser) resource(kind Kind, start xml.StartElement) (*Resource, error) {
	r := &Resource{Kind: kind, Translatable: true}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			r.Name = a.Value
		case "translatable":
			r.Translatable = !strings.EqualFold(a.Value, "false")
		}
	}
	if kind == String {
		it, err := p.text()
		if err != nil {
			return nil, fmt.Errorf("<string name=%q>: %w", r.Name, err)
		}
		r.Items = []Item{it}
		return r, nil
	}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("<%s name=%q>: %w", kind.element(), r.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "item" {
				if err := p.dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			it, err := p.text()
			if err != nil {
				return nil, fmt.Errorf("<%s name=%q>: %w", kind.element(), r.Name, err)
			}
			if kind == Plurals {
				it.Quantity = attr(t, "quantity")
				if it.Quantity == "" {
					continue
				}
			}
			r.Items = append(r.Items, it)
		case xml.EndElement:
			return r, nil
		}
	}
}

// text reads the content of the element just opened up to its end tag.
// Inline markup such as <b> or <xliff:g> is kept as written.
func (p *parser) text() (Item, error) {
	begin := p.dec.InputOffset()
	var chars strings.Builder
	markup := false
	for depth := 1; ; {
		end := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return Item{}, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			chars.Write(t)
		case xml.StartElement:
			markup = true
			depth++
		case xml.EndElement:
			if depth--; depth == 0 {
				raw := string(p.data[begin:end])
				it := Item{CDATA: strings.HasPrefix(strings.TrimSpace(raw), "<![CDATA[")}
				if markup {
					it.Text = unescapeApostrophes(raw)
				} else {
					it.Text = unescapeApostrophes(chars.String())
				}
				return it, nil
			}
		}
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func unescapeApostrophes(s string) string { return strings.ReplaceAll(s, `\'`, `'`) }

// escapeApostrophes escapes ' for aapt without doubling existing escapes.
func escapeApostrophes(s string) string {
	return strings.ReplaceAll(unescapeApostrophes(s), `'`, `\'`)
}
