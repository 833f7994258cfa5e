// Package xliff reads and writes XLIFF 1.2 documents.
//
// Elements the model does not know about (headers, context groups,
// alternative translations) are kept as raw XML and written back.
// Inline markup inside source and target is kept verbatim.
package xliff

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespace is the XLIFF 1.2 namespace.
const Namespace = "urn:oasis:names:tc:xliff:document:1.2"

type Xliff struct {
	XMLName xml.Name `xml:"xliff"`
	Version string   `xml:"version,attr"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Files   []*File  `xml:"file"`
}

type File struct {
	Original   string     `xml:"original,attr"`
	SourceLang string     `xml:"source-language,attr"`
	TargetLang string     `xml:"target-language,attr,omitempty"`
	DataType   string     `xml:"datatype,attr"`
	Attrs      []xml.Attr `xml:",any,attr"`
	Header     *Raw       `xml:"header"`
	Units      []*Unit    `xml:"body>trans-unit"`
}

type Unit struct {
	ID        string     `xml:"id,attr"`
	Resname   string     `xml:"resname,attr,omitempty"`
	Approved  string     `xml:"approved,attr,omitempty"`
	Translate string     `xml:"translate,attr,omitempty"`
	Attrs     []xml.Attr `xml:",any,attr"`
	Source    Text       `xml:"source"`
	Target    *Text      `xml:"target"`
	Notes     []Note     `xml:"note"`
	Extra     []Raw      `xml:",any"`
}

// Text is a source or target element. Inner holds its content as XML.
type Text struct {
	State string     `xml:"state,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

type Note struct {
	From string `xml:"from,attr,omitempty"`
	Text string `xml:",chardata"`
}

// Raw is an element kept as is.
type Raw struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// Parse decodes an XLIFF document.
func Parse(data []byte) (*Xliff, error) {
	var x Xliff
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("parsing XLIFF: %w", err)
	}
	if !strings.HasPrefix(x.Version, "1.") {
		return nil, fmt.Errorf("unsupported XLIFF version %q", x.Version)
	}
	// Children are written without a namespace, the default one comes
	// from the xmlns attribute.
	x.XMLName = xml.Name{}
	for _, f := range x.Files {
		if f.Header != nil {
			f.Header.XMLName.Space = ""
		}
		for _, u := range f.Units {
			for i := range u.Extra {
				u.Extra[i].XMLName.Space = ""
			}
		}
	}
	return &x, nil
}

// Marshal encodes x with an XML declaration.
func (x *Xliff) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(x); err != nil {
		return nil, fmt.Errorf("writing XLIFF: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Key is the identifier of u used as its context.
func (u *Unit) Key() string {
	if u.Resname != "" {
		return u.Resname
	}
	return u.ID
}

// TextOf returns the content of t as plain text when it has no markup and
// verbatim otherwise.
func TextOf(t *Text) string {
	if t == nil {
		return ""
	}
	if !strings.Contains(t.Inner, "<") {
		var s string
		if err := xml.Unmarshal([]byte("<t>"+t.Inner+"</t>"), &s); err == nil {
			return s
		}
	}
	return t.Inner
}

// SetText stores value in t. Well-formed markup is kept, anything else is
// escaped.
func SetText(t *Text, value string) {
	if strings.Contains(value, "<") && wellFormed(value) {
		t.Inner = value
		return
	}
	t.Inner = escaper.Replace(value)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func wellFormed(fragment string) bool {
	dec := xml.NewDecoder(strings.NewReader("<t>" + fragment + "</t>"))
	for {
		if _, err := dec.Token(); err != nil {
			return errors.Is(err, io.EOF)
		}
	}
}
