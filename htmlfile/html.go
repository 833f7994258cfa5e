// Package htmlfile extracts translatable text from HTML documents.
//
// Every text node with visible content is a segment, as are the alt,
// title and placeholder attributes. Script and style contents are skipped.
// Rendering patches the parsed tree in place, so markup that is not
// translated is written back as the HTML parser understood it.
package htmlfile

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/store"
)

// translatableAttrs are attributes whose values are shown to users.
var translatableAttrs = []string{"alt", "title", "placeholder"}

// Doc is the HTML document backend of the convert bridge.
type Doc struct{}

// slot is one translatable place in the tree.
type slot struct {
	node *html.Node
	// attr indexes node.Attr; it is -1 for text nodes.
	attr int
	seg  convert.Segment

	// lead and trail are the whitespace around text node content.
	lead, trail string
}

// document is a parsed HTML file. Fragments without an html element are
// parsed in body context and rendered without the implied wrapper.
type document struct {
	nodes []*html.Node
	slots []slot
}

func parse(data []byte) (*document, error) {
	d := &document{}
	if isFullDocument(data) {
		root, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}
		d.nodes = []*html.Node{root}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(bytes.NewReader(data), body)
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}
		d.nodes = nodes
	}
	for _, n := range d.nodes {
		d.walk(n)
	}
	return d, nil
}

func isFullDocument(data []byte) bool {
	head := bytes.ToLower(data[:min(len(data), 512)])
	return bytes.Contains(head, []byte("<!doctype")) || bytes.Contains(head, []byte("<html"))
}

func (d *document) walk(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
		for i, a := range n.Attr {
			if a.Namespace != "" || !isTranslatableAttr(a.Key) || strings.TrimSpace(a.Val) == "" {
				continue
			}
			d.slots = append(d.slots, slot{
				node: n,
				attr: i,
				seg: convert.Segment{
					Source:   a.Val,
					Note:     fmt.Sprintf("%s attribute of <%s>", a.Key, n.Data),
					Location: fmt.Sprintf("attr:%d:%s", len(d.slots), a.Key),
				},
			})
		}
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		start := strings.Index(n.Data, text)
		d.slots = append(d.slots, slot{
			node:  n,
			attr:  -1,
			seg:   convert.Segment{Source: text, Location: fmt.Sprintf("text:%d", len(d.slots))},
			lead:  n.Data[:start],
			trail: n.Data[start+len(text):],
		})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

func isTranslatableAttr(key string) bool {
	for _, a := range translatableAttrs {
		if strings.EqualFold(a, key) {
			return true
		}
	}
	return false
}

func (d *document) render() ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range d.nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Extract lists text nodes and translatable attributes in document order.
func (Doc) Extract(data []byte) ([]convert.Segment, error) {
	d, err := parse(data)
	if err != nil {
		return nil, err
	}
	segments := make([]convert.Segment, len(d.slots))
	for i, s := range d.slots {
		segments[i] = s.seg
	}
	return segments, nil
}

// Render replaces translated segments of original. Others keep their text.
func (Doc) Render(original []byte, lookup convert.Lookup) ([]byte, error) {
	d, err := parse(original)
	if err != nil {
		return nil, err
	}
	for _, s := range d.slots {
		text, ok := lookup(s.seg)
		if !ok {
			continue
		}
		if s.attr >= 0 {
			s.node.Attr[s.attr].Val = text
		} else {
			s.node.Data = s.lead + text + s.trail
		}
	}
	return d.render()
}

// Descriptor returns the HTML format.
func Descriptor() *store.Descriptor {
	return convert.Descriptor(Doc{}, convert.Options{
		ID:        "html",
		Name:      "HTML file",
		MimeType:  "text/html",
		Extension: "html",
		Autoload:  []string{"*.html", "*.htm", "*.xhtml"},
		Sniff: func(data []byte) bool {
			head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
			return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
		},
	})
}
