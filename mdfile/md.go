// Package mdfile splits Markdown documents into translatable segments.
//
// String fields of a YAML front matter block become segments keyed
// "fm:<field>". The body is cut before every ATX heading and thematic
// break that is not inside a fenced code block; each piece becomes a
// segment keyed "sec:<n>". Writing a document joins the segments back
// together, so a translation carries exactly the sections of its source.
package mdfile

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/store"
)

const (
	frontPrefix   = "fm:"
	sectionPrefix = "sec:"
)

// Segment is one translatable piece of a document.
type Segment struct {
	Key  string
	Text string
}

// Document is a parsed Markdown file.
type Document struct {
	Segments []Segment
	// front is the front matter mapping, nil without front matter.
	front *yaml.Node
}

// Parse splits data into segments.
func Parse(data []byte) (*Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	d := &Document{}
	if raw, body, ok := cutFrontMatter(text); ok {
		var node yaml.Node
		err := yaml.Unmarshal([]byte(raw), &node)
		switch {
		case err == nil && len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode:
			d.front = node.Content[0]
			text = body
		case strings.TrimSpace(raw) == "":
			text = body
		}
	}
	for key, value := range d.frontFields() {
		d.Segments = append(d.Segments, Segment{Key: frontPrefix + key.Value, Text: value.Value})
	}
	for i, s := range sections(text) {
		d.Segments = append(d.Segments, Segment{Key: sectionPrefix + strconv.Itoa(i), Text: s})
	}
	return d, nil
}

// cutFrontMatter separates a leading "---" delimited block from the body.
func cutFrontMatter(text string) (front, body string, ok bool) {
	rest, found := strings.CutPrefix(text, "---\n")
	if !found {
		return "", text, false
	}
	if strings.HasPrefix(rest, "---\n") {
		return "", rest[4:], true
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return "", text, false
		}
		end = len(rest) - 4
	}
	body = rest[min(end+5, len(rest)):]
	return rest[:end], body, true
}

// frontFields yields the string fields of the front matter in order.
func (d *Document) frontFields() iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(key, value *yaml.Node) bool) {
		if d.front == nil {
			return
		}
		for i := 0; i+1 < len(d.front.Content); i += 2 {
			k, v := d.front.Content[i], d.front.Content[i+1]
			if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// sections cuts body before headings and thematic breaks outside code
// fences and drops blank pieces.
func sections(body string) []string {
	var (
		out   []string
		cur   []string
		fence string
	)
	flush := func() {
		if s := strings.TrimSpace(strings.Join(cur, "\n")); s != "" {
			out = append(out, s)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```"), strings.HasPrefix(trimmed, "~~~"):
			fence = trimmed[:3]
		case isHeading(line), isBreak(trimmed):
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

func isHeading(line string) bool {
	level := len(line) - len(strings.TrimLeft(line, "#"))
	return level >= 1 && level <= 6 && len(line) > level && line[level] == ' '
}

func isBreak(line string) bool {
	if len(line) < 3 || !strings.ContainsRune("-*_", rune(line[0])) {
		return false
	}
	return strings.Trim(line, line[:1]+" ") == ""
}

// Text returns the text of segment key.
func (d *Document) Text(key string) (string, bool) {
	for _, s := range d.Segments {
		if s.Key == key {
			return s.Text, true
		}
	}
	return "", false
}

// Set replaces the text of segment key.
func (d *Document) Set(key, text string) bool {
	for i := range d.Segments {
		if d.Segments[i].Key == key {
			d.Segments[i].Text = text
			return true
		}
	}
	return false
}

// Marshal joins the document back together. Empty sections are left out.
func (d *Document) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if d.front != nil {
		for key, value := range d.frontFields() {
			if text, ok := d.Text(frontPrefix + key.Value); ok {
				value.Value = text
			}
		}
		out, err := yaml.Marshal(d.front)
		if err != nil {
			return nil, fmt.Errorf("writing front matter: %w", err)
		}
		b.WriteString("---\n")
		b.Write(bytes.TrimSpace(out))
		b.WriteString("\n---\n")
	}
	var parts []string
	for _, s := range d.Segments {
		if strings.HasPrefix(s.Key, sectionPrefix) && strings.TrimSpace(s.Text) != "" {
			parts = append(parts, strings.TrimSpace(s.Text))
		}
	}
	if len(parts) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(parts, "\n\n"))
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

// Doc is the Markdown backend of the convert bridge.
type Doc struct{}

// Extract returns the segments of data located by their keys.
func (Doc) Extract(data []byte) ([]convert.Segment, error) {
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	out := make([]convert.Segment, len(d.Segments))
	for i, s := range d.Segments {
		out[i] = s.segment()
	}
	return out, nil
}

func (s Segment) segment() convert.Segment {
	seg := convert.Segment{Source: s.Text, Location: s.Key}
	if field, ok := strings.CutPrefix(s.Key, frontPrefix); ok {
		seg.Note = "Front matter field " + field
	}
	return seg
}

// Render rebuilds original with translated segments. Untranslated
// sections are dropped while front matter fields keep their value.
func (Doc) Render(original []byte, lookup convert.Lookup) ([]byte, error) {
	d, err := Parse(original)
	if err != nil {
		return nil, err
	}
	for i, s := range d.Segments {
		if text, ok := lookup(s.segment()); ok {
			d.Segments[i].Text = text
		} else if strings.HasPrefix(s.Key, sectionPrefix) {
			d.Segments[i].Text = ""
		}
	}
	return d.Marshal()
}

// Descriptor returns the Markdown format.
func Descriptor() *store.Descriptor {
	return convert.Descriptor(Doc{}, convert.Options{
		ID:              "markdown",
		Name:            "Markdown file",
		MimeType:        "text/markdown",
		Extension:       "md",
		Autoload:        []string{"*.md", "*.markdown"},
		NeedsTargetSync: true,
	})
}
