// Package txtfile splits plain text documents into paragraphs.
//
// A paragraph is a run of lines separated from the next by at least one
// blank line. Separators and surrounding whitespace are kept verbatim, so
// only paragraph text changes on render.
package txtfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/store"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n\s*`)

// Doc is the plain text backend of the convert bridge.
type Doc struct{}

// chunk is a piece of the document: a paragraph or the text between two.
type chunk struct {
	text      string
	paragraph int // -1 for separators
}

func split(data []byte) []chunk {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var chunks []chunk
	n := 0
	add := func(s string) {
		core := strings.TrimSpace(s)
		if core == "" {
			chunks = append(chunks, chunk{text: s, paragraph: -1})
			return
		}
		start := strings.Index(s, core)
		if start > 0 {
			chunks = append(chunks, chunk{text: s[:start], paragraph: -1})
		}
		chunks = append(chunks, chunk{text: core, paragraph: n})
		n++
		if rest := s[start+len(core):]; rest != "" {
			chunks = append(chunks, chunk{text: rest, paragraph: -1})
		}
	}
	prev := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		add(text[prev:loc[0]])
		chunks = append(chunks, chunk{text: text[loc[0]:loc[1]], paragraph: -1})
		prev = loc[1]
	}
	add(text[prev:])
	return chunks
}

func location(paragraph int) string { return fmt.Sprintf("par:%d", paragraph) }

// Extract returns one segment per paragraph.
func (Doc) Extract(data []byte) ([]convert.Segment, error) {
	var segments []convert.Segment
	for _, c := range split(data) {
		if c.paragraph >= 0 {
			segments = append(segments, convert.Segment{Source: c.text, Location: location(c.paragraph)})
		}
	}
	return segments, nil
}

// Render replaces translated paragraphs of original.
func (Doc) Render(original []byte, lookup convert.Lookup) ([]byte, error) {
	var b strings.Builder
	for _, c := range split(original) {
		if c.paragraph >= 0 {
			if text, ok := lookup(convert.Segment{Source: c.text, Location: location(c.paragraph)}); ok {
				b.WriteString(text)
				continue
			}
		}
		b.WriteString(c.text)
	}
	return []byte(b.String()), nil
}

// Descriptor returns the plain text format.
func Descriptor() *store.Descriptor {
	return convert.Descriptor(Doc{}, convert.Options{
		ID:        "txt",
		Name:      "Plain text file",
		MimeType:  "text/plain",
		Extension: "txt",
		Autoload:  []string{"*.txt"},
	})
}
