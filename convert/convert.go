// Package convert edits documents that have no bilingual form of their own
// (HTML, Markdown, plain text, RC scripts, office files) through an
// in-memory gettext catalog.
//
// A Document backend splits a file into segments. Loading builds one PO
// message per segment; saving renders the original document again with
// every segment replaced by its translation. The catalog is never written
// to disk.
package convert

import (
	"github.com/minios-linux/transkit/store"
)

// Segment is one translatable run of text in a document.
type Segment struct {
	// Context disambiguates equal texts (msgctxt). Usually empty.
	Context string
	// Source is the text as found in the document.
	Source string
	// Note is shown to translators as an extracted comment.
	Note string
	// Location is unique within a document and stable across its
	// translations, e.g. "p:3" or "STRINGTABLE:IDS_OK".
	Location string
}

// key is the catalog key of the segment, as pofile.Entry.Key builds it.
func (s Segment) key() string {
	if s.Context == "" {
		return s.Source
	}
	return s.Context + "\x04" + s.Source
}

// Lookup returns the translation of a segment. ok is false when the
// segment must keep its original text.
type Lookup func(seg Segment) (text string, ok bool)

// Document is a foreign format backend.
type Document interface {
	// Extract lists the segments of data in document order.
	Extract(data []byte) ([]Segment, error)
	// Render rewrites original replacing each segment with its lookup
	// result. It must extract the same segments Extract does.
	Render(original []byte, lookup Lookup) ([]byte, error)
}

// Options describes a converted format.
type Options struct {
	ID        string
	Name      string
	MimeType  string
	Extension string
	Autoload  []string
	// NeedsTargetSync renders untranslated segments with their source.
	// Set it for documents that are reassembled from segments instead of
	// patched in place.
	NeedsTargetSync bool
	Sniff           func(data []byte) bool
}

// Descriptor registers doc as a store format.
func Descriptor(doc Document, opts Options) *store.Descriptor {
	return &store.Descriptor{
		ID:        opts.ID,
		Name:      opts.Name,
		MimeType:  opts.MimeType,
		Extension: opts.Extension,
		Autoload:  opts.Autoload,
		Capabilities: store.Capabilities{
			Monolingual:     store.MonolingualEither,
			HashSource:      true,
			MergesTemplate:  true,
			NeedsTargetSync: opts.NeedsTargetSync,
			LanguageFormat:  "posix",
		},
		Load: func(lc *store.LoadContext) (store.Native, error) {
			return Load(doc, lc, opts.NeedsTargetSync)
		},
		// A new translation starts as a copy of the document; untouched
		// segments then read as equal to their source.
		NewTranslation: func(base []byte, _ string) ([]byte, error) {
			return append([]byte(nil), base...), nil
		},
		Sniff: opts.Sniff,
	}
}
