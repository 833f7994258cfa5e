package convert

import (
	"fmt"

	"github.com/minios-linux/transkit/pofile"
	"github.com/minios-linux/transkit/store"
)

// Store is the native store of a converted document: a bilingual catalog
// plus the document it renders into.
type Store struct {
	*pofile.Native
	doc        Document
	original   []byte
	segments   []Segment
	syncTarget bool
}

// Load extracts the segments of lc.Data and builds the catalog.
//
// Without a template every message is its own translation. With one, the
// messages come from the template document; targets are taken from
// lc.Existing when given, otherwise from the segments of lc.Data that sit
// at the same location and carry a different text.
func Load(doc Document, lc *store.LoadContext, syncTarget bool) (*Store, error) {
	segments, err := doc.Extract(lc.Data)
	if err != nil {
		return nil, err
	}
	if lc.Template == nil || lc.IsTemplate {
		catalog := newCatalog(segments, lc.Language)
		for _, e := range catalog.Entries {
			e.Str = []string{e.ID}
		}
		return newStore(doc, catalog, lc.Data, segments, syncTarget), nil
	}

	tmpl, ok := lc.Template.Native().(*Store)
	if !ok {
		return nil, fmt.Errorf("template is a %s file, not a converted document", lc.Template.Descriptor().ID)
	}
	catalog := newCatalog(tmpl.segments, lc.Language)
	if len(lc.Existing) > 0 {
		applyExisting(catalog, lc.Existing)
	} else {
		seedByLocation(catalog, segments)
	}
	return newStore(doc, catalog, tmpl.original, tmpl.segments, syncTarget), nil
}

func newStore(doc Document, catalog *pofile.File, original []byte, segments []Segment, syncTarget bool) *Store {
	return &Store{
		Native:     pofile.NewNative(catalog, false),
		doc:        doc,
		original:   original,
		segments:   segments,
		syncTarget: syncTarget,
	}
}

// newCatalog builds one message per distinct (context, text) pair. Repeated
// segments add their location to the first message.
func newCatalog(segments []Segment, language string) *pofile.File {
	catalog := pofile.NewFile()
	catalog.Header = pofile.NewHeader("transkit", language)
	byKey := make(map[string]*pofile.Entry, len(segments))
	for _, seg := range segments {
		if seg.Source == "" {
			continue
		}
		if e, ok := byKey[seg.key()]; ok {
			e.References = append(e.References, seg.Location)
			continue
		}
		e := &pofile.Entry{
			Context:    seg.Context,
			ID:         seg.Source,
			References: []string{seg.Location},
		}
		if seg.Note != "" {
			e.AutoComments = []string{seg.Note}
		}
		catalog.AddEntry(e)
		byKey[seg.key()] = e
	}
	return catalog
}

// applyExisting restores earlier translations. A text with several known
// translations is resolved by context; without a match it stays empty.
func applyExisting(catalog *pofile.File, existing []store.ExistingUnit) {
	bySource := make(map[string][]store.ExistingUnit, len(existing))
	for _, u := range existing {
		bySource[u.Source] = append(bySource[u.Source], u)
	}
	for _, e := range catalog.Entries {
		candidates := bySource[e.ID]
		var match *store.ExistingUnit
		switch len(candidates) {
		case 0:
			continue
		case 1:
			match = &candidates[0]
		default:
			for i := range candidates {
				if candidates[i].Context == e.Context {
					match = &candidates[i]
					break
				}
			}
		}
		if match == nil {
			continue
		}
		e.Str = []string{match.Target}
		e.SetFuzzy(match.Fuzzy)
	}
}

// seedByLocation takes targets from a translated copy of the template
// document. Segments still equal to their source are not translations.
func seedByLocation(catalog *pofile.File, translated []Segment) {
	byLocation := make(map[string]string, len(translated))
	for _, seg := range translated {
		byLocation[seg.Location] = seg.Source
	}
	for _, e := range catalog.Entries {
		for _, loc := range e.References {
			if text, ok := byLocation[loc]; ok && text != "" && text != e.ID {
				e.Str = []string{text}
				break
			}
		}
	}
}

// Segments returns the segments the catalog was built from.
func (s *Store) Segments() []Segment { return s.segments }

// PO renders the catalog itself.
func (s *Store) PO() ([]byte, error) { return s.Native.Marshal() }

// Marshal renders the document. Fuzzy and untranslated messages keep the
// original text, or their source with target sync. The catalog is left
// untouched.
func (s *Store) Marshal() ([]byte, error) {
	translations := make(map[string]string, len(s.File().Entries))
	for _, e := range s.File().Entries {
		if e.Obsolete || e.ID == "" {
			continue
		}
		switch {
		case e.IsTranslated():
			translations[e.Key()] = e.Text()
		case s.syncTarget:
			translations[e.Key()] = e.ID
		}
	}
	return s.doc.Render(s.original, func(seg Segment) (string, bool) {
		text, ok := translations[seg.key()]
		return text, ok
	})
}
