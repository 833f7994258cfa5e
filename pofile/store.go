package pofile

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/minios-linux/transkit/store"
)

// Descriptor returns the bilingual gettext PO format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "po",
		Name:      "gettext PO file",
		MimeType:  "text/x-gettext-catalog",
		Extension: "po",
		Autoload:  []string{"*.po", "*.pot"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualNever,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "posix",
		},
		Load:           load(false),
		NewTranslation: NewTranslation,
		Sniff:          sniff,
	}
}

// MonolingualDescriptor returns PO used as a key/value store: msgid is the
// key and msgstr the value, paired with a template catalog.
func MonolingualDescriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "po-mono",
		Name:      "gettext PO file (monolingual)",
		MimeType:  "text/x-gettext-catalog",
		Extension: "po",
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualAlways,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			BilingualID:    "po",
			LanguageFormat: "posix",
		},
		Load:           load(true),
		NewTranslation: NewTranslation,
	}
}

func load(mono bool) func(*store.LoadContext) (store.Native, error) {
	return func(lc *store.LoadContext) (store.Native, error) {
		f, err := Parse(bytes.NewReader(lc.Data))
		if err != nil {
			return nil, err
		}
		return NewNative(f, mono), nil
	}
}

func sniff(data []byte) bool {
	return bytes.Contains(data, []byte("msgid ")) && bytes.Contains(data, []byte("msgstr"))
}

// NewTranslation derives an empty catalog for lang from a template or
// another translation.
func NewTranslation(base []byte, lang string) ([]byte, error) {
	src := NewFile()
	if len(base) > 0 {
		var err error
		if src, err = Parse(bytes.NewReader(base)); err != nil {
			return nil, err
		}
	}
	project := src.HeaderField("Project-Id-Version")
	if project == "" {
		project = "PACKAGE VERSION"
	}

	out := NewFile()
	out.Header = NewHeader(project, lang)
	nplurals := out.NPlurals()
	for _, e := range src.Entries {
		if e.Obsolete {
			continue
		}
		c := e.Clone()
		c.SetFuzzy(false)
		c.Previous = Previous{}
		c.Str = nil
		if c.Plural() {
			c.Str = make([]string, nplurals)
		}
		out.AddEntry(c)
	}
	return out.Marshal()
}

// Native exposes a parsed catalog as a store.Native.
type Native struct {
	file     *File
	mono     bool
	nplurals int
	header   *entry
	entries  []*entry
}

// NewNative wraps f. With mono set, msgid is reported as context and msgstr
// as both source and target.
func NewNative(f *File, mono bool) *Native {
	n := &Native{}
	n.Replace(f, mono)
	return n
}

// Replace swaps the wrapped catalog, rebuilding all entry wrappers.
func (n *Native) Replace(f *File, mono bool) {
	n.file = f
	n.mono = mono
	n.nplurals = f.NPlurals()
	n.header = nil
	if f.Header != nil {
		n.header = &entry{owner: n, po: f.Header, mono: mono, nplurals: n.nplurals, header: true}
	}
	n.entries = make([]*entry, len(f.Entries))
	for i, e := range f.Entries {
		n.entries[i] = &entry{owner: n, po: e, mono: mono, nplurals: n.nplurals}
	}
}

// File returns the wrapped catalog.
func (n *Native) File() *File { return n.file }

// Monolingual reports how entries are interpreted.
func (n *Native) Monolingual() bool { return n.mono }

func (n *Native) Entries() []store.Entry {
	out := make([]store.Entry, 0, len(n.entries)+1)
	if n.header != nil {
		out = append(out, n.header)
	}
	for _, e := range n.entries {
		out = append(out, e)
	}
	return out
}

func (n *Native) CreateEntry(key string, source, target []string) (store.Entry, error) {
	e := &Entry{}
	if n.mono {
		if key == "" {
			return nil, errors.New("empty msgid")
		}
		e.ID = key
		e.Str = []string{store.JoinPlural(target)}
	} else {
		if len(source) == 0 || source[0] == "" {
			return nil, errors.New("empty msgid")
		}
		e.Context = key
		e.ID = source[0]
		if len(source) > 1 {
			e.PluralID = source[1]
		}
		if e.Plural() && len(target) == 0 {
			target = make([]string, n.nplurals)
		}
		e.SetTranslations(target)
	}
	return &entry{po: e, mono: n.mono, nplurals: n.nplurals}, nil
}

func (n *Native) AddEntry(se store.Entry) error {
	e, ok := se.(*entry)
	if !ok {
		return fmt.Errorf("foreign entry %T", se)
	}
	if e.owner != nil || e.header {
		return fmt.Errorf("entry %q already attached", e.Context())
	}
	n.file.AddEntry(e.po)
	e.owner = n
	e.nplurals = n.nplurals
	n.entries = append(n.entries, e)
	return nil
}

func (n *Native) DeleteEntry(se store.Entry) (bool, error) {
	e, ok := se.(*entry)
	if !ok || e.owner != n || e.header {
		return false, fmt.Errorf("entry %q not in catalog", se.Context())
	}
	if !n.file.RemoveEntry(e.po) {
		return false, fmt.Errorf("entry %q not in catalog", se.Context())
	}
	n.entries = slices.DeleteFunc(n.entries, func(x *entry) bool { return x == e })
	e.owner = nil
	return true, nil
}

func (n *Native) Marshal() ([]byte, error) { return n.file.Marshal() }

// Validate checks the Plural-Forms header and rejects duplicate messages.
func (n *Native) Validate() error {
	if n.file.HeaderField("Plural-Forms") != "" {
		if _, err := n.file.PluralForms(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(n.file.Entries))
	for _, e := range n.file.Entries {
		if e.Obsolete {
			continue
		}
		if seen[e.Key()] {
			return fmt.Errorf("duplicate message definition %q", e.ID)
		}
		seen[e.Key()] = true
	}
	return nil
}

type entry struct {
	owner    *Native
	po       *Entry
	mono     bool
	header   bool
	nplurals int
}

// PO returns the underlying catalog entry.
func (e *entry) PO() *Entry { return e.po }

func (e *entry) Context() string {
	if e.mono {
		return e.po.ID
	}
	return e.po.Context
}

func (e *entry) Source() []string {
	if e.mono {
		return e.Target()
	}
	if e.po.Plural() {
		return []string{e.po.ID, e.po.PluralID}
	}
	return []string{e.po.ID}
}

func (e *entry) Target() []string {
	if e.mono && !e.po.Plural() {
		return store.SplitPlural(e.po.Text())
	}
	return e.po.Translations(e.nplurals)
}

func (e *entry) SetTarget(target []string) error {
	if e.header {
		return errors.New("cannot translate the catalog header")
	}
	if e.mono && !e.po.Plural() {
		e.po.Str = []string{store.JoinPlural(target)}
		return nil
	}
	e.po.SetTranslations(target)
	return nil
}

func (e *entry) Notes() string {
	notes := append(slices.Clone(e.po.AutoComments), e.po.Comments...)
	return strings.TrimSpace(strings.Join(notes, "\n"))
}

func (e *entry) Locations() []string { return slices.Clone(e.po.References) }

func (e *entry) Flags() []string {
	return slices.DeleteFunc(slices.Clone(e.po.Flags), func(f string) bool { return f == "fuzzy" })
}

func (e *entry) IsFuzzy() bool    { return e.po.IsFuzzy() }
func (e *entry) IsApproved() bool { return false }
func (e *entry) IsReadOnly() bool { return e.po.HasFlag("read-only") }

func (e *entry) HasContent() bool {
	return !e.header && !e.po.Obsolete && e.po.ID != ""
}

func (e *entry) SetState(state store.State) error {
	e.po.SetFuzzy(state == store.StateFuzzy)
	if state != store.StateFuzzy {
		e.po.Previous = Previous{}
	}
	return nil
}

func (e *entry) Clone() store.Entry {
	return &entry{po: e.po.Clone(), mono: e.mono, nplurals: e.nplurals}
}
