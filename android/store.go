package android

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/minios-linux/transkit/store"
)

// pluralQuantities is the CLDR quantity order used when a plural resource
// grows beyond the forms it already has.
var pluralQuantities = []string{"zero", "one", "two", "few", "many", "other"}

// Descriptor returns the Android string resource format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "android",
		Name:      "Android String Resource",
		MimeType:  "application/xml",
		Extension: "xml",
		Autoload:  []string{"strings*.xml", "values*.xml"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualAlways,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "android",
		},
		Load:           load,
		NewTranslation: NewTranslation,
		Sniff: func(data []byte) bool {
			return bytes.Contains(data, []byte("<resources"))
		},
	}
}

func load(lc *store.LoadContext) (store.Native, error) {
	f, err := Parse(lc.Data)
	if err != nil {
		return nil, err
	}
	return NewNative(f, lc.IsTemplate), nil
}

// NewTranslation derives an empty locale file from a source strings.xml.
func NewTranslation(base []byte, _ string) ([]byte, error) {
	src, err := Parse(base)
	if err != nil {
		return nil, err
	}
	f, err := Blank(src)
	if err != nil {
		return nil, err
	}
	return f.MarshalTarget(), nil
}

// Native exposes a strings.xml file as a store.Native. Comments become
// entries without content so that they survive round trips and annotate
// the resource that follows them.
type Native struct {
	file    *File
	source  bool
	entries []*entry
	notes   map[*Resource]string
}

// NewNative wraps f. Source files keep untranslatable resources on save.
func NewNative(f *File, source bool) *Native {
	n := &Native{file: f, source: source, notes: make(map[*Resource]string)}
	var pending string
	for _, r := range f.Resources {
		n.entries = append(n.entries, &entry{owner: n, res: r})
		switch {
		case r.Kind == Comment:
			pending = r.Comment
		case pending != "":
			n.notes[r] = pending
			pending = ""
		}
	}
	return n
}

// File returns the wrapped resource file.
func (n *Native) File() *File { return n.file }

func (n *Native) Entries() []store.Entry {
	out := make([]store.Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = e
	}
	return out
}

func (n *Native) CreateEntry(key string, _, target []string) (store.Entry, error) {
	if key == "" {
		return nil, errors.New("empty resource name")
	}
	r := &Resource{Kind: String, Name: key, Translatable: true, Items: []Item{{}}}
	if len(target) > 0 {
		r.Items[0].Text = store.JoinPlural(target)
	}
	return &entry{res: r}, nil
}

func (n *Native) AddEntry(se store.Entry) error {
	e, ok := se.(*entry)
	if !ok {
		return fmt.Errorf("foreign entry %T", se)
	}
	if e.owner != nil {
		return fmt.Errorf("resource %q already attached", e.res.Name)
	}
	if err := n.file.Add(e.res); err != nil {
		return err
	}
	e.owner = n
	n.entries = append(n.entries, e)
	return nil
}

func (n *Native) DeleteEntry(se store.Entry) (bool, error) {
	e, ok := se.(*entry)
	if !ok || e.owner != n || !n.file.Remove(e.res.Name) {
		return false, fmt.Errorf("resource %q not in file", se.Context())
	}
	n.entries = slices.DeleteFunc(n.entries, func(x *entry) bool { return x == e })
	delete(n.notes, e.res)
	e.owner = nil
	return true, nil
}

// Marshal writes untranslatable resources only into source files.
func (n *Native) Marshal() ([]byte, error) {
	if n.source {
		return n.file.Marshal(), nil
	}
	return n.file.MarshalTarget(), nil
}

type entry struct {
	store.EntryDefaults
	owner *Native
	res   *Resource
}

// Resource returns the wrapped resource.
func (e *entry) Resource() *Resource { return e.res }

func (e *entry) Context() string  { return e.res.Name }
func (e *entry) Source() []string { return e.Target() }
func (e *entry) Target() []string { return e.res.Texts() }
func (e *entry) HasContent() bool { return e.res.Kind != Comment }
func (e *entry) IsReadOnly() bool { return !e.res.Editable() }

func (e *entry) Clone() store.Entry {
	return &entry{res: e.res.Clone()}
}

func (e *entry) SetTarget(target []string) error {
	r := e.res
	switch r.Kind {
	case String:
		if len(r.Items) == 0 {
			r.Items = []Item{{}}
		}
		r.Items[0].Text = store.JoinPlural(target)
	case StringArray:
		items := make([]Item, len(target))
		for i, text := range target {
			if i < len(r.Items) {
				items[i] = r.Items[i]
			}
			items[i].Text = text
		}
		r.Items = items
	case Plurals:
		for _, q := range pluralQuantities {
			if len(r.Items) >= len(target) {
				break
			}
			if !slices.ContainsFunc(r.Items, func(it Item) bool { return it.Quantity == q }) {
				r.Items = append(r.Items, Item{Quantity: q})
			}
		}
		if len(target) > len(r.Items) {
			return fmt.Errorf("plurals %q: %d forms exceed the quantities", r.Name, len(target))
		}
		for i := range r.Items {
			r.Items[i].Text = ""
			if i < len(target) {
				r.Items[i].Text = target[i]
			}
		}
	default:
		return errors.New("comment cannot be translated")
	}
	return nil
}

func (e *entry) Notes() string {
	if e.owner == nil {
		return ""
	}
	return e.owner.notes[e.res]
}
