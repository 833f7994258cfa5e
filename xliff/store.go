package xliff

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/minios-linux/transkit/store"
)

// Target states of XLIFF 1.2 that mean the translation needs review.
var reviewStates = []string{"needs-review-translation", "needs-review-l10n", "needs-review-adaptation", "needs-adaptation", "needs-l10n"}

// Descriptor returns the XLIFF 1.2 format. Units are identified by their
// resname or id.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "xliff",
		Name:      "XLIFF 1.2 file",
		MimeType:  "application/x-xliff+xml",
		Extension: "xlf",
		Autoload:  []string{"*.xlf", "*.xliff"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualEither,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "bcp",
		},
		Load: func(lc *store.LoadContext) (store.Native, error) {
			x, err := Parse(lc.Data)
			if err != nil {
				return nil, err
			}
			return NewNative(x, lc.Template != nil), nil
		},
		NewTranslation: NewTranslation,
		Sniff: func(data []byte) bool {
			return bytes.Contains(data[:min(len(data), 1024)], []byte("<xliff"))
		},
	}
}

// NewTranslation copies base for lang with every target removed.
func NewTranslation(base []byte, lang string) ([]byte, error) {
	x, err := Parse(base)
	if err != nil {
		return nil, err
	}
	for _, f := range x.Files {
		f.TargetLang = lang
		for _, u := range f.Units {
			u.Target = nil
			u.Approved = ""
		}
	}
	return x.Marshal()
}

// Native exposes an XLIFF document as a store.Native. In monolingual mode
// the target, or the source when there is none, is the unit's value.
type Native struct {
	doc     *Xliff
	mono    bool
	entries []*entry
}

func NewNative(x *Xliff, mono bool) *Native {
	n := &Native{doc: x, mono: mono}
	for _, f := range x.Files {
		for _, u := range f.Units {
			n.entries = append(n.entries, &entry{owner: n, unit: u, mono: mono})
		}
	}
	return n
}

// Document returns the wrapped document.
func (n *Native) Document() *Xliff { return n.doc }

func (n *Native) Entries() []store.Entry {
	out := make([]store.Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = e
	}
	return out
}

func (n *Native) CreateEntry(key string, source, target []string) (store.Entry, error) {
	if key == "" {
		key = uuid.NewString()
	}
	u := &Unit{ID: key}
	src := store.JoinPlural(source)
	if src == "" {
		src = store.JoinPlural(target)
	}
	if src == "" && !n.mono {
		return nil, errors.New("empty source")
	}
	SetText(&u.Source, src)
	e := &entry{unit: u, mono: n.mono}
	if err := e.SetTarget(target); err != nil {
		return nil, err
	}
	return e, nil
}

func (n *Native) AddEntry(se store.Entry) error {
	e, ok := se.(*entry)
	if !ok {
		return fmt.Errorf("foreign entry %T", se)
	}
	if e.owner != nil {
		return fmt.Errorf("entry %q already attached", e.unit.ID)
	}
	if len(n.doc.Files) == 0 {
		n.doc.Files = append(n.doc.Files, &File{Original: "transkit", DataType: "plaintext"})
	}
	f := n.doc.Files[len(n.doc.Files)-1]
	f.Units = append(f.Units, e.unit)
	e.owner = n
	e.mono = n.mono
	n.entries = append(n.entries, e)
	return nil
}

func (n *Native) DeleteEntry(se store.Entry) (bool, error) {
	e, ok := se.(*entry)
	if !ok || e.owner != n {
		return false, fmt.Errorf("entry %q not in document", se.Context())
	}
	for _, f := range n.doc.Files {
		if i := slices.Index(f.Units, e.unit); i >= 0 {
			f.Units = slices.Delete(f.Units, i, i+1)
			break
		}
	}
	n.entries = slices.DeleteFunc(n.entries, func(x *entry) bool { return x == e })
	e.owner = nil
	return true, nil
}

func (n *Native) Marshal() ([]byte, error) { return n.doc.Marshal() }

// Validate rejects duplicate unit identifiers within a file.
func (n *Native) Validate() error {
	for _, f := range n.doc.Files {
		seen := make(map[string]bool, len(f.Units))
		for _, u := range f.Units {
			if seen[u.Key()] {
				return fmt.Errorf("duplicate trans-unit %q in %s", u.Key(), f.Original)
			}
			seen[u.Key()] = true
		}
	}
	return nil
}

type entry struct {
	owner *Native
	unit  *Unit
	mono  bool
}

func (e *entry) Context() string { return e.unit.Key() }

func (e *entry) Source() []string {
	if e.mono {
		return e.Target()
	}
	return store.SplitPlural(TextOf(&e.unit.Source))
}

func (e *entry) Target() []string {
	if e.mono && e.unit.Target == nil {
		return store.SplitPlural(TextOf(&e.unit.Source))
	}
	return store.SplitPlural(TextOf(e.unit.Target))
}

func (e *entry) SetTarget(target []string) error {
	if e.unit.Target == nil {
		e.unit.Target = &Text{}
	}
	value := store.JoinPlural(target)
	SetText(e.unit.Target, value)
	switch {
	case value == "":
		e.unit.Target.State = "needs-translation"
		e.unit.Approved = ""
	case e.unit.Target.State == "" || e.unit.Target.State == "new" || e.unit.Target.State == "needs-translation":
		e.unit.Target.State = "translated"
	}
	return nil
}

func (e *entry) Notes() string {
	notes := make([]string, 0, len(e.unit.Notes))
	for _, n := range e.unit.Notes {
		if text := strings.TrimSpace(n.Text); text != "" {
			notes = append(notes, text)
		}
	}
	return strings.Join(notes, "\n")
}

func (e *entry) Locations() []string { return nil }
func (e *entry) Flags() []string     { return nil }

func (e *entry) IsFuzzy() bool {
	return e.unit.Target != nil && slices.Contains(reviewStates, e.unit.Target.State)
}

func (e *entry) IsApproved() bool {
	if e.unit.Approved == "yes" {
		return true
	}
	return e.unit.Target != nil && (e.unit.Target.State == "final" || e.unit.Target.State == "signed-off")
}

func (e *entry) IsReadOnly() bool { return e.unit.Translate == "no" }
func (e *entry) HasContent() bool { return true }

func (e *entry) SetState(state store.State) error {
	if e.unit.Target == nil {
		e.unit.Target = &Text{}
	}
	e.unit.Approved = ""
	switch state {
	case store.StateFuzzy:
		e.unit.Target.State = "needs-review-translation"
	case store.StateApproved:
		e.unit.Target.State = "final"
		e.unit.Approved = "yes"
	case store.StateEmpty:
		e.unit.Target.State = "needs-translation"
	default:
		e.unit.Target.State = "translated"
	}
	return nil
}

func (e *entry) Clone() store.Entry {
	u := *e.unit
	u.Attrs = slices.Clone(e.unit.Attrs)
	u.Notes = slices.Clone(e.unit.Notes)
	u.Extra = slices.Clone(e.unit.Extra)
	if e.unit.Target != nil {
		t := *e.unit.Target
		u.Target = &t
	}
	return &entry{unit: &u, mono: e.mono}
}
