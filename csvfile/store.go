package csvfile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/minios-linux/transkit/store"
)

// Descriptor returns the bilingual CSV format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "csv",
		Name:      "CSV file",
		MimeType:  "text/csv",
		Extension: "csv",
		Autoload:  []string{"*.csv"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualNever,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "posix",
		},
		Load: func(lc *store.LoadContext) (store.Native, error) {
			f, err := Parse(lc.Data, true)
			if err != nil {
				return nil, err
			}
			l, err := bilingualLayout(f)
			if err != nil {
				return nil, err
			}
			return newNative(f, l, false), nil
		},
		NewTranslation: func(base []byte, _ string) ([]byte, error) {
			f, err := Parse(base, true)
			if err != nil {
				return nil, err
			}
			l, err := bilingualLayout(f)
			if err != nil {
				return nil, err
			}
			for _, row := range f.Rows {
				set(row, l.target, "")
				set(row, l.fuzzy, "")
			}
			return f.Marshal()
		},
	}
}

// SimpleDescriptor returns the monolingual key,value CSV format.
func SimpleDescriptor() *store.Descriptor {
	return keyValueDescriptor("csv-simple", "Simple CSV file", false)
}

// MultiDescriptor returns the key,value CSV format where repeated keys
// hold several strings of one unit.
func MultiDescriptor() *store.Descriptor {
	return keyValueDescriptor("csv-multi", "Multivalue CSV file", true)
}

func keyValueDescriptor(id, name string, multi bool) *store.Descriptor {
	return &store.Descriptor{
		ID:        id,
		Name:      name,
		MimeType:  "text/csv",
		Extension: "csv",
		Capabilities: store.Capabilities{
			Monolingual:        store.MonolingualAlways,
			CanAddUnit:         true,
			CanDeleteUnit:      true,
			HasMultipleStrings: multi,
			BilingualID:        "csv",
			LanguageFormat:     "posix",
		},
		Load: func(lc *store.LoadContext) (store.Native, error) {
			f, err := Parse(lc.Data, false)
			if err != nil {
				return nil, err
			}
			for i, row := range f.Rows {
				if len(row) != 2 {
					return nil, fmt.Errorf("row %d: expected key,value but got %d fields", i+1, len(row))
				}
			}
			return newNative(f, keyValueLayout, true), nil
		},
		NewTranslation: func(base []byte, _ string) ([]byte, error) {
			f, err := Parse(base, false)
			if err != nil {
				return nil, err
			}
			for _, row := range f.Rows {
				set(row, 1, "")
			}
			return f.Marshal()
		},
	}
}

func get(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func set(row []string, col int, value string) {
	if col >= 0 && col < len(row) {
		row[col] = value
	}
}

// Native exposes CSV rows as store entries.
type Native struct {
	file    *File
	layout  layout
	mono    bool
	entries []*entry
}

// newNative wraps f, reading rows through l.
func newNative(f *File, l layout, mono bool) *Native {
	n := &Native{file: f, layout: l, mono: mono}
	for i := range f.Rows {
		n.entries = append(n.entries, &entry{owner: n, row: &f.Rows[i], layout: l, mono: mono})
	}
	return n
}

func (n *Native) width() int {
	if n.file.Header != nil {
		return len(n.file.Header)
	}
	l := n.layout
	return max(l.source, l.target, l.context, l.location, l.fuzzy) + 1
}

func (n *Native) Entries() []store.Entry {
	out := make([]store.Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = e
	}
	return out
}

func (n *Native) CreateEntry(key string, source, target []string) (store.Entry, error) {
	if key != "" && n.layout.context < 0 {
		return nil, errors.New("file has no context column")
	}
	row := make([]string, n.width())
	set(row, n.layout.context, key)
	if n.mono {
		if key == "" {
			return nil, errors.New("empty key")
		}
	} else {
		src := store.JoinPlural(source)
		if src == "" {
			return nil, errors.New("empty source")
		}
		set(row, n.layout.source, src)
	}
	set(row, n.layout.target, store.JoinPlural(target))
	return &entry{row: &row, layout: n.layout, mono: n.mono}, nil
}

func (n *Native) AddEntry(se store.Entry) error {
	e, ok := se.(*entry)
	if !ok {
		return fmt.Errorf("foreign entry %T", se)
	}
	if e.owner != nil {
		return errors.New("entry already attached")
	}
	n.file.Rows = append(n.file.Rows, *e.row)
	n.rebind()
	e.owner = n
	e.row = &n.file.Rows[len(n.file.Rows)-1]
	n.entries = append(n.entries, e)
	return nil
}

func (n *Native) DeleteEntry(se store.Entry) (bool, error) {
	e, ok := se.(*entry)
	if !ok || e.owner != n {
		return false, errors.New("entry not in file")
	}
	i := slices.Index(n.entries, e)
	n.file.Rows = slices.Delete(n.file.Rows, i, i+1)
	n.entries = slices.Delete(n.entries, i, i+1)
	e.owner = nil
	n.rebind()
	return true, nil
}

// rebind points entries at their rows again after the slice moved.
func (n *Native) rebind() {
	for i, e := range n.entries {
		e.row = &n.file.Rows[i]
	}
}

func (n *Native) Marshal() ([]byte, error) { return n.file.Marshal() }

type entry struct {
	owner  *Native
	row    *[]string
	layout layout
	mono   bool
}

func (e *entry) cell(col int) string { return get(*e.row, col) }

func (e *entry) Context() string { return e.cell(e.layout.context) }

func (e *entry) Source() []string {
	if e.mono {
		return e.Target()
	}
	return store.SplitPlural(e.cell(e.layout.source))
}

func (e *entry) Target() []string { return store.SplitPlural(e.cell(e.layout.target)) }

func (e *entry) SetTarget(target []string) error {
	col := e.layout.target
	for len(*e.row) <= col {
		*e.row = append(*e.row, "")
	}
	(*e.row)[col] = store.JoinPlural(target)
	return nil
}

func (e *entry) Notes() string {
	var notes []string
	for _, col := range e.layout.notes {
		if text := strings.TrimSpace(e.cell(col)); text != "" {
			notes = append(notes, text)
		}
	}
	return strings.Join(notes, "\n")
}

func (e *entry) Locations() []string {
	if loc := e.cell(e.layout.location); loc != "" {
		return strings.Fields(loc)
	}
	return nil
}

func (e *entry) Flags() []string  { return nil }
func (e *entry) IsApproved() bool { return false }
func (e *entry) IsReadOnly() bool { return false }
func (e *entry) HasContent() bool { return true }

func (e *entry) IsFuzzy() bool {
	switch strings.ToLower(e.cell(e.layout.fuzzy)) {
	case "true", "yes", "1", "fuzzy":
		return true
	}
	return false
}

func (e *entry) SetState(state store.State) error {
	col := e.layout.fuzzy
	if col < 0 {
		return nil
	}
	for len(*e.row) <= col {
		*e.row = append(*e.row, "")
	}
	if state == store.StateFuzzy {
		(*e.row)[col] = "True"
	} else {
		(*e.row)[col] = ""
	}
	return nil
}

func (e *entry) Clone() store.Entry {
	row := slices.Clone(*e.row)
	return &entry{row: &row, layout: e.layout, mono: e.mono}
}
