// Package pofile reads and writes GNU gettext PO and POT catalogs,
// keeping comments, flags, previous strings and obsolete entries so that a
// catalog survives a round trip.
package pofile

import (
	"slices"
	"strings"
)

const fuzzyFlag = "fuzzy"

// Previous holds the "#|" strings of a fuzzy entry.
type Previous struct {
	Context  string
	ID       string
	PluralID string
}

// Entry is one message of a catalog.
type Entry struct {
	// Comments are translator comments ("# ").
	Comments []string
	// AutoComments are extracted comments ("#.").
	AutoComments []string
	References   []string
	Flags        []string
	Previous     Previous

	Context  string
	ID       string
	PluralID string
	// Str is msgstr for singular entries and msgstr[0..n-1] otherwise.
	Str []string

	Obsolete bool
}

// Key joins msgctxt and msgid the way compiled catalogs do.
func (e *Entry) Key() string {
	if e.Context == "" {
		return e.ID
	}
	return e.Context + "\x04" + e.ID
}

// Plural reports whether the entry has msgid_plural.
func (e *Entry) Plural() bool { return e.PluralID != "" }

// Text returns msgstr, or msgstr[0] of a plural entry.
func (e *Entry) Text() string {
	if len(e.Str) == 0 {
		return ""
	}
	return e.Str[0]
}

func (e *Entry) HasFlag(flag string) bool { return slices.Contains(e.Flags, flag) }
func (e *Entry) IsFuzzy() bool            { return e.HasFlag(fuzzyFlag) }

// SetFuzzy adds or drops the fuzzy flag, keeping it first.
func (e *Entry) SetFuzzy(fuzzy bool) {
	rest := slices.DeleteFunc(slices.Clone(e.Flags), func(f string) bool { return f == fuzzyFlag })
	if fuzzy {
		rest = append([]string{fuzzyFlag}, rest...)
	}
	e.Flags = rest
}

// IsTranslated reports whether every msgstr is filled and the entry is
// not fuzzy. The header never counts.
func (e *Entry) IsTranslated() bool {
	if e.ID == "" || e.IsFuzzy() || len(e.Str) == 0 {
		return false
	}
	return !slices.Contains(e.Str, "")
}

// Translations returns the msgstr values, padded to nplurals for plural
// entries.
func (e *Entry) Translations(nplurals int) []string {
	if !e.Plural() {
		return []string{e.Text()}
	}
	out := make([]string, max(nplurals, len(e.Str), 1))
	copy(out, e.Str)
	return out
}

// SetTranslations stores values; a singular entry keeps them joined.
func (e *Entry) SetTranslations(values []string) {
	if e.Plural() {
		e.Str = slices.Clone(values)
		return
	}
	e.Str = []string{strings.Join(values, "")}
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Comments = slices.Clone(e.Comments)
	c.AutoComments = slices.Clone(e.AutoComments)
	c.References = slices.Clone(e.References)
	c.Flags = slices.Clone(e.Flags)
	c.Str = slices.Clone(e.Str)
	return &c
}

// File is a parsed catalog.
type File struct {
	// Header is the msgid "" entry; its text holds the header fields.
	Header  *Entry
	Entries []*Entry
}

// NewFile returns an empty catalog.
func NewFile() *File { return &File{Header: &Entry{}} }

// Lookup finds a live entry by msgctxt and msgid.
func (f *File) Lookup(context, id string) *Entry {
	for _, e := range f.Entries {
		if !e.Obsolete && e.Context == context && e.ID == id {
			return e
		}
	}
	return nil
}

// AddEntry appends e.
func (f *File) AddEntry(e *Entry) { f.Entries = append(f.Entries, e) }

// RemoveEntry deletes e and reports whether it was present.
func (f *File) RemoveEntry(e *Entry) bool {
	n := len(f.Entries)
	f.Entries = slices.DeleteFunc(f.Entries, func(x *Entry) bool { return x == e })
	return len(f.Entries) < n
}
