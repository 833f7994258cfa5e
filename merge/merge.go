// Package merge refreshes a PO catalog from its POT template the way
// msgmerge does.
package merge

import (
	"errors"
	"slices"

	po "github.com/minios-linux/transkit/pofile"
	"github.com/minios-linux/transkit/store"
)

// Merge returns catalog updated against template. Entries are matched on
// msgctxt and msgid:
//   - a template message missing from catalog is added untranslated;
//   - a live match keeps its translation and translator comments and takes
//     comments, references and flags from the template;
//   - an obsolete match comes back marked fuzzy;
//   - a catalog entry missing from the template becomes obsolete.
//
// The catalog header is kept with POT-Creation-Date copied from template.
func Merge(catalog, template *po.File) *po.File {
	out := po.NewFile()
	if catalog.Header != nil {
		out.Header = catalog.Header.Clone()
	}
	if date := template.HeaderField("POT-Creation-Date"); date != "" {
		out.SetHeaderField("POT-Creation-Date", date)
	}
	nplurals := out.NPlurals()

	byKey := make(map[string]*po.Entry, len(catalog.Entries))
	for _, e := range catalog.Entries {
		// Live entries shadow obsolete ones with the same key.
		if prev, ok := byKey[e.Key()]; !ok || prev.Obsolete {
			byKey[e.Key()] = e
		}
	}

	used := make(map[*po.Entry]bool)
	for _, t := range template.Entries {
		if t.ID == "" || t.Obsolete {
			continue
		}
		old := byKey[t.Key()]
		if old == nil || used[old] {
			out.AddEntry(fresh(t, nplurals))
			continue
		}
		used[old] = true
		out.AddEntry(update(old, t, nplurals))
	}

	for _, e := range catalog.Entries {
		if e.ID == "" || used[e] {
			continue
		}
		gone := e.Clone()
		gone.Obsolete = true
		gone.References = nil
		out.AddEntry(gone)
	}
	return out
}

// fresh builds an untranslated entry from template message t.
func fresh(t *po.Entry, nplurals int) *po.Entry {
	e := &po.Entry{
		AutoComments: slices.Clone(t.AutoComments),
		References:   slices.Clone(t.References),
		Flags:        slices.Clone(t.Flags),
		Context:      t.Context,
		ID:           t.ID,
		PluralID:     t.PluralID,
	}
	if e.Plural() {
		e.Str = make([]string, nplurals)
	}
	return e
}

// update carries the translation of old over to template message t.
func update(old, t *po.Entry, nplurals int) *po.Entry {
	e := fresh(t, nplurals)
	e.Comments = slices.Clone(old.Comments)
	e.Previous = old.Previous
	e.Flags = mergeFlags(old.Flags, t.Flags)
	e.Str = slices.Clone(old.Str)
	if old.Obsolete {
		e.SetFuzzy(true)
	}
	switch {
	case e.Plural() && !old.Plural():
		// The singular translation becomes the first form.
		e.Str = append([]string{old.Text()}, make([]string, max(nplurals-1, 0))...)
		e.SetFuzzy(true)
	case !e.Plural() && old.Plural():
		e.Str = []string{old.Text()}
		e.SetFuzzy(true)
	}
	return e
}

// mergeFlags returns the union of both flag lists, sorted, with fuzzy
// first when the catalog had it.
func mergeFlags(catalog, template []string) []string {
	var flags []string
	for _, f := range slices.Concat(catalog, template) {
		if f != "fuzzy" && !slices.Contains(flags, f) {
			flags = append(flags, f)
		}
	}
	slices.Sort(flags)
	if slices.Contains(catalog, "fuzzy") {
		flags = append([]string{"fuzzy"}, flags...)
	}
	return flags
}

// UpdateFormat merges template into the PO catalog owned by f and drops
// f's cached indices. The caller saves.
func UpdateFormat(f *store.Format, template *po.File) error {
	native, ok := f.Native().(*po.Native)
	if !ok {
		return errors.New("msgmerge: not a gettext catalog")
	}
	native.Replace(Merge(native.File(), template), native.Monolingual())
	f.Invalidate()
	return nil
}
