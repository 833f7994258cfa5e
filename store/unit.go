package store

import (
	"slices"
	"strings"
)

// TranslationUnit is the engine's view of one logical translatable entry.
// It is implemented by *Unit and *MultiUnit.
type TranslationUnit interface {
	IDHash() int64
	Context() string
	Source() []string
	Target() []string
	Notes() string
	Locations() []string
	Flags() Flags

	IsTranslated() bool
	IsFuzzy() bool
	IsApproved() bool
	IsReadOnly() bool
	HasContent() bool
	// HasUnit reports whether the unit has a native translation entry.
	// Template-only units return false until materialized.
	HasUnit() bool
	State() State

	SetTarget(target ...string) error
	SetState(state State) error
	// CloneTemplate materializes a template-only unit in the native store.
	CloneTemplate() error
	// Invalidate drops cached derived values.
	Invalidate()

	members() []*Unit
}

// Flags is a sorted set of unit flags.
type Flags []string

// NewFlags builds a Flags set from values, dropping blanks and duplicates.
func NewFlags(values ...string) Flags {
	var f Flags
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			f = append(f, v)
		}
	}
	slices.Sort(f)
	return slices.Compact(f)
}

// Has reports whether name is in the set.
func (f Flags) Has(name string) bool {
	_, ok := slices.BinarySearch(f, name)
	return ok
}

// Union returns the union of both sets.
func (f Flags) Union(other Flags) Flags {
	return NewFlags(append(slices.Clone(f), other...)...)
}

func (f Flags) String() string { return strings.Join(f, ", ") }

// Unit wraps one native entry and, for monolingual formats, the matching
// template entry. Derived values are cached until Invalidate.
type Unit struct {
	format   *Format
	native   Entry
	template Entry

	cache unitCache
}

type unitCache struct {
	valid     bool
	idHash    int64
	context   string
	source    []string
	target    []string
	notes     string
	locations []string
	flags     Flags
}

func newUnit(f *Format, native, template Entry) *Unit {
	return &Unit{format: f, native: native, template: template}
}

// Native returns the wrapped native entry, nil for template-only units.
func (u *Unit) Native() Entry { return u.native }

// Template returns the paired template entry, if any.
func (u *Unit) Template() Entry { return u.template }

func (u *Unit) hashWithTemplate() bool {
	if u.format == nil {
		return u.template != nil
	}
	return u.format.hashesContext()
}

func (u *Unit) load() *unitCache {
	if u.cache.valid {
		return &u.cache
	}
	c := unitCache{valid: true}
	if u.template != nil {
		c.context = u.template.Context()
		c.source = u.template.Target()
		if allEmpty(c.source) {
			c.source = u.template.Source()
		}
		if u.native != nil {
			c.target = u.native.Target()
		} else {
			c.target = make([]string, max(len(c.source), 1))
		}
		c.notes = joinNotes(u.template.Notes(), u.nativeNotes())
		c.locations = u.template.Locations()
		c.flags = NewFlags(u.template.Flags()...)
		if u.native != nil {
			c.flags = c.flags.Union(NewFlags(u.native.Flags()...))
		}
	} else if u.native != nil {
		c.context = u.native.Context()
		c.source = u.native.Source()
		c.target = u.native.Target()
		c.notes = u.native.Notes()
		c.locations = u.native.Locations()
		c.flags = NewFlags(u.native.Flags()...)
	}
	c.idHash = CalculateIDHash(u.hashWithTemplate(), c.source, c.context)
	u.cache = c
	return &u.cache
}

func (u *Unit) nativeNotes() string {
	if u.native == nil {
		return ""
	}
	return u.native.Notes()
}

func (u *Unit) IDHash() int64       { return u.load().idHash }
func (u *Unit) Context() string     { return u.load().context }
func (u *Unit) Source() []string    { return slices.Clone(u.load().source) }
func (u *Unit) Target() []string    { return slices.Clone(u.load().target) }
func (u *Unit) Notes() string       { return u.load().notes }
func (u *Unit) Locations() []string { return slices.Clone(u.load().locations) }
func (u *Unit) Flags() Flags        { return slices.Clone(u.load().flags) }
func (u *Unit) HasUnit() bool       { return u.native != nil }
func (u *Unit) members() []*Unit    { return []*Unit{u} }
func (u *Unit) Invalidate()         { u.cache = unitCache{} }

func (u *Unit) IsFuzzy() bool {
	return u.native != nil && u.native.IsFuzzy()
}

func (u *Unit) IsApproved() bool {
	return u.native != nil && u.native.IsApproved()
}

func (u *Unit) IsReadOnly() bool {
	if u.template != nil && u.template.IsReadOnly() {
		return true
	}
	return u.native != nil && u.native.IsReadOnly()
}

func (u *Unit) HasContent() bool {
	if u.template != nil {
		return u.template.HasContent()
	}
	return u.native != nil && u.native.HasContent()
}

func (u *Unit) IsTranslated() bool {
	if u.native == nil || u.IsFuzzy() || !u.HasContent() {
		return false
	}
	target := u.load().target
	if len(target) == 0 {
		return false
	}
	for _, t := range target {
		if t == "" {
			return false
		}
	}
	return true
}

func (u *Unit) State() State { return stateOf(u) }

func stateOf(u TranslationUnit) State {
	switch {
	case u.IsReadOnly():
		return StateReadOnly
	case u.IsFuzzy():
		return StateFuzzy
	case u.IsApproved() && u.IsTranslated():
		return StateApproved
	case u.IsTranslated():
		return StateTranslated
	default:
		return StateEmpty
	}
}

// CloneTemplate copies the template entry into the native store with an
// empty target. It is a no-op for units that already have a native entry.
func (u *Unit) CloneTemplate() error {
	if u.native != nil {
		return nil
	}
	if u.template == nil || u.format == nil {
		return ErrNoTemplate
	}
	clone := u.template.Clone()
	forms := len(u.load().source)
	if err := clone.SetTarget(make([]string, max(forms, 1))); err != nil {
		return err
	}
	if err := u.format.native.AddEntry(clone); err != nil {
		return err
	}
	u.native = clone
	u.Invalidate()
	return nil
}

func (u *Unit) SetTarget(target ...string) error {
	if len(target) == 0 {
		target = []string{""}
	}
	if err := u.CloneTemplate(); err != nil {
		return err
	}
	if err := u.native.SetTarget(target); err != nil {
		return err
	}
	u.Invalidate()
	return nil
}

func (u *Unit) SetState(state State) error {
	if err := u.CloneTemplate(); err != nil {
		return err
	}
	if err := u.native.SetState(state); err != nil {
		return err
	}
	u.Invalidate()
	return nil
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

func joinNotes(notes ...string) string {
	var out []string
	for _, n := range notes {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return strings.Join(out, "\n")
}
