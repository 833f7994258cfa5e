// Package store implements the uniform translation-unit model shared by all
// file format backends: units wrapping native entries, formats owning a
// parsed native store with lazily built id-hash indices, multi-row units,
// the format registry and autodetection.
package store

import "strings"

// State summarises the translation state of a unit.
type State int

const (
	StateEmpty State = iota
	StateFuzzy
	StateTranslated
	StateApproved
	StateReadOnly
)

func (s State) String() string {
	switch s {
	case StateFuzzy:
		return "fuzzy"
	case StateTranslated:
		return "translated"
	case StateApproved:
		return "approved"
	case StateReadOnly:
		return "read-only"
	default:
		return "empty"
	}
}

// PluralSeparator joins plural forms into one string for hashing and display.
const PluralSeparator = "\x1e\x1e"

// JoinPlural joins plural forms with PluralSeparator.
func JoinPlural(forms []string) string {
	return strings.Join(forms, PluralSeparator)
}

// SplitPlural is the inverse of JoinPlural.
func SplitPlural(s string) []string {
	return strings.Split(s, PluralSeparator)
}

// Entry is one parsed entry of a native store, as seen by the engine.
//
// Monolingual backends report the key as context and the stored value as
// both source and target. Backends embed EntryDefaults for the optional
// capability queries they do not support.
type Entry interface {
	Context() string
	Source() []string
	Target() []string
	SetTarget(target []string) error
	Notes() string
	Locations() []string
	Flags() []string
	IsFuzzy() bool
	IsApproved() bool
	IsReadOnly() bool
	HasContent() bool
	SetState(state State) error
	// Clone returns a detached deep copy suitable for Native.AddEntry.
	Clone() Entry
}

// EntryDefaults supplies fallbacks for the optional Entry queries.
type EntryDefaults struct{}

func (EntryDefaults) Notes() string          { return "" }
func (EntryDefaults) Locations() []string    { return nil }
func (EntryDefaults) Flags() []string        { return nil }
func (EntryDefaults) IsFuzzy() bool          { return false }
func (EntryDefaults) IsApproved() bool       { return false }
func (EntryDefaults) IsReadOnly() bool       { return false }
func (EntryDefaults) HasContent() bool       { return true }
func (EntryDefaults) SetState(_ State) error { return nil }

// Native is a parsed native store.
//
// Entries must return the same wrapper values on every call until the store
// is mutated, so units can be compared by identity.
type Native interface {
	Entries() []Entry
	// CreateEntry builds a detached entry; it is not part of the store until
	// passed to AddEntry.
	CreateEntry(key string, source, target []string) (Entry, error)
	AddEntry(e Entry) error
	// DeleteEntry removes e. needsSave reports whether the removal only takes
	// effect once the store is written back.
	DeleteEntry(e Entry) (needsSave bool, err error)
	Marshal() ([]byte, error)
}

// Validator is implemented by native stores that can check their own
// consistency beyond parsing.
type Validator interface {
	Validate() error
}
