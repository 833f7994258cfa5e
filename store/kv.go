package store

import (
	"errors"
	"fmt"
	"slices"
)

// KVFile is a key/value native file model (properties, YAML, ARB, i18next).
type KVFile interface {
	Keys() []string
	Get(key string) (string, bool)
	Set(key, value string) bool
	Add(key, value string) error
	Delete(key string) bool
	Marshal() ([]byte, error)
}

// KVNoter is implemented by key/value files that carry per-key notes.
type KVNoter interface {
	Note(key string) string
}

// NewKVNative adapts a key/value file to the Native interface. Entries are
// monolingual: the key is the context, the value is source and target.
func NewKVNative(f KVFile) Native {
	n := &kvNative{file: f}
	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		e := &kvEntry{owner: n, key: key, value: value}
		if noter, ok := f.(KVNoter); ok {
			e.note = noter.Note(key)
		}
		n.entries = append(n.entries, e)
	}
	return n
}

type kvNative struct {
	file    KVFile
	entries []*kvEntry
}

func (n *kvNative) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = e
	}
	return out
}

func (n *kvNative) CreateEntry(key string, _, target []string) (Entry, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}
	return &kvEntry{key: key, value: JoinPlural(target)}, nil
}

func (n *kvNative) AddEntry(e Entry) error {
	ke, ok := e.(*kvEntry)
	if !ok {
		return fmt.Errorf("foreign entry %T", e)
	}
	if ke.owner != nil {
		return fmt.Errorf("entry %q already attached", ke.key)
	}
	if err := n.file.Add(ke.key, ke.value); err != nil {
		return err
	}
	ke.owner = n
	n.entries = append(n.entries, ke)
	return nil
}

func (n *kvNative) DeleteEntry(e Entry) (bool, error) {
	ke, ok := e.(*kvEntry)
	if !ok || ke.owner != n {
		return false, fmt.Errorf("entry %q not in file", e.Context())
	}
	if !n.file.Delete(ke.key) {
		return false, fmt.Errorf("key %q not in file", ke.key)
	}
	n.entries = slices.DeleteFunc(n.entries, func(x *kvEntry) bool { return x == ke })
	ke.owner = nil
	return true, nil
}

func (n *kvNative) Marshal() ([]byte, error) { return n.file.Marshal() }

func (n *kvNative) Validate() error {
	if v, ok := n.file.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// File returns the wrapped file model.
func (n *kvNative) File() KVFile { return n.file }

type kvEntry struct {
	EntryDefaults
	owner *kvNative
	key   string
	value string
	note  string
}

func (e *kvEntry) Context() string  { return e.key }
func (e *kvEntry) Source() []string { return []string{e.value} }
func (e *kvEntry) Target() []string { return []string{e.value} }
func (e *kvEntry) Notes() string    { return e.note }

func (e *kvEntry) SetTarget(target []string) error {
	value := JoinPlural(target)
	if e.owner != nil && !e.owner.file.Set(e.key, value) {
		return fmt.Errorf("key %q not in file", e.key)
	}
	e.value = value
	return nil
}

func (e *kvEntry) Clone() Entry {
	return &kvEntry{key: e.key, value: e.value, note: e.note}
}
