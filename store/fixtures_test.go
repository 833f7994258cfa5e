package store

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// lineFile is a minimal key=value file used to exercise the KV adapter.
type lineFile struct {
	keys   []string
	values map[string]string
}

func parseLines(data []byte) (*lineFile, error) {
	f := &lineFile{values: make(map[string]string)}
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '='", i+1)
		}
		if err := f.Add(key, value); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *lineFile) Keys() []string { return slices.Clone(f.keys) }

func (f *lineFile) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *lineFile) Set(key, value string) bool {
	if _, ok := f.values[key]; !ok {
		return false
	}
	f.values[key] = value
	return true
}

func (f *lineFile) Add(key, value string) error {
	if _, ok := f.values[key]; ok {
		return fmt.Errorf("duplicate key %q", key)
	}
	f.keys = append(f.keys, key)
	f.values[key] = value
	return nil
}

func (f *lineFile) Delete(key string) bool {
	if _, ok := f.values[key]; !ok {
		return false
	}
	delete(f.values, key)
	f.keys = slices.DeleteFunc(f.keys, func(k string) bool { return k == key })
	return true
}

func (f *lineFile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for _, k := range f.keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, f.values[k])
	}
	return buf.Bytes(), nil
}

func monoDescriptor() *Descriptor {
	return &Descriptor{
		ID:        "kv",
		Name:      "Key/value lines",
		Extension: "kv",
		Autoload:  []string{"*.kv"},
		Capabilities: Capabilities{
			Monolingual:   MonolingualAlways,
			CanAddUnit:    true,
			CanDeleteUnit: true,
			BilingualID:   "pairs",
		},
		Load: func(lc *LoadContext) (Native, error) {
			f, err := parseLines(lc.Data)
			if err != nil {
				return nil, err
			}
			return NewKVNative(f), nil
		},
		NewTranslation: func(base []byte, _ string) ([]byte, error) {
			f, err := parseLines(base)
			if err != nil {
				return nil, err
			}
			for _, k := range f.keys {
				f.values[k] = ""
			}
			return f.Marshal()
		},
	}
}

// pairNative is a bilingual tab separated store:
// context, source, target and an optional "fuzzy" marker. Lines starting
// with '#' are kept as header entries without content.
type pairNative struct {
	entries []*pairEntry
}

type pairEntry struct {
	EntryDefaults
	header   string
	context  string
	source   string
	target   string
	fuzzy    bool
	approved bool
}

func (e *pairEntry) Context() string  { return e.context }
func (e *pairEntry) Source() []string { return []string{e.source} }
func (e *pairEntry) Target() []string { return []string{e.target} }
func (e *pairEntry) IsFuzzy() bool    { return e.fuzzy }
func (e *pairEntry) IsApproved() bool { return e.approved }
func (e *pairEntry) HasContent() bool { return e.header == "" }

func (e *pairEntry) SetTarget(target []string) error {
	e.target = JoinPlural(target)
	return nil
}

func (e *pairEntry) SetState(s State) error {
	e.fuzzy = s == StateFuzzy
	e.approved = s == StateApproved
	return nil
}

func (e *pairEntry) Clone() Entry {
	c := *e
	return &c
}

func parsePairs(data []byte) (*pairNative, error) {
	n := &pairNative{}
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			n.entries = append(n.entries, &pairEntry{header: line})
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			return nil, fmt.Errorf("line %d: want 3 columns, got %d", i+1, len(cols))
		}
		e := &pairEntry{context: cols[0], source: cols[1], target: cols[2]}
		e.fuzzy = len(cols) > 3 && cols[3] == "fuzzy"
		n.entries = append(n.entries, e)
	}
	return n, nil
}

func (n *pairNative) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = e
	}
	return out
}

func (n *pairNative) CreateEntry(key string, source, target []string) (Entry, error) {
	return &pairEntry{context: key, source: JoinPlural(source), target: JoinPlural(target)}, nil
}

func (n *pairNative) AddEntry(e Entry) error {
	pe, ok := e.(*pairEntry)
	if !ok {
		return errors.New("foreign entry")
	}
	n.entries = append(n.entries, pe)
	return nil
}

func (n *pairNative) DeleteEntry(e Entry) (bool, error) {
	before := len(n.entries)
	n.entries = slices.DeleteFunc(n.entries, func(x *pairEntry) bool { return Entry(x) == e })
	if len(n.entries) == before {
		return false, errors.New("entry not found")
	}
	return true, nil
}

func (n *pairNative) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range n.entries {
		if e.header != "" {
			buf.WriteString(e.header + "\n")
			continue
		}
		fmt.Fprintf(&buf, "%s\t%s\t%s", e.context, e.source, e.target)
		if e.fuzzy {
			buf.WriteString("\tfuzzy")
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func pairDescriptor(multi bool) *Descriptor {
	id := "pairs"
	if multi {
		id = "pairs-multi"
	}
	return &Descriptor{
		ID:        id,
		Name:      "Tab separated pairs",
		Extension: "tsv",
		Autoload:  []string{"*.tsv"},
		Capabilities: Capabilities{
			Monolingual:        MonolingualNever,
			CanAddUnit:         true,
			CanDeleteUnit:      true,
			HasMultipleStrings: multi,
		},
		Load: func(lc *LoadContext) (Native, error) {
			return parsePairs(lc.Data)
		},
		Sniff: func(data []byte) bool { return bytes.Contains(data, []byte("\t")) },
	}
}
