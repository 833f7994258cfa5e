// Package i18next implements reading and writing of i18next JSON translation files.
//
// Two layouts are understood. The plain i18next resource layout is a
// (possibly nested) JSON object whose string leaves are translations:
//
//	{
//	    "greeting": "Hello",
//	    "nav": { "home": "Home" },
//	    "item_one": "{{count}} item",
//	    "item_other": "{{count}} items"
//	}
//
// The wrapped layout carries language metadata next to the resources:
//
//	{
//	    "_meta": { "name": "Русский", "flag": "🇷🇺" },
//	    "translations": {
//	        "English key text": "Translated value",
//	        "Another key": ""
//	    }
//	}
//
// Nested keys are addressed with dots ("nav.home"). Plural variants are
// separate keys, as in i18next itself. Key order is preserved on write and
// non-string leaves are kept verbatim.
package i18next

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/minios-linux/transkit/store"
)

// Meta holds the language metadata from the _meta field.
type Meta struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// node is one member of a JSON object, kept in document order.
type node struct {
	key      string
	value    string
	children []*node         // object members; nil for leaves
	raw      json.RawMessage // non-string, non-object leaves
	object   bool
}

// File represents a parsed i18next translation file.
type File struct {
	// Meta is set for the wrapped layout.
	Meta   *Meta
	root   []*node
	leaves []string
	index  map[string]*node
}

// Parse parses i18next JSON data.
func Parse(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	members, err := parseObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("parsing JSON: trailing data")
	}

	f := &File{root: members}
	var translations *node
	var meta *node
	for _, m := range members {
		switch m.key {
		case "translations":
			translations = m
		case "_meta":
			meta = m
		}
	}
	if translations != nil && translations.object && (meta != nil || len(members) == 1) {
		f.Meta = &Meta{}
		if meta != nil {
			for _, c := range meta.children {
				switch c.key {
				case "name":
					f.Meta.Name = c.value
				case "flag":
					f.Meta.Flag = c.value
				}
			}
		}
		f.root = translations.children
	}
	f.reindex()
	return f, nil
}

// parseObject reads one JSON object from dec, keeping member order.
func parseObject(dec *json.Decoder) ([]*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", tok)
	}
	var members []*node
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		n := &node{key: key}
		switch trimmed := bytes.TrimSpace(raw); {
		case len(trimmed) > 0 && trimmed[0] == '{':
			n.object = true
			if n.children, err = parseObject(json.NewDecoder(bytes.NewReader(trimmed))); err != nil {
				return nil, err
			}
		case len(trimmed) > 0 && trimmed[0] == '"':
			if err := json.Unmarshal(trimmed, &n.value); err != nil {
				return nil, err
			}
		default:
			n.raw = slices.Clone(trimmed)
		}
		members = append(members, n)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func (f *File) reindex() {
	f.leaves = nil
	f.index = make(map[string]*node)
	var walk func(nodes []*node, prefix string)
	walk = func(nodes []*node, prefix string) {
		for _, n := range nodes {
			path := n.key
			if prefix != "" {
				path = prefix + "." + n.key
			}
			switch {
			case n.object:
				walk(n.children, path)
			case n.raw == nil:
				f.leaves = append(f.leaves, path)
				f.index[path] = n
			}
		}
	}
	walk(f.root, "")
}

// Keys returns the translation keys in their original order.
func (f *File) Keys() []string { return slices.Clone(f.leaves) }

// Get returns the translation for key.
func (f *File) Get(key string) (string, bool) {
	n, ok := f.index[key]
	if !ok {
		return "", false
	}
	return n.value, true
}

// Set updates an existing key.
func (f *File) Set(key, value string) bool {
	n, ok := f.index[key]
	if !ok {
		return false
	}
	n.value = value
	return true
}

// Add creates key, building nested objects for dotted paths.
func (f *File) Add(key, value string) error {
	if _, ok := f.index[key]; ok {
		return fmt.Errorf("key %q already exists", key)
	}
	parts := strings.Split(key, ".")
	level := &f.root
	for _, part := range parts[:len(parts)-1] {
		i := slices.IndexFunc(*level, func(n *node) bool { return n.key == part })
		if i < 0 {
			*level = append(*level, &node{key: part, object: true})
			i = len(*level) - 1
		}
		if !(*level)[i].object {
			return fmt.Errorf("key %q: %q is not an object", key, part)
		}
		level = &(*level)[i].children
	}
	last := parts[len(parts)-1]
	if slices.ContainsFunc(*level, func(n *node) bool { return n.key == last }) {
		return fmt.Errorf("key %q already exists", key)
	}
	*level = append(*level, &node{key: last, value: value})
	f.reindex()
	return nil
}

// Delete removes key and prunes objects left empty.
func (f *File) Delete(key string) bool {
	if _, ok := f.index[key]; !ok {
		return false
	}
	f.root = deletePath(f.root, strings.Split(key, "."))
	f.reindex()
	return true
}

func deletePath(nodes []*node, parts []string) []*node {
	for i, n := range nodes {
		if n.key != parts[0] {
			continue
		}
		if len(parts) > 1 {
			n.children = deletePath(n.children, parts[1:])
			if len(n.children) > 0 {
				return nodes
			}
		}
		return slices.Delete(nodes, i, i+1)
	}
	return nodes
}

// Marshal produces JSON with 4-space indentation, preserving key order.
func (f *File) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if f.Meta != nil {
		writeObject(&b, []*node{
			{key: "_meta", object: true, children: []*node{
				{key: "name", value: f.Meta.Name},
				{key: "flag", value: f.Meta.Flag},
			}},
			{key: "translations", object: true, children: f.root},
		}, 0)
	} else {
		writeObject(&b, f.root, 0)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeObject(b *bytes.Buffer, nodes []*node, depth int) {
	if len(nodes) == 0 {
		b.WriteString("{}")
		return
	}
	indent := strings.Repeat("    ", depth+1)
	b.WriteString("{\n")
	for i, n := range nodes {
		b.WriteString(indent)
		b.WriteString(jsonString(n.key))
		b.WriteString(": ")
		switch {
		case n.object:
			writeObject(b, n.children, depth+1)
		case n.raw != nil:
			b.Write(n.raw)
		default:
			b.WriteString(jsonString(n.value))
		}
		if i < len(nodes)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteByte('}')
}

// jsonString returns a JSON-encoded string without HTML escaping.
func jsonString(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// Blank copies src with every translation emptied. Wrapped files get
// metadata for lang.
func Blank(src *File, lang string) *File {
	f := &File{root: cloneNodes(src.root)}
	f.reindex()
	for _, n := range f.index {
		n.value = ""
	}
	if src.Meta != nil {
		m := ResolveMeta(lang)
		f.Meta = &m
	}
	return f
}

func cloneNodes(nodes []*node) []*node {
	if nodes == nil {
		return nil
	}
	out := make([]*node, len(nodes))
	for i, n := range nodes {
		c := *n
		c.children = cloneNodes(n.children)
		out[i] = &c
	}
	return out
}

// Descriptor returns the i18next JSON format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "i18next",
		Name:      "i18next JSON file",
		MimeType:  "application/json",
		Extension: "json",
		Autoload:  []string{"*.json"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualAlways,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "bcp",
		},
		Load: func(lc *store.LoadContext) (store.Native, error) {
			f, err := Parse(lc.Data)
			if err != nil {
				return nil, err
			}
			return store.NewKVNative(f), nil
		},
		NewTranslation: func(base []byte, language string) ([]byte, error) {
			src, err := Parse(base)
			if err != nil {
				return nil, err
			}
			return Blank(src, language).Marshal()
		},
		Sniff: func(data []byte) bool {
			trimmed := bytes.TrimSpace(data)
			return len(trimmed) > 0 && trimmed[0] == '{'
		},
	}
}
