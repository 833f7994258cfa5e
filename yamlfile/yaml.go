// Package yamlfile edits YAML translation files: nested mappings and
// sequences whose string scalars are messages, optionally wrapped in a
// single locale key the way Rails i18n files are:
//
//	en:
//	  greeting: Hello
//	  nav:
//	    home: Home
//	  days: [Mon, Tue]
//
// Messages are addressed by dotted paths with sequence indexes in
// brackets ("nav.home", "days[1]"). Numbers, booleans and nulls are not
// messages. Edits go to the parsed node tree, so comments, key order and
// scalar styles survive a round trip.
package yamlfile

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/transkit/store"
)

// leaf is one message. key is nil for sequence items.
type leaf struct {
	path string
	key  *yaml.Node
	val  *yaml.Node
}

// File is a parsed YAML document.
type File struct {
	doc    *yaml.Node
	locale string
	leaves []leaf
	byPath map[string]int
}

// Parse reads a YAML translation file. An empty input yields an empty
// mapping.
func Parse(data []byte) (*File, error) {
	f := &File{doc: &yaml.Node{}}
	if err := yaml.Unmarshal(data, f.doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(f.doc.Content) == 0 {
		f.doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping()}}
	}
	root := f.doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing YAML: line %d: top level must be a mapping", root.Line)
	}
	if len(root.Content) == 2 && root.Content[1].Kind == yaml.MappingNode && isLocale(root.Content[0].Value) {
		f.locale = root.Content[0].Value
	}
	f.index()
	return f, nil
}

// isLocale reports whether a lone top-level key names a language.
func isLocale(key string) bool {
	_, err := language.Parse(key)
	return err == nil
}

// Locale returns the wrapping locale key, or "" for a bare mapping.
func (f *File) Locale() string { return f.locale }

// body is the mapping that holds the messages.
func (f *File) body() *yaml.Node {
	root := f.doc.Content[0]
	if f.locale != "" {
		return root.Content[1]
	}
	return root
}

func (f *File) index() {
	f.leaves, f.byPath = nil, make(map[string]int)
	walk(f.body(), nil, "", func(l leaf) bool {
		f.byPath[l.path] = len(f.leaves)
		f.leaves = append(f.leaves, l)
		return true
	})
}

// walk yields the message scalars under n in document order.
func walk(n, key *yaml.Node, path string, yield func(leaf) bool) bool {
	switch n.Kind {
	case yaml.ScalarNode:
		return !isText(n) || yield(leaf{path: path, key: key, val: n})
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			sub := k.Value
			if path != "" {
				sub = path + "." + k.Value
			}
			if !walk(n.Content[i+1], k, sub, yield) {
				return false
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if !walk(item, nil, path+"["+strconv.Itoa(i)+"]", yield) {
				return false
			}
		}
	}
	return true
}

func isText(n *yaml.Node) bool {
	switch n.ShortTag() {
	case "!!bool", "!!int", "!!float", "!!null":
		return false
	}
	return true
}

func (f *File) leaf(path string) (leaf, bool) {
	i, ok := f.byPath[path]
	if !ok {
		return leaf{}, false
	}
	return f.leaves[i], true
}

// Keys returns the message paths in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.leaves))
	for i, l := range f.leaves {
		keys[i] = l.path
	}
	return keys
}

func (f *File) Get(path string) (string, bool) {
	l, ok := f.leaf(path)
	if !ok {
		return "", false
	}
	return l.val.Value, true
}

// Set replaces the text of an existing message.
func (f *File) Set(path, value string) bool {
	l, ok := f.leaf(path)
	if ok {
		setText(l.val, value)
	}
	return ok
}

// setText stores value as a string, keeping the scalar style unless the
// new value needs another one.
func setText(n *yaml.Node, value string) {
	n.Value, n.Tag = value, "!!str"
	if value == "" {
		n.Style = yaml.DoubleQuotedStyle
	} else if n.Style == 0 && strings.Contains(value, "\n") {
		n.Style = yaml.LiteralStyle
	}
}

// Note returns the comments written above a message and after it on the
// same line.
func (f *File) Note(path string) string {
	l, ok := f.leaf(path)
	if !ok {
		return ""
	}
	comments := []string{l.val.HeadComment, l.val.LineComment}
	if l.key != nil {
		comments = []string{l.key.HeadComment, l.key.LineComment, l.val.LineComment}
	}
	var lines []string
	for _, c := range strings.Split(strings.Join(comments, "\n"), "\n") {
		c = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c), "#"))
		if c != "" {
			lines = append(lines, c)
		}
	}
	return strings.Join(lines, "\n")
}

// Add creates a message at path, building the mappings leading to it.
// Sequence items cannot be added.
func (f *File) Add(path, value string) error {
	if _, ok := f.byPath[path]; ok {
		return fmt.Errorf("key %q already exists", path)
	}
	if strings.ContainsAny(path, "[]") {
		return fmt.Errorf("key %q: cannot add sequence items", path)
	}
	parts := strings.Split(path, ".")
	if slices.Contains(parts, "") {
		return fmt.Errorf("key %q: empty path segment", path)
	}
	n := f.body()
	for _, part := range parts[:len(parts)-1] {
		next := valueOf(n, part)
		switch {
		case next == nil:
			next = mapping()
			n.Content = append(n.Content, scalar(part), next)
		case next.Kind != yaml.MappingNode:
			return fmt.Errorf("key %q: %q is not a mapping", path, part)
		}
		n = next
	}
	last := parts[len(parts)-1]
	if valueOf(n, last) != nil {
		return fmt.Errorf("key %q already exists", path)
	}
	val := &yaml.Node{Kind: yaml.ScalarNode}
	setText(val, value)
	n.Content = append(n.Content, scalar(last), val)
	f.index()
	return nil
}

// Delete removes a message. Mappings and sequences left empty on the way
// to it are removed too.
func (f *File) Delete(path string) bool {
	l, ok := f.leaf(path)
	if !ok || !remove(f.body(), l.val) {
		return false
	}
	f.index()
	return true
}

// remove deletes val from the tree under n and reports whether it was
// found.
func remove(n, val *yaml.Node) bool {
	step := 1
	if n.Kind == yaml.MappingNode {
		step = 2
	}
	for i := step - 1; i < len(n.Content); i += step {
		c := n.Content[i]
		if c != val {
			if c.Kind == yaml.ScalarNode || !remove(c, val) {
				continue
			}
			if len(c.Content) > 0 {
				return true
			}
		}
		n.Content = slices.Delete(n.Content, i-step+1, i+1)
		return true
	}
	return false
}

func valueOf(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"} }

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Marshal writes the document with two-space indentation.
func (f *File) Marshal() ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return nil, fmt.Errorf("writing YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("writing YAML: %w", err)
	}
	return b.Bytes(), nil
}

// Blank copies src with every message emptied. A wrapping locale key is
// renamed to locale when both are set.
func Blank(src *File, locale string) *File {
	f := &File{doc: clone(src.doc), locale: src.locale}
	if f.locale != "" && locale != "" {
		f.doc.Content[0].Content[0].Value = locale
		f.locale = locale
	}
	f.index()
	for _, l := range f.leaves {
		setText(l.val, "")
	}
	return f
}

func clone(n *yaml.Node) *yaml.Node {
	c := *n
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = clone(child)
	}
	return &c
}

// Descriptor returns the YAML format. New translations rename the locale
// key to the BCP 47 form of the language.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "yaml",
		Name:      "YAML file",
		MimeType:  "application/x-yaml",
		Extension: "yml",
		Autoload:  []string{"*.yml", "*.yaml"},
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
		NewTranslation: func(base []byte, lang string) ([]byte, error) {
			src, err := Parse(base)
			if err != nil {
				return nil, err
			}
			return Blank(src, store.LanguageCode("bcp", lang)).Marshal()
		},
	}
}
