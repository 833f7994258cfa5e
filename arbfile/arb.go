// Package arbfile reads and writes Flutter Application Resource Bundle
// (.arb) files.
//
// An ARB file is a flat JSON object. "@@locale" names the language, other
// "@@" keys are file-level attributes, "@key" holds the metadata object of
// message "key" and every remaining member is a message. Messages are
// written in their original order with their metadata right after them.
package arbfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/minios-linux/transkit/store"
)

type message struct {
	key  string
	text string
	meta json.RawMessage
}

type attribute struct {
	key   string
	value json.RawMessage
}

// File is a parsed ARB file.
type File struct {
	// Locale is the @@locale value.
	Locale   string
	attrs    []attribute
	messages []*message
	byKey    map[string]*message
	// orphans is metadata for keys that have no message.
	orphans []attribute
}

// Parse parses ARB data.
func Parse(data []byte) (*File, error) {
	f := &File{byKey: make(map[string]*message)}
	if err := f.decode(data); err != nil {
		return nil, fmt.Errorf("parsing ARB: %w", err)
	}
	return f, nil
}

func (f *File) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("expected an object, got %v", tok)
	}
	metadata := make(map[string]json.RawMessage)
	var metaOrder []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		switch {
		case key == "@@locale":
			if err := json.Unmarshal(raw, &f.Locale); err != nil {
				return fmt.Errorf("@@locale is not a string")
			}
		case strings.HasPrefix(key, "@@"):
			f.attrs = append(f.attrs, attribute{key, raw})
		case strings.HasPrefix(key, "@"):
			metadata[key[1:]] = raw
			metaOrder = append(metaOrder, key[1:])
		default:
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return fmt.Errorf("value of %q is not a string", key)
			}
			if m, dup := f.byKey[key]; dup {
				m.text = text
				continue
			}
			m := &message{key: key, text: text}
			f.messages = append(f.messages, m)
			f.byKey[key] = m
		}
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return fmt.Errorf("unterminated object")
	}
	for _, key := range metaOrder {
		if m, ok := f.byKey[key]; ok {
			m.meta = metadata[key]
		} else {
			f.orphans = append(f.orphans, attribute{"@" + key, metadata[key]})
		}
	}
	return nil
}

// Keys returns the message keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.messages))
	for i, m := range f.messages {
		keys[i] = m.key
	}
	return keys
}

// Get returns the text of message key.
func (f *File) Get(key string) (string, bool) {
	if m, ok := f.byKey[key]; ok {
		return m.text, true
	}
	return "", false
}

// Set replaces the text of an existing message.
func (f *File) Set(key, value string) bool {
	m, ok := f.byKey[key]
	if ok {
		m.text = value
	}
	return ok
}

// Add appends a message. Keys starting with @ are reserved.
func (f *File) Add(key, value string) error {
	if strings.HasPrefix(key, "@") {
		return fmt.Errorf("key %q is reserved for metadata", key)
	}
	if _, ok := f.byKey[key]; ok {
		return fmt.Errorf("key %q already exists", key)
	}
	m := &message{key: key, text: value}
	f.messages = append(f.messages, m)
	f.byKey[key] = m
	return nil
}

// Delete removes a message together with its metadata.
func (f *File) Delete(key string) bool {
	m, ok := f.byKey[key]
	if !ok {
		return false
	}
	delete(f.byKey, key)
	f.messages = slices.DeleteFunc(f.messages, func(x *message) bool { return x == m })
	return true
}

// Note describes message key from its metadata: the description followed
// by the placeholder names.
func (f *File) Note(key string) string {
	m, ok := f.byKey[key]
	if !ok || m.meta == nil {
		return ""
	}
	var meta struct {
		Description  string                     `json:"description"`
		Placeholders map[string]json.RawMessage `json:"placeholders"`
	}
	if json.Unmarshal(m.meta, &meta) != nil {
		return ""
	}
	note := meta.Description
	if len(meta.Placeholders) > 0 {
		names := make([]string, 0, len(meta.Placeholders))
		for name := range meta.Placeholders {
			names = append(names, "{"+name+"}")
		}
		slices.Sort(names)
		if note != "" {
			note += "\n"
		}
		note += "Placeholders: " + strings.Join(names, ", ")
	}
	return note
}

// Marshal writes the file with two-space indentation, @@locale first.
func (f *File) Marshal() ([]byte, error) {
	var members []attribute
	if f.Locale != "" {
		members = append(members, attribute{"@@locale", quote(f.Locale)})
	}
	members = append(members, f.attrs...)
	for _, m := range f.messages {
		members = append(members, attribute{m.key, quote(m.text)})
		if m.meta != nil {
			members = append(members, attribute{"@" + m.key, m.meta})
		}
	}
	members = append(members, f.orphans...)

	var b bytes.Buffer
	b.WriteString("{")
	for i, a := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n  ")
		b.Write(quote(a.key))
		b.WriteString(": ")
		if err := json.Indent(&b, a.value, "  ", "  "); err != nil {
			return nil, fmt.Errorf("%s: %w", a.key, err)
		}
	}
	b.WriteString("\n}\n")
	return b.Bytes(), nil
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) json.RawMessage {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
}

// Blank derives an empty translation of src for locale. Metadata is kept
// so translators still see descriptions and placeholders.
func Blank(src *File, locale string) *File {
	f := &File{
		Locale:  locale,
		attrs:   slices.Clone(src.attrs),
		byKey:   make(map[string]*message, len(src.messages)),
		orphans: slices.Clone(src.orphans),
	}
	for _, m := range src.messages {
		c := &message{key: m.key, meta: m.meta}
		f.messages = append(f.messages, c)
		f.byKey[c.key] = c
	}
	return f
}

// Descriptor returns the Flutter ARB format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "arb",
		Name:      "ARB file",
		MimeType:  "application/json",
		Extension: "arb",
		Autoload:  []string{"*.arb"},
		Capabilities: store.Capabilities{
			Monolingual:    store.MonolingualAlways,
			CanAddUnit:     true,
			CanDeleteUnit:  true,
			LanguageFormat: "posix",
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
			return bytes.Contains(data, []byte(`"@@locale"`))
		},
	}
}
