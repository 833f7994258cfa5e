// Package propfile reads and writes Java .properties files.
//
// Pairs are written key=value, key: value or key value. Lines starting
// with '#' or '!' are comments and a trailing backslash continues a pair
// on the next line. Comments, blank lines and each pair's separator are
// kept, so an edited file differs from its source only where values
// changed. Files that are not valid UTF-8 are read as ISO-8859-1; files
// without raw non-ASCII text are written with \uXXXX escapes.
package propfile

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/minios-linux/transkit/store"
)

// Property is one key/value pair.
type Property struct {
	Key   string
	Value string
	// sep is the separator as written, spaces included.
	sep string
	// lead holds the comment and blank lines above the pair.
	lead []string
}

// Comment returns the comment block directly above p, without markers.
func (p *Property) Comment() string {
	var lines []string
	for i := len(p.lead) - 1; i >= 0 && isComment(p.lead[i]); i-- {
		text := strings.TrimSpace(p.lead[i])
		lines = append([]string{strings.TrimSpace(text[1:])}, lines...)
	}
	return strings.Join(lines, "\n")
}

// File is a parsed properties file.
type File struct {
	props []*Property
	tail  []string
	byKey map[string]*Property
	// UTF8 writes non-ASCII characters as is instead of \uXXXX escapes.
	UTF8 bool
}

func isComment(line string) bool {
	line = strings.TrimLeft(line, " \t\f")
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!")
}

// Parse reads a properties file. When a key repeats, the last value wins
// and the first position is kept.
func Parse(data []byte) (*File, error) {
	f := &File{byKey: make(map[string]*Property)}
	if utf8.Valid(data) {
		f.UTF8 = bytes.IndexFunc(data, func(r rune) bool { return r >= utf8.RuneSelf }) >= 0
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding ISO-8859-1: %w", err)
		}
		data = decoded
	}
	text := strings.ReplaceAll(strings.TrimPrefix(string(data), "\ufeff"), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		lines = nil
	}

	var lead []string
	for n := 0; n < len(lines); n++ {
		line := lines[n]
		if strings.TrimSpace(line) == "" || isComment(line) {
			lead = append(lead, line)
			continue
		}
		first := n + 1
		logical := strings.TrimLeft(line, " \t\f")
		for continued(logical) && n+1 < len(lines) {
			n++
			logical = logical[:len(logical)-1] + strings.TrimLeft(lines[n], " \t\f")
		}
		p, err := parsePair(logical)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", first, err)
		}
		if prev, ok := f.byKey[p.Key]; ok {
			prev.Value = p.Value
			continue
		}
		p.lead, lead = lead, nil
		f.props = append(f.props, p)
		f.byKey[p.Key] = p
	}
	f.tail = lead
	return f, nil
}

// continued reports whether s ends with an odd number of backslashes.
func continued(s string) bool {
	n := len(s) - len(strings.TrimRight(s, `\`))
	return n%2 == 1
}

// parsePair splits a logical line at the first unescaped '=', ':' or
// whitespace.
func parsePair(s string) (*Property, error) {
	end := len(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
		} else if strings.IndexByte("=: \t\f", s[i]) >= 0 {
			end = i
			break
		}
	}
	rest := s[end:]
	i := len(rest) - len(strings.TrimLeft(rest, " \t\f"))
	if i < len(rest) && (rest[i] == '=' || rest[i] == ':') {
		i++
		i += len(rest[i:]) - len(strings.TrimLeft(rest[i:], " \t\f"))
	}
	key, err := unescape(s[:end])
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("empty key")
	}
	value, err := unescape(rest[i:])
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", key, err)
	}
	return &Property{Key: key, Value: value, sep: rest[:i]}, nil
}

var unescapes = map[byte]byte{'n': '\n', 't': '\t', 'r': '\r', 'f': '\f'}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		if c, ok := unescapes[s[i]]; ok {
			b.WriteByte(c)
			continue
		}
		if s[i] != 'u' {
			b.WriteByte(s[i])
			continue
		}
		r, err := hexRune(s[i+1:])
		if err != nil {
			return "", err
		}
		i += 4
		// A surrogate pair is written as two escapes.
		if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1:], `\u`) {
			if low, err := hexRune(s[i+3:]); err == nil {
				if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
					r, i = pair, i+6
				}
			}
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func hexRune(s string) (rune, error) {
	if len(s) < 4 {
		return 0, errors.New(`truncated \u escape`)
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, fmt.Errorf(`invalid \u escape %q`, s[:4])
	}
	return rune(v), nil
}

// Keys returns the keys in file order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.props))
	for i, p := range f.props {
		keys[i] = p.Key
	}
	return keys
}

// Lookup returns the pair for key, or nil.
func (f *File) Lookup(key string) *Property { return f.byKey[key] }

func (f *File) Get(key string) (string, bool) {
	if p := f.byKey[key]; p != nil {
		return p.Value, true
	}
	return "", false
}

func (f *File) Set(key, value string) bool {
	p := f.byKey[key]
	if p != nil {
		p.Value = value
	}
	return p != nil
}

// Note returns the comment block directly above key.
func (f *File) Note(key string) string {
	if p := f.byKey[key]; p != nil {
		return p.Comment()
	}
	return ""
}

// Add appends a pair after the last one.
func (f *File) Add(key, value string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if _, ok := f.byKey[key]; ok {
		return fmt.Errorf("key %q already exists", key)
	}
	p := &Property{Key: key, Value: value, sep: "="}
	f.props = append(f.props, p)
	f.byKey[key] = p
	return nil
}

// Delete removes key with its comment block. Other lines above it move to
// the next pair.
func (f *File) Delete(key string) bool {
	p := f.byKey[key]
	if p == nil {
		return false
	}
	keep := len(p.lead)
	for keep > 0 && isComment(p.lead[keep-1]) {
		keep--
	}
	for i, q := range f.props {
		if q != p {
			continue
		}
		if i+1 < len(f.props) {
			next := f.props[i+1]
			next.lead = append(p.lead[:keep:keep], next.lead...)
		} else {
			f.tail = append(p.lead[:keep:keep], f.tail...)
		}
		f.props = append(f.props[:i], f.props[i+1:]...)
		break
	}
	delete(f.byKey, key)
	return true
}

// Marshal writes the file back.
func (f *File) Marshal() ([]byte, error) {
	var b bytes.Buffer
	for _, p := range f.props {
		for _, line := range p.lead {
			b.WriteString(line + "\n")
		}
		sep := p.sep
		if sep == "" {
			sep = "="
		}
		if p.Value == "" {
			sep = strings.TrimRight(sep, " \t\f")
		}
		b.WriteString(f.escape(p.Key, true) + sep + f.escape(p.Value, false) + "\n")
	}
	for _, line := range f.tail {
		b.WriteString(line + "\n")
	}
	return b.Bytes(), nil
}

func (f *File) escape(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\f':
			b.WriteString(`\f`)
		case key && strings.ContainsRune("=: #!", r), !key && i == 0 && r == ' ':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r >= utf8.RuneSelf && !f.UTF8:
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				fmt.Fprintf(&b, `\u%04X\u%04X`, r1, r2)
			} else {
				fmt.Fprintf(&b, `\u%04X`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Blank copies src with every value emptied.
func Blank(src *File) *File {
	f := &File{byKey: make(map[string]*Property, len(src.props)), UTF8: src.UTF8}
	for _, p := range src.props {
		c := *p
		c.Value = ""
		f.props = append(f.props, &c)
		f.byKey[c.Key] = &c
	}
	f.tail = src.tail
	return f
}

// Descriptor returns the Java properties format.
func Descriptor() *store.Descriptor {
	return &store.Descriptor{
		ID:        "properties",
		Name:      "Java Properties",
		MimeType:  "text/x-java-properties",
		Extension: "properties",
		Autoload:  []string{"*.properties"},
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
		NewTranslation: func(base []byte, _ string) ([]byte, error) {
			src, err := Parse(base)
			if err != nil {
				return nil, err
			}
			return Blank(src).Marshal()
		},
	}
}
