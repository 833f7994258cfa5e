// Package rcfile extracts user visible strings from Windows resource
// scripts (.rc).
//
// Strings are taken from STRINGTABLE entries, MENU and MENUEX items and
// DIALOG and DIALOGEX captions and controls. Everything else, including
// preprocessor lines and comments, is copied through unchanged. Scripts
// starting with a UTF-16LE byte order mark are decoded and written back
// in the same encoding.
package rcfile

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/store"
)

var (
	menuItems      = []string{"POPUP", "MENUITEM"}
	dialogControls = []string{
		"CAPTION", "LTEXT", "RTEXT", "CTEXT", "PUSHBUTTON", "DEFPUSHBUTTON",
		"GROUPBOX", "CONTROL", "CHECKBOX", "AUTOCHECKBOX", "RADIOBUTTON",
		"AUTORADIOBUTTON", "STATE3", "AUTO3STATE", "PUSHBOX",
	}
)

var utf16 = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// literal is one quoted string of the script.
type literal struct {
	start, end int
	seg        convert.Segment
}

type resource struct {
	kind  string // STRINGTABLE, MENU or DIALOG
	name  string
	count int
	begun bool
}

func decode(data []byte) (string, bool, error) {
	if !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return string(data), false, nil
	}
	text, err := utf16.NewDecoder().Bytes(data)
	if err != nil {
		return "", false, fmt.Errorf("decoding UTF-16: %w", err)
	}
	return string(text), true, nil
}

// scan finds the translatable literals of text.
func scan(text string) ([]literal, error) {
	var (
		out     []literal
		res     *resource
		depth   int
		pending string
		offset  int
	)
	for num, line := range strings.SplitAfter(text, "\n") {
		lineStart := offset
		offset += len(line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		words := strings.Fields(trimmed)
		first := strings.ToUpper(strings.TrimRight(words[0], ","))

		switch {
		case first == "BEGIN" || first == "{":
			depth++
			if res != nil {
				res.begun = true
			}
			continue
		case first == "END" || first == "}":
			depth--
			if depth <= 0 {
				depth = 0
				if res != nil && res.begun {
					res = nil
				}
			}
			continue
		case depth == 0 && first == "STRINGTABLE":
			res = &resource{kind: "STRINGTABLE"}
			continue
		case depth == 0 && len(words) > 1:
			switch strings.ToUpper(words[1]) {
			case "MENU", "MENUEX":
				res = &resource{kind: "MENU", name: words[0]}
				continue
			case "DIALOG", "DIALOGEX":
				res = &resource{kind: "DIALOG", name: words[0]}
				continue
			}
		}
		if res == nil {
			continue
		}

		q := strings.IndexByte(line, '"')
		if q < 0 {
			if res.kind == "STRINGTABLE" && depth > 0 {
				pending = strings.TrimRight(words[0], ",")
			}
			continue
		}
		value, end, err := parseLiteral(line, q)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", num+1, err)
		}
		lit := literal{start: lineStart + q, end: lineStart + end}

		switch res.kind {
		case "STRINGTABLE":
			if depth == 0 {
				continue
			}
			id := strings.TrimRight(strings.TrimSpace(line[:q]), ",")
			if id == "" {
				id = pending
			}
			pending = ""
			lit.seg = convert.Segment{Source: value, Note: id, Location: "STRINGTABLE:" + id}
		case "MENU":
			if depth == 0 || !slices.Contains(menuItems, first) {
				continue
			}
			lit.seg = convert.Segment{Source: value, Location: fmt.Sprintf("MENU:%s:%d", res.name, res.count)}
			res.count++
		case "DIALOG":
			if !slices.Contains(dialogControls, first) {
				continue
			}
			lit.seg = convert.Segment{Source: value, Location: fmt.Sprintf("DIALOG:%s:%d", res.name, res.count)}
			res.count++
		}
		if value != "" {
			out = append(out, lit)
		}
	}
	return out, nil
}

// parseLiteral decodes the string starting at s[i] == '"' and returns the
// offset just past its closing quote.
func parseLiteral(s string, i int) (string, int, error) {
	var b strings.Builder
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '"' && j+1 < len(s) && s[j+1] == '"':
			b.WriteByte('"')
			j++
		case c == '"':
			return b.String(), j + 1, nil
		case c == '\\' && j+1 < len(s):
			j++
			switch s[j] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"':
				b.WriteByte(s[j])
			default:
				b.WriteByte('\\')
				b.WriteByte(s[j])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.New("unterminated string")
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `""`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

// Doc is the resource script backend of the convert bridge.
type Doc struct{}

// Extract lists the translatable strings of the script.
func (Doc) Extract(data []byte) ([]convert.Segment, error) {
	text, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	lits, err := scan(text)
	if err != nil {
		return nil, err
	}
	segments := make([]convert.Segment, len(lits))
	for i, l := range lits {
		segments[i] = l.seg
	}
	return segments, nil
}

// Render rewrites the translated strings of original.
func (Doc) Render(original []byte, lookup convert.Lookup) ([]byte, error) {
	text, wide, err := decode(original)
	if err != nil {
		return nil, err
	}
	lits, err := scan(text)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	prev := 0
	for _, l := range lits {
		value, ok := lookup(l.seg)
		if !ok {
			continue
		}
		b.WriteString(text[prev:l.start])
		b.WriteString(quote(value))
		prev = l.end
	}
	b.WriteString(text[prev:])
	if !wide {
		return []byte(b.String()), nil
	}
	return utf16.NewEncoder().Bytes([]byte(b.String()))
}

// Descriptor returns the Windows RC format.
func Descriptor() *store.Descriptor {
	return convert.Descriptor(Doc{}, convert.Options{
		ID:        "rc",
		Name:      "RC file",
		MimeType:  "text/plain",
		Extension: "rc",
		Autoload:  []string{"*.rc"},
	})
}
