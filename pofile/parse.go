package pofile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxLine = 1 << 20

// parser builds entries line by line. extend receives the text of a bare
// string line continuing the last keyword.
type parser struct {
	file     *File
	cur      *Entry
	extend   func(string)
	afterStr bool
}

// Parse reads a PO or POT catalog.
func Parse(r io.Reader) (*File, error) {
	p := &parser{file: &File{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLine)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if err := p.feed(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	p.end()
	if p.file.Header == nil {
		p.file.Header = &Entry{}
	}
	return p.file, nil
}

// end closes the entry being built.
func (p *parser) end() {
	e := p.cur
	p.cur, p.extend, p.afterStr = nil, nil, false
	if e == nil {
		return
	}
	if e.ID == "" && e.Context == "" && !e.Obsolete && p.file.Header == nil {
		p.file.Header = e
		return
	}
	p.file.Entries = append(p.file.Entries, e)
}

func (p *parser) feed(line string) error {
	if strings.TrimSpace(line) == "" {
		p.end()
		return nil
	}
	obsolete := false
	if rest, ok := strings.CutPrefix(line, "#~"); ok {
		if rest = strings.TrimSpace(rest); rest == "" {
			return nil
		}
		if strings.HasPrefix(rest, "|") {
			rest = "#" + rest
		}
		obsolete, line = true, rest
	}
	// A new keyword or comment after msgstr starts the next entry even
	// without a blank line.
	if p.afterStr && !strings.HasPrefix(line, "msgstr") && !strings.HasPrefix(line, `"`) {
		p.end()
	}
	if p.cur == nil {
		p.cur = &Entry{}
	}
	if obsolete {
		p.cur.Obsolete = true
	}
	switch {
	case strings.HasPrefix(line, "#"):
		return p.comment(line)
	case strings.HasPrefix(line, `"`):
		if p.extend == nil {
			return errors.New("string without keyword")
		}
		s, err := unquote(line)
		if err != nil {
			return err
		}
		p.extend(s)
		return nil
	}
	keyword, value, _ := strings.Cut(line, " ")
	s, err := unquote(value)
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	e := p.cur
	p.afterStr = false
	switch keyword {
	case "msgctxt":
		e.Context = s
		p.extend = func(v string) { e.Context += v }
	case "msgid":
		e.ID = s
		p.extend = func(v string) { e.ID += v }
	case "msgid_plural":
		e.PluralID = s
		p.extend = func(v string) { e.PluralID += v }
	case "msgstr":
		e.Str = []string{s}
		p.extend = func(v string) { e.Str[0] += v }
		p.afterStr = true
	default:
		i, err := pluralIndex(keyword)
		if err != nil {
			return err
		}
		for len(e.Str) <= i {
			e.Str = append(e.Str, "")
		}
		e.Str[i] = s
		p.extend = func(v string) { e.Str[i] += v }
		p.afterStr = true
	}
	return nil
}

func pluralIndex(keyword string) (int, error) {
	digits, ok := strings.CutPrefix(keyword, "msgstr[")
	if ok {
		digits, ok = strings.CutSuffix(digits, "]")
	}
	i, err := strconv.Atoi(digits)
	if !ok || err != nil || i < 0 || i > 99 {
		return 0, fmt.Errorf("unexpected keyword %.40q", keyword)
	}
	return i, nil
}

func (p *parser) comment(line string) error {
	e := p.cur
	kind, body := "", line[1:]
	if len(body) > 0 && strings.ContainsRune(":,.|", rune(body[0])) {
		kind, body = body[:1], body[1:]
	}
	body = strings.TrimPrefix(body, " ")
	switch kind {
	case ":":
		e.References = append(e.References, strings.Fields(body)...)
	case ",":
		for _, flag := range strings.Split(body, ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case ".":
		e.AutoComments = append(e.AutoComments, strings.TrimSpace(body))
	case "|":
		return p.previous(strings.TrimSpace(body))
	default:
		e.Comments = append(e.Comments, body)
	}
	p.extend = nil
	return nil
}

// previous reads a "#|" line. Its continuation strings stay on "#|" lines.
func (p *parser) previous(body string) error {
	prev := &p.cur.Previous
	if strings.HasPrefix(body, `"`) {
		s, err := unquote(body)
		if err != nil {
			return err
		}
		if p.extend != nil {
			p.extend(s)
		}
		return nil
	}
	keyword, value, _ := strings.Cut(body, " ")
	s, err := unquote(value)
	if err != nil {
		return fmt.Errorf("#| %s: %w", keyword, err)
	}
	switch keyword {
	case "msgctxt":
		prev.Context = s
		p.extend = func(v string) { prev.Context += v }
	case "msgid":
		prev.ID = s
		p.extend = func(v string) { prev.ID += v }
	case "msgid_plural":
		prev.PluralID = s
		p.extend = func(v string) { prev.PluralID += v }
	default:
		p.extend = nil
	}
	return nil
}

var escapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'a': '\a', 'b': '\b',
	'f': '\f', 'v': '\v', '\\': '\\', '"': '"',
}

// unquote decodes a C-style quoted PO string. Unknown escapes are kept.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected a quoted string, got %.40q", s)
	}
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		if c, ok := escapes[s[i]]; ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
