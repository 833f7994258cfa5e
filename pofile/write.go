package pofile

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Write renders the catalog. The header is left out when it is empty.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	entries := f.Entries
	if h := f.Header; h != nil && (h.Text() != "" || len(h.Comments) > 0 || len(h.Flags) > 0) {
		entries = append([]*Entry{h}, entries...)
	}
	for i, e := range entries {
		if i > 0 {
			bw.WriteByte('\n')
		}
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// Marshal renders the catalog into memory.
func (f *File) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if err := f.Write(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeEntry(w *bufio.Writer, e *Entry) {
	for _, c := range e.Comments {
		w.WriteString(strings.TrimRight("# "+c, " ") + "\n")
	}
	for _, c := range e.AutoComments {
		w.WriteString("#. " + c + "\n")
	}
	if len(e.References) > 0 {
		w.WriteString("#: " + strings.Join(e.References, " ") + "\n")
	}
	if len(e.Flags) > 0 {
		w.WriteString("#, " + strings.Join(e.Flags, ", ") + "\n")
	}

	prefix, prev := "", "#| "
	if e.Obsolete {
		prefix, prev = "#~ ", "#~| "
	}
	if e.Previous.Context != "" {
		writeField(w, prev, "msgctxt", e.Previous.Context)
	}
	if e.Previous.ID != "" {
		writeField(w, prev, "msgid", e.Previous.ID)
	}
	if e.Previous.PluralID != "" {
		writeField(w, prev, "msgid_plural", e.Previous.PluralID)
	}

	if e.Context != "" {
		writeField(w, prefix, "msgctxt", e.Context)
	}
	writeField(w, prefix, "msgid", e.ID)
	if !e.Plural() {
		writeField(w, prefix, "msgstr", e.Text())
		return
	}
	writeField(w, prefix, "msgid_plural", e.PluralID)
	forms := e.Str
	if len(forms) == 0 {
		forms = []string{""}
	}
	for i, s := range forms {
		writeField(w, prefix, "msgstr["+strconv.Itoa(i)+"]", s)
	}
}

// writeField writes keyword and value, splitting the value after each
// embedded newline. Continuation lines repeat prefix.
func writeField(w *bufio.Writer, prefix, keyword, value string) {
	w.WriteString(prefix + keyword + " ")
	if i := strings.IndexByte(value, '\n'); i < 0 || i == len(value)-1 {
		w.WriteString(quote(value) + "\n")
		return
	}
	w.WriteString("\"\"\n")
	for value != "" {
		line := value
		if i := strings.IndexByte(value, '\n'); i >= 0 {
			line = value[:i+1]
		}
		value = value[len(line):]
		w.WriteString(prefix + quote(line) + "\n")
	}
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string { return `"` + quoter.Replace(s) + `"` }
