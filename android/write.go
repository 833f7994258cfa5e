package android

import (
	"bytes"
	"strings"
)

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Marshal renders the whole file, untranslatable resources included.
func (f *File) Marshal() []byte { return f.render(true) }

// MarshalTarget renders a locale file without the untranslatable resources.
func (f *File) MarshalTarget() []byte { return f.render(false) }

func (f *File) render(withFixed bool) []byte {
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<resources>\n")
	for _, r := range f.Resources {
		switch {
		case r.Kind == Comment:
			b.WriteString("    <!-- " + r.Comment + " -->\n")
		case r.Translatable || withFixed:
			writeResource(&b, r)
		}
	}
	b.WriteString("</resources>\n")
	return b.Bytes()
}

func writeResource(b *bytes.Buffer, r *Resource) {
	el := r.Kind.element()
	b.WriteString("    <" + el + ` name="` + attrEscaper.Replace(r.Name) + `"`)
	if !r.Translatable {
		b.WriteString(` translatable="false"`)
	}
	b.WriteByte('>')
	if r.Kind == String {
		var it Item
		if len(r.Items) > 0 {
			it = r.Items[0]
		}
		b.WriteString(encodeText(it))
		b.WriteString("</" + el + ">\n")
		return
	}
	b.WriteByte('\n')
	for _, it := range r.Items {
		b.WriteString("        <item")
		if it.Quantity != "" {
			b.WriteString(` quantity="` + attrEscaper.Replace(it.Quantity) + `"`)
		}
		b.WriteString(">" + encodeText(it) + "</item>\n")
	}
	b.WriteString("    </" + el + ">\n")
}

// encodeText escapes an item for element content. Text carrying inline
// markup is written as it was read.
func encodeText(it Item) string {
	s := escapeApostrophes(it.Text)
	switch {
	case it.CDATA:
		return "<![CDATA[" + s + "]]>"
	case strings.Contains(s, "<") && strings.Contains(s, ">"):
		return s
	}
	return textEscaper.Replace(s)
}

// Blank derives an untranslated locale file from src. Translatable
// resources keep their shape with every text emptied.
func Blank(src *File) (*File, error) {
	f := &File{names: make(map[string]*Resource)}
	for _, r := range src.Resources {
		c := r.Clone()
		if c.Editable() {
			for i := range c.Items {
				c.Items[i].Text = ""
			}
		}
		if c.Kind == Comment {
			f.Resources = append(f.Resources, c)
			continue
		}
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}
