package pofile

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// HeaderField returns the value of header field name, matched without
// regard to case.
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.Text(), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// SetHeaderField replaces field name or appends it to the header.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = &Entry{}
	}
	var lines []string
	if text := strings.TrimSuffix(f.Header.Text(), "\n"); text != "" {
		lines = strings.Split(text, "\n")
	}
	field := name + ": " + value
	replaced := false
	for i, line := range lines {
		if key, _, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(key), name) {
			lines[i], replaced = field, true
			break
		}
	}
	if !replaced {
		lines = append(lines, field)
	}
	f.Header.Str = []string{strings.Join(lines, "\n") + "\n"}
}

// NewHeader returns the header of a new catalog for lang.
func NewHeader(project, lang string) *Entry {
	name := LangNameNative(lang)
	h := &File{Header: &Entry{Comments: []string{name + " translation of " + project + "."}}}
	for _, field := range [][2]string{
		{"Project-Id-Version", project},
		{"PO-Revision-Date", time.Now().UTC().Format("2006-01-02 15:04+0000")},
		{"Last-Translator", ""},
		{"Language-Team", name},
		{"Language", lang},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"Content-Transfer-Encoding", "8bit"},
		{"Plural-Forms", PluralFormsForLang(lang)},
	} {
		h.SetHeaderField(field[0], field[1])
	}
	return h.Header
}

const (
	pluralsOne        = "nplurals=1; plural=0;"
	pluralsNotOne     = "nplurals=2; plural=(n != 1);"
	pluralsOverOne    = "nplurals=2; plural=(n > 1);"
	pluralsEastSlavic = "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
)

// pluralRules maps base languages to their gettext Plural-Forms.
var pluralRules = map[string]string{
	"ja": pluralsOne, "ko": pluralsOne, "zh": pluralsOne, "vi": pluralsOne,
	"th": pluralsOne, "id": pluralsOne, "ms": pluralsOne,

	"fr": pluralsOverOne, "pt": pluralsOverOne,

	"ru": pluralsEastSlavic, "uk": pluralsEastSlavic, "be": pluralsEastSlavic,
	"hr": pluralsEastSlavic, "sr": pluralsEastSlavic, "bs": pluralsEastSlavic,

	"pl": "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
	"cs": "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);",
	"sk": "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);",
	"ro": "nplurals=3; plural=(n==1 ? 0 : (n==0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2);",
	"lt": "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && (n%100<10 || n%100>=20) ? 1 : 2);",
	"lv": "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);",
	"sl": "nplurals=4; plural=(n%100==1 ? 0 : n%100==2 ? 1 : n%100==3 || n%100==4 ? 2 : 3);",
	"ga": "nplurals=5; plural=(n==1 ? 0 : n==2 ? 1 : n<7 ? 2 : n<11 ? 3 : 4);",
	"ar": "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);",
}

// PluralFormsForLang returns the Plural-Forms header for a language code,
// falling back to the English rule.
func PluralFormsForLang(lang string) string {
	base := lang
	if tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
		b, _ := tag.Base()
		base = b.String()
	}
	if rule, ok := pluralRules[base]; ok {
		return rule
	}
	return pluralsNotOne
}

// LangNameNative returns the self name of lang, or lang itself when it is
// not a known code.
func LangNameNative(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}
