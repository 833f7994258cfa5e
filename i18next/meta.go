package i18next

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ResolveMeta returns best-effort language metadata for language codes,
// supporting variants like pt_BR and pt-BR. The flag is derived from the
// explicit or most likely region. Unknown codes come back as their own name
// without a flag.
func ResolveMeta(lang string) Meta {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if err != nil {
		return Meta{Name: lang}
	}
	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}
	return Meta{Name: name, Flag: flag(tag)}
}

// flag renders the region of tag as a pair of regional indicator symbols.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' {
		return ""
	}
	var b strings.Builder
	for _, c := range code {
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String()
}
