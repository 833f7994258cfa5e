package pofile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leonelquinteros/gotext/plurals"
)

// PluralForms is a parsed Plural-Forms header.
type PluralForms struct {
	NPlurals int
	Formula  string
	expr     plurals.Expression
}

// ParsePluralForms parses a header value such as
// "nplurals=2; plural=(n != 1);".
func ParsePluralForms(value string) (*PluralForms, error) {
	pf := &PluralForms{}
	for _, part := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "nplurals":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid nplurals %q", val)
			}
			pf.NPlurals = n
		case "plural":
			pf.Formula = strings.TrimSpace(val)
		}
	}
	if pf.NPlurals == 0 {
		return nil, fmt.Errorf("missing nplurals in %q", value)
	}
	if pf.Formula == "" {
		return nil, fmt.Errorf("missing plural formula in %q", value)
	}
	expr, err := plurals.Compile(pf.Formula)
	if err != nil {
		return nil, fmt.Errorf("compiling plural formula %q: %w", pf.Formula, err)
	}
	pf.expr = expr
	return pf, nil
}

// Index returns the plural form used for n.
func (pf *PluralForms) Index(n uint32) int {
	idx := pf.expr.Eval(n)
	if idx < 0 || idx >= pf.NPlurals {
		return 0
	}
	return idx
}

// PluralForms returns the catalog's parsed Plural-Forms header, falling back
// to the default for its Language header.
func (f *File) PluralForms() (*PluralForms, error) {
	value := f.HeaderField("Plural-Forms")
	if value == "" {
		value = PluralFormsForLang(f.HeaderField("Language"))
	}
	return ParsePluralForms(value)
}

// NPlurals returns the number of plural forms of the catalog, 2 when the
// header cannot be parsed.
func (f *File) NPlurals() int {
	pf, err := f.PluralForms()
	if err != nil {
		return 2
	}
	return pf.NPlurals
}
