// Package i18n translates transkit's own messages.
//
// Catalogs are gettext .po files embedded under
// locales/<lang>/LC_MESSAGES/transkit.po. Init picks the catalog that best
// matches the requested or environment language; without a match T and N
// return their English arguments.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "transkit"

var active atomic.Pointer[gotext.Locale]

// Init activates the catalog for lang, or for the environment language
// when lang is empty. It reports the catalog chosen, "" when none fits.
func Init(lang string) string {
	wanted := []string{lang}
	if lang == "" {
		wanted = Preferred()
	}
	name := match(wanted, Languages())
	if name == "" {
		active.Store(nil)
		return ""
	}
	l := gotext.NewLocaleFSWithPath(name, locales, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)
	active.Store(l)
	return name
}

// T translates msgid. Percent signs in msgid are kept as written.
func T(msgid string) string {
	if l := active.Load(); l != nil {
		// Get is printf-like; msgid is a message, not a format.
		get := l.Get
		return get(msgid)
	}
	return msgid
}

// N translates a message with plural forms chosen for n.
func N(singular, plural string, n int) string {
	if l := active.Load(); l != nil {
		return l.GetN(singular, plural, n)
	}
	if n == 1 {
		return singular
	}
	return plural
}

// Languages lists the embedded catalogs.
func Languages() []string {
	dirs, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, d := range dirs {
		if _, err := fs.Stat(locales, "locales/"+d.Name()+"/LC_MESSAGES/"+domain+".po"); err == nil {
			out = append(out, d.Name())
		}
	}
	return out
}

// Preferred returns the user's languages in gettext priority order: every
// entry of LANGUAGE, then the first of LC_ALL, LC_MESSAGES and LANG that
// is set. Encodings and modifiers are stripped; C and POSIX are dropped.
func Preferred() []string {
	var out []string
	add := func(v string) {
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v != "" && v != "C" && v != "POSIX" {
			out = append(out, v)
		}
	}
	for _, v := range strings.Split(os.Getenv("LANGUAGE"), ":") {
		add(v)
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			add(v)
			break
		}
	}
	return out
}

// match picks the available catalog closest to the first wanted language
// that has one.
func match(wanted, available []string) string {
	if len(available) == 0 {
		return ""
	}
	tags := make([]language.Tag, len(available))
	for i, a := range available {
		tags[i] = language.Make(strings.ReplaceAll(a, "_", "-"))
	}
	m := language.NewMatcher(tags)
	for _, w := range wanted {
		tag, err := language.Parse(strings.ReplaceAll(w, "_", "-"))
		if err != nil {
			continue
		}
		if _, i, conf := m.Match(tag); conf >= language.High {
			return available[i]
		}
	}
	return ""
}
