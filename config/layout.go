package config

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// LanguageFromPath guesses the language of a translation file from its
// name. Understood layouts:
//
//	po/ru.po, translations/pt-BR.json      (flat)
//	po/ru/app.po, locales/de/LC_MESSAGES/x (nested)
//	res/values-de/strings.xml              (android)
//	messages_fr.properties, app.de.yml     (suffixed)
//
// It returns "" when nothing looks like a language code.
func LanguageFromPath(file string) string {
	file = filepath.ToSlash(file)
	base := file[strings.LastIndex(file, "/")+1:]
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if isLangCode(stem) {
		return stem
	}
	if i := strings.LastIndexAny(stem, "._"); i > 0 {
		if tail := stem[i+1:]; isLangCode(tail) {
			return tail
		}
		// messages_pt_BR
		if j := strings.LastIndexAny(stem[:i], "._"); j > 0 && isLangCode(stem[j+1:]) {
			return stem[j+1:]
		}
	}

	dirs := strings.Split(file, "/")
	dirs = dirs[:len(dirs)-1]
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if dir == "LC_MESSAGES" {
			continue
		}
		if code, ok := strings.CutPrefix(dir, "values-"); ok {
			return androidCode(code)
		}
		if isLangCode(dir) {
			return dir
		}
		break
	}
	return ""
}

// isLangCode checks if a string looks like a language code: en, ru,
// pt_BR, pt-BR, zh_Hant, fil_PH. The language must be a known ISO 639
// code. Bare three letter codes are not accepted since they clash with
// file names like app.po.
func isLangCode(s string) bool {
	lang, region, found := strings.Cut(strings.ReplaceAll(s, "-", "_"), "_")
	if len(lang) < 2 || len(lang) > 3 || !lower(lang) {
		return false
	}
	if _, err := language.ParseBase(lang); err != nil {
		return false
	}
	if !found {
		return len(lang) == 2
	}
	switch {
	case len(region) == 2:
		return upper(region)
	case len(region) == 4:
		return upper(region[:1]) && lower(region[1:])
	}
	return false
}

// androidCode turns "pt-rBR" into "pt_BR".
func androidCode(code string) string {
	lang, region, found := strings.Cut(code, "-r")
	if !found {
		if isLangCode(code) {
			return code
		}
		return ""
	}
	return lang + "_" + region
}

func lower(s string) bool {
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func upper(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
