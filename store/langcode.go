package store

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

var languageFormats = map[string]func(string) string{
	"posix":                func(c string) string { return c },
	"posix_lowercase":      strings.ToLower,
	"posix_long":           posixLong,
	"posix_long_lowercase": func(c string) string { return strings.ToLower(posixLong(c)) },
	"posix_legacy":         func(c string) string { return legacyChinese(c, "_") },
	"bcp":                  bcp,
	"bcp_lower":            func(c string) string { return strings.ToLower(bcp(c)) },
	"bcp_long":             func(c string) string { return bcp(posixLong(c)) },
	"bcp_legacy":           func(c string) string { return legacyChinese(c, "-") },
	"android":              android,
	"appstore":             func(c string) string { return fromTable(appStoreCodes, c) },
	"googleplay":           func(c string) string { return fromTable(googlePlayCodes, c) },
	"linux":                linux,
	"linux_lowercase":      func(c string) string { return strings.ToLower(linux(c)) },
}

// LanguageFormats lists the known language-code formats.
func LanguageFormats() []string {
	names := make([]string, 0, len(languageFormats))
	for name := range languageFormats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LanguageCode rewrites a language code ("pt_BR", "zh-Hant") into the
// named format. Unknown formats and empty codes are returned unchanged.
func LanguageCode(format, code string) string {
	if code == "" {
		return ""
	}
	fn, ok := languageFormats[format]
	if !ok {
		return code
	}
	return fn(strings.ReplaceAll(code, "-", "_"))
}

func bcp(code string) string { return strings.ReplaceAll(code, "_", "-") }

// posixLong adds the likely region to bare language codes ("cs" -> "cs_CZ").
func posixLong(code string) string {
	if strings.Contains(code, "_") {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	region, confidence := tag.Region()
	if confidence == language.No {
		return code
	}
	return code + "_" + region.String()
}

func hasScript(parts []string) bool {
	return len(parts) > 1 && len(parts[1]) == 4
}

func android(code string) string {
	switch code {
	case "zh_Hans":
		return "zh-rCN"
	case "zh_Hant":
		return "zh-rTW"
	case "zh_Hant_HK":
		return "zh-rHK"
	}
	parts := strings.Split(code, "_")
	if hasScript(parts) || len(parts) > 2 {
		return "b+" + strings.Join(parts, "+")
	}
	return strings.Replace(code, "_", "-r", 1)
}

func linux(code string) string {
	parts := strings.Split(code, "_")
	if !hasScript(parts) {
		return code
	}
	var modifier string
	switch parts[1] {
	case "Latn":
		modifier = "latin"
	case "Cyrl":
		modifier = "cyrillic"
	default:
		return code
	}
	base := append([]string{parts[0]}, parts[2:]...)
	return strings.Join(base, "_") + "@" + modifier
}

func legacyChinese(code, sep string) string {
	switch code {
	case "zh_Hans":
		code = "zh_CN"
	case "zh_Hant":
		code = "zh_TW"
	}
	return strings.ReplaceAll(code, "_", sep)
}

func fromTable(table map[string]string, code string) string {
	if mapped, ok := table[code]; ok {
		return mapped
	}
	return bcp(code)
}

var appStoreCodes = map[string]string{
	"ar":      "ar-SA",
	"de":      "de-DE",
	"el":      "el",
	"en":      "en-US",
	"es":      "es-ES",
	"fr":      "fr-FR",
	"nb_NO":   "no",
	"nl":      "nl-NL",
	"pt":      "pt-PT",
	"zh_Hans": "zh-Hans",
	"zh_Hant": "zh-Hant",
}

var googlePlayCodes = map[string]string{
	"cs":      "cs-CZ",
	"da":      "da-DK",
	"de":      "de-DE",
	"en":      "en-US",
	"es":      "es-ES",
	"fi":      "fi-FI",
	"fr":      "fr-FR",
	"he":      "iw-IL",
	"hu":      "hu-HU",
	"it":      "it-IT",
	"ja":      "ja-JP",
	"ko":      "ko-KR",
	"nb_NO":   "no-NO",
	"nl":      "nl-NL",
	"pl":      "pl-PL",
	"pt":      "pt-PT",
	"ru":      "ru-RU",
	"sv":      "sv-SE",
	"tr":      "tr-TR",
	"zh_Hans": "zh-CN",
	"zh_Hant": "zh-TW",
}
