package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateIDHash(t *testing.T) {
	source := []string{"Hello"}

	assert.Equal(t, CalculateIDHash(false, source, "ctx"), CalculateIDHash(false, source, "ctx"))
	assert.NotEqual(t, CalculateIDHash(false, source, "ctx"), CalculateIDHash(false, source, "other"))
	assert.NotEqual(t, CalculateIDHash(false, source, "ctx"), CalculateIDHash(false, []string{"Bye"}, "ctx"))

	// With a template only the context counts.
	assert.Equal(t, CalculateIDHash(true, source, "key"), CalculateIDHash(true, []string{"Bye"}, "key"))
	assert.Equal(t, CalculateHash("key"), CalculateIDHash(true, source, "key"))
}

func TestCalculateHashPlurals(t *testing.T) {
	one := CalculateIDHash(false, []string{"file", "files"}, "")
	assert.Equal(t, CalculateHash("file"+PluralSeparator+"files", ""), one)
	assert.NotEqual(t, CalculateIDHash(false, []string{"file"}, ""), one)
}

// Stored id_hash values must survive upgrades.
func TestCalculateHashStable(t *testing.T) {
	tests := []struct {
		parts []string
		want  int64
	}{
		{[]string{"greeting"}, 8477902585494866027},
		{[]string{"Hello", "greeting"}, -770495972046316261},
		{[]string{"Save", "menu"}, -2660419983642145171},
		{[]string{"file" + PluralSeparator + "files", ""}, -946278672504178030},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateHash(tt.parts...), "%q", tt.parts)
	}
	assert.Equal(t, int64(-946278672504178030), CalculateIDHash(false, []string{"file", "files"}, ""))
	assert.Equal(t, int64(8477902585494866027), CalculateIDHash(true, []string{"Hello"}, "greeting"))
}

func TestCalculateHashKeepsEmptyParts(t *testing.T) {
	assert.Equal(t, int64(297708009224009298), CalculateHash("a", ""))
	assert.Equal(t, int64(6407363385829616649), CalculateHash("", "a"))
	assert.NotEqual(t, CalculateIDHash(false, []string{"a"}, ""), CalculateIDHash(false, nil, "a"))
}

func TestJoinSplitPlural(t *testing.T) {
	forms := []string{"one", "few", "many"}
	assert.Equal(t, forms, SplitPlural(JoinPlural(forms)))
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		format, code, want string
	}{
		{"posix", "pt-BR", "pt_BR"},
		{"posix_lowercase", "pt_BR", "pt_br"},
		{"posix_long", "cs", "cs_CZ"},
		{"posix_long", "pt_BR", "pt_BR"},
		{"posix_long_lowercase", "cs", "cs_cz"},
		{"bcp", "pt_BR", "pt-BR"},
		{"bcp_lower", "zh_Hant", "zh-hant"},
		{"bcp_long", "de", "de-DE"},
		{"bcp_legacy", "zh_Hans", "zh-CN"},
		{"posix_legacy", "zh_Hant", "zh_TW"},
		{"android", "pt_BR", "pt-rBR"},
		{"android", "sr_Latn", "b+sr+Latn"},
		{"android", "zh_Hans", "zh-rCN"},
		{"android", "de", "de"},
		{"appstore", "nb_NO", "no"},
		{"appstore", "fi", "fi"},
		{"googleplay", "he", "iw-IL"},
		{"linux", "sr_Latn", "sr@latin"},
		{"linux", "uz_Cyrl", "uz@cyrillic"},
		{"linux_lowercase", "pt_BR", "pt_br"},
		{"", "pt-BR", "pt-BR"},
		{"posix", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageCode(tt.format, tt.code), "%s(%s)", tt.format, tt.code)
	}
}

func TestLanguageFormats(t *testing.T) {
	formats := LanguageFormats()
	assert.Contains(t, formats, "android")
	assert.Contains(t, formats, "bcp_long")
	assert.IsIncreasing(t, formats)
}
