package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setLocaleEnv(t *testing.T, language, all, messages, lang string) {
	t.Helper()
	t.Setenv("LANGUAGE", language)
	t.Setenv("LC_ALL", all)
	t.Setenv("LC_MESSAGES", messages)
	t.Setenv("LANG", lang)
}

func reset(t *testing.T) {
	old := active.Load()
	t.Cleanup(func() { active.Store(old) })
}

func TestPreferred(t *testing.T) {
	tests := []struct {
		name                          string
		language, all, messages, lang string
		want                          []string
	}{
		{"language list first", "ru_RU.UTF-8:de", "fr_FR.UTF-8", "", "", []string{"ru_RU", "de", "fr_FR"}},
		{"C and POSIX dropped", "C", "POSIX", "fr_FR.UTF-8", "", nil},
		{"messages after C", "", "", "fr_FR.UTF-8", "en_US", []string{"fr_FR"}},
		{"modifier stripped", "", "", "", "sr_RS@latin", []string{"sr_RS"}},
		{"nothing set", "", "", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLocaleEnv(t, tt.language, tt.all, tt.messages, tt.lang)
			assert.Equal(t, tt.want, Preferred())
		})
	}
}

func TestMatch(t *testing.T) {
	available := []string{"de", "pt_BR"}
	assert.Equal(t, "de", match([]string{"de_AT"}, available))
	assert.Equal(t, "pt_BR", match([]string{"xx-invalid!", "pt-BR"}, available))
	assert.Equal(t, "de", match([]string{"fr", "de"}, available))
	assert.Empty(t, match([]string{"ja"}, available))
	assert.Empty(t, match([]string{"de"}, nil))
}

func TestLanguages(t *testing.T) {
	assert.Contains(t, Languages(), "de")
}

func TestPassthroughWithoutCatalog(t *testing.T) {
	reset(t)
	assert.Empty(t, Init("ja"))
	assert.Equal(t, "Hello", T("Hello"))
	assert.Equal(t, "file", N("file", "files", 1))
	assert.Equal(t, "files", N("file", "files", 2))
}

func TestEmbeddedGerman(t *testing.T) {
	reset(t)
	assert.Equal(t, "de", Init("de_DE"))
	assert.Equal(t, "Unterstützte Dateiformate auflisten", T("List supported file formats"))
	assert.Equal(t, "%d Dateien konnten nicht geladen werden",
		N("%d file could not be loaded", "%d files could not be loaded", 3))
	assert.Equal(t, "not in the catalog", T("not in the catalog"))
}

func TestInitFromEnvironment(t *testing.T) {
	reset(t)
	setLocaleEnv(t, "", "", "", "de_CH.UTF-8")
	assert.Equal(t, "de", Init(""))
}

func TestKeepsFormatVerbs(t *testing.T) {
	reset(t)
	Init("de")
	assert.Equal(t, "transkit Version %s", T("transkit version %s"))
	assert.Equal(t, "%q zu %s hinzugefügt", T("Added %q to %s"))
	assert.Equal(t, "100% %d unknown", T("100% %d unknown"))
}
