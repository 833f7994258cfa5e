package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	po "github.com/minios-linux/transkit/pofile"
	"github.com/minios-linux/transkit/store"
)

func parse(t *testing.T, src string) *po.File {
	t.Helper()
	f, err := po.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return f
}

const russianCatalog = `msgid ""
msgstr ""
"Project-Id-Version: transkit 1\n"
"POT-Creation-Date: old\n"
"Language: ru\n"

# keep me
#: old.go:1
#, fuzzy, c-format
msgid "keep"
msgstr "сохранить"

#: unused.go:1
msgid "gone"
msgstr "ушло"

msgctxt "menu"
msgid "Open"
msgstr "Открыть"
`

const template = `msgid ""
msgstr ""
"POT-Creation-Date: new\n"

#. auto
#: new.go:10
#, python-format
msgid "keep"
msgid_plural "keeps"
msgstr[0] ""
msgstr[1] ""

#, java-format
msgid "new"
msgid_plural "news"
msgstr[0] ""
msgstr[1] ""

msgid "Open"
msgstr ""
`

func TestMerge(t *testing.T) {
	catalog := parse(t, russianCatalog)
	merged := Merge(catalog, parse(t, template))

	assert.Equal(t, "new", merged.HeaderField("POT-Creation-Date"))
	assert.Equal(t, "ru", merged.HeaderField("Language"))
	assert.Equal(t, "old", catalog.HeaderField("POT-Creation-Date"), "input header left alone")
	require.Len(t, merged.Entries, 5)

	keep := merged.Entries[0]
	assert.Equal(t, "keeps", keep.PluralID)
	assert.Equal(t, []string{"сохранить", "", ""}, keep.Str)
	assert.Equal(t, []string{"fuzzy", "c-format", "python-format"}, keep.Flags)
	assert.Equal(t, []string{"new.go:10"}, keep.References)
	assert.Equal(t, []string{"auto"}, keep.AutoComments)
	assert.Equal(t, []string{"keep me"}, keep.Comments)

	added := merged.Entries[1]
	assert.Equal(t, "new", added.ID)
	assert.Len(t, added.Str, 3, "three forms for Russian")
	assert.False(t, added.IsTranslated())

	// The context differs, so the translation is not reused.
	open := merged.Entries[2]
	assert.Equal(t, "", open.Context)
	assert.Empty(t, open.Text())

	for _, e := range merged.Entries[3:] {
		assert.True(t, e.Obsolete, "%q is obsolete", e.ID)
		assert.Nil(t, e.References)
	}
	assert.Equal(t, "ушло", merged.Entries[3].Text())
	assert.Equal(t, "menu", merged.Entries[4].Context)
}

func TestMerge_RevivesObsolete(t *testing.T) {
	catalog := parse(t, "#~ msgid \"back\"\n#~ msgstr \"zurück\"\n")
	merged := Merge(catalog, parse(t, "msgid \"back\"\nmsgstr \"\"\n"))

	require.Len(t, merged.Entries, 1)
	e := merged.Entries[0]
	assert.False(t, e.Obsolete)
	assert.True(t, e.IsFuzzy())
	assert.Equal(t, "zurück", e.Text())
}

func TestMerge_PluralBecomesSingular(t *testing.T) {
	catalog := parse(t, "msgid \"file\"\nmsgid_plural \"files\"\nmsgstr[0] \"Datei\"\nmsgstr[1] \"Dateien\"\n")
	merged := Merge(catalog, parse(t, "msgid \"file\"\nmsgstr \"\"\n"))

	require.Len(t, merged.Entries, 1)
	e := merged.Entries[0]
	assert.Equal(t, []string{"Datei"}, e.Str)
	assert.True(t, e.IsFuzzy())
}

func TestMerge_Output(t *testing.T) {
	catalog := parse(t, "msgid \"\"\nmsgstr \"Language: de\\n\"\n\n#| msgid \"Helo\"\n#, fuzzy\nmsgid \"Hello\"\nmsgstr \"Hallo\"\n")
	merged := Merge(catalog, parse(t, "#: main.go:3\nmsgid \"Hello\"\nmsgstr \"\"\n"))

	out, err := merged.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `msgid ""
msgstr "Language: de\n"

#: main.go:3
#, fuzzy
#| msgid "Helo"
msgid "Hello"
msgstr "Hallo"
`, string(out))
}

func TestMergeFlags(t *testing.T) {
	tests := []struct {
		catalog, template, want []string
	}{
		{nil, nil, nil},
		{[]string{"fuzzy", "c-format"}, []string{"python-format", "c-format"}, []string{"fuzzy", "c-format", "python-format"}},
		{nil, []string{"fuzzy", "no-wrap"}, []string{"no-wrap"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mergeFlags(tt.catalog, tt.template))
	}
}

func TestUpdateFormat(t *testing.T) {
	data := []byte("msgid \"\"\nmsgstr \"Language: de\\n\"\n\nmsgid \"Hello\"\nmsgstr \"Hallo\"\n")
	f, err := store.Parse(po.Descriptor(), data, store.ParseOptions{})
	require.NoError(t, err)
	require.Len(t, f.ContentUnits(), 1)

	require.NoError(t, UpdateFormat(f, parse(t, "msgid \"Hello\"\nmsgstr \"\"\n\nmsgid \"World\"\nmsgstr \"\"\n")))
	require.Len(t, f.ContentUnits(), 2)

	u, _, err := f.FindUnit("", "Hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hallo"}, u.Target())

	content, err := f.Content()
	require.NoError(t, err)
	assert.Contains(t, string(content), "msgid \"World\"")
}
