package yamlfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/transkit/store"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	return f
}

func marshal(t *testing.T, f *File) string {
	t.Helper()
	out, err := f.Marshal()
	require.NoError(t, err)
	return string(out)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		locale string
		keys   []string
	}{
		{"empty", "", "", []string{}},
		{"flat", "greeting: Hello\nfarewell: Goodbye\n", "", []string{"greeting", "farewell"}},
		{"nested", "nav:\n  home: Home\n  about: About\nfooter:\n  copyright: (c)\n", "", []string{"nav.home", "nav.about", "footer.copyright"}},
		{"rails", "en:\n  greeting: Hello\n  nav:\n    home: Home\n", "en", []string{"greeting", "nav.home"}},
		{"rails region", "pt_BR:\n  greeting: Olá\n", "pt_BR", []string{"greeting"}},
		{"lone key that is not a locale", "navigation:\n  home: Home\n", "", []string{"navigation.home"}},
		{"sequences", "days: [Mon, Tue]\nsteps:\n  - title: One\n  - title: Two\n", "", []string{"days[0]", "days[1]", "steps[0].title", "steps[1].title"}},
		{"non-text scalars", "count: 42\nenabled: true\nratio: 3.14\nnothing: ~\nlabel: Hello\nquoted: \"42\"\n", "", []string{"label", "quoted"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.in)
			assert.Equal(t, tt.locale, f.Locale())
			assert.Equal(t, tt.keys, f.Keys())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"- a\n- b\n", "plain scalar\n", "a: [unclosed\n"} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestGetSet(t *testing.T) {
	f := parse(t, "en:\n  greeting: \"\"\n  days: [Mon, Tue]\n")

	require.True(t, f.Set("greeting", "Привет"))
	require.True(t, f.Set("days[1]", "Вт"))
	assert.False(t, f.Set("missing", "x"))

	v, ok := f.Get("greeting")
	assert.True(t, ok)
	assert.Equal(t, "Привет", v)
	_, ok = f.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, "en:\n  greeting: \"Привет\"\n  days: [Mon, Вт]\n", marshal(t, f))
}

func TestSet_MultilineUsesLiteral(t *testing.T) {
	f := parse(t, "text: one\n")
	f.Set("text", "one\ntwo")
	assert.Equal(t, "text: |-\n  one\n  two\n", marshal(t, f))
}

func TestMarshal_KeepsComments(t *testing.T) {
	out := marshal(t, parse(t, "# Site strings\nnav:\n  # Top menu\n  home: Home # short\n  about: About\n"))
	for _, line := range []string{"# Site strings\n", "  # Top menu\n", "  home: Home # short\n"} {
		assert.Contains(t, out, line)
	}
}

func TestNote(t *testing.T) {
	f := parse(t, "app: Notes\n# Window title\n# Keep short\ntitle: Notes # no period\nlist:\n  # first item\n  - One\n")
	assert.Equal(t, "Window title\nKeep short\nno period", f.Note("title"))
	assert.Equal(t, "first item", f.Note("list[0]"))
	assert.Empty(t, f.Note("app"))
	assert.Empty(t, f.Note("missing"))
}

func TestAdd(t *testing.T) {
	f := parse(t, "en:\n  greeting: Hello\n")

	require.NoError(t, f.Add("nav.home", "Home"))
	assert.Error(t, f.Add("greeting.sub", "x"), "below a scalar")
	assert.Error(t, f.Add("nav.home", "x"), "duplicate")
	assert.Error(t, f.Add("list[0]", "x"), "sequence item")
	assert.Error(t, f.Add("nav..x", "x"), "empty segment")

	assert.Equal(t, []string{"greeting", "nav.home"}, f.Keys())
	assert.Equal(t, "en:\n  greeting: Hello\n  nav:\n    home: Home\n", marshal(t, f))
}

func TestDelete(t *testing.T) {
	f := parse(t, "a: A\nnav:\n  home: Home\ndays: [Mon]\nkeep:\n  x: X\n  y: Y\n")

	require.True(t, f.Delete("nav.home"))
	require.True(t, f.Delete("days[0]"))
	require.True(t, f.Delete("keep.x"))
	assert.False(t, f.Delete("nav.home"))

	assert.Equal(t, []string{"a", "keep.y"}, f.Keys())
	assert.Equal(t, "a: A\nkeep:\n  y: Y\n", marshal(t, f))
}

func TestBlank(t *testing.T) {
	src := parse(t, "en:\n  greeting: Hello\n  nav:\n    home: Home\n  count: 3\n")
	f := Blank(src, "ru")

	assert.Equal(t, "ru", f.Locale())
	assert.Equal(t, "ru:\n  greeting: \"\"\n  nav:\n    home: \"\"\n  count: 3\n", marshal(t, f))

	v, _ := src.Get("greeting")
	assert.Equal(t, "Hello", v, "source left alone")
	assert.Equal(t, "en", src.Locale())

	bare := Blank(parse(t, "a: A\nb: B\n"), "ru")
	assert.Equal(t, "a: \"\"\nb: \"\"\n", marshal(t, bare))
}

func TestStore_NewTranslation(t *testing.T) {
	desc := Descriptor()
	out, err := desc.NewTranslation([]byte("en:\n  greeting: Hello\n"), "pt_BR")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR:\n  greeting: \"\"\n", string(out))

	tmpl, err := store.Parse(desc, []byte("en:\n  greeting: Hello\n"), store.ParseOptions{IsTemplate: true})
	require.NoError(t, err)
	f, err := store.Parse(desc, out, store.ParseOptions{Template: tmpl})
	require.NoError(t, err)

	u, _, err := f.FindUnit("greeting", "")
	require.NoError(t, err)
	assert.False(t, u.IsTranslated())
	require.NoError(t, u.SetTarget("Olá"))

	content, err := f.Content()
	require.NoError(t, err)
	assert.Equal(t, "pt-BR:\n  greeting: \"Olá\"\n", string(content))
}

func TestStore_Notes(t *testing.T) {
	f, err := store.Parse(Descriptor(), []byte("# Shown on launch\nwelcome: Hi\n"), store.ParseOptions{IsTemplate: true})
	require.NoError(t, err)
	u, _, err := f.FindUnit("welcome", "")
	require.NoError(t, err)
	assert.Equal(t, "Shown on launch", u.Notes())
}
