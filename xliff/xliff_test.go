package xliff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/transkit/store"
)

const bilingual = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2">
  <file original="app" source-language="en" target-language="de" datatype="plaintext">
    <header><tool tool-id="x" tool-name="X"/></header>
    <body>
      <trans-unit id="hello" resname="greeting">
        <source>Hello &amp; welcome</source>
        <target state="translated">Hallo &amp; willkommen</target>
        <note>Shown on start</note>
      </trans-unit>
      <trans-unit id="bold">
        <source>Say <g id="1">hi</g></source>
        <target state="needs-review-translation">Sag <g id="1">hallo</g></target>
      </trans-unit>
      <trans-unit id="ok" approved="yes">
        <source>OK</source>
        <target>OK</target>
        <context-group purpose="location"><context context-type="linenumber">3</context></context-group>
      </trans-unit>
      <trans-unit id="fixed" translate="no">
        <source>ACME</source>
      </trans-unit>
    </body>
  </file>
</xliff>
`

func TestBilingualUnits(t *testing.T) {
	f, err := store.Parse(Descriptor(), []byte(bilingual), store.ParseOptions{})
	require.NoError(t, err)
	require.NoError(t, f.CheckValid())
	require.Len(t, f.ContentUnits(), 4)

	hello, _, err := f.FindUnit("greeting", "Hello & welcome")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hallo & willkommen"}, hello.Target())
	assert.Equal(t, "Shown on start", hello.Notes())
	assert.Equal(t, store.StateTranslated, hello.State())

	bold, _, err := f.FindUnit("bold", `Say <g id="1">hi</g>`)
	require.NoError(t, err)
	assert.Equal(t, store.StateFuzzy, bold.State())

	ok, _, err := f.FindUnit("ok", "OK")
	require.NoError(t, err)
	assert.Equal(t, store.StateApproved, ok.State())

	fixed, _, err := f.FindUnit("fixed", "ACME")
	require.NoError(t, err)
	assert.Equal(t, store.StateReadOnly, fixed.State())
}

func TestRoundTripKeepsUnknownElements(t *testing.T) {
	f, err := store.Parse(Descriptor(), []byte(bilingual), store.ParseOptions{})
	require.NoError(t, err)

	bold, _, err := f.FindUnit("bold", `Say <g id="1">hi</g>`)
	require.NoError(t, err)
	require.NoError(t, bold.SetTarget(`Sag <g id="1">servus</g> & tschüss`))
	require.NoError(t, bold.SetState(store.StateTranslated))

	out, err := f.Content()
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, `xmlns="urn:oasis:names:tc:xliff:document:1.2"`)
	assert.Equal(t, 1, strings.Count(text, "xmlns="))
	assert.Contains(t, text, `<context-group purpose="location">`)
	assert.Contains(t, text, `<tool tool-id="x" tool-name="X"/>`)
	assert.Contains(t, text, `Sag &lt;g id="1"&gt;servus`, "text that is not well-formed is escaped")

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "translated", again.Files[0].Units[1].Target.State)
	assert.Equal(t, `Sag <g id="1">servus</g> & tschüss`, TextOf(again.Files[0].Units[1].Target))
}

func TestMonolingualWithTemplate(t *testing.T) {
	tmplData := `<xliff version="1.2"><file original="a" source-language="en" datatype="plaintext"><body>
<trans-unit id="title"><source>Title</source></trans-unit>
<trans-unit id="body"><source>Body</source></trans-unit>
</body></file></xliff>`
	tmpl, err := store.Parse(Descriptor(), []byte(tmplData), store.ParseOptions{IsTemplate: true})
	require.NoError(t, err)

	base, err := NewTranslation([]byte(tmplData), "fr")
	require.NoError(t, err)
	assert.Contains(t, string(base), `target-language="fr"`)

	empty := `<xliff version="1.2"><file original="a" source-language="en" target-language="fr" datatype="plaintext"><body></body></file></xliff>`
	f, err := store.Parse(Descriptor(), []byte(empty), store.ParseOptions{Template: tmpl, Language: "fr"})
	require.NoError(t, err)

	u, add, err := f.FindUnit("title", "")
	require.NoError(t, err)
	assert.True(t, add)
	assert.Equal(t, []string{"Title"}, u.Source())
	require.NoError(t, u.SetTarget("Titre"))

	out, err := f.Content()
	require.NoError(t, err)
	assert.Contains(t, string(out), `<target state="translated">Titre</target>`)
	assert.NotContains(t, string(out), `id="body"`)
}

func TestParseRejectsOtherVersions(t *testing.T) {
	_, err := Parse([]byte(`<xliff version="2.0"></xliff>`))
	assert.ErrorContains(t, err, "unsupported XLIFF version")
	_, err = Parse([]byte(`<resources/>`))
	assert.Error(t, err)
}

func TestValidateDuplicateIDs(t *testing.T) {
	data := `<xliff version="1.2"><file original="a" source-language="en" datatype="plaintext"><body>
<trans-unit id="x"><source>A</source></trans-unit>
<trans-unit id="x"><source>B</source></trans-unit>
</body></file></xliff>`
	f, err := store.Parse(Descriptor(), []byte(data), store.ParseOptions{})
	require.NoError(t, err)
	assert.ErrorContains(t, f.CheckValid(), `duplicate trans-unit "x"`)
}
