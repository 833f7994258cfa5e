package rcfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/store"
)

const script = `#include "resource.h"
LANGUAGE LANG_ENGLISH, SUBLANG_ENGLISH_US

STRINGTABLE
BEGIN
    IDS_HELLO   "Hello ""world"""
    IDS_PATH,   "C:\\Temp\n"
    IDS_LONG
        "Second line"
END

IDR_MAIN MENU
BEGIN
    POPUP "&File"
    BEGIN
        MENUITEM "&Open", ID_OPEN
        MENUITEM SEPARATOR
    END
END

IDD_ABOUT DIALOGEX 0, 0, 200, 100
CAPTION "About"
FONT 8, "MS Shell Dlg"
BEGIN
    DEFPUSHBUTTON "OK", IDOK, 10, 10, 50, 14
END
`

func TestExtract(t *testing.T) {
	segs, err := Doc{}.Extract([]byte(script))
	require.NoError(t, err)
	assert.Equal(t, []convert.Segment{
		{Source: `Hello "world"`, Note: "IDS_HELLO", Location: "STRINGTABLE:IDS_HELLO"},
		{Source: "C:\\Temp\n", Note: "IDS_PATH", Location: "STRINGTABLE:IDS_PATH"},
		{Source: "Second line", Note: "IDS_LONG", Location: "STRINGTABLE:IDS_LONG"},
		{Source: "&File", Location: "MENU:IDR_MAIN:0"},
		{Source: "&Open", Location: "MENU:IDR_MAIN:1"},
		{Source: "About", Location: "DIALOG:IDD_ABOUT:0"},
		{Source: "OK", Location: "DIALOG:IDD_ABOUT:1"},
	}, segs)
}

func TestExtract_Unterminated(t *testing.T) {
	_, err := Doc{}.Extract([]byte("STRINGTABLE\nBEGIN\n IDS_X \"open\nEND\n"))
	assert.ErrorContains(t, err, "line 3: unterminated string")
}

func TestRender_QuotesTranslations(t *testing.T) {
	out, err := Doc{}.Render([]byte(script), func(seg convert.Segment) (string, bool) {
		switch seg.Location {
		case "STRINGTABLE:IDS_HELLO":
			return `Hallo "Welt"`, true
		case "DIALOG:IDD_ABOUT:0":
			return "Über", true
		}
		return "", false
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `IDS_HELLO   "Hallo ""Welt"""`)
	assert.Contains(t, string(out), `CAPTION "Über"`)
	assert.Contains(t, string(out), `IDS_PATH,   "C:\\Temp\n"`)
	assert.Contains(t, string(out), `FONT 8, "MS Shell Dlg"`)
}

func TestRender_UTF16(t *testing.T) {
	wide, err := utf16.NewEncoder().Bytes([]byte("STRINGTABLE\r\nBEGIN\r\n  IDS_OK \"OK\"\r\nEND\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFE}, wide[:2])

	desc := Descriptor()
	tmpl, err := store.Parse(desc, wide, store.ParseOptions{IsTemplate: true})
	require.NoError(t, err)
	f, err := store.Parse(desc, wide, store.ParseOptions{Template: tmpl, Language: "de"})
	require.NoError(t, err)

	u, _, err := f.FindUnit("", "OK")
	require.NoError(t, err)
	require.NoError(t, u.SetTarget("Jawohl"))

	out, err := f.Content()
	require.NoError(t, err)
	text, isWide, err := decode(out)
	require.NoError(t, err)
	assert.True(t, isWide)
	assert.Equal(t, "STRINGTABLE\r\nBEGIN\r\n  IDS_OK \"Jawohl\"\r\nEND\r\n", text)
}
