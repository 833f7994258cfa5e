package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadTemplate(t *testing.T, content string) *Format {
	t.Helper()
	tmpl, err := Parse(monoDescriptor(), []byte(content), ParseOptions{IsTemplate: true})
	require.NoError(t, err)
	return tmpl
}

func TestGreetingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	desc := monoDescriptor()
	tmpl := loadTemplate(t, "greeting=Hello\n")
	path := writeFile(t, dir, "fr.kv", "")

	f, err := Open(desc, path, ParseOptions{Template: tmpl, Language: "fr"})
	require.NoError(t, err)

	unit, add, err := f.FindUnit("greeting", "Hello")
	require.NoError(t, err)
	assert.True(t, add)
	assert.True(t, unit.HasUnit())
	assert.Equal(t, []string{"Hello"}, unit.Source())
	assert.False(t, unit.IsTranslated())

	require.NoError(t, unit.SetTarget("Bonjour"))
	require.NoError(t, f.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "greeting=Bonjour\n", string(data))

	reopened, err := Open(desc, path, ParseOptions{Template: tmpl, Language: "fr"})
	require.NoError(t, err)
	unit2, add, err := reopened.FindUnit("greeting", "Hello")
	require.NoError(t, err)
	assert.False(t, add)
	assert.Equal(t, []string{"Bonjour"}, unit2.Target())
	assert.True(t, unit2.IsTranslated())
	assert.Equal(t, StateTranslated, unit2.State())
}

func TestMonolingualRequiresTemplate(t *testing.T) {
	_, err := Parse(monoDescriptor(), []byte("a=b\n"), ParseOptions{})
	require.ErrorIs(t, err, ErrNoTemplate)
}

func TestFindUnitNotFound(t *testing.T) {
	f, err := Parse(pairDescriptor(false), []byte("ctx\tHello\tHallo\n"), ParseOptions{})
	require.NoError(t, err)

	_, _, err = f.FindUnit("", "Hello")
	var nf *UnitNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Hello", nf.Source)

	u, add, err := f.FindUnit("ctx", "Hello")
	require.NoError(t, err)
	assert.False(t, add)
	assert.Equal(t, []string{"Hallo"}, u.Target())
}

func TestIndexCompleteness(t *testing.T) {
	data := "# header\n" +
		"\tOne\tEins\n" +
		"menu\tOpen\tÖffnen\n" +
		"verb\tOpen\tÖffne\n" +
		"\tTwo\t\n"
	f, err := Parse(pairDescriptor(false), []byte(data), ParseOptions{})
	require.NoError(t, err)

	assert.Len(t, f.AllUnits(), 5)
	require.Len(t, f.ContentUnits(), 4)
	for _, u := range f.ContentUnits() {
		found, _, err := f.FindUnit(u.Context(), JoinPlural(u.Source()))
		require.NoError(t, err)
		assert.Same(t, u, found)
	}
}

func TestUnitIDHashFollowsTemplate(t *testing.T) {
	tmpl := loadTemplate(t, "greeting=Hello\n")
	f, err := Parse(monoDescriptor(), []byte("greeting=Hallo\n"), ParseOptions{Template: tmpl})
	require.NoError(t, err)

	units := f.ContentUnits()
	require.Len(t, units, 1)
	assert.Equal(t, CalculateHash("greeting"), units[0].IDHash())
	assert.Equal(t, []string{"Hello"}, units[0].Source())
	assert.Equal(t, []string{"Hallo"}, units[0].Target())

	require.NoError(t, units[0].SetTarget("Servus"))
	assert.Equal(t, CalculateHash("greeting"), units[0].IDHash())
	assert.Equal(t, []string{"Servus"}, units[0].Target())
}

func TestTemplateSharesIDHashWithTranslation(t *testing.T) {
	tmpl := loadTemplate(t, "greeting=Hello\nfarewell=Bye\n")
	f, err := Parse(monoDescriptor(), []byte("greeting=Hallo\n"), ParseOptions{Template: tmpl})
	require.NoError(t, err)

	tu, _, err := tmpl.FindUnit("greeting", "")
	require.NoError(t, err)
	u, _, err := f.FindUnit("greeting", "")
	require.NoError(t, err)
	assert.Equal(t, u.IDHash(), tu.IDHash())
	assert.Equal(t, CalculateHash("greeting"), tu.IDHash())

	require.Len(t, f.ContentUnits(), 2)
	for i, want := range tmpl.ContentUnits() {
		assert.Equal(t, want.IDHash(), f.ContentUnits()[i].IDHash(), want.Context())
	}
	found, ok := tmpl.TemplateUnit("farewell", "")
	require.True(t, ok)
	assert.Equal(t, []string{"Bye"}, found.Source())
}

func TestNewUnitUpdatesIndex(t *testing.T) {
	f, err := Parse(pairDescriptor(false), []byte("\tOne\tEins\n"), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, f.ContentUnits(), 1)

	u, err := f.NewUnit("", []string{"Two"}, []string{"Zwei"})
	require.NoError(t, err)
	assert.Len(t, f.AllUnits(), 2)
	assert.Len(t, f.ContentUnits(), 2)

	found, _, err := f.FindUnit("", "Two")
	require.NoError(t, err)
	assert.Same(t, u, found)

	content, err := f.Content()
	require.NoError(t, err)
	assert.Equal(t, "\tOne\tEins\n\tTwo\tZwei\n", string(content))
}

func TestNewUnitAttachesTemplateOnlyUnit(t *testing.T) {
	tmpl := loadTemplate(t, "a=Apple\nb=Banana\n")
	f, err := Parse(monoDescriptor(), []byte("a=Apfel\n"), ParseOptions{Template: tmpl})
	require.NoError(t, err)

	u, err := f.NewUnit("b", []string{"Banana"}, []string{"Banane"})
	require.NoError(t, err)
	assert.True(t, u.HasUnit())
	assert.Equal(t, []string{"Banana"}, u.Source())
	assert.Equal(t, []string{"Banane"}, u.Target())
	assert.Len(t, f.ContentUnits(), 2)
}

func TestNewUnitUnsupported(t *testing.T) {
	desc := pairDescriptor(false)
	desc.CanAddUnit = false
	f, err := Parse(desc, nil, ParseOptions{})
	require.NoError(t, err)
	_, err = f.NewUnit("", []string{"x"}, nil)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestCleanupUnused(t *testing.T) {
	dir := t.TempDir()
	tmpl := loadTemplate(t, "a=Apple\nb=Banana\n")
	path := writeFile(t, dir, "de.kv", "a=Apfel\nold=Alt\nb=\n")

	f, err := Open(monoDescriptor(), path, ParseOptions{Template: tmpl})
	require.NoError(t, err)

	removed, err := f.CleanupUnused()
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a=Apfel\nb=\n", string(data))

	removed, err = f.CleanupUnused()
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = f.CleanupBlank()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, removed)

	removed, err = f.CleanupBlank()
	require.NoError(t, err)
	assert.Empty(t, removed)

	u, add, err := f.FindUnit("b", "Banana")
	require.NoError(t, err)
	assert.True(t, add, "blank entry should be template-only after cleanup")
	assert.True(t, u.HasUnit())
}

func TestCleanupWithoutTemplate(t *testing.T) {
	f, err := Parse(pairDescriptor(false), []byte("\tOne\t\n"), ParseOptions{})
	require.NoError(t, err)
	removed, err := f.CleanupBlank()
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestDeleteUnit(t *testing.T) {
	f, err := Parse(pairDescriptor(false), []byte("\tOne\tEins\n\tTwo\tZwei\n"), ParseOptions{})
	require.NoError(t, err)
	u, _, err := f.FindUnit("", "One")
	require.NoError(t, err)

	require.NoError(t, f.DeleteUnit(u))
	assert.Len(t, f.ContentUnits(), 1)
	_, _, err = f.FindUnit("", "One")
	var nf *UnitNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestIterateMerge(t *testing.T) {
	data := "\tOne\tEins\n" +
		"\tTwo\tZwei\tfuzzy\n" +
		"\tThree\t\n"

	collect := func(f *Format, mode FuzzyMode) map[string]bool {
		out := make(map[string]bool)
		for fuzzy, u := range f.IterateMerge(mode, true) {
			out[u.Source()[0]] = fuzzy
		}
		return out
	}

	f, err := Parse(pairDescriptor(false), []byte(data), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"One": false}, collect(f, FuzzySkip))
	assert.Equal(t, map[string]bool{"One": false, "Two": true}, collect(f, FuzzyProcess))

	assert.Equal(t, map[string]bool{"One": false, "Two": false}, collect(f, FuzzyApprove))
	u, _, err := f.FindUnit("", "Two")
	require.NoError(t, err)
	assert.False(t, u.IsFuzzy())
	assert.Equal(t, StateTranslated, u.State())

	count := 0
	for range f.IterateMerge(FuzzySkip, false) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestCheckValidAndBase(t *testing.T) {
	ok, errs := IsValidBaseForNew(monoDescriptor(), []byte("a=Apple\n"), true)
	assert.True(t, ok)
	assert.Empty(t, errs)

	ok, errs = IsValidBaseForNew(monoDescriptor(), []byte("broken"), true)
	assert.False(t, ok)
	assert.Len(t, errs, 1)

	ok, errs = IsValidBaseForNew(pairDescriptor(false), nil, false)
	assert.False(t, ok)
	assert.ErrorIs(t, errs[0], ErrUnsupported)
}

func TestCreateNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "po", "cs.kv")
	require.NoError(t, CreateNewFile(monoDescriptor(), path, "cs", []byte("a=Apple\nb=Banana\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a=\nb=\n", string(data))
}

func TestSaveWithoutPath(t *testing.T) {
	f, err := Parse(pairDescriptor(false), nil, ParseOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.Save(), ErrNoPath)
}
