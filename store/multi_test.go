package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiFormat(t *testing.T, data string) *Format {
	t.Helper()
	f, err := Parse(pairDescriptor(true), []byte(data), ParseOptions{})
	require.NoError(t, err)
	return f
}

type multiView struct {
	Context string
	Source  []string
	Target  []string
	Members int
}

func viewOf(units []*MultiUnit) []multiView {
	out := make([]multiView, len(units))
	for i, m := range units {
		out[i] = multiView{m.Context(), m.Source(), m.Target(), len(m.Units())}
	}
	return out
}

func TestMergeMultiIdempotent(t *testing.T) {
	f, err := Parse(pairDescriptor(false), []byte(
		"k\tA\tx\n"+
			"j\tB\ty\n"+
			"k\tA\tz\n"), ParseOptions{})
	require.NoError(t, err)

	once := MergeMulti(f.ContentUnits())
	require.Len(t, once, 2)

	asUnits := make([]TranslationUnit, len(once))
	for i, m := range once {
		asUnits[i] = m
	}
	twice := MergeMulti(asUnits)

	want := []multiView{
		{"k", []string{"A", "A"}, []string{"x", "z"}, 2},
		{"j", []string{"B"}, []string{"y"}, 1},
	}
	if diff := cmp.Diff(want, viewOf(once)); diff != "" {
		t.Fatalf("MergeMulti mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(viewOf(once), viewOf(twice)); diff != "" {
		t.Fatalf("MergeMulti not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMultipleStringsFormat(t *testing.T) {
	f := multiFormat(t, "k\tA\tx\nk\tA\tz\n")

	units := f.ContentUnits()
	require.Len(t, units, 1)
	m, ok := units[0].(*MultiUnit)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "z"}, m.Target())
	assert.True(t, m.IsTranslated())
	assert.True(t, m.HasUnit())
}

func TestMultiUnitSetTargetResizes(t *testing.T) {
	f := multiFormat(t, "k\tA\tx\nk\tA\tz\n")
	m := f.ContentUnits()[0]

	require.NoError(t, m.SetTarget("one", "two", "three"))
	content, err := f.Content()
	require.NoError(t, err)
	assert.Equal(t, "k\tA\tone\nk\tA\ttwo\nk\tA\tthree\n", string(content))

	m = f.ContentUnits()[0]
	assert.Equal(t, []string{"one", "two", "three"}, m.Target())

	require.NoError(t, m.SetTarget("only"))
	content, err = f.Content()
	require.NoError(t, err)
	assert.Equal(t, "k\tA\tonly\n", string(content))

	require.NoError(t, m.SetTarget())
	assert.Equal(t, []string{""}, m.Target())
}

func TestMultiNewUnitJoinsGroup(t *testing.T) {
	f := multiFormat(t, "k\tA\tx\n")
	u, err := f.NewUnit("k", []string{"A"}, []string{"y"})
	require.NoError(t, err)

	m, ok := u.(*MultiUnit)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, m.Target())
	assert.Len(t, f.ContentUnits(), 1)
}

func TestMultiUnitAggregates(t *testing.T) {
	f := multiFormat(t, "k\tA\tx\tfuzzy\nk\tA\t\n")
	m := f.ContentUnits()[0]

	assert.True(t, m.IsFuzzy())
	assert.False(t, m.IsTranslated())
	assert.False(t, m.IsApproved())
	assert.Equal(t, StateFuzzy, m.State())
}
