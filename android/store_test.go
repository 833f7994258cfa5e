package android

import (
	"strings"
	"testing"

	"github.com/minios-linux/transkit/store"
)

const sourceXML = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- Shown in the launcher -->
    <string name="app_name" translatable="false">Notes</string>
    <string name="greeting">Hello</string>
    <plurals name="notes">
        <item quantity="one">%d note</item>
        <item quantity="other">%d notes</item>
    </plurals>
</resources>`

func parseTemplate(t *testing.T) *store.Format {
	t.Helper()
	tmpl, err := store.Parse(Descriptor(), []byte(sourceXML), store.ParseOptions{IsTemplate: true})
	if err != nil {
		t.Fatalf("Parse template error: %v", err)
	}
	return tmpl
}

func TestStore_TemplateUnits(t *testing.T) {
	tmpl := parseTemplate(t)
	units := tmpl.ContentUnits()
	if len(units) != 3 {
		t.Fatalf("content units = %d, want 3", len(units))
	}
	if !units[0].IsReadOnly() {
		t.Error("translatable=false resource should be read-only")
	}
	if got := units[0].Notes(); got != "Shown in the launcher" {
		t.Errorf("Notes = %q, want comment text", got)
	}
	if got := units[2].Source(); len(got) != 2 || got[1] != "%d notes" {
		t.Errorf("plural source = %q", got)
	}
}

func TestStore_TranslationPairsWithTemplate(t *testing.T) {
	tmpl := parseTemplate(t)
	tr := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="greeting">Ahoj</string>
</resources>`
	f, err := store.Parse(Descriptor(), []byte(tr), store.ParseOptions{Template: tmpl, Language: "pt_BR"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := f.Language(); got != "pt-rBR" {
		t.Errorf("Language = %q, want pt-rBR", got)
	}

	greeting, add, err := f.FindUnit("greeting", "")
	if err != nil || add {
		t.Fatalf("FindUnit(greeting) = add %v, err %v", add, err)
	}
	if src, tgt := greeting.Source(), greeting.Target(); src[0] != "Hello" || tgt[0] != "Ahoj" {
		t.Errorf("greeting = %q -> %q", src, tgt)
	}

	notes, add, err := f.FindUnit("notes", "")
	if err != nil || !add {
		t.Fatalf("FindUnit(notes) = add %v, err %v, want materialized", add, err)
	}
	if err := notes.SetTarget("%d poznámka", "%d poznámky", "%d poznámek"); err != nil {
		t.Fatalf("SetTarget error: %v", err)
	}

	out, err := f.Content()
	if err != nil {
		t.Fatalf("Content error: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "app_name") {
		t.Errorf("translation should not carry untranslatable resources:\n%s", s)
	}
	for _, want := range []string{
		`<item quantity="one">%d poznámka</item>`,
		`<item quantity="other">%d poznámky</item>`,
		`%d poznámek</item>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestStore_NewAndDelete(t *testing.T) {
	tmpl := parseTemplate(t)
	f, err := store.Parse(Descriptor(), []byte("<resources/>"), store.ParseOptions{Template: tmpl})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	u, err := f.NewUnit("farewell", nil, []string{"Sbohem"})
	if err != nil {
		t.Fatalf("NewUnit error: %v", err)
	}
	if got, _, err := f.FindUnit("farewell", ""); err != nil || got != u {
		t.Fatalf("FindUnit after NewUnit = %v, %v", got, err)
	}
	if err := f.DeleteUnit(u); err != nil {
		t.Fatalf("DeleteUnit error: %v", err)
	}
	out, _ := f.Content()
	if strings.Contains(string(out), "Sbohem") {
		t.Errorf("deleted resource still written:\n%s", out)
	}
}

func TestStore_SourceKeepsUntranslatable(t *testing.T) {
	tmpl := parseTemplate(t)
	out, err := tmpl.Content()
	if err != nil {
		t.Fatalf("Content error: %v", err)
	}
	if !strings.Contains(string(out), `<string name="app_name" translatable="false">Notes</string>`) {
		t.Errorf("source file lost untranslatable resource:\n%s", out)
	}
}

func TestStore_NewTranslation(t *testing.T) {
	out, err := NewTranslation([]byte(sourceXML), "cs")
	if err != nil {
		t.Fatalf("NewTranslation error: %v", err)
	}
	f, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if r := f.Lookup("greeting"); r == nil || r.Texts()[0] != "" {
		t.Errorf("greeting = %+v, want empty", r)
	}
	if f.Lookup("app_name") != nil {
		t.Error("untranslatable resource should be omitted")
	}
}

func TestStore_ParseRejectsNonResources(t *testing.T) {
	if _, err := Parse([]byte(`<manifest/>`)); err == nil {
		t.Fatal("Parse should reject a document without <resources>")
	}
}
