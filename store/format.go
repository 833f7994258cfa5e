package store

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
)

// FuzzyMode selects how IterateMerge treats fuzzy units.
type FuzzyMode string

const (
	FuzzySkip    FuzzyMode = ""
	FuzzyProcess FuzzyMode = "process"
	FuzzyApprove FuzzyMode = "approve"
)

// ParseOptions configures Parse and Open.
type ParseOptions struct {
	Path string
	// Template is the parsed source-language file of a monolingual format.
	Template       *Format
	Language       string
	SourceLanguage string
	// IsTemplate marks the file being parsed as a template itself.
	IsTemplate bool
	Existing   []ExistingUnit
	Logger     *slog.Logger
}

// Format owns one parsed native store and the lazily built unit indices.
// A Format is not safe for concurrent use.
type Format struct {
	desc           *Descriptor
	native         Native
	template       *Format
	path           string
	language       string
	sourceLanguage string
	isTemplate     bool
	logger         *slog.Logger

	indexed       bool
	allUnits      []TranslationUnit
	contentUnits  []TranslationUnit
	templateUnits []TranslationUnit
	unitIndex     map[int64]TranslationUnit
	templateIndex map[int64]TranslationUnit
}

// Parse loads data with desc.
func Parse(desc *Descriptor, data []byte, opts ParseOptions) (*Format, error) {
	name := opts.Path
	if name == "" {
		name = "<memory>"
	}
	template := opts.Template
	if !desc.Monolingual.AllowsTemplate() {
		template = nil
	}
	if template == nil && !opts.IsTemplate && !desc.Monolingual.AllowsBilingual() {
		return nil, fmt.Errorf("parsing %s as %s: %w", name, desc.ID, ErrNoTemplate)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	language := desc.LanguageCode(opts.Language)

	native, err := desc.Load(&LoadContext{
		Data:           data,
		Path:           opts.Path,
		Template:       template,
		Language:       language,
		SourceLanguage: opts.SourceLanguage,
		IsTemplate:     opts.IsTemplate,
		Existing:       opts.Existing,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s as %s: %w", name, desc.ID, err)
	}

	return &Format{
		desc:           desc,
		native:         native,
		template:       template,
		path:           opts.Path,
		language:       language,
		sourceLanguage: opts.SourceLanguage,
		isTemplate:     opts.IsTemplate,
		logger:         logger.With("format", desc.ID, "path", opts.Path),
	}, nil
}

// Open reads path and parses it with desc.
func Open(desc *Descriptor, path string, opts ParseOptions) (*Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts.Path = path
	return Parse(desc, data, opts)
}

func (f *Format) Native() Native          { return f.native }
func (f *Format) Template() *Format       { return f.template }
func (f *Format) Descriptor() *Descriptor { return f.desc }
func (f *Format) Path() string            { return f.path }
func (f *Format) IsTemplate() bool        { return f.isTemplate }
func (f *Format) Language() string        { return f.language }
func (f *Format) SourceLanguage() string  { return f.sourceLanguage }

// HasTemplate reports whether units are paired with a template.
func (f *Format) HasTemplate() bool {
	return f.template != nil && f.desc.Monolingual.AllowsTemplate()
}

// hashesContext reports whether units are identified by context alone.
// A monolingual template is identified the way its translations are.
func (f *Format) hashesContext() bool {
	if f.desc.HashSource {
		return false
	}
	return f.HasTemplate() || (f.isTemplate && f.desc.Monolingual.AllowsTemplate())
}

// paired reports whether the engine itself pairs native and template
// entries by context.
func (f *Format) paired() bool {
	return f.HasTemplate() && !f.desc.MergesTemplate
}

// Invalidate drops both indices; they are rebuilt on next access.
func (f *Format) Invalidate() {
	f.indexed = false
	f.allUnits = nil
	f.contentUnits = nil
	f.templateUnits = nil
	f.unitIndex = nil
	f.templateIndex = nil
}

func (f *Format) build() {
	if f.indexed {
		return
	}
	entries := f.native.Entries()

	var units []TranslationUnit
	var paired []TranslationUnit
	if f.paired() {
		byContext := make(map[string][]Entry)
		translated := make(map[string]bool)
		for _, e := range entries {
			if e.HasContent() {
				byContext[e.Context()] = append(byContext[e.Context()], e)
				translated[e.Context()] = true
			}
		}
		used := make(map[Entry]bool)
		for _, t := range f.template.native.Entries() {
			if !t.HasContent() {
				continue
			}
			var n Entry
			if list := byContext[t.Context()]; len(list) > 0 {
				n = list[0]
				byContext[t.Context()] = list[1:]
				used[n] = true
			} else if f.desc.HasMultipleStrings && translated[t.Context()] {
				// The translation has fewer strings for this key.
				continue
			}
			u := newUnit(f, n, t)
			units = append(units, u)
			paired = append(paired, u)
		}
		for _, e := range entries {
			if !used[e] {
				units = append(units, newUnit(f, e, nil))
			}
		}
	} else {
		for _, e := range entries {
			units = append(units, newUnit(f, e, nil))
		}
	}

	if f.desc.HasMultipleStrings {
		merged := MergeMulti(units)
		units = make([]TranslationUnit, len(merged))
		for i, m := range merged {
			units[i] = m
		}
		if paired != nil {
			paired = contentOnly(units)
		}
	}

	f.allUnits = units
	f.contentUnits = contentOnly(units)
	f.unitIndex = f.index(f.contentUnits, "unit")

	switch {
	case f.paired():
		f.templateUnits = paired
	case f.HasTemplate():
		f.templateUnits = f.template.ContentUnits()
	case f.isTemplate:
		f.templateUnits = f.contentUnits
	}
	f.templateIndex = f.index(f.templateUnits, "template")
	f.indexed = true
}

func contentOnly(units []TranslationUnit) []TranslationUnit {
	var out []TranslationUnit
	for _, u := range units {
		if u.HasContent() {
			out = append(out, u)
		}
	}
	return out
}

func (f *Format) index(units []TranslationUnit, kind string) map[int64]TranslationUnit {
	idx := make(map[int64]TranslationUnit, len(units))
	for _, u := range units {
		h := u.IDHash()
		if prev, ok := idx[h]; ok {
			f.logger.Warn("duplicate id_hash in index",
				"index", kind, "context", u.Context(), "first", prev.Context())
			continue
		}
		idx[h] = u
	}
	return idx
}

// AllUnits returns every unit, including headers and template-only units.
func (f *Format) AllUnits() []TranslationUnit {
	f.build()
	return f.allUnits
}

// ContentUnits returns units carrying translatable content.
func (f *Format) ContentUnits() []TranslationUnit {
	f.build()
	return f.contentUnits
}

// TemplateUnits returns the units of the template.
func (f *Format) TemplateUnits() []TranslationUnit {
	f.build()
	return f.templateUnits
}

func (f *Format) stringHash(context, source string) int64 {
	if f.hashesContext() {
		return CalculateHash(context)
	}
	return CalculateHash(source, context)
}

// TemplateUnit looks up a template unit.
func (f *Format) TemplateUnit(context, source string) (TranslationUnit, bool) {
	f.build()
	u, ok := f.templateIndex[f.stringHash(context, source)]
	return u, ok
}

// FindUnit looks up a unit by context and joined source. For monolingual
// formats a template-only hit is materialized and reported with add=true.
func (f *Format) FindUnit(context, source string) (unit TranslationUnit, add bool, err error) {
	f.build()
	u, ok := f.unitIndex[f.stringHash(context, source)]
	if !ok {
		return nil, false, &UnitNotFoundError{Context: context, Source: source}
	}
	if f.HasTemplate() && !u.HasUnit() {
		if err := u.CloneTemplate(); err != nil {
			return nil, false, fmt.Errorf("materializing %q: %w", context, err)
		}
		return u, true, nil
	}
	return u, false, nil
}

// NewUnit adds a new entry to the native store and updates the cached
// collections in place.
func (f *Format) NewUnit(key string, source, target []string) (TranslationUnit, error) {
	if !f.desc.CanAddUnit {
		return nil, fmt.Errorf("adding %q to %s: %w", key, f.desc.ID, ErrUnsupported)
	}
	f.build()

	if f.paired() {
		if existing, ok := f.unitIndex[CalculateHash(key)]; ok && !existing.HasUnit() {
			if len(existing.members()) == 1 {
				u := existing.members()[0]
				if err := f.attach(u, key, source, target); err != nil {
					return nil, err
				}
				return u, nil
			}
		}
	}

	entry, err := f.native.CreateEntry(key, source, target)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", key, err)
	}
	if err := f.native.AddEntry(entry); err != nil {
		return nil, fmt.Errorf("adding %q: %w", key, err)
	}
	u := newUnit(f, entry, nil)

	if f.desc.HasMultipleStrings {
		if existing, ok := f.unitIndex[u.IDHash()]; ok {
			if m, ok := existing.(*MultiUnit); ok {
				m.units = append(m.units, u)
				return m, nil
			}
		}
		m := &MultiUnit{format: f, units: []*Unit{u}}
		f.insert(m)
		return m, nil
	}
	f.insert(u)
	return u, nil
}

func (f *Format) attach(u *Unit, key string, source, target []string) error {
	entry, err := f.native.CreateEntry(key, source, target)
	if err != nil {
		return fmt.Errorf("creating %q: %w", key, err)
	}
	if err := f.native.AddEntry(entry); err != nil {
		return fmt.Errorf("adding %q: %w", key, err)
	}
	u.native = entry
	u.Invalidate()
	return nil
}

func (f *Format) insert(u TranslationUnit) {
	f.allUnits = append(f.allUnits, u)
	if !u.HasContent() {
		return
	}
	f.contentUnits = append(f.contentUnits, u)
	h := u.IDHash()
	if _, ok := f.unitIndex[h]; !ok {
		f.unitIndex[h] = u
	}
	if f.isTemplate {
		f.templateUnits = append(f.templateUnits, u)
		if _, ok := f.templateIndex[h]; !ok {
			f.templateIndex[h] = u
		}
	}
}

// DeleteUnit removes the native entries of u. The caller saves.
func (f *Format) DeleteUnit(u TranslationUnit) error {
	if !f.desc.CanDeleteUnit {
		return fmt.Errorf("deleting from %s: %w", f.desc.ID, ErrUnsupported)
	}
	defer f.Invalidate()
	for _, m := range u.members() {
		if m.native == nil {
			continue
		}
		if _, err := f.native.DeleteEntry(m.native); err != nil {
			return fmt.Errorf("deleting %q: %w", m.Context(), err)
		}
		m.native = nil
		m.Invalidate()
	}
	return nil
}

// CleanupUnused deletes translation entries whose context is no longer in
// the template and returns the removed contexts.
func (f *Format) CleanupUnused() ([]string, error) {
	if !f.paired() {
		return nil, nil
	}
	keep := make(map[string]bool)
	for _, t := range f.template.native.Entries() {
		if t.HasContent() {
			keep[t.Context()] = true
		}
	}
	return f.cleanup(func(e Entry) bool { return !keep[e.Context()] })
}

// CleanupBlank deletes translation entries whose target is empty in all
// plural forms and returns the removed contexts.
func (f *Format) CleanupBlank() ([]string, error) {
	if !f.paired() {
		return nil, nil
	}
	return f.cleanup(func(e Entry) bool { return allEmpty(e.Target()) })
}

func (f *Format) cleanup(remove func(Entry) bool) ([]string, error) {
	if !f.desc.CanDeleteUnit {
		return nil, fmt.Errorf("cleaning up %s: %w", f.desc.ID, ErrUnsupported)
	}
	defer f.Invalidate()

	var removed []string
	needsSave := false
	entries := append([]Entry(nil), f.native.Entries()...)
	for _, e := range entries {
		if !e.HasContent() || !remove(e) {
			continue
		}
		save, err := f.native.DeleteEntry(e)
		if err != nil {
			return removed, fmt.Errorf("deleting %q: %w", e.Context(), err)
		}
		f.logger.Debug("removed entry", "context", e.Context())
		removed = append(removed, e.Context())
		needsSave = needsSave || save
	}
	if needsSave && f.path != "" {
		if err := f.Save(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// IterateMerge yields the content units worth merging into another store,
// paired with whether the merged result should be marked fuzzy.
func (f *Format) IterateMerge(fuzzy FuzzyMode, onlyTranslated bool) iter.Seq2[bool, TranslationUnit] {
	return func(yield func(bool, TranslationUnit) bool) {
		for _, u := range f.ContentUnits() {
			if onlyTranslated && allEmpty(u.Target()) {
				continue
			}
			setFuzzy := false
			if u.IsFuzzy() {
				switch fuzzy {
				case FuzzyProcess:
					setFuzzy = true
				case FuzzyApprove:
					if err := u.SetState(StateTranslated); err != nil {
						f.logger.Warn("approving fuzzy unit", "context", u.Context(), "error", err)
						continue
					}
				default:
					continue
				}
			}
			if !yield(setFuzzy, u) {
				return
			}
		}
	}
}

// Content renders the native store without writing it.
func (f *Format) Content() ([]byte, error) {
	data, err := f.native.Marshal()
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", f.desc.ID, err)
	}
	return data, nil
}

// Save writes the native store back to its path atomically.
func (f *Format) Save() error {
	if f.path == "" {
		return ErrNoPath
	}
	data, err := f.Content()
	if err != nil {
		return err
	}
	return SaveAtomic(f.path, data)
}

// CheckValid runs backend validation on the store and its template.
func (f *Format) CheckValid() error {
	if v, ok := f.native.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validating %s: %w", f.desc.ID, err)
		}
	}
	if f.template != nil {
		return f.template.CheckValid()
	}
	return nil
}

// IsValidBaseForNew reports whether base can seed new translation files.
func IsValidBaseForNew(desc *Descriptor, base []byte, monolingual bool) (bool, []error) {
	if desc.NewTranslation == nil {
		return false, []error{fmt.Errorf("creating %s files: %w", desc.ID, ErrUnsupported)}
	}
	if len(base) == 0 {
		if monolingual {
			return false, []error{ErrNoTemplate}
		}
		return true, nil
	}
	f, err := Parse(desc, base, ParseOptions{IsTemplate: monolingual})
	if err != nil {
		return false, []error{err}
	}
	if err := f.CheckValid(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// CreateNewFile writes a new translation file for language derived from base.
func CreateNewFile(desc *Descriptor, path, language string, base []byte) error {
	if desc.NewTranslation == nil {
		return fmt.Errorf("creating %s: %w", path, ErrUnsupported)
	}
	data, err := desc.NewTranslation(base, desc.LanguageCode(language))
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return SaveAtomic(path, data)
}
