package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// TryLoadOptions configures Registry.TryLoad.
type TryLoadOptions struct {
	Filename string
	Content  []byte
	// Declared is the format configured for the file, if any.
	Declared *Descriptor
	Template *Format
	// Validate rejects shapes that yield no translated unit.
	Validate       bool
	IsTemplate     bool
	Language       string
	SourceLanguage string
	// Existing is handed to loaders that reuse earlier translations.
	Existing []ExistingUnit
	Logger   *slog.Logger
}

// Candidates returns the descriptors TryLoad attempts, in order.
func (r *Registry) Candidates(filename string, content []byte, declared *Descriptor) []*Descriptor {
	var out []*Descriptor
	seen := make(map[string]bool)
	add := func(d *Descriptor) {
		if d != nil && !seen[d.ID] {
			seen[d.ID] = true
			out = append(out, d)
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	detected := r.DetectFilename(filename)
	for _, d := range detected {
		if d.Extension == ext {
			add(d)
		}
	}
	add(declared)
	for _, d := range detected {
		add(d)
	}
	if declared != nil && declared.Monolingual == MonolingualAlways && declared.BilingualID != "" {
		if d, err := r.Get(declared.BilingualID); err == nil {
			add(d)
		}
	}
	for _, d := range r.Sniff(content) {
		add(d)
	}
	return out
}

// TryLoad loads opts.Content with the first candidate format and shape that
// parses and validates. When every attempt fails the first error is
// returned; later errors are logged at debug level.
func (r *Registry) TryLoad(opts TryLoadOptions) (*Format, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var firstErr error
	fail := func(d *Descriptor, err error) {
		if firstErr == nil {
			firstErr = err
			return
		}
		logger.Debug("autodetect attempt failed", "format", d.ID, "error", err)
	}

	for _, d := range r.Candidates(opts.Filename, opts.Content, opts.Declared) {
		for _, template := range shapes(d, opts) {
			f, err := Parse(d, opts.Content, ParseOptions{
				Path:           opts.Filename,
				Template:       template,
				Language:       opts.Language,
				SourceLanguage: opts.SourceLanguage,
				IsTemplate:     opts.IsTemplate,
				Existing:       opts.Existing,
				Logger:         opts.Logger,
			})
			if err != nil {
				fail(d, err)
				continue
			}
			if err := f.CheckValid(); err != nil {
				fail(d, err)
				continue
			}
			if opts.Validate && !hasMergeableUnit(f) {
				fail(d, fmt.Errorf("loading %s as %s: %w", opts.Filename, d.ID, ErrNoUnits))
				continue
			}
			logger.Debug("autodetected format", "format", d.ID, "monolingual", template != nil)
			return f, nil
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("loading %s: %w", opts.Filename, ErrUnknownFormat)
	}
	return nil, firstErr
}

// shapes lists the template arguments to try for d: paired with the
// template when allowed, then bilingual. A template-less attempt is always
// made so its error can be reported.
func shapes(d *Descriptor, opts TryLoadOptions) []*Format {
	if opts.IsTemplate {
		return []*Format{nil}
	}
	var out []*Format
	if opts.Template != nil && d.Monolingual.AllowsTemplate() {
		out = append(out, opts.Template)
	}
	if d.Monolingual.AllowsBilingual() || len(out) == 0 {
		out = append(out, nil)
	}
	return out
}

func hasMergeableUnit(f *Format) bool {
	for range f.IterateMerge(FuzzySkip, true) {
		return true
	}
	return false
}
