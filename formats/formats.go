// Package formats wires every file format backend into one registry and
// loads files through it.
package formats

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/transkit/android"
	"github.com/minios-linux/transkit/arbfile"
	"github.com/minios-linux/transkit/convert"
	"github.com/minios-linux/transkit/csvfile"
	"github.com/minios-linux/transkit/htmlfile"
	"github.com/minios-linux/transkit/i18next"
	"github.com/minios-linux/transkit/mdfile"
	"github.com/minios-linux/transkit/pofile"
	"github.com/minios-linux/transkit/propfile"
	"github.com/minios-linux/transkit/rcfile"
	"github.com/minios-linux/transkit/store"
	"github.com/minios-linux/transkit/txtfile"
	"github.com/minios-linux/transkit/xliff"
	"github.com/minios-linux/transkit/yamlfile"
)

// Converter holds the commands of an externally converted format.
// See convert.External for the argument placeholders.
type Converter struct {
	ToHTML   []string
	FromHTML []string
	Timeout  time.Duration
}

// DefaultConverters convert office documents with pandoc.
var DefaultConverters = map[string]Converter{
	"odt": {
		ToHTML:   []string{"pandoc", "{in}", "-f", "odt", "-t", "html", "-o", "{out}"},
		FromHTML: []string{"pandoc", "{in}", "-f", "html", "-t", "odt", "-o", "{out}"},
		Timeout:  time.Minute,
	},
}

// New returns a registry with all formats. converters override
// DefaultConverters per format id.
func New(converters map[string]Converter) *store.Registry {
	odt := DefaultConverters["odt"]
	if c, ok := converters["odt"]; ok {
		if len(c.ToHTML) > 0 {
			odt.ToHTML = c.ToHTML
		}
		if len(c.FromHTML) > 0 {
			odt.FromHTML = c.FromHTML
		}
		if c.Timeout > 0 {
			odt.Timeout = c.Timeout
		}
	}

	reg := store.NewRegistry()
	reg.MustRegister(
		pofile.Descriptor(),
		pofile.MonolingualDescriptor(),
		xliff.Descriptor(),
		android.Descriptor(),
		propfile.Descriptor(),
		yamlfile.Descriptor(),
		arbfile.Descriptor(),
		i18next.Descriptor(),
		csvfile.Descriptor(),
		csvfile.SimpleDescriptor(),
		csvfile.MultiDescriptor(),
		htmlfile.Descriptor(),
		mdfile.Descriptor(),
		txtfile.Descriptor(),
		rcfile.Descriptor(),
		convert.Descriptor(&convert.External{
			ToHTML:   odt.ToHTML,
			FromHTML: odt.FromHTML,
			Ext:      ".odt",
			HTML:     htmlfile.Doc{},
			Timeout:  odt.Timeout,
		}, convert.Options{
			ID:        "odt",
			Name:      "OpenDocument text",
			MimeType:  "application/vnd.oasis.opendocument.text",
			Extension: "odt",
			Autoload:  []string{"*.odt"},
		}),
	)
	return reg
}

// Default is the registry with default converters.
var Default = sync.OnceValue(func() *store.Registry { return New(nil) })

// Job describes one file to load.
type Job struct {
	Path string
	// Format is the declared format id; empty means autodetect.
	Format         string
	Template       *store.Format
	Language       string
	SourceLanguage string
	IsTemplate     bool
	// Validate rejects files without a single translated unit.
	Validate bool
	// Existing seeds converted documents with earlier translations.
	Existing []store.ExistingUnit
}

// Result is the outcome of one Job.
type Result struct {
	Job    Job
	Format *store.Format
	Err    error
}

// Load reads and parses one file, autodetecting its format when the job
// declares none or the declared one does not fit.
func Load(reg *store.Registry, job Job, logger *slog.Logger) (*store.Format, error) {
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", job.Path, err)
	}
	var declared *store.Descriptor
	if job.Format != "" {
		if declared, err = reg.Get(job.Format); err != nil {
			return nil, err
		}
	}
	return reg.TryLoad(store.TryLoadOptions{
		Filename:       job.Path,
		Content:        data,
		Declared:       declared,
		Template:       job.Template,
		Validate:       job.Validate,
		IsTemplate:     job.IsTemplate,
		Language:       job.Language,
		SourceLanguage: job.SourceLanguage,
		Existing:       job.Existing,
		Logger:         logger,
	})
}

// LoadFiles loads jobs with at most limit files in flight. A failing file
// does not stop the others; results are in job order. Loaded formats must
// not be used concurrently afterwards.
func LoadFiles(ctx context.Context, reg *store.Registry, jobs []Job, limit int, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	// Templates are shared between jobs; build their indices up front so
	// no goroutine does it lazily.
	for _, job := range jobs {
		if job.Template != nil {
			job.Template.ContentUnits()
		}
	}
	results := make([]Result, len(jobs))
	eg, egctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, job := range jobs {
		results[i].Job = job
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			f, err := Load(reg, job, logger)
			if err != nil {
				logger.Warn("loading failed", "path", job.Path, "error", err)
			}
			results[i].Format, results[i].Err = f, err
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
