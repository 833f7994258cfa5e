package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/minios-linux/transkit/config"
	"github.com/minios-linux/transkit/formats"
	"github.com/minios-linux/transkit/i18n"
	"github.com/minios-linux/transkit/merge"
	po "github.com/minios-linux/transkit/pofile"
	"github.com/minios-linux/transkit/store"
)

// ---------------------------------------------------------------------------
// Loading helpers
// ---------------------------------------------------------------------------

func (a *app) job(path string, template *store.Format) formats.Job {
	return formats.Job{
		Path:           path,
		Format:         a.cfg.FormatFor(path),
		Template:       template,
		Language:       config.LanguageFromPath(path),
		SourceLanguage: a.cfg.SourceLanguage,
		Validate:       a.cfg.Validate,
	}
}

// loadTemplate loads path as the source-language file, or returns nil
// when path is empty.
func (a *app) loadTemplate(path string) (*store.Format, error) {
	if path == "" {
		return nil, nil
	}
	job := a.job(path, nil)
	job.IsTemplate = true
	job.Language = a.cfg.SourceLanguage
	job.Validate = false
	f, err := formats.Load(a.reg, job, a.logger)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	return f, nil
}

func (a *app) load(path, templatePath string) (*store.Format, error) {
	template, err := a.loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return formats.Load(a.reg, a.job(path, template), a.logger)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func yesNo(b bool) string {
	if b {
		return i18n.T("yes")
	}
	return i18n.T("no")
}

// mode describes how f was loaded.
func mode(f *store.Format) string {
	switch {
	case f.IsTemplate():
		return i18n.T("template")
	case f.HasTemplate():
		return i18n.T("monolingual")
	default:
		return i18n.T("bilingual")
	}
}

// display shortens text for table cells.
func display(values []string, width int) string {
	s := strings.Join(values, " | ")
	s = strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(s)
	if r := []rune(s); len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ---------------------------------------------------------------------------
// formats
// ---------------------------------------------------------------------------

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: i18n.T("List supported file formats"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{
				i18n.T("ID"), i18n.T("Name"), i18n.T("Monolingual"),
				i18n.T("Add"), i18n.T("Delete"), i18n.T("Files"),
			})
			for _, d := range a.reg.Descriptors() {
				t.AppendRow(table.Row{
					d.ID, d.Name, d.Monolingual.String(),
					yesNo(d.CanAddUnit), yesNo(d.CanDeleteUnit), strings.Join(d.Autoload, " "),
				})
			}
			t.Render()
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// detect
// ---------------------------------------------------------------------------

func newDetectCmd(a *app) *cobra.Command {
	var templatePath string
	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: i18n.T("Detect the format of translation files"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := a.loadTemplate(templatePath)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{
				i18n.T("File"), i18n.T("Format"), i18n.T("Mode"),
				i18n.T("Language"), i18n.T("Units"), i18n.T("Candidates"),
			})
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					logWarning("%s: %v", path, err)
					failed++
					continue
				}
				job := a.job(path, template)
				var declared *store.Descriptor
				if job.Format != "" {
					declared, _ = a.reg.Get(job.Format)
				}
				var ids []string
				for _, d := range a.reg.Candidates(path, data, declared) {
					ids = append(ids, d.ID)
				}
				f, err := formats.Load(a.reg, job, a.logger)
				if err != nil {
					logWarning("%s: %v", path, err)
					t.AppendRow(table.Row{path, "-", "-", job.Language, "-", strings.Join(ids, " ")})
					failed++
					continue
				}
				t.AppendRow(table.Row{
					path, f.Descriptor().ID, mode(f), job.Language,
					len(f.ContentUnits()), strings.Join(ids, " "),
				})
			}
			t.Render()
			if failed > 0 {
				return fmt.Errorf(i18n.N("%d file could not be loaded", "%d files could not be loaded", failed), failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", i18n.T("Template file for monolingual formats"))
	return cmd
}

// ---------------------------------------------------------------------------
// units
// ---------------------------------------------------------------------------

func newUnitsCmd(a *app) *cobra.Command {
	var (
		templatePath string
		untranslated bool
		all          bool
		width        int
	)
	cmd := &cobra.Command{
		Use:   "units FILE",
		Short: i18n.T("List the translation units of a file"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.load(args[0], templatePath)
			if err != nil {
				return err
			}
			units := f.ContentUnits()
			if all {
				units = f.AllUnits()
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", i18n.T("Context"), i18n.T("Source"), i18n.T("Target"), i18n.T("State")})
			for i, u := range units {
				if untranslated && u.IsTranslated() {
					continue
				}
				t.AppendRow(table.Row{
					i + 1, display([]string{u.Context()}, width), display(u.Source(), width),
					display(u.Target(), width), u.State(),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", i18n.T("Template file for monolingual formats"))
	cmd.Flags().BoolVarP(&untranslated, "untranslated", "u", false, i18n.T("Only list units without a translation"))
	cmd.Flags().BoolVar(&all, "all", false, i18n.T("Include units without content, such as the PO header"))
	cmd.Flags().IntVar(&width, "width", 40, i18n.T("Maximum column width"))
	return cmd
}

// ---------------------------------------------------------------------------
// set
// ---------------------------------------------------------------------------

func parseState(s string) (store.State, bool, error) {
	switch s {
	case "":
		return 0, false, nil
	case "fuzzy":
		return store.StateFuzzy, true, nil
	case "translated":
		return store.StateTranslated, true, nil
	case "approved":
		return store.StateApproved, true, nil
	}
	return 0, false, fmt.Errorf(i18n.T("unknown state %q (want fuzzy, translated or approved)"), s)
}

func newSetCmd(a *app) *cobra.Command {
	var (
		templatePath string
		context      string
		source       string
		stateName    string
		create       bool
	)
	cmd := &cobra.Command{
		Use:   "set FILE TRANSLATION...",
		Short: i18n.T("Set the translation of one unit"),
		Long: i18n.T(`Set the translation of the unit identified by --context and --source.
Several TRANSLATION arguments set the plural forms in order.`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if context == "" && source == "" {
				return errors.New(i18n.T("--context or --source is required"))
			}
			state, setState, err := parseState(stateName)
			if err != nil {
				return err
			}
			f, err := a.load(args[0], templatePath)
			if err != nil {
				return err
			}
			targets := args[1:]

			u, add, err := f.FindUnit(context, source)
			var notFound *store.UnitNotFoundError
			switch {
			case errors.As(err, &notFound) && create:
				key := context
				if key == "" {
					key = source
				}
				if u, err = f.NewUnit(key, []string{source}, targets); err != nil {
					return err
				}
				add = true
			case err != nil:
				return err
			default:
				if err := u.SetTarget(targets...); err != nil {
					return err
				}
			}
			if setState {
				if err := u.SetState(state); err != nil {
					return err
				}
			}
			if err := f.Save(); err != nil {
				return err
			}
			if add {
				logSuccess(i18n.T("Added %q to %s"), u.Context(), args[0])
			} else {
				logSuccess(i18n.T("Updated %q in %s"), u.Context(), args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", i18n.T("Template file for monolingual formats"))
	cmd.Flags().StringVarP(&context, "context", "c", "", i18n.T("Unit context or key"))
	cmd.Flags().StringVarP(&source, "source", "s", "", i18n.T("Unit source text"))
	cmd.Flags().StringVar(&stateName, "state", "", i18n.T("State to set: fuzzy, translated or approved"))
	cmd.Flags().BoolVar(&create, "create", false, i18n.T("Add the unit when it does not exist"))
	return cmd
}

// ---------------------------------------------------------------------------
// cleanup
// ---------------------------------------------------------------------------

func newCleanupCmd(a *app) *cobra.Command {
	var (
		templatePath string
		blank        bool
	)
	cmd := &cobra.Command{
		Use:   "cleanup FILE...",
		Short: i18n.T("Remove units no longer present in the template"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := a.loadTemplate(templatePath)
			if err != nil {
				return err
			}
			if template == nil {
				return errors.New(i18n.T("cleanup needs --template"))
			}
			for _, path := range args {
				f, err := formats.Load(a.reg, a.job(path, template), a.logger)
				if err != nil {
					return err
				}
				removed, err := f.CleanupUnused()
				if err != nil {
					return err
				}
				if blank {
					more, err := f.CleanupBlank()
					if err != nil {
						return err
					}
					removed = append(removed, more...)
				}
				for _, key := range removed {
					logInfo(i18n.T("%s: removed %q"), path, key)
				}
				if len(removed) == 0 {
					logSuccess(i18n.T("%s: nothing to remove"), path)
					continue
				}
				logSuccess(i18n.N("%s: removed %d unit", "%s: removed %d units", len(removed)), path, len(removed))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", i18n.T("Template file"))
	cmd.Flags().BoolVar(&blank, "blank", false, i18n.T("Also remove units with an empty translation"))
	return cmd
}

// ---------------------------------------------------------------------------
// new
// ---------------------------------------------------------------------------

// outputPath derives a file name for the language code from base by
// replacing the language found in base's path. It fails when base carries
// no language.
func outputPath(base, code string) (string, bool) {
	found := config.LanguageFromPath(base)
	if found == "" {
		return "", false
	}
	// Android directories spell regions as values-pt-rBR.
	spellings := []string{found, strings.Replace(found, "_", "-r", 1)}
	parts := strings.Split(filepath.ToSlash(base), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		for _, spelling := range spellings {
			if j := languageAt(parts[i], spelling); j >= 0 {
				parts[i] = parts[i][:j] + code + parts[i][j+len(spelling):]
				return filepath.FromSlash(strings.Join(parts, "/")), true
			}
		}
	}
	return "", false
}

// languageAt finds code in name where it stands alone between separators.
func languageAt(name, code string) int {
	sep := func(b byte) bool { return b == '.' || b == '_' || b == '-' }
	for j := strings.LastIndex(name, code); j >= 0; j = strings.LastIndex(name[:j], code) {
		end := j + len(code)
		if (j == 0 || sep(name[j-1])) && (end == len(name) || sep(name[end])) {
			return j
		}
	}
	return -1
}

func newNewCmd(a *app) *cobra.Command {
	var (
		lang   string
		output string
		format string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "new BASE",
		Short: i18n.T("Create a new translation file from a template"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := args[0]
			if lang == "" {
				return errors.New(i18n.T("--lang is required"))
			}
			data, err := os.ReadFile(base)
			if err != nil {
				return err
			}

			var desc *store.Descriptor
			if format == "" {
				format = a.cfg.FormatFor(base)
			}
			if format != "" {
				if desc, err = a.reg.Get(format); err != nil {
					return err
				}
			} else {
				tmpl, err := a.loadTemplate(base)
				if err != nil {
					return err
				}
				desc = tmpl.Descriptor()
			}

			if ok, errs := store.IsValidBaseForNew(desc, data, desc.Monolingual == store.MonolingualAlways); !ok {
				return fmt.Errorf(i18n.T("%s is not a valid base for %s: %w"), base, desc.ID, errors.Join(errs...))
			}

			if output == "" {
				langFormat := a.cfg.LanguageFormat
				if langFormat == "" {
					langFormat = desc.LanguageFormat
				}
				var ok bool
				if output, ok = outputPath(base, store.LanguageCode(langFormat, lang)); !ok {
					return fmt.Errorf(i18n.T("cannot derive a file name from %s, use --output"), base)
				}
			}
			if fileExists(output) && !force {
				return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), output)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := store.CreateNewFile(desc, output, lang, data); err != nil {
				return err
			}
			logSuccess(i18n.T("Created %s (%s)"), output, desc.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", i18n.T("Language of the new file"))
	cmd.Flags().StringVarP(&output, "output", "o", "", i18n.T("Output file (default: derived from BASE)"))
	cmd.Flags().StringVarP(&format, "format", "f", "", i18n.T("Format id (default: autodetect)"))
	cmd.Flags().BoolVar(&force, "force", false, i18n.T("Overwrite an existing file"))
	return cmd
}

// ---------------------------------------------------------------------------
// stats
// ---------------------------------------------------------------------------

// fileStats counts content units by state. Read-only units are left out.
type fileStats struct {
	total, translated, fuzzy, untranslated int
}

func countUnits(f *store.Format) fileStats {
	var s fileStats
	for _, u := range f.ContentUnits() {
		switch u.State() {
		case store.StateReadOnly:
			continue
		case store.StateTranslated, store.StateApproved:
			s.translated++
		case store.StateFuzzy:
			s.fuzzy++
		default:
			s.untranslated++
		}
		s.total++
	}
	return s
}

func (s fileStats) percent() int {
	if s.total == 0 {
		return 0
	}
	return s.translated * 100 / s.total
}

func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := errorStyle
	switch {
	case percent >= 100:
		style = successStyle
	case percent >= 50:
		style = warningStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %3d%%", percent)
}

func newStatsCmd(a *app) *cobra.Command {
	var templatePath string
	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: i18n.T("Show translation statistics"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := a.loadTemplate(templatePath)
			if err != nil {
				return err
			}
			jobs := make([]formats.Job, len(args))
			for i, path := range args {
				jobs[i] = a.job(path, template)
			}
			results := formats.LoadFiles(cmd.Context(), a.reg, jobs, a.cfg.Workers, a.logger)

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{
				i18n.T("File"), i18n.T("Format"), i18n.T("Language"), i18n.T("Total"),
				i18n.T("Translated"), i18n.T("Fuzzy"), i18n.T("Untranslated"), i18n.T("Progress"),
			})
			var sum fileStats
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					logWarning("%s: %v", r.Job.Path, r.Err)
					t.AppendRow(table.Row{r.Job.Path, "-", r.Job.Language, "-", "-", "-", "-", i18n.T("failed")})
					failed++
					continue
				}
				s := countUnits(r.Format)
				sum.total += s.total
				sum.translated += s.translated
				sum.fuzzy += s.fuzzy
				sum.untranslated += s.untranslated
				t.AppendRow(table.Row{
					r.Job.Path, r.Format.Descriptor().ID, r.Job.Language, s.total,
					s.translated, s.fuzzy, s.untranslated, progressBar(s.percent(), 20),
				})
			}
			if len(results) > 1 {
				t.AppendFooter(table.Row{
					i18n.T("Total"), "", "", sum.total,
					sum.translated, sum.fuzzy, sum.untranslated, progressBar(sum.percent(), 20),
				})
			}
			t.Render()
			if failed > 0 {
				return fmt.Errorf(i18n.N("%d file could not be loaded", "%d files could not be loaded", failed), failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", i18n.T("Template file for monolingual formats"))
	return cmd
}

// ---------------------------------------------------------------------------
// msgmerge
// ---------------------------------------------------------------------------

func newMsgmergeCmd(a *app) *cobra.Command {
	var potPath string
	cmd := &cobra.Command{
		Use:   "msgmerge FILE...",
		Short: i18n.T("Update gettext catalogs from a POT template"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if potPath == "" {
				return errors.New(i18n.T("msgmerge needs --template"))
			}
			fh, err := os.Open(potPath)
			if err != nil {
				return err
			}
			pot, err := po.Parse(fh)
			fh.Close()
			if err != nil {
				return fmt.Errorf("parsing %s: %w", potPath, err)
			}
			for _, path := range args {
				job := a.job(path, nil)
				job.Format = "po"
				job.Validate = false
				f, err := formats.Load(a.reg, job, a.logger)
				if err != nil {
					return err
				}
				if err := merge.UpdateFormat(f, pot); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := f.Save(); err != nil {
					return err
				}
				s := countUnits(f)
				logSuccess(i18n.T("%s: %d of %d translated"), path, s.translated, s.total)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&potPath, "template", "t", "", i18n.T("POT template"))
	return cmd
}
