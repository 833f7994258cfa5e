// transkit: translation file toolkit. Reads, edits and writes localization
// files of many formats through one translation-unit model.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/minios-linux/transkit/config"
	"github.com/minios-linux/transkit/formats"
	"github.com/minios-linux/transkit/i18n"
	"github.com/minios-linux/transkit/store"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func logInfo(format string, args ...any) {
	fmt.Fprintln(os.Stderr, infoStyle.Render("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, successStyle.Render("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warningStyle.Render("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("[ERROR]"), fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Global state
// ---------------------------------------------------------------------------

// app is what every command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	reg    *store.Registry
	logger *slog.Logger
}

var cfgFile string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "transkit",
		Short: i18n.T("Translation file toolkit"),
		Long: i18n.T(`transkit reads, edits and writes translation files of many formats
through one translation-unit model.

Gettext PO, XLIFF, Android resources, Java properties, YAML, ARB, i18next
JSON and CSV are handled natively. HTML, Markdown, plain text, Windows RC
and OpenDocument files are converted into an embedded gettext catalog.

Monolingual formats are edited against a template (--template), the file
holding the source language.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", i18n.T("Config file (default: .transkit.yaml in the working directory or above)"))
	pf.String("log-level", "warn", i18n.T("Log level: debug, info, warn, error"))
	pf.Bool("validate", false, i18n.T("Reject files without a translated unit during autodetection"))
	pf.Int("workers", 4, i18n.T("Files loaded in parallel"))
	pf.String("language-format", "", i18n.T("Language code style for new file names"))
	pf.String("source-language", "en", i18n.T("Source language code"))

	root.AddCommand(
		newFormatsCmd(a),
		newDetectCmd(a),
		newUnitsCmd(a),
		newSetCmd(a),
		newCleanupCmd(a),
		newNewCmd(a),
		newStatsCmd(a),
		newMsgmergeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and sets up logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{File: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	a.cfg = cfg
	a.reg = cfg.Registry()
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	if cfg.File != "" {
		a.logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  i18n.T("Display version, commit hash, and build date."),
		// No configuration needed.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, i18n.T("transkit version %s")+"\n", version)
			fmt.Fprintf(out, "  %s %s\n", padRight(i18n.T("commit:"), 10), commit)
			fmt.Fprintf(out, "  %s %s\n", padRight(i18n.T("built:"), 10), date)
			fmt.Fprintf(out, "  %s %d\n", padRight(i18n.T("formats:"), 10), len(formats.Default().Descriptors()))
		},
	}
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
