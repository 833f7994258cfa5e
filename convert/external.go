package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ConversionError reports a failed external conversion together with what
// the tool printed.
type ConversionError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, strings.TrimSpace(e.Output))
}

func (e *ConversionError) Unwrap() error { return e.Err }

// External converts a binary or otherwise opaque format to HTML and back
// with command line tools, and edits the HTML with an HTML document.
//
// Commands are argument lists. "{in}" is replaced by the input file path
// and "{out}" by the path the tool must write to. Without "{out}" the
// tool's standard output is the result.
type External struct {
	ToHTML   []string
	FromHTML []string
	// Ext is the file extension of the foreign format, e.g. ".odt".
	Ext     string
	HTML    Document
	Timeout time.Duration
}

func (x *External) Extract(data []byte) ([]Segment, error) {
	html, err := x.run(x.ToHTML, data, x.Ext, ".html")
	if err != nil {
		return nil, err
	}
	return x.HTML.Extract(html)
}

func (x *External) Render(original []byte, lookup Lookup) ([]byte, error) {
	html, err := x.run(x.ToHTML, original, x.Ext, ".html")
	if err != nil {
		return nil, err
	}
	rendered, err := x.HTML.Render(html, lookup)
	if err != nil {
		return nil, err
	}
	return x.run(x.FromHTML, rendered, ".html", x.Ext)
}

func (x *External) run(command []string, input []byte, inExt, outExt string) ([]byte, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("no converter configured for %s files", inExt)
	}
	tool, err := exec.LookPath(command[0])
	if err != nil {
		return nil, &ConversionError{Tool: command[0], Err: err}
	}

	dir, err := os.MkdirTemp("", "transkit-convert-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input"+inExt)
	out := filepath.Join(dir, "output"+outExt)
	if err := os.WriteFile(in, input, 0o600); err != nil {
		return nil, fmt.Errorf("writing converter input: %w", err)
	}

	toFile := false
	args := make([]string, 0, len(command)-1)
	for _, a := range command[1:] {
		toFile = toFile || strings.Contains(a, "{out}")
		a = strings.ReplaceAll(a, "{in}", in)
		a = strings.ReplaceAll(a, "{out}", out)
		args = append(args, a)
	}

	ctx := context.Background()
	if x.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ConversionError{Tool: command[0], Output: stderr.String(), Err: err}
	}
	if !toFile {
		return stdout.Bytes(), nil
	}
	data, err := os.ReadFile(out)
	if err != nil {
		output := stderr.String() + stdout.String()
		return nil, &ConversionError{Tool: command[0], Output: output, Err: err}
	}
	return data, nil
}
