package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sambeau/sprig/config"
	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"github.com/sambeau/sprig/pkg/sprig/format"
	"github.com/sambeau/sprig/pkg/sprig/help"
	"github.com/sambeau/sprig/pkg/sprig/sprig"
	"github.com/sambeau/sprig/pkg/sprig/watch"
)

// driver runs scripts with one configuration
type driver struct {
	cfg        *config.Config
	stdout     io.Writer
	stderr     io.Writer
	ui         palette
	jsonErrors bool
}

// newSession creates a session whose diagnostics go to stderr. With JSON
// errors the logger is silent and diagnostics are written after the run.
func (d *driver) newSession(file string) *sprig.Session {
	var logger sprig.Logger = sprig.NullLogger()
	if d.cfg.Diagnostics.Enabled && !d.jsonErrors {
		logger = &paletteLogger{w: d.stderr, ui: d.ui}
	}

	opts := []sprig.Option{
		sprig.WithLogger(logger),
		sprig.WithHints(d.cfg.Diagnostics.Hints),
		sprig.WithLexicalHashLiterals(d.cfg.Evaluator.LexicalHashLiterals),
	}
	if file != "" {
		opts = append(opts, sprig.WithFile(file))
	}
	return sprig.New(opts...)
}

// executeSource evaluates one program and prints its result. Inline code
// prints null results too, like a REPL would. Any parse error or evaluation
// diagnostic makes the exit status 1.
func (d *driver) executeSource(name, source string, inline bool) error {
	session := d.newSession(name)

	result, err := session.Eval(source)
	if err != nil {
		var perr *sprig.ParseError
		if errors.As(err, &perr) {
			d.printErrors(source, perr.Errors)
			return exitError{code: 1}
		}
		return err
	}

	if result != evaluator.NULL || (inline && d.cfg.Output.Format != format.FormatRaw) {
		text, err := format.Value(result, d.cfg.Output.Format, format.Options{Locale: d.cfg.Output.Locale})
		if err != nil {
			return err
		}
		io.WriteString(d.stdout, text)
		if !strings.HasSuffix(text, "\n") {
			io.WriteString(d.stdout, "\n")
		}
	}

	diags := session.Diagnostics()
	if d.jsonErrors && d.cfg.Diagnostics.Enabled {
		for _, diag := range diags {
			d.writeJSONError(diag)
		}
	}
	if len(diags) > 0 {
		return exitError{code: 1}
	}
	return nil
}

// executeFile reads and executes a Sprig source file
func (d *driver) executeFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file '%s': %w", filename, err)
	}
	return d.executeSource(filename, string(content), false)
}

// checkFiles checks the syntax of one or more files without executing them.
// Exit status is 2 for unreadable files and 1 for syntax errors.
func (d *driver) checkFiles(files []string) error {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(d.stderr, "Error reading %s: %v\n", filename, err)
			return exitError{code: 2}
		}

		session := sprig.New(sprig.WithFile(filename))
		if _, err := session.Parse(string(content)); err != nil {
			var perr *sprig.ParseError
			if !errors.As(err, &perr) {
				return err
			}
			d.printErrors(string(content), perr.Errors)
			hasErrors = true
		}
	}

	if hasErrors {
		return exitError{code: 1}
	}
	return nil
}

// watchFile runs a file, then re-runs it in a fresh session after every
// save until ctx is cancelled
func (d *driver) watchFile(ctx context.Context, filename string) error {
	w, err := watch.New(filename, d.cfg.Watch.Debounce, func(ctx context.Context, path string) error {
		d.ui.dim.Fprintf(d.stderr, "[WATCH] running %s\n", filename)
		err := d.executeFile(path)
		var exit exitError
		if errors.As(err, &exit) {
			return nil
		}
		return err
	}, d.stderr)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// printErrors prints structured errors with source context, or as JSON
// lines
func (d *driver) printErrors(source string, errs []*serrors.SprigError) {
	if d.jsonErrors {
		for _, err := range errs {
			d.writeJSONError(err)
		}
		return
	}

	lines := strings.Split(source, "\n")
	for _, err := range errs {
		d.ui.err.Fprintln(d.stderr, err.PrettyString())
		printSourceContext(d.stderr, lines, err.Line, err.Column)
	}
}

// writeJSONError writes err as one line of JSON
func (d *driver) writeJSONError(err *serrors.SprigError) {
	data, jerr := err.ToJSON()
	if jerr != nil {
		fmt.Fprintf(d.stderr, "error: %v\n", jerr)
		return
	}
	d.stderr.Write(append(data, '\n'))
}

// printSourceContext prints the source line and error pointer
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]
	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	trimCount := len([]rune(sourceLine)) - len([]rune(trimmedLine))

	fmt.Fprintf(w, "    %s\n", trimmedLine)

	if colNum > 0 {
		pointer := strings.Repeat(" ", max(colNum-1-trimCount, 0)) + "^"
		fmt.Fprintf(w, "    %s\n", pointer)
	}
}

// fmtCommand handles the 'sprig fmt' subcommand
func fmtCommand(args []string, stdout, stderr io.Writer) error {
	fmtFlags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fmtFlags.SetOutput(stderr)
	writeFlag := fmtFlags.Bool("w", false, "Write result to source file instead of stdout")
	listFlag := fmtFlags.Bool("l", false, "List files whose formatting differs from sprig fmt's")

	fmtFlags.Usage = func() {
		fmt.Fprint(stderr, `sprig fmt - format Sprig source files

Usage:
  sprig fmt [options] <file>...

Options:
  -w    Write result to source file instead of stdout
  -l    List files whose formatting differs from sprig fmt's

Comments are not preserved.
`)
	}

	if err := fmtFlags.Parse(args); err != nil {
		return exitError{code: 2}
	}

	files := fmtFlags.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		fmtFlags.Usage()
		return exitError{code: 2}
	}

	d := &driver{stdout: stdout, stderr: stderr, ui: newPalette(false)}
	failed := false
	for _, filename := range files {
		if err := d.formatFile(filename, *writeFlag, *listFlag); err != nil {
			fmt.Fprintf(stderr, "Error formatting %s: %v\n", filename, err)
			failed = true
		}
	}
	if failed {
		return exitError{code: 1}
	}
	return nil
}

// formatFile formats a single Sprig file
func (d *driver) formatFile(filename string, write, list bool) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	source := string(content)

	program, err := sprig.New(sprig.WithFile(filename)).Parse(source)
	if err != nil {
		var perr *sprig.ParseError
		if errors.As(err, &perr) {
			d.printErrors(source, perr.Errors)
			return fmt.Errorf("parse errors")
		}
		return err
	}

	formatted := format.FormatProgram(program)
	if !strings.HasSuffix(formatted, "\n") {
		formatted += "\n"
	}
	changed := formatted != source

	switch {
	case list:
		if changed {
			fmt.Fprintln(d.stdout, filename)
		}
	case write:
		if changed {
			if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}
		}
	default:
		io.WriteString(d.stdout, formatted)
	}
	return nil
}

// describeCommand implements the 'sprig describe <topic>' subcommand
func describeCommand(args []string, stdout, stderr io.Writer) error {
	output := "text"
	var topic string

	for _, arg := range args {
		switch arg {
		case "--json":
			output = "json"
		case "--html":
			output = "html"
		case "--markdown", "--md":
			output = "markdown"
		default:
			if !strings.HasPrefix(arg, "-") {
				topic = arg
			}
		}
	}

	if topic == "" {
		fmt.Fprintln(stderr, `Usage: sprig describe [--json|--html|--markdown] <topic>

Topics:
  builtins           List all builtin functions
  operators          List all operators
  keywords           List all keywords
  types              List all value types
  <builtin>          Help for a specific builtin (len, push, ...)
  <type>             Help for a specific type (string, array, hash, ...)

Examples:
  sprig describe builtins
  sprig describe push
  sprig describe --json array`)
		return exitError{code: 1}
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError{code: 1}
	}

	switch output {
	case "json":
		data, err := help.FormatJSON(result)
		if err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	case "html":
		data, err := help.FormatHTML(result)
		if err != nil {
			return fmt.Errorf("formatting HTML: %w", err)
		}
		stdout.Write(data)
	case "markdown":
		io.WriteString(stdout, help.FormatMarkdown(result))
	default:
		io.WriteString(stdout, help.FormatText(result, 80))
	}
	return nil
}
