package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/sprig/config"
	"github.com/sambeau/sprig/pkg/sprig/format"
	"github.com/sambeau/sprig/pkg/sprig/repl"
	"github.com/sambeau/sprig/pkg/sprig/sprig"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	if err == nil {
		return
	}

	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// exitError carries an exit status for failures already reported to the
// user
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// options are the flags shared by every mode
type options struct {
	eval       string
	check      bool
	output     string
	raw        bool
	locale     string
	configPath string
	watch      bool
	jsonErrors bool
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	// Subcommands come before flag parsing
	if len(args) > 0 {
		switch args[0] {
		case "fmt":
			return fmtCommand(args[1:], stdout, stderr)
		case "describe":
			return describeCommand(args[1:], stdout, stderr)
		}
	}

	flags := flag.NewFlagSet("sprig", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }

	var opts options
	var showVersion, showHelp bool
	flags.StringVar(&opts.eval, "e", "", "Evaluate code string")
	flags.StringVar(&opts.eval, "eval", "", "Evaluate code string")
	flags.BoolVar(&opts.check, "check", false, "Check syntax without executing")
	flags.StringVar(&opts.output, "o", "", "Output format: repr, raw, json or yaml")
	flags.StringVar(&opts.output, "output", "", "Output format: repr, raw, json or yaml")
	flags.BoolVar(&opts.raw, "r", false, "Shorthand for --output raw")
	flags.BoolVar(&opts.raw, "raw", false, "Shorthand for --output raw")
	flags.StringVar(&opts.locale, "locale", "", "Group integer digits for a BCP 47 locale")
	flags.StringVar(&opts.configPath, "config", "", "Path to config file")
	flags.BoolVar(&opts.watch, "watch", false, "Re-run the file whenever it changes")
	flags.BoolVar(&opts.jsonErrors, "json-errors", false, "Report errors as JSON lines on stderr")
	flags.BoolVar(&showVersion, "V", false, "Show version")
	flags.BoolVar(&showVersion, "version", false, "Show version")
	flags.BoolVar(&showHelp, "h", false, "Show help")
	flags.BoolVar(&showHelp, "help", false, "Show help")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return exitError{code: 2}
	}

	if showHelp {
		printUsage(stdout)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "sprig version %s\n", Version)
		return nil
	}

	cfg, err := config.Load(opts.configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI overrides
	if opts.raw {
		cfg.Output.Format = format.FormatRaw
	}
	if opts.output != "" {
		cfg.Output.Format = opts.output
	}
	if opts.locale != "" {
		cfg.Output.Locale = opts.locale
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d := &driver{
		cfg:        cfg,
		stdout:     stdout,
		stderr:     stderr,
		ui:         newPalette(cfg.Output.UseColor(isTerminal(stderr), getenv)),
		jsonErrors: opts.jsonErrors,
	}

	switch {
	case opts.eval != "":
		return d.executeSource("<eval>", opts.eval, true)
	case opts.check:
		if flags.NArg() == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return exitError{code: 2}
		}
		return d.checkFiles(flags.Args())
	case flags.NArg() > 0:
		if opts.watch {
			return d.watchFile(ctx, flags.Arg(0))
		}
		return d.executeFile(flags.Arg(0))
	case opts.watch:
		fmt.Fprintln(stderr, "Error: --watch requires a file")
		return exitError{code: 2}
	default:
		return d.startREPL(stdin)
	}
}

// startREPL runs the interactive loop on a terminal, or evaluates piped
// input line by line
func (d *driver) startREPL(stdin io.Reader) error {
	cfg := repl.Config{
		Prompt:             d.cfg.REPL.Prompt,
		ContinuationPrompt: d.cfg.REPL.ContinuationPrompt,
		HistoryFile:        d.cfg.REPL.HistoryPath(),
		HistoryLimit:       d.cfg.REPL.HistoryLimit,
		Banner:             d.cfg.REPL.Banner,
		Format:             d.cfg.Output.Format,
		Locale:             d.cfg.Output.Locale,
		Color:              d.ui.enabled,
		Version:            Version,
	}

	session := d.newSession("")
	r := repl.New(session, d.stdout, cfg)
	if !d.cfg.Diagnostics.Enabled {
		session.SetLogger(sprig.NullLogger())
	}

	if isTerminal(stdin) && isTerminal(d.stdout) {
		r.Start()
		return nil
	}
	return r.Run(stdin)
}

// isTerminal reports whether v is a terminal file
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `sprig - Sprig language interpreter version %s

Usage:
  sprig [options] [file]
  sprig -e "code"
  sprig --check <file>...
  sprig --watch <file>
  sprig fmt [-w] [-l] <file>...
  sprig describe [--json|--html|--markdown] <topic>

Commands:
  fmt                   Format Sprig source files
  describe <topic>      Show help for builtins, operators, keywords, types or a name

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string
  -o, --output <fmt>    Result format: repr, raw, json or yaml
  -r, --raw             Shorthand for --output raw
  --locale <tag>        Group integer digits for a locale (en, de, fr, ...)
  --check               Check syntax without executing
  --watch               Re-run the file whenever it is saved
  --json-errors         Report errors as JSON, one object per line
  --config PATH         Path to config file (default: auto-detect)

Config Resolution:
  1. --config flag
  2. SPRIG_CONFIG environment variable
  3. ./sprig.yaml
  4. ~/.config/sprig/sprig.yaml

Examples:
  sprig                       Start interactive REPL
  sprig script.sprig          Execute a Sprig script
  sprig -e "1 + 2"            Evaluate inline code (outputs: 3)
  sprig -e '{"a": 1}' -o json Print the result as JSON
  sprig --check *.sprig       Check syntax of several files
  sprig fmt -w script.sprig   Format a file in place
  sprig describe builtins     List all builtin functions

`, Version)
}
