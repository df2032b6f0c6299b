// Package repl implements the interactive Sprig read-eval-print loop.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	serrors "github.com/sambeau/sprig/pkg/sprig/errors"
	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"github.com/sambeau/sprig/pkg/sprig/format"
	"github.com/sambeau/sprig/pkg/sprig/help"
	"github.com/sambeau/sprig/pkg/sprig/lexer"
	"github.com/sambeau/sprig/pkg/sprig/sprig"
)

const PROMPT = ">> "
const PROMPT_RAW = ":> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
┏━┓┏━┓┏━┓╻┏━╸
┗━┓┣━┛┣┳┛┃┃╺┓
┗━┛╹  ╹┗╸╹┗━┛`

// Config controls the REPL
type Config struct {
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string // empty disables history
	HistoryLimit       int
	Banner             bool
	Format             string // one of format.Formats
	Locale             string
	Color              bool
	Version            string
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Prompt:             PROMPT,
		ContinuationPrompt: CONTINUATION_PROMPT,
		HistoryLimit:       1000,
		Banner:             true,
		Format:             format.FormatRepr,
	}
}

// REPL holds the state of one interactive session
type REPL struct {
	cfg     Config
	session *sprig.Session
	out     io.Writer
	rawMode bool
	buffer  strings.Builder
	errText *color.Color
	dimText *color.Color
}

// New creates a REPL writing to out. Diagnostics from session are routed to
// out as well.
func New(session *sprig.Session, out io.Writer, cfg Config) *REPL {
	if cfg.Prompt == "" {
		cfg.Prompt = PROMPT
	}
	if cfg.ContinuationPrompt == "" {
		cfg.ContinuationPrompt = CONTINUATION_PROMPT
	}
	if cfg.Format == "" {
		cfg.Format = format.FormatRepr
	}

	r := &REPL{
		cfg:     cfg,
		session: session,
		out:     out,
		errText: color.New(color.FgRed),
		dimText: color.New(color.Faint),
	}
	if cfg.Color {
		r.errText.EnableColor()
		r.dimText.EnableColor()
	} else {
		r.errText.DisableColor()
		r.dimText.DisableColor()
	}

	session.SetLogger(&diagnosticLogger{r: r})
	return r
}

// diagnosticLogger prints evaluation diagnostics in the error colour
type diagnosticLogger struct {
	r *REPL
}

func (l *diagnosticLogger) Log(values ...any) {
	l.r.errText.Fprint(l.r.out, fmt.Sprint(values...))
}

func (l *diagnosticLogger) LogLine(values ...any) {
	l.r.errText.Fprintln(l.r.out, fmt.Sprint(values...))
}

// Start runs the REPL with line editing, history, and tab completion until
// the user exits or input ends.
func (r *REPL) Start() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(r.completeWord)

	if r.cfg.HistoryFile != "" {
		if f, err := os.Open(r.cfg.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer r.saveHistory(line)
	}

	r.printBanner()

	for {
		input, err := line.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if r.buffer.Len() > 0 {
					fmt.Fprintln(r.out, "^C (cleared)")
				} else {
					fmt.Fprintln(r.out, "^C")
				}
				r.buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "Error reading input: %v\n", err)
			continue
		}

		done, complete := r.HandleLine(input)
		if complete != "" {
			line.AppendHistory(complete)
		}
		if done {
			fmt.Fprintln(r.out, "Goodbye!")
			return
		}
	}
}

// Run reads lines from in without line editing, for piped input. Nothing
// is echoed except results and diagnostics.
func (r *REPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if done, _ := r.HandleLine(scanner.Text()); done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if r.buffer.Len() > 0 {
		r.evaluate(r.buffer.String())
		r.buffer.Reset()
	}
	return nil
}

func (r *REPL) prompt() string {
	if r.buffer.Len() > 0 {
		return r.cfg.ContinuationPrompt
	}
	if r.rawMode {
		return PROMPT_RAW
	}
	return r.cfg.Prompt
}

func (r *REPL) printBanner() {
	if !r.cfg.Banner {
		return
	}
	fmt.Fprintln(r.out, strings.TrimPrefix(LOGO, "\n"))
	if r.cfg.Version != "" {
		fmt.Fprintln(r.out, "v", r.cfg.Version)
	}
	fmt.Fprintln(r.out, "")
	r.dimText.Fprintln(r.out, "Type 'exit' or Ctrl+D to quit")
	r.dimText.Fprintln(r.out, "Use Tab for completion, ↑↓ for history")
	r.dimText.Fprintln(r.out, "Type ':help' for REPL commands")
	fmt.Fprintln(r.out, "")
}

// HandleLine processes one line of input. It reports whether the user asked
// to exit, and the complete source evaluated, if any, for history.
func (r *REPL) HandleLine(input string) (bool, string) {
	trimmed := strings.TrimSpace(input)

	if r.buffer.Len() == 0 {
		if trimmed == "exit" || trimmed == "quit" {
			return true, ""
		}
		if strings.HasPrefix(trimmed, ":") {
			r.handleCommand(trimmed)
			return false, ""
		}
		if trimmed == "" {
			return false, ""
		}
	}

	if r.buffer.Len() > 0 {
		r.buffer.WriteString("\n")
	}
	r.buffer.WriteString(input)

	full := r.buffer.String()
	if needsMoreInput(full) {
		return false, ""
	}

	r.buffer.Reset()
	r.evaluate(full)
	return false, full
}

func (r *REPL) evaluate(source string) {
	result, err := r.session.Eval(source)
	if err != nil {
		var perr *sprig.ParseError
		if errors.As(err, &perr) {
			for _, e := range perr.Errors {
				r.errText.Fprintln(r.out, e.PrettyString())
			}
			return
		}
		r.errText.Fprintln(r.out, err.Error())
		return
	}

	if result == nil || result == evaluator.NULL {
		if !r.rawMode {
			fmt.Fprintln(r.out, "OK")
		}
		return
	}

	outputFormat := r.cfg.Format
	if r.rawMode {
		outputFormat = format.FormatRaw
	}
	text, err := format.Value(result, outputFormat, format.Options{Locale: r.cfg.Locale})
	if err != nil {
		r.errText.Fprintln(r.out, err.Error())
		return
	}
	io.WriteString(r.out, text)
	if !strings.HasSuffix(text, "\n") {
		io.WriteString(r.out, "\n")
	}
}

// handleCommand handles REPL meta-commands that start with ':'
func (r *REPL) handleCommand(cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?       Show this help")
		fmt.Fprintln(r.out, "  :env                Show variables in scope")
		fmt.Fprintln(r.out, "  :clear              Clear all user variables")
		fmt.Fprintln(r.out, "  :raw                Toggle raw output mode (strings unquoted)")
		fmt.Fprintln(r.out, "  :describe <topic>   Show help for builtins, operators, keywords, types or a name")
		fmt.Fprintln(r.out, "  exit, quit          Exit the REPL")

	case ":env":
		r.printEnvironment()

	case ":clear":
		r.session.Reset()
		fmt.Fprintln(r.out, "Environment cleared")

	case ":raw":
		r.rawMode = !r.rawMode
		if r.rawMode {
			fmt.Fprintln(r.out, "Raw output mode ON (strings printed without quotes)")
		} else {
			fmt.Fprintln(r.out, "Raw output mode OFF (Sprig literal output)")
		}

	case ":describe", ":d":
		result, err := help.DescribeTopic(arg)
		if err != nil {
			r.errText.Fprintln(r.out, err.Error())
			return
		}
		io.WriteString(r.out, help.FormatText(result, 80))

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", name)
	}
}

// printEnvironment displays all user bindings as a table
func (r *REPL) printEnvironment() {
	vars := r.session.Bindings()
	if len(vars) == 0 {
		fmt.Fprintln(r.out, "(no user variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Name", "Type", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, name := range names {
		obj := vars[name]
		value := strings.ReplaceAll(format.Repr(obj), "\n", " ")
		if len([]rune(value)) > 60 {
			value = string([]rune(value)[:57]) + "..."
		}
		table.Append([]string{name, serrors.TypeName(string(obj.Type())), value})
	}
	table.Render()
}

// completeWord implements liner's word completer: it completes the
// identifier under the cursor from keywords, built-ins and bound names.
func (r *REPL) completeWord(line string, pos int) (string, []string, string) {
	head, tail := line[:pos], line[pos:]

	start := len(head)
	for start > 0 {
		ch := rune(head[start-1])
		if ch != '_' && ch != ':' && !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			break
		}
		start--
	}
	word := head[start:]
	if word == "" {
		return head, nil, tail
	}

	return head[:start], r.completions(word), tail
}

// completions returns candidate words starting with prefix, sorted
func (r *REPL) completions(prefix string) []string {
	seen := make(map[string]bool)
	var matches []string
	add := func(words ...string) {
		for _, w := range words {
			if strings.HasPrefix(w, prefix) && !seen[w] {
				seen[w] = true
				matches = append(matches, w)
			}
		}
	}

	if strings.HasPrefix(prefix, ":") {
		add(":help", ":env", ":clear", ":raw", ":describe")
	} else {
		add(lexer.Keywords()...)
		add(evaluator.BuiltinNames()...)
		add(r.session.Names()...)
	}

	sort.Strings(matches)
	return matches
}

// saveHistory writes the history file, keeping at most HistoryLimit entries
func (r *REPL) saveHistory(line *liner.State) {
	var sb strings.Builder
	if _, err := line.WriteHistory(&sb); err != nil {
		return
	}

	entries := strings.SplitAfter(sb.String(), "\n")
	if entries[len(entries)-1] == "" {
		entries = entries[:len(entries)-1]
	}
	if r.cfg.HistoryLimit > 0 && len(entries) > r.cfg.HistoryLimit {
		entries = entries[len(entries)-r.cfg.HistoryLimit:]
	}

	if err := os.WriteFile(r.cfg.HistoryFile, []byte(strings.Join(entries, "")), 0o600); err != nil {
		r.errText.Fprintf(r.out, "could not save history: %v\n", err)
	}
}

// needsMoreInput reports unclosed braces, brackets or parentheses outside
// strings and comments
func needsMoreInput(input string) bool {
	depth := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch {
			case escapeNext:
				escapeNext = false
			case ch == '\\':
				escapeNext = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}

	return depth > 0
}
