package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sambeau/sprig/pkg/sprig/sprig"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Banner = false
	return New(sprig.New(), &out, cfg), &out
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1 + 2", false},
		{"let f = fn(x) {", true},
		{"let f = fn(x) {\n x + 1\n}", false},
		{"[1, 2,", true},
		{"len(", true},
		{`"{"`, false},
		{`"\"{"`, false},
		{`"unterminated {`, false},
		{"1 // {", false},
		{"{ // }\n", true},
		{"}", false},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestHandleLineEvaluates(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2", "3\n"},
		{`"hi"`, "\"hi\"\n"},
		{"let x = 5", "OK\n"},
		{"[1, 2]", "[1, 2]\n"},
		{"", ""},
	}

	for _, tt := range tests {
		r, out := newTestREPL(t)
		r.HandleLine(tt.input)
		if got := out.String(); got != tt.expected {
			t.Errorf("HandleLine(%q) printed %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBindingsPersistAcrossLines(t *testing.T) {
	r, out := newTestREPL(t)
	r.HandleLine("let double = fn(n) { n * 2 };")
	r.HandleLine("double(21)")

	if got := out.String(); got != "OK\n42\n" {
		t.Errorf("got %q", got)
	}
}

func TestContinuationLines(t *testing.T) {
	r, out := newTestREPL(t)

	if _, full := r.HandleLine("let f = fn(x) {"); full != "" {
		t.Fatalf("first line should wait for more input, evaluated %q", full)
	}
	if r.prompt() != CONTINUATION_PROMPT {
		t.Errorf("prompt = %q, want continuation", r.prompt())
	}
	r.HandleLine("  x + 1")
	_, full := r.HandleLine("};")
	if full != "let f = fn(x) {\n  x + 1\n};" {
		t.Errorf("unexpected history entry %q", full)
	}
	if r.prompt() != PROMPT {
		t.Errorf("prompt = %q after completion", r.prompt())
	}

	r.HandleLine("f(1)")
	if got := out.String(); got != "OK\n2\n" {
		t.Errorf("got %q", got)
	}
}

func TestExit(t *testing.T) {
	r, _ := newTestREPL(t)
	for _, word := range []string{"exit", "quit", "  exit  "} {
		if done, _ := r.HandleLine(word); !done {
			t.Errorf("%q should exit", word)
		}
	}
}

func TestParseErrorsArePrinted(t *testing.T) {
	r, out := newTestREPL(t)
	r.HandleLine("let = 1")

	if !strings.Contains(out.String(), "Parser error: line 1") {
		t.Errorf("expected a parse error, got %q", out.String())
	}
	if strings.Contains(out.String(), "OK") {
		t.Errorf("nothing should be evaluated after a parse error: %q", out.String())
	}
}

func TestDiagnosticsArePrinted(t *testing.T) {
	r, out := newTestREPL(t)
	r.HandleLine("let count = 1")
	out.Reset()
	r.HandleLine("cont")

	got := out.String()
	if !strings.Contains(got, "identifier not found: cont") {
		t.Errorf("missing diagnostic: %q", got)
	}
	if !strings.HasSuffix(got, "OK\n") {
		t.Errorf("a failed lookup still prints OK: %q", got)
	}
}

func TestRawMode(t *testing.T) {
	r, out := newTestREPL(t)
	r.HandleLine(":raw")
	if r.prompt() != PROMPT_RAW {
		t.Errorf("prompt = %q in raw mode", r.prompt())
	}
	out.Reset()

	r.HandleLine(`"hi"`)
	r.HandleLine("let x = 1")
	if got := out.String(); got != "hi\n" {
		t.Errorf("raw mode printed %q", got)
	}
}

func TestOutputFormat(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	r := New(sprig.New(), &out, cfg)

	r.HandleLine(`{"a": [1, 2]}`)
	want := "{\n  \"a\": [\n    1,\n    2\n  ]\n}\n"
	if got := out.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLocaleOutput(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Locale = "en"
	r := New(sprig.New(), &out, cfg)

	r.HandleLine("1000 * 1000")
	if got := out.String(); got != "1,000,000\n" {
		t.Errorf("got %q", got)
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		command string
		wants   []string
	}{
		{":help", []string{"REPL Commands:", ":describe <topic>"}},
		{":env", []string{"(no user variables)"}},
		{":describe len", []string{"len(value)"}},
		{":d types", []string{"Available Types"}},
		{":describe lenn", []string{"Did you mean: len"}},
		{":bogus", []string{"Unknown command: :bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			r, out := newTestREPL(t)
			r.HandleLine(tt.command)
			for _, want := range tt.wants {
				if !strings.Contains(out.String(), want) {
					t.Errorf("%s output missing %q:\n%s", tt.command, want, out.String())
				}
			}
		})
	}
}

func TestEnvAndClear(t *testing.T) {
	r, out := newTestREPL(t)
	r.HandleLine(`let name = "sprig"; let n = 3;`)
	out.Reset()

	r.HandleLine(":env")
	env := out.String()
	for _, want := range []string{"Name", "name", "string", `"sprig"`, "integer"} {
		if !strings.Contains(env, want) {
			t.Errorf(":env missing %q:\n%s", want, env)
		}
	}
	if strings.Index(env, "n ") > strings.Index(env, "name") {
		t.Errorf(":env should be sorted by name:\n%s", env)
	}

	r.HandleLine(":clear")
	out.Reset()
	r.HandleLine(":env")
	if !strings.Contains(out.String(), "(no user variables)") {
		t.Errorf("bindings survived :clear: %s", out.String())
	}
}

func TestCompleteWord(t *testing.T) {
	r, _ := newTestREPL(t)
	r.HandleLine("let first_name = 1")

	head, completions, tail := r.completeWord("len(fir) + 1", 7)
	if head != "len(" || tail != ") + 1" {
		t.Errorf("head=%q tail=%q", head, tail)
	}
	if diff := cmp.Diff([]string{"first", "first_name"}, completions); diff != "" {
		t.Errorf("completions mismatch (-want +got):\n%s", diff)
	}

	_, completions, _ = r.completeWord("re", 2)
	if diff := cmp.Diff([]string{"rest", "return"}, completions); diff != "" {
		t.Errorf("completions mismatch (-want +got):\n%s", diff)
	}

	_, completions, _ = r.completeWord(":c", 2)
	if diff := cmp.Diff([]string{":clear"}, completions); diff != "" {
		t.Errorf("completions mismatch (-want +got):\n%s", diff)
	}

	if _, completions, _ = r.completeWord("1 + ", 4); completions != nil {
		t.Errorf("expected no completions after whitespace, got %v", completions)
	}
}

func TestRunPipedInput(t *testing.T) {
	r, out := newTestREPL(t)

	input := "let add = fn(a, b) {\n  a + b\n};\nadd(1, 2)\nexit\n99\n"
	if err := r.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "OK\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestRunFlushesUnbalancedInput(t *testing.T) {
	r, out := newTestREPL(t)

	if err := r.Run(strings.NewReader("[1, 2")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected the incomplete input to be evaluated and reported")
	}
}

func TestBanner(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	r := New(sprig.New(), &out, cfg)
	r.printBanner()

	if !strings.Contains(out.String(), "v 1.2.3") || !strings.Contains(out.String(), ":help") {
		t.Errorf("unexpected banner:\n%s", out.String())
	}
}
