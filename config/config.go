package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete Sprig configuration
type Config struct {
	Path        string            `yaml:"-"` // File the config was loaded from, empty for defaults
	REPL        REPLConfig        `yaml:"repl"`
	Output      OutputConfig      `yaml:"output"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Evaluator   EvaluatorConfig   `yaml:"evaluator"`
	Watch       WatchConfig       `yaml:"watch"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	HistoryFile        string `yaml:"history_file"`  // "~/" is expanded; empty disables history
	HistoryLimit       int    `yaml:"history_limit"` // Maximum saved entries
	Banner             bool   `yaml:"banner"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `yaml:"format"` // repr, raw, json or yaml
	Color  string `yaml:"color"`  // auto, always or never
	Locale string `yaml:"locale"` // BCP 47 tag for digit grouping, empty for none
}

// DiagnosticsConfig controls evaluation diagnostics
type DiagnosticsConfig struct {
	Enabled bool `yaml:"enabled"`
	Hints   bool `yaml:"hints"` // "Did you mean" suggestions
}

// EvaluatorConfig holds language behaviour switches
type EvaluatorConfig struct {
	LexicalHashLiterals bool `yaml:"lexical_hash_literals"`
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:             ">> ",
			ContinuationPrompt: ".. ",
			HistoryFile:        "~/.sprig_history",
			HistoryLimit:       1000,
			Banner:             true,
		},
		Output: OutputConfig{
			Format: "repr",
			Color:  ColorAuto,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: true,
			Hints:   true,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}

// HistoryPath returns the history file with a leading "~/" expanded
func (c REPLConfig) HistoryPath() string {
	if rest, ok := strings.CutPrefix(c.HistoryFile, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), rest)
		}
		return filepath.Join(home, rest)
	}
	return c.HistoryFile
}

// UseColor decides whether to colour output. isTerminal reports whether the
// output is a terminal; a non-empty NO_COLOR disables auto colour.
func (c OutputConfig) UseColor(isTerminal bool, getenv func(string) string) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal && getenv("NO_COLOR") == ""
	}
}
