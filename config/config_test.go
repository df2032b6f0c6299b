package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.REPL.Prompt != ">> " {
		t.Errorf("expected default prompt '>> ', got %q", cfg.REPL.Prompt)
	}
	if cfg.REPL.ContinuationPrompt != ".. " {
		t.Errorf("expected default continuation prompt '.. ', got %q", cfg.REPL.ContinuationPrompt)
	}
	if cfg.Output.Format != "repr" {
		t.Errorf("expected default format 'repr', got %q", cfg.Output.Format)
	}
	if cfg.Output.Color != ColorAuto {
		t.Errorf("expected default color 'auto', got %q", cfg.Output.Color)
	}
	if !cfg.Diagnostics.Enabled || !cfg.Diagnostics.Hints {
		t.Error("expected diagnostics and hints to be on by default")
	}
	if cfg.Evaluator.LexicalHashLiterals {
		t.Error("expected global hash literal scope by default")
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	yamlData := `
output:
  format: json
watch:
  debounce: 250ms
`
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(yamlData), cfg); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("expected format 'json', got %q", cfg.Output.Format)
	}
	if cfg.Output.Color != ColorAuto {
		t.Errorf("unset color should keep its default, got %q", cfg.Output.Color)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("unset prompt should keep its default, got %q", cfg.REPL.Prompt)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errors []string
	}{
		{
			name:   "unknown format",
			modify: func(c *Config) { c.Output.Format = "xml" },
			errors: []string{`output.format: "xml" is not one of repr, raw, json, yaml`},
		},
		{
			name:   "unknown color",
			modify: func(c *Config) { c.Output.Color = "sometimes" },
			errors: []string{"output.color"},
		},
		{
			name:   "bad locale",
			modify: func(c *Config) { c.Output.Locale = "not a locale!" },
			errors: []string{"output.locale"},
		},
		{
			name: "every problem is reported",
			modify: func(c *Config) {
				c.Output.Format = "xml"
				c.REPL.HistoryLimit = -1
				c.Watch.Debounce = -time.Second
			},
			errors: []string{"3 errors occurred", "output.format", "repl.history_limit", "watch.debounce"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			for _, want := range tt.errors {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error missing %q:\n%v", want, err)
				}
			}
		})
	}
}

func TestValidLocalePasses(t *testing.T) {
	cfg := Defaults()
	cfg.Output.Locale = "de-DE"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUseColor(t *testing.T) {
	noEnv := func(string) string { return "" }
	noColor := func(key string) string {
		if key == "NO_COLOR" {
			return "1"
		}
		return ""
	}

	tests := []struct {
		mode     string
		terminal bool
		getenv   func(string) string
		expected bool
	}{
		{ColorAuto, true, noEnv, true},
		{ColorAuto, false, noEnv, false},
		{ColorAuto, true, noColor, false},
		{ColorAlways, false, noColor, true},
		{ColorNever, true, noEnv, false},
	}

	for _, tt := range tests {
		c := OutputConfig{Color: tt.mode}
		if got := c.UseColor(tt.terminal, tt.getenv); got != tt.expected {
			t.Errorf("UseColor(%s, terminal=%v) = %v, want %v", tt.mode, tt.terminal, got, tt.expected)
		}
	}
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		file     string
		expected string
	}{
		{"~/.sprig_history", filepath.Join(home, ".sprig_history")},
		{"/var/tmp/h", "/var/tmp/h"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := (REPLConfig{HistoryFile: tt.file}).HistoryPath(); got != tt.expected {
			t.Errorf("HistoryPath(%q) = %q, want %q", tt.file, got, tt.expected)
		}
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sprig.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}
