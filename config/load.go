package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sambeau/sprig/pkg/sprig/format"
	"gopkg.in/yaml.v3"
)

// Load reads configuration with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults when no file exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Path = absPath

	// Relative history files live next to the config
	if h := cfg.REPL.HistoryFile; h != "" && !filepath.IsAbs(h) && !strings.HasPrefix(h, "~/") {
		cfg.REPL.HistoryFile = filepath.Join(filepath.Dir(absPath), h)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every configuration problem at once.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if !slices.Contains(format.Formats, cfg.Output.Format) {
		result = multierror.Append(result, fmt.Errorf("output.format: %q is not one of %s",
			cfg.Output.Format, strings.Join(format.Formats, ", ")))
	}

	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		result = multierror.Append(result, fmt.Errorf("output.color: %q must be auto, always or never", cfg.Output.Color))
	}

	if cfg.Output.Locale != "" && !format.ValidLocale(cfg.Output.Locale) {
		result = multierror.Append(result, fmt.Errorf("output.locale: %q is not a valid language tag", cfg.Output.Locale))
	}

	if cfg.REPL.HistoryLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("repl.history_limit: %d must not be negative", cfg.REPL.HistoryLimit))
	}

	if cfg.Watch.Debounce < 0 {
		result = multierror.Append(result, fmt.Errorf("watch.debounce: %s must not be negative", cfg.Watch.Debounce))
	}

	return result.ErrorOrNil()
}

// resolveConfigPath finds the config file to use. An empty result means
// no file was found and defaults apply.
// Search order: explicit path > SPRIG_CONFIG env > ./sprig.yaml > ~/.config/sprig/sprig.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("SPRIG_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("SPRIG_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("sprig.yaml"); err == nil {
		return "sprig.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "sprig", "sprig.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
