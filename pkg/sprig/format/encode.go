package format

import (
	"encoding/json"
	"fmt"

	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Encode and the CLI.
const (
	FormatRepr = "repr"
	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every output format name.
var Formats = []string{FormatRepr, FormatRaw, FormatJSON, FormatYAML}

// Encode converts a value to host data and serialises it as "json" or
// "yaml". Hash keys come out sorted.
func Encode(obj evaluator.Object, format string) ([]byte, error) {
	native, err := evaluator.ToNative(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}

	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(native, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(native)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", format)
	}
}

// Value renders obj in one of Formats. Text formats never fail.
func Value(obj evaluator.Object, format string, opts Options) (string, error) {
	switch format {
	case FormatRepr, "":
		return ReprWith(obj, opts), nil
	case FormatRaw:
		return RawWith(obj, opts), nil
	default:
		out, err := Encode(obj, format)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}
