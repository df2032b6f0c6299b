// Package errors provides structured error types for the Sprig language.
//
// SprigError represents both parser and evaluation diagnostics with enough
// metadata for terminal display, JSON output and programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Parser/syntax errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid operations
)

// SprigError represents any error from parsing or evaluation.
type SprigError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based, 0 if unknown
	Column  int            `json:"column"` // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *SprigError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *SprigError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *SprigError) PrettyString() string {
	var sb strings.Builder

	if e.IsParseError() {
		sb.WriteString("Parser error")
	} else {
		sb.WriteString("Runtime error")
	}

	switch {
	case e.File != "":
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	case e.Line > 0:
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	default:
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *SprigError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *SprigError) WithFile(file string) *SprigError {
	c := *e
	c.File = file
	return &c
}

// WithPosition returns a copy of the error with line and column set.
func (e *SprigError) WithPosition(line, column int) *SprigError {
	c := *e
	c.Line = line
	c.Column = column
	return &c
}

// IsParseError returns true if this is a parser error.
func (e *SprigError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "could not parse {{printf \"%q\" .Literal}} as integer",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "unexpected end of input, expected '{{.Expected}}'",
		Hints:    []string{"close the {{.Construct}} opened at line {{.Line}}"},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "{{.Message}}",
	},

	// Undefined errors
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "function not found: {{.Name}}",
	},

	// Type errors
	"TYPE-0001": {
		Class:    ClassType,
		Template: "type mismatch: {{.Left}} {{.Operator}} {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "argument to `{{.Function}}` not supported, got {{.Got}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "cannot call {{.Got}} as a function",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "index operator not supported: {{.Left}}[{{.Right}}]",
		Hints:    []string{"arrays and strings are indexed with integers", "hashes are indexed with integers, booleans or strings"},
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "unusable as hash key: {{.Got}}",
	},

	// Arity errors
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "wrong number of arguments to `{{.Function}}`. got={{.Got}}, want={{.Want}}",
	},

	// Index errors
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of range for {{.Type}} of length {{.Length}}",
	},

	// Operator errors
	"OP-0001": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Operator}}{{.Right}}",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Left}} {{.Operator}} {{.Right}}",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
}

// New creates a SprigError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *SprigError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &SprigError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &SprigError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a SprigError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *SprigError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

func renderTemplate(tmplStr string, data map[string]any) string {
	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return strings.ReplaceAll(buf.String(), "<no value>", "")
}

// TypeName returns a lowercase type name for error messages.
// Converts "STRING" to "string", "ARRAY" to "array", etc.
func TypeName(t string) string {
	return strings.ToLower(t)
}

// Fuzzy matching for "Did you mean?" suggestions.

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Distance returns the case-insensitive edit distance between a and b.
func Distance(a, b string) int {
	return levenshtein.DistanceForStrings(
		[]rune(strings.ToLower(a)),
		[]rune(strings.ToLower(b)),
		editOptions,
	)
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// threshold is the largest edit distance still worth suggesting for input:
// one edit up to three characters, two up to six, three beyond.
func threshold(input string) int {
	n := len([]rune(input))
	switch {
	case n >= 7:
		return 3
	case n >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
// Ties go to the candidate that sorts first.
func FindClosestMatch(input string, candidates []string) string {
	matches := FindTopMatches(input, candidates, 1)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// FindTopMatches returns up to n candidates within the threshold, closest
// first. Exact matches are never suggested.
func FindTopMatches(input string, candidates []string, n int) []string {
	if input == "" || len(candidates) == 0 || n <= 0 {
		return nil
	}

	limit := threshold(input)

	var matches []FuzzyMatch
	for _, candidate := range candidates {
		dist := Distance(input, candidate)
		if dist > 0 && dist <= limit {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Value < matches[j].Value
	})

	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		result = append(result, matches[i].Value)
	}
	return result
}

// NewUndefinedIdentifier creates an undefined identifier error with optional fuzzy matching.
func NewUndefinedIdentifier(name string, available []string) *SprigError {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// NewUndefinedFunction creates an undefined function error with optional fuzzy matching.
func NewUndefinedFunction(name string, available []string) *SprigError {
	err := New("UNDEF-0002", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
