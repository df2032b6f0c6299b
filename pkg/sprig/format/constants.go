// Package format renders Sprig syntax trees as canonical source and Sprig
// values for display.
package format

// MaxLineWidth is the target maximum line length
const MaxLineWidth = 80

// ValueThreshold is the widest a collection value may be before it is
// printed one element per line.
const ValueThreshold = MaxLineWidth * 60 / 100

// Indentation
const (
	IndentWidth  = 4
	IndentString = "    "
)

// TrailingCommaMultiline adds a trailing comma to multiline collections
const TrailingCommaMultiline = true
