package format

import (
	"strings"
	"unicode/utf8"
)

// Printer manages formatting state and output
type Printer struct {
	output  strings.Builder
	indent  int // Current indentation level
	linePos int // Current position in the current line, in runes
}

// NewPrinter creates a new Printer instance
func NewPrinter() *Printer {
	return &Printer{}
}

// String returns the formatted output
func (p *Printer) String() string {
	return p.output.String()
}

// Reset clears the printer state for reuse
func (p *Printer) Reset() {
	p.output.Reset()
	p.indent = 0
	p.linePos = 0
}

// write appends a string to the output and updates line position
func (p *Printer) write(s string) {
	p.output.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		p.linePos = utf8.RuneCountInString(s[idx+1:])
	} else {
		p.linePos += utf8.RuneCountInString(s)
	}
}

// newline writes a newline character and resets line position
func (p *Printer) newline() {
	p.output.WriteString("\n")
	p.linePos = 0
}

func (p *Printer) writeIndent() {
	p.write(strings.Repeat(IndentString, p.indent))
}

func (p *Printer) indentInc() {
	p.indent++
}

func (p *Printer) indentDec() {
	if p.indent > 0 {
		p.indent--
	}
}

// fitsOnLine checks if s would fit on the current line within threshold
func (p *Printer) fitsOnLine(s string, threshold int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return p.linePos+utf8.RuneCountInString(s) <= threshold
}

// fitsInThreshold checks s alone, ignoring the current position
func fitsInThreshold(s string, threshold int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return utf8.RuneCountInString(s) <= threshold
}
