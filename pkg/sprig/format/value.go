package format

import (
	"strconv"
	"strings"

	"github.com/sambeau/sprig/pkg/sprig/ast"
	"github.com/sambeau/sprig/pkg/sprig/evaluator"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Options control how values are displayed.
type Options struct {
	// Locale is a BCP 47 tag used to group integer digits. Empty leaves
	// integers ungrouped.
	Locale string
}

// Repr formats a value as a Sprig literal: strings are quoted and long
// collections are split over several lines.
func Repr(obj evaluator.Object) string {
	return ReprWith(obj, Options{})
}

// ReprWith is Repr with display options.
func ReprWith(obj evaluator.Object, opts Options) string {
	p := NewPrinter()
	p.formatValue(obj, opts)
	return p.String()
}

// Raw formats a value for printing: strings appear without quotes, every
// other value as Repr renders it.
func Raw(obj evaluator.Object) string {
	return RawWith(obj, Options{})
}

// RawWith is Raw with display options.
func RawWith(obj evaluator.Object, opts Options) string {
	if s, ok := obj.(*evaluator.String); ok {
		return s.Value
	}
	return ReprWith(obj, opts)
}

// Integer formats n with digit grouping for locale. An empty or invalid
// locale returns the plain decimal form.
func Integer(n int64, locale string) string {
	if locale == "" {
		return strconv.FormatInt(n, 10)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return strconv.FormatInt(n, 10)
	}
	p := message.NewPrinter(tag)
	return p.Sprintf("%v", number.Decimal(n))
}

// ValidLocale reports whether locale parses as a BCP 47 tag.
func ValidLocale(locale string) bool {
	_, err := language.Parse(locale)
	return err == nil
}

func (p *Printer) formatValue(obj evaluator.Object, opts Options) {
	switch obj := obj.(type) {
	case nil:
		p.write("null")
	case *evaluator.Integer:
		p.write(Integer(obj.Value, opts.Locale))
	case *evaluator.String:
		p.write(ast.Quote(obj.Value))
	case *evaluator.Array:
		p.formatArrayValue(obj, opts)
	case *evaluator.Hash:
		p.formatHashValue(obj, opts)
	case *evaluator.ReturnValue:
		p.formatValue(obj.Value, opts)
	default:
		p.write(obj.Inspect())
	}
}

func valueString(obj evaluator.Object, opts Options) string {
	p := NewPrinter()
	p.formatValue(obj, opts)
	return p.String()
}

func (p *Printer) formatArrayValue(arr *evaluator.Array, opts Options) {
	if len(arr.Elements) == 0 {
		p.write("[]")
		return
	}

	parts := make([]string, len(arr.Elements))
	for i, elem := range arr.Elements {
		parts[i] = valueString(elem, opts)
	}
	inline := "[" + strings.Join(parts, ", ") + "]"
	if fitsInThreshold(inline, ValueThreshold) {
		p.write(inline)
		return
	}

	p.write("[")
	p.newline()
	p.indentInc()
	for i, elem := range arr.Elements {
		p.writeIndent()
		p.formatValue(elem, opts)
		if TrailingCommaMultiline || i < len(arr.Elements)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("]")
}

func (p *Printer) formatHashValue(hash *evaluator.Hash, opts Options) {
	if hash.Len() == 0 {
		p.write("{}")
		return
	}

	parts := make([]string, 0, hash.Len())
	hash.Each(func(key, value evaluator.Object) {
		parts = append(parts, valueString(key, opts)+": "+valueString(value, opts))
	})
	inline := "{" + strings.Join(parts, ", ") + "}"
	if fitsInThreshold(inline, ValueThreshold) {
		p.write(inline)
		return
	}

	p.write("{")
	p.newline()
	p.indentInc()
	i := 0
	hash.Each(func(key, value evaluator.Object) {
		p.writeIndent()
		p.formatValue(key, opts)
		p.write(": ")
		p.formatValue(value, opts)
		if TrailingCommaMultiline || i < hash.Len()-1 {
			p.write(",")
		}
		p.newline()
		i++
	})
	p.indentDec()
	p.writeIndent()
	p.write("}")
}
