package format

import (
	"fmt"
	"strings"

	"github.com/sambeau/sprig/pkg/sprig/ast"
	"github.com/sambeau/sprig/pkg/sprig/parser"
)

// operatorPrecedence mirrors the parser's binding powers for infix operators
var operatorPrecedence = map[string]int{
	"==": parser.EQUALS,
	"!=": parser.EQUALS,
	"<":  parser.LESSGREATER,
	">":  parser.LESSGREATER,
	"+":  parser.SUM,
	"-":  parser.SUM,
	"*":  parser.PRODUCT,
	"/":  parser.PRODUCT,
}

// FormatNode formats any AST node into canonical Sprig source.
func FormatNode(node ast.Node) string {
	if node == nil {
		return ""
	}
	p := NewPrinter()
	p.formatNode(node)
	return p.String()
}

// FormatProgram formats an entire program. Statements are separated by
// newlines and terminated with semicolons; comments are not preserved.
func FormatProgram(prog *ast.Program) string {
	if prog == nil || len(prog.Statements) == 0 {
		return ""
	}
	p := NewPrinter()
	p.formatProgram(prog)
	p.newline()
	return p.String()
}

func (p *Printer) formatProgram(prog *ast.Program) {
	for i, stmt := range prog.Statements {
		if i > 0 {
			p.newline()
			if needsBlankLineAfter(prog.Statements[i-1]) {
				p.newline()
			}
		}
		p.formatStatement(stmt)
		p.write(";")
	}
}

// needsBlankLineAfter reports whether stmt is a function definition
func needsBlankLineAfter(stmt ast.Statement) bool {
	if ls, ok := stmt.(*ast.LetStatement); ok {
		_, isFunc := ls.Value.(*ast.FunctionLiteral)
		return isFunc
	}
	return false
}

// formatNode dispatches to the appropriate formatting method
func (p *Printer) formatNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.Program:
		p.formatProgram(n)
	case *ast.LetStatement:
		p.formatLetStatement(n)
	case *ast.ReturnStatement:
		p.formatReturnStatement(n)
	case *ast.ExpressionStatement:
		p.formatExpression(n.Expression)
	case *ast.BlockStatement:
		p.formatBlockStatement(n)
	case *ast.Identifier:
		p.write(n.Value)
	case *ast.IntegerLiteral:
		p.write(n.String())
	case *ast.StringLiteral:
		p.write(ast.Quote(n.Value))
	case *ast.Boolean:
		p.write(fmt.Sprintf("%t", n.Value))
	case *ast.PrefixExpression:
		p.formatPrefixExpression(n)
	case *ast.InfixExpression:
		p.formatInfixExpression(n)
	case *ast.IfExpression:
		p.formatIfExpression(n)
	case *ast.FunctionLiteral:
		p.formatFunctionLiteral(n)
	case *ast.CallExpression:
		p.formatCallExpression(n)
	case *ast.ArrayLiteral:
		p.formatArrayLiteral(n)
	case *ast.IndexExpression:
		p.formatIndexExpression(n)
	case *ast.HashLiteral:
		p.formatHashLiteral(n)
	}
}

func (p *Printer) formatStatement(stmt ast.Statement) {
	p.formatNode(stmt)
}

func (p *Printer) formatExpression(expr ast.Expression) {
	if expr == nil {
		return
	}
	p.formatNode(expr)
}

// formatLetStatement formats let statements: let x = value
func (p *Printer) formatLetStatement(ls *ast.LetStatement) {
	p.write("let ")
	if ls.Name != nil {
		p.write(ls.Name.Value)
	}
	p.write(" = ")
	p.formatExpression(ls.Value)
}

// formatReturnStatement formats return statements
func (p *Printer) formatReturnStatement(rs *ast.ReturnStatement) {
	p.write("return")
	if rs.ReturnValue != nil {
		p.write(" ")
		p.formatExpression(rs.ReturnValue)
	}
}

// formatBlockStatement formats block statements: { ... }
func (p *Printer) formatBlockStatement(bs *ast.BlockStatement) {
	if bs == nil || len(bs.Statements) == 0 {
		p.write("{}")
		return
	}

	if inline, ok := inlineBlock(bs); ok && p.fitsOnLine(inline, MaxLineWidth) {
		p.write(inline)
		return
	}

	p.write("{")
	p.newline()
	p.indentInc()

	for _, stmt := range bs.Statements {
		p.writeIndent()
		p.formatStatement(stmt)
		p.write(";")
		p.newline()
	}

	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// inlineBlock renders a block holding one simple expression as { expr }
func inlineBlock(bs *ast.BlockStatement) (string, bool) {
	if bs == nil || len(bs.Statements) != 1 {
		return "", false
	}
	es, ok := bs.Statements[0].(*ast.ExpressionStatement)
	if !ok || containsControlFlow(es.Expression) {
		return "", false
	}
	body := nodeString(es.Expression)
	if strings.Contains(body, "\n") {
		return "", false
	}
	return "{ " + body + " }", true
}

// containsControlFlow reports whether expr deserves its own lines
func containsControlFlow(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IfExpression, *ast.FunctionLiteral:
		return true
	}
	return false
}

// formatPrefixExpression formats prefix expressions: !x, -x
func (p *Printer) formatPrefixExpression(pe *ast.PrefixExpression) {
	p.write(pe.Operator)
	if _, ok := pe.Right.(*ast.InfixExpression); ok {
		p.write("(")
		p.formatExpression(pe.Right)
		p.write(")")
		return
	}
	p.formatExpression(pe.Right)
}

// formatInfixExpression formats infix expressions: x + y. Operands that
// bind more loosely than the operator are parenthesised; on the right an
// equal binding power needs parentheses too, as operators associate left.
func (p *Printer) formatInfixExpression(ie *ast.InfixExpression) {
	prec := operatorPrecedence[ie.Operator]

	p.formatOperand(ie.Left, func(child int) bool { return child < prec })
	p.write(" " + ie.Operator + " ")
	p.formatOperand(ie.Right, func(child int) bool { return child <= prec })
}

func (p *Printer) formatOperand(expr ast.Expression, needsParens func(int) bool) {
	if child, ok := expr.(*ast.InfixExpression); ok && needsParens(operatorPrecedence[child.Operator]) {
		p.write("(")
		p.formatExpression(expr)
		p.write(")")
		return
	}
	p.formatExpression(expr)
}

// formatIfExpression formats if expressions, inline when both branches are
// simple and the whole expression fits
func (p *Printer) formatIfExpression(ie *ast.IfExpression) {
	cons, consOK := inlineBlock(ie.Consequence)
	if consOK {
		inline := "if (" + nodeString(ie.Condition) + ") " + cons
		if ie.Alternative != nil {
			alt, altOK := inlineBlock(ie.Alternative)
			if !altOK {
				inline = ""
			} else {
				inline += " else " + alt
			}
		}
		if inline != "" && p.fitsOnLine(inline, MaxLineWidth) {
			p.write(inline)
			return
		}
	}

	p.write("if (")
	p.formatExpression(ie.Condition)
	p.write(") ")
	p.formatMultilineBlock(ie.Consequence)

	if ie.Alternative != nil {
		p.write(" else ")
		p.formatMultilineBlock(ie.Alternative)
	}
}

// formatMultilineBlock always breaks the block over several lines
func (p *Printer) formatMultilineBlock(bs *ast.BlockStatement) {
	if bs == nil || len(bs.Statements) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indentInc()
	for _, stmt := range bs.Statements {
		p.writeIndent()
		p.formatStatement(stmt)
		p.write(";")
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// formatFunctionLiteral formats function literals
func (p *Printer) formatFunctionLiteral(fl *ast.FunctionLiteral) {
	params := make([]string, len(fl.Parameters))
	for i, param := range fl.Parameters {
		params[i] = param.Value
	}
	header := "fn(" + strings.Join(params, ", ") + ") "

	if body, ok := inlineBlock(fl.Body); ok && p.fitsOnLine(header+body, MaxLineWidth) {
		p.write(header + body)
		return
	}

	p.write(header)
	p.formatMultilineBlock(fl.Body)
}

// formatCallExpression formats function calls
func (p *Printer) formatCallExpression(ce *ast.CallExpression) {
	p.write(ce.Function.Value)
	p.write("(")
	for i, arg := range ce.Arguments {
		if i > 0 {
			p.write(", ")
		}
		p.formatExpression(arg)
	}
	p.write(")")
}

// formatIndexExpression formats index access: arr[i]
func (p *Printer) formatIndexExpression(ie *ast.IndexExpression) {
	switch ie.Left.(type) {
	case *ast.InfixExpression, *ast.PrefixExpression:
		p.write("(")
		p.formatExpression(ie.Left)
		p.write(")")
	default:
		p.formatExpression(ie.Left)
	}
	p.write("[")
	p.formatExpression(ie.Index)
	p.write("]")
}

// formatArrayLiteral formats array literals inline when they fit
func (p *Printer) formatArrayLiteral(al *ast.ArrayLiteral) {
	if len(al.Elements) == 0 {
		p.write("[]")
		return
	}

	parts := make([]string, len(al.Elements))
	for i, elem := range al.Elements {
		parts[i] = nodeString(elem)
	}
	inline := "[" + strings.Join(parts, ", ") + "]"
	if p.fitsOnLine(inline, MaxLineWidth) {
		p.write(inline)
		return
	}

	p.write("[")
	p.newline()
	p.indentInc()
	for i, elem := range al.Elements {
		p.writeIndent()
		p.formatExpression(elem)
		if TrailingCommaMultiline || i < len(al.Elements)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("]")
}

// formatHashLiteral formats hash literals inline when they fit
func (p *Printer) formatHashLiteral(hl *ast.HashLiteral) {
	if len(hl.Pairs) == 0 {
		p.write("{}")
		return
	}

	parts := make([]string, len(hl.Pairs))
	for i, pair := range hl.Pairs {
		parts[i] = nodeString(pair.Key) + ": " + nodeString(pair.Value)
	}
	inline := "{" + strings.Join(parts, ", ") + "}"
	if p.fitsOnLine(inline, MaxLineWidth) {
		p.write(inline)
		return
	}

	p.write("{")
	p.newline()
	p.indentInc()
	for i, pair := range hl.Pairs {
		p.writeIndent()
		p.formatExpression(pair.Key)
		p.write(": ")
		p.formatExpression(pair.Value)
		if TrailingCommaMultiline || i < len(hl.Pairs)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// nodeString formats node on a fresh printer, used to measure inline forms
func nodeString(node ast.Node) string {
	if node == nil {
		return ""
	}
	np := NewPrinter()
	np.formatNode(node)
	return np.String()
}
