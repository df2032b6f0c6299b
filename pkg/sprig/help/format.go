package help

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder

	switch result.Kind {
	case KindBuiltin:
		formatBuiltinText(&sb, result)
	case KindType:
		formatTypeText(&sb, result)
	case KindBuiltinList:
		sb.WriteString("Builtin Functions\n")
		sb.WriteString("=================\n\n")
		rows := make([][]string, len(result.Builtins))
		for i, b := range result.Builtins {
			rows[i] = []string{b.Name + "(" + strings.Join(b.Params, ", ") + ")", b.Description}
		}
		writeTable(&sb, nil, rows, width)
	case KindOperatorList:
		sb.WriteString("Operators\n")
		sb.WriteString("=========\n\n")
		rows := make([][]string, len(result.Operators))
		for i, op := range result.Operators {
			rows[i] = []string{op.Symbol, op.Operands, op.Description}
		}
		writeTable(&sb, []string{"Operator", "Operands", "Description"}, rows, width)
	case KindKeywordList:
		sb.WriteString("Keywords\n")
		sb.WriteString("========\n\n")
		rows := make([][]string, len(result.Keywords))
		for i, k := range result.Keywords {
			rows[i] = []string{k.Keyword, k.Usage, k.Description}
		}
		writeTable(&sb, nil, rows, width)
	case KindTypeList:
		sb.WriteString("Available Types\n")
		sb.WriteString("===============\n\n")
		rows := make([][]string, len(result.Types))
		for i, t := range result.Types {
			rows[i] = []string{t.Name, t.Literal, t.Description}
		}
		writeTable(&sb, []string{"Type", "Example", "Description"}, rows, width)
		sb.WriteString("\nUse 'sprig describe <type>' for details on a specific type.\n")
	default:
		fmt.Fprintf(&sb, "Unknown result kind: %s\n", result.Kind)
	}

	return sb.String()
}

// writeTable renders rows as a borderless, left-aligned table
func writeTable(w io.Writer, header []string, rows [][]string, width int) {
	table := tablewriter.NewWriter(w)
	if len(header) > 0 {
		table.SetHeader(header)
		table.SetAutoFormatHeaders(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	}
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(width < 60)
	table.AppendBulk(rows)
	table.Render()
}

func formatBuiltinText(sb *strings.Builder, result *TopicResult) {
	fmt.Fprintf(sb, "%s(%s)\n", result.Name, strings.Join(result.Params, ", "))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s\n", result.Description)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Arity: %s\n", result.Arity)
	fmt.Fprintf(sb, "Category: %s\n", result.Category)
	if result.Example != "" {
		fmt.Fprintf(sb, "Example: %s\n", result.Example)
	}
}

func formatTypeText(sb *strings.Builder, result *TopicResult) {
	fmt.Fprintf(sb, "Type: %s\n", result.Name)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s\n", result.Description)
	if result.Literal != "" {
		fmt.Fprintf(sb, "\nExample: %s\n", result.Literal)
	}
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// FormatMarkdown formats a TopicResult as a markdown document
func FormatMarkdown(result *TopicResult) string {
	var sb strings.Builder

	switch result.Kind {
	case KindBuiltin:
		fmt.Fprintf(&sb, "# `%s(%s)`\n\n", result.Name, strings.Join(result.Params, ", "))
		fmt.Fprintf(&sb, "%s\n\n", result.Description)
		fmt.Fprintf(&sb, "- Arity: %s\n- Category: %s\n", result.Arity, result.Category)
		if result.Example != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", result.Example)
		}
	case KindType:
		fmt.Fprintf(&sb, "# %s\n\n%s\n", result.Name, result.Description)
		if result.Literal != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", result.Literal)
		}
	case KindBuiltinList:
		sb.WriteString("# Builtin Functions\n\n| Function | Description |\n|---|---|\n")
		for _, b := range result.Builtins {
			fmt.Fprintf(&sb, "| `%s(%s)` | %s |\n", b.Name, strings.Join(b.Params, ", "), escapeCell(b.Description))
		}
	case KindOperatorList:
		sb.WriteString("# Operators\n\n| Operator | Operands | Description |\n|---|---|---|\n")
		for _, op := range result.Operators {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", op.Symbol, escapeCell(op.Operands), escapeCell(op.Description))
		}
	case KindKeywordList:
		sb.WriteString("# Keywords\n\n| Keyword | Usage | Description |\n|---|---|---|\n")
		for _, k := range result.Keywords {
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", k.Keyword, k.Usage, escapeCell(k.Description))
		}
	case KindTypeList:
		sb.WriteString("# Types\n\n| Type | Example | Description |\n|---|---|---|\n")
		for _, t := range result.Types {
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", t.Name, t.Literal, escapeCell(t.Description))
		}
	}

	return sb.String()
}

// escapeCell keeps '|' from splitting a markdown table cell
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FormatHTML renders the markdown form of a TopicResult as an HTML fragment
func FormatHTML(result *TopicResult) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(result)), &buf); err != nil {
		return nil, fmt.Errorf("rendering help: %w", err)
	}
	return buf.Bytes(), nil
}
