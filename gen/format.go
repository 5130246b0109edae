package gen

import "strings"

// FormatDocComment renders a doc comment using the given line-comment
// prefix ("//" for Go/TypeQL-style targets, "#" for YAML/shell-style,
// "///" for some doc-target languages), one prefixed line per input line,
// wrapped at no particular width (callers needing wrapping do it before
// calling this). Empty descriptions render as no lines at all, so callers
// can unconditionally call this without checking for emptiness first.
func FormatDocComment(prefix, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = strings.TrimRight(prefix, " ")
			continue
		}
		out[i] = prefix + " " + l
	}
	return out
}

// EscapeString escapes a value for embedding in a double-quoted string
// literal in most C-family/TypeQL-style target languages.
func EscapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Indent prepends style's indentation to each line of s, n times.
func Indent(style IndentStyle, n int, s string) string {
	if n <= 0 || s == "" {
		return s
	}
	prefix := strings.Repeat(style.String(), n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
