package printer

import "strings"

// escapeString escapes quotes, backslashes and control whitespace using
// C-style sequences, the form the lexer reads back.
func escapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\t\r") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 10)
	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}
	return buf.String()
}
