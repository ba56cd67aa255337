package templator

import (
	"fmt"
	"strings"
)

// List is an ordered sequence of find-all results. Elements are plain
// strings, or Tuples when the pattern carried two or more capture groups.
// It implements fmt.Stringer so that interpolating a List directly into a
// template produces the canonical list rendering, e.g. ['123', '456'].
type List []any

// Tuple holds the capture-group texts of a single match. It renders in
// tuple literal form, with a trailing comma for the one-element case:
// ('key', '1') and ('x',).
type Tuple []string

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		writeElement(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, s := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		writeQuoted(&b, s)
	}
	if len(t) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// writeElement renders a single List element: strings are quoted, nested
// containers render through their own Stringer, anything else through fmt.
func writeElement(b *strings.Builder, v any) {
	switch e := v.(type) {
	case string:
		writeQuoted(b, e)
	case Tuple:
		b.WriteString(e.String())
	case List:
		b.WriteString(e.String())
	default:
		fmt.Fprintf(b, "%v", e)
	}
}

// writeQuoted writes s the way Python repr quotes a string: single quotes
// by default, double quotes when s contains a single quote but no double
// quote, with backslashes, quotes, and control characters escaped.
func writeQuoted(b *strings.Builder, s string) {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
}
