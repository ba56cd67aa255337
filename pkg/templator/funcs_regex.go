package templator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// counterToken expands to the 1-based ordinal of the current match when it
// appears in a regex_replace replacement string.
const counterToken = "{counter}"

// regexReplace replaces every non-overlapping match of pattern in subject
// with the expanded replacement. The replacement grammar recognizes
// backslash-digit backreferences (\1, \2, ...; \0 is the whole match) and
// the {counter} ordinal token; everything else is literal, so sequences
// like %{id} or $1 pass through untouched. Inline flags such as (?i) or
// (?m) are honored by the pattern itself; without (?m), ^ and $ anchor to
// the whole subject. An invalid pattern is an error.
func regexReplace(pattern, replacement, subject string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("regex_replace: invalid pattern %q: %w", pattern, err)
	}

	matches := re.FindAllStringSubmatchIndex(subject, -1)
	if matches == nil {
		return subject, nil
	}

	var b strings.Builder
	b.Grow(len(subject))
	last := 0
	for i, m := range matches {
		b.WriteString(subject[last:m[0]])
		expandReplacement(&b, replacement, subject, m, i+1)
		last = m[1]
	}
	b.WriteString(subject[last:])
	return b.String(), nil
}

// expandReplacement writes the replacement text for a single match.
// A backreference to a group that does not exist or did not participate in
// the match expands to nothing, matching regexp.Expand.
func expandReplacement(b *strings.Builder, replacement, subject string, match []int, ordinal int) {
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		switch {
		case c == '\\' && i+1 < len(replacement) && isASCIIDigit(replacement[i+1]):
			j := i + 1
			for j < len(replacement) && isASCIIDigit(replacement[j]) {
				j++
			}
			group, err := strconv.Atoi(replacement[i+1 : j])
			if err == nil && 2*group+1 < len(match) && match[2*group] >= 0 {
				b.WriteString(subject[match[2*group]:match[2*group+1]])
			}
			i = j - 1
		case c == '{' && strings.HasPrefix(replacement[i:], counterToken):
			b.WriteString(strconv.Itoa(ordinal))
			i += len(counterToken) - 1
		default:
			b.WriteByte(c)
		}
	}
}

// regexFindAll returns every non-overlapping match of pattern in subject,
// scanned left to right. The element shape follows the pattern's capture
// groups: with none, the full match text; with exactly one, that group's
// text; with two or more, a Tuple of all group texts. A group that did not
// participate in its match contributes an empty string. No match yields an
// empty List, never an error; an invalid pattern is an error.
func regexFindAll(pattern, subject string) (List, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regex_findall: invalid pattern %q: %w", pattern, err)
	}

	matches := re.FindAllStringSubmatch(subject, -1)
	result := make(List, 0, len(matches))
	switch re.NumSubexp() {
	case 0:
		for _, m := range matches {
			result = append(result, m[0])
		}
	case 1:
		for _, m := range matches {
			result = append(result, m[1])
		}
	default:
		for _, m := range matches {
			groups := make(Tuple, len(m)-1)
			copy(groups, m[1:])
			result = append(result, groups)
		}
	}
	return result, nil
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
