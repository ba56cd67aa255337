/*
Package templator provides a small, directory-aware wrapper around Go's
text/template engine, extended with regex filter functions usable from
template expressions.

Two filters are installed into every template set the package parses:
regex_replace performs a global regular-expression substitution with
backslash-digit backreferences and a {counter} ordinal token in the
replacement, and regex_findall returns every non-overlapping match, with
a result shape that follows the pattern's capture-group count. Find-all
results render in Python literal style ( ['a', 'b'] or [('k', 'v')] )
when interpolated directly, so callers can compare rendered output
against that canonical form.

Templates can be rendered from raw strings, or loaded from registered
directories and rendered to files under a configured output directory.
File output is buffered in full and written atomically, so a failed
render never leaves a partial file behind.
*/
package templator
