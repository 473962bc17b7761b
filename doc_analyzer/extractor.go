package doc_analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
)

// Extract scans the text of one source file and returns a record for every
// block comment that is immediately followed by a `name :: proc(...)`
// declaration, in source order.
//
// The scan is lexical. Block comments nest, and comment openers inside string
// literals, rune literals and line comments are ignored. A comment that is not
// followed by a procedure declaration is skipped and scanning resumes after
// it. An opener without a matching close is skipped on its own and scanning
// resumes right after it.
func Extract(content string) []models.DocRecord {
	var records []models.DocRecord

	pos := 0
	for {
		open, ok := nextCommentOpen(content, pos)
		if !ok {
			break
		}
		bodyEnd, end, ok := commentClose(content, open)
		if !ok {
			pos = open + 2
			continue
		}
		pos = end

		record, next, ok := matchDeclaration(content, end)
		if !ok {
			continue
		}
		record.Description, record.Params, record.Return = ParseTags(stripComment(content[open+2 : bodyEnd]))
		records = append(records, record)
		pos = next
	}

	return records
}

// nextCommentOpen returns the index of the next "/*" at or after pos that is
// not inside a string, rune literal or line comment.
func nextCommentOpen(src string, pos int) (int, bool) {
	for i := pos; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			return i, true
		case strings.HasPrefix(src[i:], "//"):
			i = skipLine(src, i)
		case src[i] == '"' || src[i] == '\'':
			i = skipQuoted(src, i)
		case src[i] == '`':
			i = skipRaw(src, i)
		default:
			i++
		}
	}
	return 0, false
}

// commentClose finds the "*/" matching the opener at open. It returns the
// index of the closing delimiter and the index just past it.
func commentClose(src string, open int) (int, int, bool) {
	depth := 1
	for i := open + 2; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(src[i:], "*/"):
			depth--
			if depth == 0 {
				return i, i + 2, true
			}
			i += 2
		default:
			i++
		}
	}
	return 0, 0, false
}

// matchDeclaration matches `name :: proc(params) -> type` starting at i,
// allowing leading whitespace. It returns the record with Name and Signature
// set and the index just past the declaration head.
func matchDeclaration(src string, i int) (models.DocRecord, int, bool) {
	var record models.DocRecord

	i = skipSpace(src, i)
	nameEnd := scanIdent(src, i)
	if nameEnd == i {
		return record, 0, false
	}
	record.Name = src[i:nameEnd]

	i = skipSpace(src, nameEnd)
	if !strings.HasPrefix(src[i:], "::") {
		return record, 0, false
	}
	i = skipSpace(src, i+2)

	// Directives such as #force_inline may precede the keyword.
	for i < len(src) && src[i] == '#' {
		end := scanIdent(src, i+1)
		if end == i+1 {
			return record, 0, false
		}
		i = skipSpace(src, end)
	}

	if !strings.HasPrefix(src[i:], "proc") || scanIdent(src, i) != i+len("proc") {
		return record, 0, false
	}
	i = skipSpace(src, i+len("proc"))

	// Calling convention, e.g. proc "contextless" (...).
	if i < len(src) && src[i] == '"' {
		i = skipSpace(src, skipQuoted(src, i))
	}

	if i >= len(src) || src[i] != '(' {
		return record, 0, false
	}
	paramsStart := i
	end, ok := matchBalanced(src, i)
	if !ok {
		return record, 0, false
	}

	arrow := skipSpace(src, end)
	if strings.HasPrefix(src[arrow:], "->") {
		typeStart := skipSpace(src, arrow+2)
		if typeEnd := scanReturnType(src, typeStart); typeEnd > typeStart {
			end = typeEnd
		}
	}

	record.Signature = src[paramsStart:end]
	return record, end, true
}

// matchBalanced returns the index just past the parenthesis that closes the
// one at src[open]. Parentheses inside string and rune literals are ignored.
func matchBalanced(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); {
		switch src[i] {
		case '(':
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return i, true
			}
		case '"', '\'':
			i = skipQuoted(src, i)
		case '`':
			i = skipRaw(src, i)
		default:
			i++
		}
	}
	return 0, false
}

// scanReturnType returns the end of the return type starting at i: either a
// parenthesised result list or a run of non-space characters with balanced
// brackets, ending before '{' or ';'.
func scanReturnType(src string, i int) int {
	if i < len(src) && src[i] == '(' {
		if end, ok := matchBalanced(src, i); ok {
			return end
		}
		return i
	}

	depth := 0
	for j := i; j < len(src); j++ {
		c := src[j]
		switch {
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth == 0 {
				return j
			}
			depth--
		case depth == 0 && (c == '{' || c == ';' || isSpace(c)):
			return j
		}
	}
	return len(src)
}

// stripComment removes the decoration from every line of a comment body.
func stripComment(body string) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i, line := range lines {
		lines[i] = strings.Trim(line, " \t\r*")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func scanIdent(src string, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	return i
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func skipLine(src string, i int) int {
	if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
		return i + nl + 1
	}
	return len(src)
}

// skipQuoted skips a "..." or '...' literal starting at i. Literals do not
// span lines; an unterminated one ends at the newline.
func skipQuoted(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(src)
}

func skipRaw(src string, i int) int {
	if end := strings.IndexByte(src[i+1:], '`'); end >= 0 {
		return i + 1 + end + 1
	}
	return len(src)
}
