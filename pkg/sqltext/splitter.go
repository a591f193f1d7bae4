package sqltext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// StripComments returns the code of text with every comment removed.
//
// Where a removed comment sat between two pieces of code that would otherwise
// touch, a single space is inserted so tokens on either side are never glued
// together.
func StripComments(text string) string {
	var sb strings.Builder
	removed := false

	for _, seg := range Scan(text) {
		if seg.Kind.IsComment() {
			removed = true
			continue
		}

		if removed && needsSeparator(sb.String(), seg.Text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(seg.Text)
		removed = false
	}

	return sb.String()
}

// Split returns the statements found in text, in source order.
//
// Comments are removed first, so delimiters inside comments never split.
// Newlines are flattened to spaces, the code is split on ';' and every
// candidate is trimmed. Candidates that are empty after trimming are dropped.
func Split(text string) []string {
	code := newlineReplacer.Replace(StripComments(text))

	var statements []string
	for _, candidate := range strings.Split(code, StatementDelimiter) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		statements = append(statements, candidate)
	}

	return statements
}

func needsSeparator(before, after string) bool {
	if before == "" || after == "" {
		return false
	}

	last, _ := utf8.DecodeLastRuneInString(before)
	first, _ := utf8.DecodeRuneInString(after)
	return !unicode.IsSpace(last) && !unicode.IsSpace(first)
}
