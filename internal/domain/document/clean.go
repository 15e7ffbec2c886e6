// Package document provides text hygiene for extracted document text.
//
// PDF and OCR extractors emit text carrying control characters, Unicode
// noncharacters and ragged whitespace; the helpers here produce the clean,
// line-oriented form the mention-extraction pipeline expects. All functions
// are pure and safe for concurrent use.
package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanPrintable removes control and noncharacter codepoints while keeping
// printable letters, digits, punctuation and spaces. Newline, tab and
// carriage return survive so line structure is preserved for later per-line
// processing.
func CleanPrintable(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\n', '\t', '\r':
			b.WriteRune(r)
			continue
		}
		if unicode.Is(unicode.C, r) || isNoncharacter(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isNoncharacter reports whether r is one of the 66 Unicode noncharacters:
// U+FDD0..U+FDEF plus the last two codepoints of every plane.
func isNoncharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	return r&0xFFFE == 0xFFFE
}

// CompressLineWhitespace collapses runs of whitespace within each line to a
// single space and trims line ends, preserving line breaks. All line
// terminators are rewritten to "\n", and a single trailing terminator is
// dropped.
func CompressLineWhitespace(text string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// isLineBreak reports whether r terminates a line. The set matches what
// document producers emit in practice: LF, CR, vertical tab, form feed
// (page breaks in OCR sidecar text), the C1 NEL, and the Unicode line and
// paragraph separators.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// splitLines splits text at line terminators, treating "\r\n" as a single
// break. A trailing terminator does not yield a final empty line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		if r == '\r' && i+size < len(text) && text[i+size] == '\n' {
			size++
		}
		i += size
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
