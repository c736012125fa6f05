package compiler

import "strings"

// FirstComment returns the text between the first pair of double quotes in
// src. The scan runs over the raw text and ignores program structure: the
// first quoted run wins wherever it appears.
func FirstComment(src string) (string, bool) {
	start := strings.IndexByte(src, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(src[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return src[start+1 : start+1+end], true
}

var crlfFolder = strings.NewReplacer("\r\n", " ")

// foldControl turns every remaining control character, a lone '\r'
// included, into a single space.
func foldControl(r rune) rune {
	if r < 0x20 || r == 0x7f {
		return ' '
	}
	return r
}

// Description returns the program description derived from the first
// comment, with line breaks and other control characters folded into
// single spaces. It is empty when the source has no comment or the first
// comment is empty.
func Description(src string) string {
	comment, ok := FirstComment(src)
	if !ok {
		return ""
	}
	return strings.Map(foldControl, crlfFolder.Replace(comment))
}
