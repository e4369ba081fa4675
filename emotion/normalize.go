package emotion

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText composes Hangul (NFC), trims surrounding whitespace and drops
// control characters other than newlines and tabs. NFKC is avoided because it
// rewrites compatibility jamo such as "ㅋㅋ" that the tokenizer knows.
func NormalizeText(text string) string {
	normed := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '\ufeff' {
			return -1
		}
		return r
	}, norm.NFC.String(text))
	return strings.TrimSpace(normed)
}

// cellText converts an arbitrary cell value to the text handed to the model.
// Missing values become the empty string.
func cellText(v any) string {
	if v == nil {
		return ""
	}
	return NormalizeText(FormatValue(v))
}
