package validation

import (
	"strings"
	"unicode"
)

// SanitizeForFormulaInjection defuses spreadsheet formula injection in
// exported CSV cells. A leading =, +, -, @, tab or CR makes Excel and
// LibreOffice evaluate the cell, so such values get a single quote
// prepended, which spreadsheets render as plain text. The quote goes on
// the original string, not the trimmed one, to keep leading whitespace.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return s
	}
	switch rune(trimmed[0]) {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// StripUnprintable drops control and other non-printable runes from
// imported text fields, keeping ordinary whitespace (space, tab, newline,
// carriage return) intact.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
