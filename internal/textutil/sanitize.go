package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolds covers letters that do not decompose into an ASCII base.
var asciiFolds = strings.NewReplacer(
	"ß", "ss",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Ø", "O", "ø", "o",
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d",
	"Þ", "Th", "þ", "th",
	"Ð", "D", "ð", "d",
	"ı", "i",
	"‘", "'", "’", "'",
	"“", "\"", "”", "\"",
	"–", "-", "—", "-",
	"…", "...",
)

var folder = cases.Fold()

// AlphanumOnly keeps letters, digits, underscores and whitespace.
func AlphanumOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, value)
}

// ToASCII returns a pure-ASCII approximation of value: accents are stripped
// after compatibility decomposition and remaining non-ASCII runes dropped.
func ToASCII(value string) string {
	value = asciiFolds.Replace(value)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		out = value
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, out)
}

// StripWhitespace replaces every run of whitespace with a single underscore.
func StripWhitespace(value string) string {
	return strings.Join(strings.Fields(value), "_")
}

// ReplaceSeparators turns path separators into dashes so a value cannot
// introduce directories.
func ReplaceSeparators(value string) string {
	return strings.ReplaceAll(value, "/", "-")
}

// Fold case-folds an identifier for case-insensitive comparison.
func Fold(value string) string {
	return folder.String(strings.TrimSpace(value))
}
