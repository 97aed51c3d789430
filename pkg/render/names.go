package render

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SafeName turns a filename into an ASCII token usable inside asset paths:
// accents are stripped, the extension dropped, and anything outside
// [A-Za-z0-9_-] becomes an underscore.
func SafeName(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if s, _, err := transform.String(stripMarks, name); err == nil {
		name = s
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
