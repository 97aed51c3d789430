// Package fonts resolves the typeface used for captions and annotations.
//
// The Go fonts are compiled into the binary so rendering never depends on
// what is installed. A system font can be preferred with [WithSystemFont];
// when none of the requested families is found the embedded face is used.
//
// Raster text is drawn from the resolved face. SVG text names [FontFamily]
// instead, leaving the viewer free to substitute, which keeps text editable
// in vector tools.
package fonts

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family written on SVG text elements.
const FontFamily = "Arial, sans-serif"

// DefaultSystemFonts lists the families probed by WithSystemFont when called
// without arguments, in order of preference.
var DefaultSystemFonts = []string{
	"Arial.ttf",
	"arial.ttf",
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"Helvetica.ttf",
}

// Regular returns the embedded Go Regular font.
func Regular() *truetype.Font {
	return mustParse(goregular.TTF)
}

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic("fonts: embedded font is corrupt: " + err.Error())
	}
	return f
}
