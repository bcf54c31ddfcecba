package report

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// asciiReplacements maps runes that commonly appear in user input or labels to
// ASCII equivalents before the Windows-1252 check.
var asciiReplacements = map[rune]string{
	'‐': "-", // hyphen
	'‑': "-", // non-breaking hyphen
	'‒': "-", // figure dash
	'–': "-", // en dash
	'—': "-", // em dash
	'―': "-", // horizontal bar
	'−': "-", // minus sign
	'‘': "'",
	'’': "'",
	'‚': "'",
	'‛': "'",
	'′': "'",
	'“': "\"",
	'”': "\"",
	'„': "\"",
	'‟': "\"",
	'″': "\"",
	'«': "\"",
	'»': "\"",
	'•': "-", // bullet
	'‣': "-",
	'⁃': "-",
	'·': "-",
	'…': "...",
	'≥': ">=",
	'≤': "<=",
	'±': "+/-",
	'≈': "~",
	'×': "x",
	'\u00a0': " ", // no-break space
	'\u2007': " ",
	'\u202f': " ",
	'\u2009': " ",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
	'™': "(TM)",
}

func init() {
	for i := rune(0); i <= 9; i++ {
		digit := string('0' + i)
		asciiReplacements['₀'+i] = digit // subscript
		if i == 0 || i >= 4 {
			asciiReplacements['⁰'+i] = digit // superscript
		}
	}
	// superscript one to three live in Latin-1
	asciiReplacements['¹'] = "1"
	asciiReplacements['²'] = "2"
	asciiReplacements['³'] = "3"
}

// SanitizeText rewrites s so every rune is representable in Windows-1252,
// the encoding of the PDF core fonts. Known punctuation, currency symbols
// and sub/superscript digits become ASCII; anything else that cannot be
// encoded becomes '?'. It never fails.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if rep, ok := asciiReplacements[r]; ok {
			b.WriteString(rep)
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
