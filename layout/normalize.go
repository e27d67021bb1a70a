package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize canonicalizes line endings to LF, applies NFC composition and
// drops C0/C1 control characters other than LF.
func Normalize(text string) string {
	text = lineEndings.Replace(text)
	text = norm.NFC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, text)
}
