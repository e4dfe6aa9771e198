package ocr

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var salvageAllowedRE = regexp.MustCompile(`[^a-z0-9@:\-/\s,.]`)

// Salvage recovers whatever legible text is embedded in the upload bytes.
// This is the floor of the fallback ladder: when the provider is down or
// the image is unreadable, screenshots and text-heavy files often still
// carry recognizable runs of characters the extractor can work with.
func Salvage(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r != utf8.RuneError {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
		raw = raw[size:]
	}

	s := strings.ToLower(b.String())
	s = salvageAllowedRE.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
