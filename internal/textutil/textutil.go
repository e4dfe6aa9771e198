// Package textutil provides text cleanup and fuzzy matching helpers for
// noisy OCR and user-typed input.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes to NFKD and drops combining marks, so "café" → "cafe"
// and compatibility variants collapse to their plain forms.
var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

var curlyQuotes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", "'",
	"”", "'",
)

// Clean normalizes raw OCR or typed text into a lowercase, single-spaced
// form suitable for pattern matching. It strips diacritics, replaces
// characters outside a small allow-list with spaces, and repairs common
// OCR glyph confusions (0/O and 1 read in place of letters, rn→m, vv→w).
// Clean is total: any input yields a string, empty input yields "".
func Clean(s string) string {
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	s = curlyQuotes.Replace(s)
	s = allowListed(s)
	s = repairGlyphs(s)
	s = strings.ReplaceAll(s, "rn", "m")
	s = strings.ReplaceAll(s, "vv", "w")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// allowListed keeps A-Za-z0-9 @ : - / , . and whitespace; everything else
// becomes a space.
func allowListed(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '@' || r == ':' || r == '-' || r == '/' || r == ',' || r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// repairGlyphs fixes digit glyphs OCR commonly reads in place of letters:
// a 0/O immediately before a letter becomes "o", a 1 becomes "l".
func repairGlyphs(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs)-1; i++ {
		next := rs[i+1]
		if !unicode.IsLetter(next) || next > unicode.MaxASCII {
			continue
		}
		switch rs[i] {
		case '0', 'O':
			rs[i] = 'o'
		case '1':
			rs[i] = 'l'
		}
	}
	return string(rs)
}

// Levenshtein computes the classic single-character insert/delete/substitute
// edit distance. Case-sensitive on whatever casing is passed in.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 0; i < m; i++ {
		cur[0] = i + 1
		for j := 0; j < n; j++ {
			cost := 1
			if ra[i] == rb[j] {
				cost = 0
			}
			cur[j+1] = min3(cur[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		copy(prev, cur)
	}
	return prev[n]
}

// Similarity scores two strings in [0,1] as 1 - dist/max(len). An empty
// operand always scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	dist := Levenshtein(a, b)
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(dist)/float64(longest)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
