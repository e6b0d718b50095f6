// Package textnorm provides the deterministic text normalizer used by the mapper
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 Drop everything outside ASCII letters digits and whitespace
// 7 Collapse whitespace runs including line breaks to single spaces and trim
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline described above
// the result contains only lowercase ASCII letters digits and single spaces
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6-7 ascii filter plus whitespace collapse in one walk
	return asciiFold(ns)
}

// asciiFold keeps lowercase ASCII letters and digits, maps every whitespace
// run to a single space, drops all other runes, and trims the edges
func asciiFold(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if inWS && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inWS = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			// case folding upstream makes this rare, but stay safe
			if inWS && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inWS = false
			b.WriteRune(r + ('a' - 'A'))
		case unicode.IsSpace(r):
			inWS = true
		default:
			// symbols, punctuation, and non-latin letters vanish
		}
	}
	return b.String()
}
