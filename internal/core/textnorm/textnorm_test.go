package textnorm

import (
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "hello world",
			out:  "hello world",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "case fold",
			in:   "FiRe RiSk",
			out:  "fire risk",
		},
		{
			name: "remove zero-widths",
			in:   "f​i‍re", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "fire",
		},
		{
			name: "remove combining marks",
			in:   "café", // "café" using combining acute accent
			out:  "cafe",
		},
		{
			name: "width fold fullwidth",
			in:   "ＦＩＲＥ bot", // fullwidth letters
			out:  "fire bot",
		},
		{
			name: "nfkc ligature",
			in:   "oﬃce", // ffi ligature
			out:  "office",
		},
		{
			name: "symbols dropped in place",
			in:   "re-entry isn't #1",
			out:  "reentry isnt 1",
		},
		{
			name: "line breaks become spaces",
			in:   "fire\r\nrisk\nnow",
			out:  "fire risk now",
		},
		{
			name: "collapse whitespace",
			in:   "a\t\tb\nc   d",
			out:  "a b c d",
		},
		{
			name: "non latin letters vanish",
			in:   "fire 火事 risk",
			out:  "fire risk",
		},
		{
			name: "edges trimmed",
			in:   "  \t spark plume  \n ",
			out:  "spark plume",
		},
		{
			name: "symbols only yields empty",
			in:   "!!! ---",
			out:  "",
		},
		{
			name: "idempotent",
			in:   n.Normalize("Ｆ!RE\t\tW@tch  "),
			out:  "fre wtch",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Idempotence check: normalize again should be identical
			got2 := n.Normalize(got)
			if got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

// Spot-check the ascii filter in isolation.
func TestAsciiFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" \t a \n b   c \r\n ", "a b c"},
		{"a - b", "a b"},
		{"x2y", "x2y"},
		{"", ""},
		{"...", ""},
	}
	for i, c := range cases {
		if got := asciiFold(c.in); got != c.want {
			t.Fatalf("case %d: asciiFold(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}
