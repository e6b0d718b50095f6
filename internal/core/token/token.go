// Package token splits normalized text into candidate keyword tokens.
// Input is expected to be textnorm output: lowercase ASCII words separated
// by single spaces. Tokens shorter than the minimum length and tokens in
// the stopword set are filtered out
package token

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed stopwords.txt
var embeddedStopwords string

// DefaultMinLen is the minimum token length kept by Default filters
const DefaultMinLen = 2

// Filter holds the tokenizer configuration
type Filter struct {
	minLen int
	stop   map[string]struct{}
}

// New builds a Filter from an explicit stopword list
// minLen <= 0 falls back to DefaultMinLen
func New(minLen int, stopwords []string) *Filter {
	if minLen <= 0 {
		minLen = DefaultMinLen
	}
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Filter{minLen: minLen, stop: stop}
}

// Default returns a Filter with the embedded English stopword set
func Default(minLen int) *Filter {
	return New(minLen, parseStopwords(strings.NewReader(embeddedStopwords)))
}

// FromFile returns a Filter with stopwords loaded from path
// one word per line, blank lines and '#' comments ignored
func FromFile(minLen int, path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("token: open stopwords %q: %w", path, err)
	}
	defer f.Close()
	return New(minLen, parseStopwords(f)), nil
}

func parseStopwords(r interface{ Read([]byte) (int, error) }) []string {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Split tokenizes normalized text, keeping order and duplicates
func (f *Filter) Split(norm string) []string {
	if norm == "" {
		return nil
	}
	fields := strings.Fields(norm)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if f.Keep(tok) {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Keep reports whether a single token passes the length and stopword filters
func (f *Filter) Keep(tok string) bool {
	if len(tok) < f.minLen {
		return false
	}
	_, stopped := f.stop[tok]
	return !stopped
}

// MinLen returns the configured minimum token length
func (f *Filter) MinLen() int { return f.minLen }

// StopCount returns the stopword set size, handy for startup logs
func (f *Filter) StopCount() int { return len(f.stop) }
