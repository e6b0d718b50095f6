// Command buzzwatch-wordbag validates a dictionary CSV and prints its shape
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"buzzwatch/internal/core/wordbag"
	"buzzwatch/internal/platform/net/http/bind"
)

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// checkRows walks the raw CSV so every bad row gets reported with its line
// number; the loader alone stops at the first
func checkRows(path string, minLen int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "category") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "keyword") {
		return nil, fmt.Errorf("bad header %v (want category,keyword)", header)
	}

	v := bind.Get().Validator
	kwTag := fmt.Sprintf("required,min=%d", minLen)

	var problems []string
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		cat := strings.ToLower(strings.TrimSpace(rec[0]))
		kw := strings.ToLower(strings.TrimSpace(rec[1]))
		if err := v.Var(cat, "required"); err != nil {
			_, msg := bind.ValidationFieldAndMessage(err)
			problems = append(problems, fmt.Sprintf("line %d: category %s", line, strings.TrimSpace(msg)))
		}
		if err := v.Var(kw, kwTag); err != nil {
			_, msg := bind.ValidationFieldAndMessage(err)
			problems = append(problems, fmt.Sprintf("line %d: keyword %q %s", line, kw, strings.TrimSpace(msg)))
		}
	}
	return problems, nil
}

func main() {
	var (
		fBag    = flag.String("bag", "", "wordbag CSV path (empty = embedded default)")
		fMinLen = flag.Int("min-len", 2, "minimum keyword length after normalization")
		fLookup = flag.String("keyword", "", "print the categories holding one keyword and exit")
		fQuiet  = flag.Bool("q", false, "suppress the per-category listing")
	)
	flag.Parse()

	source := "embedded"
	var bag *wordbag.Bag
	var err error
	if *fBag != "" {
		source = *fBag
		problems, cerr := checkRows(*fBag, *fMinLen)
		must(cerr)
		if len(problems) > 0 {
			for _, p := range problems {
				_, _ = fmt.Fprintln(os.Stderr, p)
			}
			_, _ = fmt.Fprintf(os.Stderr, "%s: %d invalid rows\n", *fBag, len(problems))
			os.Exit(1)
		}
		bag, err = wordbag.LoadFile(*fBag)
	} else {
		bag, err = wordbag.Load()
	}
	must(err)

	if *fLookup != "" {
		kw := strings.ToLower(strings.TrimSpace(*fLookup))
		cats := bag.CategoriesFor(kw)
		if len(cats) == 0 {
			_, _ = fmt.Fprintf(os.Stderr, "keyword %q not in the bag\n", kw)
			os.Exit(1)
		}
		fmt.Printf("%s: %s\n", kw, strings.Join(cats, ", "))
		return
	}

	fmt.Printf("source: %s\n", source)
	fmt.Printf("categories: %d\n", len(bag.Categories()))
	fmt.Printf("pairs: %d\n", bag.Pairs())
	if !*fQuiet {
		fmt.Println()
		for _, cat := range bag.Categories() {
			fmt.Printf("  %-20s %d\n", cat, len(bag.Keywords(cat)))
		}
	}
}
