// Package search finds and marks a term in rendered report text.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Options selects how the term is matched.
type Options struct {
	// Regex treats the term as a regular expression, matched case-insensitively.
	Regex bool
}

// Match is one hit. Start and End are byte offsets into the searched text;
// Line and Col are 1-based, Col counting runes.
type Match struct {
	Line  int    `json:"line" yaml:"line"`
	Col   int    `json:"col" yaml:"col"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// Find returns every non-overlapping match of term in text, in order. A
// blank term matches nothing. Literal terms are compared after NFKC
// normalisation and case folding, so "ＣＯＵＮＴ" finds "count".
func Find(text, term string, opt Options) ([]Match, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	var find func(line string) [][2]int
	if opt.Regex {
		re, err := regexp.Compile("(?i)" + term)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", term, err)
		}
		find = func(line string) [][2]int {
			var out [][2]int
			for _, loc := range re.FindAllStringIndex(line, -1) {
				if loc[1] > loc[0] {
					out = append(out, [2]int{loc[0], loc[1]})
				}
			}
			return out
		}
	} else {
		needle := fold(term)
		if needle == "" {
			return nil, nil
		}
		find = func(line string) [][2]int { return findFolded(line, needle) }
	}

	var out []Match
	offset := 0
	for i, line := range strings.Split(text, "\n") {
		for _, loc := range find(line) {
			out = append(out, Match{
				Line:  i + 1,
				Col:   utf8.RuneCountInString(line[:loc[0]]) + 1,
				Start: offset + loc[0],
				End:   offset + loc[1],
				Text:  line[loc[0]:loc[1]],
			})
		}
		offset += len(line) + 1
	}
	return out, nil
}

func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// findFolded folds line rune by rune, keeping a map back to source offsets,
// and searches the folded form for needle.
func findFolded(line, needle string) [][2]int {
	var folded strings.Builder
	// src[i] is the source offset of the rune that produced folded byte i
	src := make([]int, 0, len(line)+1)
	for i, r := range line {
		f := fold(string(r))
		folded.WriteString(f)
		for j := 0; j < len(f); j++ {
			src = append(src, i)
		}
	}
	src = append(src, len(line))
	hay := folded.String()

	var out [][2]int
	for from := 0; from <= len(hay)-len(needle); {
		idx := strings.Index(hay[from:], needle)
		if idx < 0 {
			break
		}
		s, e := from+idx, from+idx+len(needle)
		start := src[s]
		// extend to the end of the source rune that produced the last byte
		end := src[e-1]
		_, size := utf8.DecodeRuneInString(line[end:])
		end += size
		if len(out) == 0 || start >= out[len(out)-1][1] {
			out = append(out, [2]int{start, end})
		}
		from = e
	}
	return out
}

// Marker wraps highlighted text.
type Marker struct {
	Open, Close string
}

var (
	// ANSIMarker paints black on yellow in a terminal.
	ANSIMarker = Marker{Open: "\x1b[30;43m", Close: "\x1b[0m"}
	// BracketMarker is for plain-text output.
	BracketMarker = Marker{Open: "[[", Close: "]]"}
)

// Highlight returns text with every match wrapped in m. Matches that overlap
// an earlier one or fall outside text are skipped.
func Highlight(text string, matches []Match, m Marker) string {
	if len(matches) == 0 {
		return text
	}
	sorted := append([]Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	var b strings.Builder
	last := 0
	for _, mt := range sorted {
		if mt.Start < last || mt.End > len(text) || mt.Start >= mt.End {
			continue
		}
		b.WriteString(text[last:mt.Start])
		b.WriteString(m.Open)
		b.WriteString(text[mt.Start:mt.End])
		b.WriteString(m.Close)
		last = mt.End
	}
	b.WriteString(text[last:])
	return b.String()
}
