// Package hyphen provides pluggable hyphenation strategies for the line
// breaker.
//
// A strategy maps a word to the rune offsets at which it may be broken; it
// never decides whether a break is taken. Patterns implements Liang's
// algorithm over TeX-style patterns supplied by the caller, Dictionary picks
// a strategy by language with locale inheritance.
package hyphen

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	textlang "github.com/benoitkugler/textlayout/language"
	"golang.org/x/text/language"
)

// Hyphenator returns the legal interior break offsets of word, counted in
// runes and sorted ascending. An empty result means the word cannot be split.
type Hyphenator interface {
	Hyphenate(word string, locale language.Tag) []int
}

// None never splits words.
type None struct{}

// Hyphenate implements Hyphenator.
func (None) Hyphenate(string, language.Tag) []int { return nil }

// Patterns is a Liang hyphenator built from TeX patterns such as "hy3ph".
type Patterns struct {
	// LeftMin and RightMin are the minimal number of runes kept before and
	// after a break.
	LeftMin, RightMin int

	patterns   map[string][]int
	maxLen     int
	exceptions map[string][]int

	mu    sync.Mutex
	cache map[string][]int
}

// NewPatterns parses patterns and optional exceptions. Exceptions are words
// with explicit hyphens, for example "ta-ble".
func NewPatterns(patterns []string, exceptions ...string) (*Patterns, error) {
	p := &Patterns{
		LeftMin:    2,
		RightMin:   3,
		patterns:   make(map[string][]int, len(patterns)),
		exceptions: make(map[string][]int, len(exceptions)),
		cache:      map[string][]int{},
	}
	for _, pat := range patterns {
		letters, values, err := parsePattern(pat)
		if err != nil {
			return nil, err
		}
		p.patterns[letters] = values
		if n := len([]rune(letters)); n > p.maxLen {
			p.maxLen = n
		}
	}
	for _, exc := range exceptions {
		word := strings.ReplaceAll(exc, "-", "")
		var offsets []int
		pos := 0
		for _, r := range exc {
			if r == '-' {
				offsets = append(offsets, pos)
				continue
			}
			pos++
		}
		p.exceptions[strings.ToLower(word)] = offsets
	}
	return p, nil
}

// ReadPatterns reads a TeX-style pattern file: whitespace separated
// patterns, "%" starts a comment, and words containing "-" but no digits are
// exceptions.
func ReadPatterns(r io.Reader) (*Patterns, error) {
	var patterns, exceptions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "%")
		for _, field := range strings.Fields(line) {
			if strings.Contains(field, "-") && !strings.ContainsAny(field, "0123456789") {
				exceptions = append(exceptions, field)
				continue
			}
			patterns = append(patterns, field)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("hyphen: read patterns: %w", err)
	}
	return NewPatterns(patterns, exceptions...)
}

func parsePattern(pat string) (string, []int, error) {
	var letters []rune
	values := []int{0}
	for _, r := range strings.TrimSpace(pat) {
		if r >= '0' && r <= '9' {
			values[len(values)-1] = int(r - '0')
			continue
		}
		if unicode.IsSpace(r) {
			return "", nil, fmt.Errorf("hyphen: invalid pattern %q", pat)
		}
		letters = append(letters, unicode.ToLower(r))
		values = append(values, 0)
	}
	if len(letters) == 0 {
		return "", nil, fmt.Errorf("hyphen: empty pattern %q", pat)
	}
	return string(letters), values, nil
}

// Hyphenate implements Hyphenator. The locale is ignored; use Dictionary to
// dispatch between languages.
func (p *Patterns) Hyphenate(word string, _ language.Tag) []int {
	lower := strings.ToLower(word)
	if offsets, ok := p.exceptions[lower]; ok {
		return p.clamp(offsets, len([]rune(lower)))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if offsets, ok := p.cache[lower]; ok {
		return offsets
	}

	dotted := []rune("." + lower + ".")
	points := make([]int, len(dotted)+1)
	for i := range dotted {
		for j := i + 1; j <= len(dotted) && j-i <= p.maxLen; j++ {
			values, ok := p.patterns[string(dotted[i:j])]
			if !ok {
				continue
			}
			for k, v := range values {
				if v > points[i+k] {
					points[i+k] = v
				}
			}
		}
	}

	n := len(dotted) - 2
	var offsets []int
	for j := 1; j < n; j++ {
		// points[j+1] 位于 dotted[j] 与 dotted[j+1] 之间，即单词第 j 个字符之前
		if points[j+1]%2 == 1 {
			offsets = append(offsets, j)
		}
	}
	offsets = p.clamp(offsets, n)
	p.cache[lower] = offsets
	return offsets
}

func (p *Patterns) clamp(offsets []int, n int) []int {
	var out []int
	for _, o := range offsets {
		if o >= p.LeftMin && o <= n-p.RightMin {
			out = append(out, o)
		}
	}
	return out
}

// Dictionary dispatches to a hyphenator by locale. Lookups walk the
// truncation inheritance of the tag, so "de-CH-1996" tries "de-ch-1996",
// "de-ch" and then "de".
type Dictionary struct {
	byLang   map[textlang.Language]Hyphenator
	Fallback Hyphenator
}

// NewDictionary creates an empty dictionary that falls back to None.
func NewDictionary() *Dictionary {
	return &Dictionary{byLang: map[textlang.Language]Hyphenator{}, Fallback: None{}}
}

func canonical(tag language.Tag) textlang.Language {
	return textlang.NewLanguage(tag.String())
}

// Add registers h for tag. Registering a region ("de-CH") overrides the
// base language for that region only.
func (d *Dictionary) Add(tag language.Tag, h Hyphenator) {
	d.byLang[canonical(tag)] = h
}

// Languages lists the registered languages in canonical form.
func (d *Dictionary) Languages() []string {
	out := make([]string, 0, len(d.byLang))
	for lang := range d.byLang {
		out = append(out, string(lang))
	}
	sort.Strings(out)
	return out
}

// Lookup returns the hyphenator registered for the closest ancestor of locale.
func (d *Dictionary) Lookup(locale language.Tag) (Hyphenator, bool) {
	for _, lang := range canonical(locale).SimpleInheritance() {
		if h, ok := d.byLang[lang]; ok {
			return h, true
		}
	}
	return nil, false
}

// Hyphenate implements Hyphenator.
func (d *Dictionary) Hyphenate(word string, locale language.Tag) []int {
	if h, ok := d.Lookup(locale); ok {
		return h.Hyphenate(word, locale)
	}
	if d.Fallback == nil {
		return nil
	}
	return d.Fallback.Hyphenate(word, locale)
}
