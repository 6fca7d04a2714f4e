// Package places resolves free-text place mentions to three-letter airport
// codes.
package places

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"trip-quote-agent/internal/textnorm"
)

type matchKind int

const (
	matchNone matchKind = iota
	matchFuzzy
	matchExact
)

type match struct {
	code     string
	kind     matchKind
	distance int
}

func (m match) better(o match) bool {
	if m.kind != o.kind {
		return m.kind > o.kind
	}
	return m.distance < o.distance
}

type entry struct {
	code  string
	metro bool
	terms []string
}

// UnrecognizedRecorder receives normalized place text that matched nothing.
type UnrecognizedRecorder interface {
	RecordUnrecognized(text string)
}

// Resolver matches place mentions against an alias lexicon. It is immutable
// after construction and safe for concurrent use.
type Resolver struct {
	entries        []entry
	known          map[string]struct{}
	official       map[string]struct{}
	pairPatterns   []PairPattern
	singlePatterns []PairPattern
	recorder       UnrecognizedRecorder
}

type Option func(*Resolver)

func WithLexicon(lexicon []AirportAlias) Option {
	return func(r *Resolver) {
		r.setLexicon(lexicon)
	}
}

func WithOfficialCodes(codes []string) Option {
	return func(r *Resolver) {
		r.official = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			r.official[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
		}
	}
}

func WithPairPatterns(patterns []PairPattern) Option {
	return func(r *Resolver) {
		r.pairPatterns = patterns
	}
}

func WithRecorder(rec UnrecognizedRecorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// NewResolver builds a Resolver over DefaultLexicon and DefaultOfficialCodes
// unless overridden by options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		pairPatterns:   DefaultPairPatterns,
		singlePatterns: DefaultSinglePatterns,
		recorder:       nopRecorder{},
	}
	r.setLexicon(DefaultLexicon)
	WithOfficialCodes(DefaultOfficialCodes)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) setLexicon(lexicon []AirportAlias) {
	r.entries = make([]entry, 0, len(lexicon))
	r.known = make(map[string]struct{}, len(lexicon))
	for _, a := range lexicon {
		e := entry{code: strings.ToUpper(a.Code), metro: a.Metro}
		for _, term := range append([]string{a.City}, a.Aliases...) {
			if n := textnorm.Normalize(term); n != "" {
				e.terms = append(e.terms, n)
			}
		}
		r.entries = append(r.entries, e)
		r.known[e.code] = struct{}{}
	}
}

// IsOfficial reports whether code belongs to the official code set.
func (r *Resolver) IsOfficial(code string) bool {
	_, ok := r.official[strings.ToUpper(code)]
	return ok
}

// IsKnown reports whether code appears in the alias lexicon.
func (r *Resolver) IsKnown(code string) bool {
	_, ok := r.known[strings.ToUpper(code)]
	return ok
}

// Resolve maps a place mention to an airport code. A bare three-letter input
// is returned upper-cased without consulting the lexicon; four letters are
// rejected as ICAO-like.
func (r *Resolver) Resolve(text string) (string, bool) {
	raw := strings.TrimSpace(text)
	if code, ok := r.match(raw); ok {
		return code, true
	}
	if norm := textnorm.Normalize(raw); norm != "" && !isLetters(raw, 4) {
		r.recorder.RecordUnrecognized(norm)
	}
	return "", false
}

// match applies the resolution rules to a whole mention without recording
// misses.
func (r *Resolver) match(raw string) (string, bool) {
	if isLetters(raw, 3) {
		return strings.ToUpper(raw), true
	}
	if isLetters(raw, 4) {
		return "", false
	}
	norm := textnorm.Normalize(raw)
	if norm == "" {
		return "", false
	}
	if m, ok := r.lookup(norm, fuzzyThreshold); ok {
		return m.code, true
	}
	return "", false
}

// lookup runs the two-pass match: specific airports first, metro codes only
// when no specific airport matched at all. A nil threshold allows exact
// matches only.
func (r *Resolver) lookup(norm string, threshold func(termLen int) int) (match, bool) {
	for _, metroPass := range []bool{false, true} {
		best := match{}
		for _, e := range r.entries {
			if e.metro != metroPass {
				continue
			}
			for _, term := range e.terms {
				m := compare(norm, term, threshold)
				if m.kind == matchNone {
					continue
				}
				m.code = e.code
				if best.kind == matchNone || m.better(best) {
					best = m
				}
			}
		}
		if best.kind != matchNone {
			return best, true
		}
	}
	return match{}, false
}

func compare(text, term string, threshold func(int) int) match {
	if text == term {
		return match{kind: matchExact}
	}
	if threshold == nil {
		return match{}
	}
	d := levenshtein.ComputeDistance(text, term)
	if d <= threshold(utf8.RuneCountInString(term)) {
		return match{kind: matchFuzzy, distance: d}
	}
	return match{}
}

func fuzzyThreshold(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}

// scanThreshold is the stricter bound used when scanning a whole utterance,
// where everyday words sit close to short city names.
func scanThreshold(n int) int {
	switch {
	case n < 5:
		return 0
	case n < 10:
		return 1
	default:
		return 2
	}
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

type nopRecorder struct{}

func (nopRecorder) RecordUnrecognized(string) {}
