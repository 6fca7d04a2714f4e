package places

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"trip-quote-agent/internal/textnorm"
)

// ErrNoPlace is returned when an utterance carries no usable place mention.
var ErrNoPlace = errors.New("places: no place mention found")

// UnrecognizedError reports a place phrase that resolved to nothing.
type UnrecognizedError struct {
	Text string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("places: unrecognized place %q", e.Text)
}

// Pair is the result of place extraction. Either side may be empty when only
// one place was mentioned. Unrecognized holds the normalized text of a
// mentioned side that resolved to nothing while the other side resolved.
type Pair struct {
	Origin       string
	Destination  string
	Strategy     string
	Unrecognized string
}

type token struct {
	raw   string
	lower string
}

type hit struct {
	code  string
	start int
	end   int
	kind  matchKind
	dist  int
}

// ExtractPair finds origin and destination in one utterance. Strategies, in
// order: phrase patterns, two bare codes, one code plus one alias, two alias
// matches, and finally single-side phrase patterns. A phrase pattern with one
// unknown side returns the resolved side with Pair.Unrecognized set. Every
// unknown phrase is passed to the recorder.
func (r *Resolver) ExtractPair(text string) (Pair, error) {
	toks := tokenize(text)
	if len(toks) == 0 {
		return Pair{}, ErrNoPlace
	}
	norm := joinLower(toks)

	var misses []string
	miss := func(phrase string) {
		if phrase == "" {
			return
		}
		for _, m := range misses {
			if m == phrase {
				return
			}
		}
		misses = append(misses, phrase)
	}
	report := func() {
		for _, m := range misses {
			r.recorder.RecordUnrecognized(m)
		}
	}

	var partial *Pair
	for _, p := range r.pairPatterns {
		sm := p.Regexp.FindStringSubmatch(norm)
		if sm == nil {
			continue
		}
		origin, okO, oText := r.resolvePhrase(sm[p.OriginGroup], true)
		dest, okD, dText := r.resolvePhrase(sm[p.DestGroup], false)
		if okO && okD {
			return Pair{Origin: origin, Destination: dest, Strategy: p.Name}, nil
		}
		if !okO {
			miss(oText)
		}
		if !okD {
			miss(dText)
		}
		if partial == nil {
			switch {
			case okO && dText != "":
				partial = &Pair{Origin: origin, Strategy: p.Name, Unrecognized: dText}
			case okD && oText != "":
				partial = &Pair{Destination: dest, Strategy: p.Name, Unrecognized: oText}
			}
		}
	}
	if partial != nil {
		report()
		return *partial, nil
	}

	codes := r.codeHits(toks)
	if len(codes) >= 2 {
		return Pair{Origin: codes[0].code, Destination: codes[1].code, Strategy: "bare_codes"}, nil
	}

	exclude := make(map[int]bool, len(codes))
	for _, c := range codes {
		exclude[c.start] = true
	}
	aliases := r.scanAliases(toks, exclude)

	if len(codes) == 1 {
		for _, a := range aliases {
			if a.code == codes[0].code {
				continue
			}
			first, second := codes[0], a
			if second.start < first.start {
				first, second = second, first
			}
			return Pair{Origin: first.code, Destination: second.code, Strategy: "code_and_alias"}, nil
		}
	}

	if pair, ok := pickAliasPair(aliases); ok {
		return pair, nil
	}

	for _, p := range r.singlePatterns {
		sm := p.Regexp.FindStringSubmatch(norm)
		if sm == nil {
			continue
		}
		isOrigin := p.OriginGroup > 0
		group := p.DestGroup
		if isOrigin {
			group = p.OriginGroup
		}
		code, ok, phrase := r.resolvePhrase(sm[group], false)
		if !ok {
			miss(phrase)
			continue
		}
		report()
		pair := Pair{Strategy: p.Name}
		if len(misses) > 0 {
			pair.Unrecognized = misses[0]
		}
		if isOrigin {
			pair.Origin = code
		} else {
			pair.Destination = code
		}
		return pair, nil
	}

	if len(misses) > 0 {
		report()
		return Pair{}, &UnrecognizedError{Text: misses[0]}
	}
	return Pair{}, ErrNoPlace
}

// resolvePhrase cuts a captured phrase into segments at trailing-context
// words (dates, passengers, connectors) and resolves one whole segment: the
// last one when tail is set (an origin sits right before its connector),
// otherwise the first. The segment is never shortened further, so a word
// inside an unknown city name cannot match on its own. The cleaned segment
// is returned for error reporting.
func (r *Resolver) resolvePhrase(phrase string, tail bool) (string, bool, string) {
	words := pickSegment(strings.Fields(phrase), tail)
	if len(words) == 0 {
		return "", false, ""
	}
	cleaned := strings.Join(words, " ")
	code, ok := r.match(cleaned)
	return code, ok, cleaned
}

func pickSegment(words []string, tail bool) []string {
	var segments [][]string
	var cur []string
	for _, w := range words {
		if _, stop := trailStops[w]; stop || hasDigit(w) {
			segments = append(segments, cur)
			cur = nil
			continue
		}
		cur = append(cur, w)
	}
	segments = append(segments, cur)

	order := make([]int, 0, len(segments))
	for i := range segments {
		if tail {
			order = append(order, len(segments)-1-i)
		} else {
			order = append(order, i)
		}
	}
	for _, i := range order {
		if seg := stripStopWords(segments[i]); len(seg) > 0 {
			return seg
		}
	}
	return nil
}

func stripStopWords(words []string) []string {
	for len(words) > 0 && IsStopWord(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && IsStopWord(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return words
}

// codeHits returns bare three-letter tokens naming a known airport, in order.
// Lower-case tokens that double as Portuguese words are skipped.
func (r *Resolver) codeHits(toks []token) []hit {
	var out []hit
	seen := map[string]bool{}
	for i, t := range toks {
		if !isLetters(t.raw, 3) {
			continue
		}
		code := strings.ToUpper(t.raw)
		if !r.IsKnown(code) || seen[code] {
			continue
		}
		if _, lookalike := codeLookalikes[t.lower]; t.raw != code && (lookalike || IsStopWord(t.lower)) {
			continue
		}
		seen[code] = true
		out = append(out, hit{code: code, start: i, end: i + 1, kind: matchExact})
	}
	return out
}

// scanAliases matches every 1..3 word window against the lexicon and keeps a
// non-overlapping selection ordered by position.
func (r *Resolver) scanAliases(toks []token, exclude map[int]bool) []hit {
	var cands []hit
	for n := 3; n >= 1; n-- {
		for i := 0; i+n <= len(toks); i++ {
			if windowExcluded(exclude, i, i+n) {
				continue
			}
			first, last := toks[i].lower, toks[i+n-1].lower
			if IsStopWord(first) || IsStopWord(last) || hasDigit(first) || hasDigit(last) {
				continue
			}
			words := make([]string, 0, n)
			for _, t := range toks[i : i+n] {
				words = append(words, t.lower)
			}
			phrase := strings.Join(words, " ")
			m, ok := r.lookup(phrase, scanThreshold)
			if !ok {
				continue
			}
			cands = append(cands, hit{code: m.code, start: i, end: i + n, kind: m.kind, dist: m.distance})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		x, y := cands[a], cands[b]
		if x.kind != y.kind {
			return x.kind > y.kind
		}
		if lx, ly := x.end-x.start, y.end-y.start; lx != ly {
			return lx > ly
		}
		if x.dist != y.dist {
			return x.dist < y.dist
		}
		return x.start < y.start
	})
	used := map[int]bool{}
	var chosen []hit
	for _, c := range cands {
		if windowExcluded(used, c.start, c.end) {
			continue
		}
		for i := c.start; i < c.end; i++ {
			used[i] = true
		}
		chosen = append(chosen, c)
	}
	sort.Slice(chosen, func(a, b int) bool { return chosen[a].start < chosen[b].start })
	return chosen
}

// pickAliasPair prefers two exact matches over a mixed exact/fuzzy pair.
func pickAliasPair(hits []hit) (Pair, bool) {
	var exact []hit
	for _, h := range hits {
		if h.kind == matchExact {
			exact = append(exact, h)
		}
	}
	for _, set := range [][]hit{exact, hits} {
		if a, b, ok := firstDistinct(set); ok {
			return Pair{Origin: a.code, Destination: b.code, Strategy: "alias_scan"}, true
		}
	}
	return Pair{}, false
}

func firstDistinct(hits []hit) (hit, hit, bool) {
	if len(hits) == 0 {
		return hit{}, hit{}, false
	}
	for _, h := range hits[1:] {
		if h.code != hits[0].code {
			return hits[0], h, true
		}
	}
	return hit{}, hit{}, false
}

func windowExcluded(set map[int]bool, start, end int) bool {
	for i := start; i < end; i++ {
		if set[i] {
			return true
		}
	}
	return false
}

func tokenize(text string) []token {
	fields := strings.FieldsFunc(textnorm.StripAccents(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	out := make([]token, 0, len(fields))
	for _, f := range fields {
		out = append(out, token{raw: f, lower: strings.ToLower(f)})
	}
	return out
}

func joinLower(toks []token) string {
	words := make([]string, 0, len(toks))
	for _, t := range toks {
		words = append(words, t.lower)
	}
	return strings.Join(words, " ")
}
