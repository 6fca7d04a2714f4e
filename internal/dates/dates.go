// Package dates extracts travel dates from Portuguese free text.
package dates

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/textnorm"
)

// WindowDays is the inclusive length of the bookable window starting today.
const WindowDays = 360

// ErrNoDate is returned when the text carries no recognizable date.
var ErrNoDate = errors.New("dates: no date found")

// Range is the result of an extraction. Return is the zero Date on one-way trips.
type Range struct {
	Outbound civil.Date
	Return   civil.Date
	IsOneWay bool
}

var months = map[string]time.Month{
	"janeiro": time.January, "jan": time.January,
	"fevereiro": time.February, "fev": time.February,
	"marco": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"maio": time.May, "mai": time.May,
	"junho": time.June, "jun": time.June,
	"julho": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"setembro": time.September, "set": time.September,
	"outubro": time.October, "out": time.October,
	"novembro": time.November, "nov": time.November,
	"dezembro": time.December, "dez": time.December,
}

var (
	isoRe     = regexp.MustCompile(`\b(\d{4})[-/ ](\d{1,2})[-/ ](\d{1,2})\b`)
	numericRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}|\d{2}))?\b`)
	namedRe   = regexp.MustCompile(`\b(\d{1,2})(?:º|o)?(?:\s+de)?\s+(janeiro|fevereiro|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro|jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez)\b(?:\s+(?:de\s+)?(\d{4})\b)?`)
	relInRe   = regexp.MustCompile(`\bdaqui a (` + textnorm.CountPattern + `) dias?\b`)
	relWordRe = regexp.MustCompile(`\b(depois de amanha|amanha|hoje|semana que vem|proxima semana)\b`)
)

var relativeOffsets = map[string]int{
	"hoje":             0,
	"amanha":           1,
	"depois de amanha": 2,
	"semana que vem":   7,
	"proxima semana":   7,
}

// Extractor recognizes ISO dates, dd/mm[/yy] dates, "15 de março" phrases and
// a few relative expressions. Today is read once per call from the clock in
// the configured location.
type Extractor struct {
	now func() time.Time
	loc *time.Location
}

type Option func(*Extractor)

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current civil date in the extractor's location.
func (e *Extractor) Today() civil.Date {
	return civil.DateOf(e.now().In(e.loc))
}

// InWindow reports whether d lies within today..today+WindowDays inclusive.
func InWindow(today, d civil.Date) bool {
	return !d.Before(today) && !d.After(today.AddDays(WindowDays))
}

// Extract returns the first two dates mentioned in text as outbound and
// return. A single mention makes a one-way range. Any window or ordering
// violation rejects the whole extraction.
func (e *Extractor) Extract(text string) (Range, error) {
	today := e.Today()
	found := scan(textnorm.Fold(text), today)
	if len(found) == 0 {
		return Range{}, ErrNoDate
	}

	r := Range{Outbound: found[0].date, IsOneWay: true}
	if !InWindow(today, r.Outbound) {
		return Range{}, domain.NewValidationError(domain.CodeDateOutOfWindow,
			"outbound %s outside %s..%s", r.Outbound, today, today.AddDays(WindowDays))
	}
	if len(found) > 1 {
		r.Return = found[1].date
		r.IsOneWay = false
		if !InWindow(today, r.Return) {
			return Range{}, domain.NewValidationError(domain.CodeDateOutOfWindow,
				"return %s outside %s..%s", r.Return, today, today.AddDays(WindowDays))
		}
		if r.Return.Before(r.Outbound) {
			return Range{}, domain.NewValidationError(domain.CodeReturnBeforeOutbound,
				"return %s before outbound %s", r.Return, r.Outbound)
		}
	}
	return r, nil
}

// Parse reads the first date in text without any window check.
func (e *Extractor) Parse(text string) (civil.Date, bool) {
	found := scan(textnorm.Fold(text), e.Today())
	if len(found) == 0 {
		return civil.Date{}, false
	}
	return found[0].date, true
}

type mention struct {
	start, end int
	date       civil.Date
}

// scan collects date mentions in text order. Notations are tried in priority
// order and a later notation never claims characters an earlier one matched.
func scan(text string, today civil.Date) []mention {
	var out []mention
	add := func(start, end int, d civil.Date) {
		for _, m := range out {
			if start < m.end && m.start < end {
				return
			}
		}
		out = append(out, mention{start: start, end: end, date: d})
	}

	for _, idx := range isoRe.FindAllStringSubmatchIndex(text, -1) {
		y, m, d := atoi(text, idx, 1), atoi(text, idx, 2), atoi(text, idx, 3)
		if date, ok := build(y, m, d); ok {
			add(idx[0], idx[1], date)
		}
	}
	for _, idx := range numericRe.FindAllStringSubmatchIndex(text, -1) {
		d, m := atoi(text, idx, 1), atoi(text, idx, 2)
		y := -1
		if idx[6] >= 0 {
			y = atoi(text, idx, 3)
			if y < 100 {
				y += 2000
			}
		}
		if date, ok := resolveYear(today, y, m, d); ok {
			add(idx[0], idx[1], date)
		}
	}
	for _, idx := range namedRe.FindAllStringSubmatchIndex(text, -1) {
		d := atoi(text, idx, 1)
		m := int(months[text[idx[4]:idx[5]]])
		y := -1
		if idx[6] >= 0 {
			y = atoi(text, idx, 3)
		}
		if date, ok := resolveYear(today, y, m, d); ok {
			add(idx[0], idx[1], date)
		}
	}
	for _, idx := range relInRe.FindAllStringSubmatchIndex(text, -1) {
		if n, ok := textnorm.ParseCount(text[idx[2]:idx[3]]); ok {
			add(idx[0], idx[1], today.AddDays(n))
		}
	}
	for _, idx := range relWordRe.FindAllStringSubmatchIndex(text, -1) {
		add(idx[0], idx[1], today.AddDays(relativeOffsets[text[idx[2]:idx[3]]]))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	if len(out) > 2 {
		out = out[:2]
	}
	return out
}

// resolveYear applies year inference: with no year the current one is used,
// rolling to the next when the date already passed.
func resolveYear(today civil.Date, y, m, d int) (civil.Date, bool) {
	if y >= 0 {
		return build(y, m, d)
	}
	date, ok := build(today.Year, m, d)
	if ok && date.Before(today) {
		return build(today.Year+1, m, d)
	}
	if !ok {
		// 29/02 outside a leap year.
		return build(today.Year+1, m, d)
	}
	return date, true
}

func build(y, m, d int) (civil.Date, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return civil.Date{}, false
	}
	date := civil.Date{Year: y, Month: time.Month(m), Day: d}
	return date, date.IsValid()
}

func atoi(text string, idx []int, group int) int {
	n, _ := strconv.Atoi(text[idx[2*group]:idx[2*group+1]])
	return n
}
