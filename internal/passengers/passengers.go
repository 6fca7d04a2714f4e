// Package passengers extracts the passenger composition from free text.
package passengers

import (
	"regexp"

	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/textnorm"
)

const count = `(` + textnorm.CountPattern + `)`

var (
	adultRe  = regexp.MustCompile(`\b` + count + `\s+(?:adult[a-z]*|pessoas?|passageir[a-z]*)\b`)
	childRe  = regexp.MustCompile(`\b` + count + `\s+(?:crianc[a-z]*|filh[a-z]*|menor(?:es)?)\b`)
	infantRe = regexp.MustCompile(`\b` + count + `\s+(?:bebe[a-z]*|nene[a-z]*|colo|infant[a-z]*|de colo)\b`)
)

// Extract reads adult, child and infant counts independently. Adults default
// to 1 when only children or infants are mentioned. ok is false when no
// count is present. A total above domain.MaxPassengers yields
// domain.ErrLimitExceeded together with the counts that were read.
func Extract(text string) (domain.Passengers, bool, error) {
	norm := textnorm.Normalize(text)

	adults, hasAdults := sum(adultRe, norm)
	children, hasChildren := sum(childRe, norm)
	infants, hasInfants := sum(infantRe, norm)
	if !hasAdults && !hasChildren && !hasInfants {
		return domain.Passengers{}, false, nil
	}
	if !hasAdults {
		adults = 1
	}

	p := domain.Passengers{Adults: adults, Children: children, Infants: infants}
	if p.Total() > domain.MaxPassengers {
		return p, true, domain.ErrLimitExceeded
	}
	return p, true, nil
}

func sum(re *regexp.Regexp, text string) (int, bool) {
	total, found := 0, false
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if n, ok := textnorm.ParseCount(m[1]); ok {
			total += n
			found = true
		}
	}
	return total, found
}
