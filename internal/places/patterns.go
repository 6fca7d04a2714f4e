package places

import "regexp"

// PairPattern captures an origin and a destination phrase from normalized
// text. A zero group index means the pattern does not capture that side.
type PairPattern struct {
	Name        string
	Regexp      *regexp.Regexp
	OriginGroup int
	DestGroup   int
}

// DefaultPairPatterns are tried in order; the first one whose phrases resolve
// wins. Patterns run against textnorm.Normalize output.
var DefaultPairPatterns = []PairPattern{
	{
		Name:        "from_to",
		Regexp:      regexp.MustCompile(`\b(?:de|do|da|desde)\s+(.+?)\s+(?:para|pra|pro|ate|ao|a|com destino a)\s+(.+)`),
		OriginGroup: 1,
		DestGroup:   2,
	},
	{
		Name:        "to_from",
		Regexp:      regexp.MustCompile(`\b(?:para|pra|pro|ate)\s+(.+?)\s+(?:saindo|partindo|vindo|voando)\s+(?:de|do|da)\s+(.+)`),
		OriginGroup: 2,
		DestGroup:   1,
	},
	{
		Name:        "origin_destination_labels",
		Regexp:      regexp.MustCompile(`\borigem\s+(.+?)\s+destino\s+(.+)`),
		OriginGroup: 1,
		DestGroup:   2,
	},
}

// DefaultSinglePatterns capture one side only; they are tried when no pair
// was found in the utterance.
var DefaultSinglePatterns = []PairPattern{
	{
		Name:        "origin_only",
		Regexp:      regexp.MustCompile(`\b(?:saindo|partindo|sair|partir|origem)\s+(?:de|do|da)?\s*(.+)`),
		OriginGroup: 1,
	},
	{
		Name:      "destination_only",
		Regexp:    regexp.MustCompile(`\b(?:para|pra|pro|destino|ir a|ir ao|ir para)\s+(.+)`),
		DestGroup: 1,
	},
}
