// Package quote validates a complete conversation state and renders the
// flight-search deep link.
package quote

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/civil"

	"trip-quote-agent/internal/dates"
	"trip-quote-agent/internal/domain"
)

const DefaultBaseURL = "https://www.viaza.com.br"

// slugs lists codes whose URL segment is not their own lower-cased code.
var slugs = map[string]string{
	"CNF": "bhz",
	"PLU": "bhz",
	"SAO": "sao",
	"RIO": "rio",
}

// Slug is the URL path segment for an airport code.
func Slug(code string) string {
	code = strings.ToUpper(code)
	if s, ok := slugs[code]; ok {
		return s
	}
	return strings.ToLower(code)
}

type Builder struct {
	baseURL  string
	official func(code string) bool
	today    func() civil.Date
}

// NewBuilder returns a Builder rendering links under baseURL. official gates
// accepted codes and today anchors the bookable window.
func NewBuilder(baseURL string, official func(code string) bool, today func() civil.Date) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{
		baseURL:  strings.TrimRight(baseURL, "/"),
		official: official,
		today:    today,
	}
}

// Build renders the search URL for state or reports the first business rule
// it violates as a *domain.ValidationError.
func (b *Builder) Build(state domain.ConversationState) (string, error) {
	if err := b.Validate(state); err != nil {
		return "", err
	}

	trip := "ow"
	if !state.IsOneWay {
		trip = "rt"
	}
	q := url.Values{}
	q.Set("p", fmt.Sprintf("%d-%d-%d", state.Adults, state.Children, state.Infants))
	q.Set("dd", state.OutboundDate.String())
	if !state.IsOneWay {
		q.Set("rd", state.ReturnDate.String())
	}
	// Fixed parameter order keeps the link stable for identical states.
	return fmt.Sprintf("%s/busca/passagens/%s/%s/%s?%s",
		b.baseURL, trip, Slug(state.Origin), Slug(state.Destination), encodeOrdered(q, "p", "dd", "rd")), nil
}

func (b *Builder) Validate(state domain.ConversationState) error {
	if state.Total() > domain.MaxPassengers {
		return domain.ErrLimitExceeded
	}
	if state.Total() <= 0 {
		return domain.NewValidationError(domain.CodeMissingSlot, "no passengers")
	}
	if state.Origin == "" || state.Destination == "" {
		return domain.NewValidationError(domain.CodeMissingSlot, "origin and destination are required")
	}
	if strings.EqualFold(state.Origin, state.Destination) {
		return domain.NewValidationError(domain.CodeSameEndpoints, "origin and destination are both %s", state.Origin)
	}
	for _, code := range []string{state.Origin, state.Destination} {
		if !b.official(code) {
			return domain.NewValidationError(domain.CodeUnknownAirport, "%s is not served", code)
		}
	}

	today := b.today()
	if state.OutboundDate == nil {
		return domain.NewValidationError(domain.CodeMissingSlot, "outbound date is required")
	}
	if !dates.InWindow(today, *state.OutboundDate) {
		return domain.NewValidationError(domain.CodeDateOutOfWindow, "outbound %s outside the window", state.OutboundDate)
	}
	if state.IsOneWay {
		return nil
	}
	if state.ReturnDate == nil {
		return domain.NewValidationError(domain.CodeReturnMissing, "round trip without return date")
	}
	if !dates.InWindow(today, *state.ReturnDate) {
		return domain.NewValidationError(domain.CodeDateOutOfWindow, "return %s outside the window", state.ReturnDate)
	}
	if state.ReturnDate.Before(*state.OutboundDate) {
		return domain.NewValidationError(domain.CodeReturnBeforeOutbound, "return %s before outbound %s", state.ReturnDate, state.OutboundDate)
	}
	return nil
}

func encodeOrdered(q url.Values, keys ...string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}
