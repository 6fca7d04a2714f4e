// Package conversation owns how extracted slots accumulate into a session's
// state, what is still missing and when a quote is ready.
package conversation

import (
	"trip-quote-agent/internal/dates"
	"trip-quote-agent/internal/domain"
)

// Slots is everything extracted from one message. Zero values mean absent.
type Slots struct {
	Origin      string
	Destination string
	Dates       *dates.Range
	Passengers  *domain.Passengers
	// OneWay is set when the message names the trip type explicitly.
	OneWay *bool
}

// IsEmpty reports whether the message produced no slot at all.
func (s Slots) IsEmpty() bool {
	return s.Origin == "" && s.Destination == "" && s.Dates == nil && s.Passengers == nil && s.OneWay == nil
}

// Merge folds slots into state. A new origin or destination that conflicts
// with a stored one is treated as a new trip request: the state is reset
// before merging and reset is reported.
func Merge(state domain.ConversationState, slots Slots) (domain.ConversationState, bool) {
	reset := conflicts(state.Origin, slots.Origin) || conflicts(state.Destination, slots.Destination)
	if reset {
		state = domain.NewConversationState()
	}

	if slots.Origin != "" {
		state.Origin = slots.Origin
	}
	if slots.Destination != "" {
		state.Destination = slots.Destination
	}

	if slots.OneWay != nil {
		state.IsOneWay = *slots.OneWay
		if state.IsOneWay {
			state.ReturnDate = nil
		}
	}

	if r := slots.Dates; r != nil {
		mergeDates(&state, *r)
	}

	if slots.Passengers != nil {
		state.Passengers = *slots.Passengers
	}
	return state, reset
}

func mergeDates(state *domain.ConversationState, r dates.Range) {
	if !r.IsOneWay {
		out, ret := r.Outbound, r.Return
		state.OutboundDate, state.ReturnDate = &out, &ret
		state.IsOneWay = false
		return
	}

	d := r.Outbound
	// A lone date on a round trip that already has its outbound fills the return.
	if !state.IsOneWay && state.OutboundDate != nil && state.ReturnDate == nil && !d.Before(*state.OutboundDate) {
		state.ReturnDate = &d
		return
	}
	state.OutboundDate = &d
	if state.ReturnDate != nil && state.ReturnDate.Before(d) {
		state.ReturnDate = nil
	}
}

func conflicts(stored, incoming string) bool {
	return stored != "" && incoming != "" && stored != incoming
}

// IsComplete reports whether state can be rendered as a quote: both places
// set, distinct and official, an outbound date, at least one passenger and a
// return date on round trips.
func IsComplete(state domain.ConversationState, official func(code string) bool) bool {
	if state.Origin == "" || state.Destination == "" || state.Origin == state.Destination {
		return false
	}
	if !official(state.Origin) || !official(state.Destination) {
		return false
	}
	if state.OutboundDate == nil || state.Total() <= 0 {
		return false
	}
	return state.IsOneWay || state.ReturnDate != nil
}

// Slot names a piece of information still needed.
type Slot int

const (
	SlotPlaces Slot = iota + 1
	SlotOutboundDate
	SlotReturnDate
	SlotPassengers
)

func (s Slot) Label() string {
	switch s {
	case SlotPlaces:
		return "origem e destino"
	case SlotOutboundDate:
		return "data de ida"
	case SlotReturnDate:
		return "data de volta"
	case SlotPassengers:
		return "quantidade de passageiros"
	default:
		return ""
	}
}

// MissingSlots lists what is still needed, in asking order.
func MissingSlots(state domain.ConversationState) []Slot {
	var out []Slot
	if state.Origin == "" || state.Destination == "" {
		out = append(out, SlotPlaces)
	}
	if state.OutboundDate == nil {
		out = append(out, SlotOutboundDate)
	}
	if !state.IsOneWay && state.ReturnDate == nil {
		out = append(out, SlotReturnDate)
	}
	if state.Total() <= 0 {
		out = append(out, SlotPassengers)
	}
	return out
}
