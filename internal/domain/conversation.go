package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// MaxPassengers is the business cap on adults+children+infants for a single quote.
const MaxPassengers = 9

// Passengers is the passenger composition of a trip.
type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (p Passengers) Total() int {
	return p.Adults + p.Children + p.Infants
}

// ConversationState is the slot accumulator kept per session key.
type ConversationState struct {
	Origin       string      `json:"origin,omitempty"`
	Destination  string      `json:"destination,omitempty"`
	OutboundDate *civil.Date `json:"outboundDate,omitempty"`
	ReturnDate   *civil.Date `json:"returnDate,omitempty"`
	IsOneWay     bool        `json:"isOneWay"`
	Passengers
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewConversationState returns an empty one-way state.
func NewConversationState() ConversationState {
	return ConversationState{IsOneWay: true}
}

// IsEmpty reports whether no slot has been filled yet.
func (s ConversationState) IsEmpty() bool {
	return s.Origin == "" && s.Destination == "" && s.OutboundDate == nil &&
		s.ReturnDate == nil && s.Total() == 0
}

// PendingQuote caches a complete state until the user confirms it.
type PendingQuote struct {
	State     ConversationState `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Session is everything persisted for one conversation key.
type Session struct {
	State   ConversationState
	Pending *PendingQuote
}
