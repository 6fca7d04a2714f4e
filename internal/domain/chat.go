package domain

// ChatMessage is the provider-agnostic chat message shape sent to the
// conversational agent integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentAnswer is the structured reply the conversational agent must return.
// Slot fields are raw: codes and dates are validated by the caller like any
// other extraction.
type AgentAnswer struct {
	InScope      bool   `json:"in_scope"`
	Reply        string `json:"reply"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	OutboundDate string `json:"outbound_date"`
	ReturnDate   string `json:"return_date"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
	Infants      int    `json:"infants"`
}
