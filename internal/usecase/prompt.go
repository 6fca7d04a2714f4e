package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"

	"trip-quote-agent/internal/conversation"
	"trip-quote-agent/internal/domain"
)

func buildAgentMessages(state domain.ConversationState, today civil.Date, text string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: buildPolicyPrompt()},
		{Role: "system", Content: buildStateContextPrompt(state, today)},
		{Role: "user", Content: text},
	}
}

func buildPolicyPrompt() string {
	return strings.Join([]string{
		"Role:",
		"You are the intake assistant of a Brazilian flight quote service. Users write in Portuguese.",
		"",
		"Task:",
		"Decide whether the message is about quoting a flight.",
		"If it is, extract any trip details it carries and write a short Portuguese reply.",
		"If it is not, return out of scope.",
		"",
		"Behavior Rules:",
		behaviorRules(),
		"",
		"Output Contract:",
		outputContract(),
	}, "\n")
}

func behaviorRules() string {
	return strings.Join([]string{
		"1) Use only the current message and the trip state given in this request.",
		"2) Airports are 3-letter IATA codes in upper case. Leave a field empty when unsure.",
		"3) Dates are ISO yyyy-mm-dd. Resolve relative dates against the given today.",
		"4) Never invent prices, availability or airlines.",
		"5) Keep the reply to one or two sentences in Portuguese.",
	}, "\n")
}

func outputContract() string {
	return "Return JSON only with keys in_scope (boolean), reply (string), origin, destination, " +
		"outbound_date, return_date (strings, empty when unknown) and adults, children, infants " +
		"(integers, 0 when unknown). If out of scope, return in_scope=false and a polite reply."
}

func buildStateContextPrompt(state domain.ConversationState, today civil.Date) string {
	return fmt.Sprintf("Today: %s\n\nCurrent trip state:\n%s", today, conversation.Summary(state))
}

func parseAgentAnswer(raw string) (domain.AgentAnswer, error) {
	var out domain.AgentAnswer
	dec := json.NewDecoder(bytes.NewBufferString(cleanJSON(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return domain.AgentAnswer{}, fmt.Errorf("usecase: decode agent answer: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return domain.AgentAnswer{}, errors.New("usecase: decode agent answer: multiple JSON values")
		}
		return domain.AgentAnswer{}, fmt.Errorf("usecase: decode agent answer trailing data: %w", err)
	}
	if out.Adults < 0 || out.Children < 0 || out.Infants < 0 {
		return domain.AgentAnswer{}, errors.New("usecase: agent answer has negative passenger counts")
	}
	return out, nil
}

// cleanJSON strips the markdown fences some providers wrap JSON mode output in.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
