package conversation

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"trip-quote-agent/internal/domain"
)

// Summary renders the accumulated state as a short Portuguese recap.
func Summary(state domain.ConversationState) string {
	var b strings.Builder
	b.WriteString("Resumo da sua viagem:\n")
	fmt.Fprintf(&b, "• Trecho: %s → %s\n", orDash(state.Origin), orDash(state.Destination))
	if state.IsOneWay {
		b.WriteString("• Tipo: só ida\n")
	} else {
		b.WriteString("• Tipo: ida e volta\n")
	}
	fmt.Fprintf(&b, "• Ida: %s\n", formatDate(state.OutboundDate))
	if !state.IsOneWay {
		fmt.Fprintf(&b, "• Volta: %s\n", formatDate(state.ReturnDate))
	}
	fmt.Fprintf(&b, "• Passageiros: %s", formatPassengers(state.Passengers))
	return b.String()
}

// MissingPrompt asks for the given slots in one sentence.
func MissingPrompt(missing []Slot) string {
	if len(missing) == 0 {
		return ""
	}
	labels := make([]string, 0, len(missing))
	for _, s := range missing {
		labels = append(labels, s.Label())
	}
	return "Para cotar, ainda preciso de: " + joinPT(labels) + "."
}

func formatPassengers(p domain.Passengers) string {
	if p.Total() == 0 {
		return "-"
	}
	parts := []string{plural(p.Adults, "adulto", "adultos")}
	if p.Children > 0 {
		parts = append(parts, plural(p.Children, "criança", "crianças"))
	}
	if p.Infants > 0 {
		parts = append(parts, plural(p.Infants, "bebê", "bebês"))
	}
	return joinPT(parts)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func joinPT(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " e " + parts[len(parts)-1]
	}
}

func formatDate(d *civil.Date) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
