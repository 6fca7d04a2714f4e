package conversation

import (
	"strings"

	"trip-quote-agent/internal/textnorm"
)

// maxConfirmationWords keeps long messages that happen to contain "ok" or
// "sim" from being read as a confirmation.
const maxConfirmationWords = 6

var confirmPhrases = []string{
	"ok", "okay", "sim", "s", "yes", "isso", "isso mesmo", "certo", "correto", "perfeito",
	"confirmo", "confirma", "confirmar", "confirmado", "fechado", "fechou", "beleza", "blz",
	"pode", "pode ser", "pode mandar", "pode enviar", "manda", "mande", "envia", "envie",
	"gera", "gerar", "bora",
}

var negations = []string{"nao", "n", "errado", "cancela", "cancelar", "espera"}

var greetingPhrases = []string{
	"oi", "ola", "opa", "eae", "e ai", "hello", "hi", "salve",
	"bom dia", "boa tarde", "boa noite", "tudo bem", "tudo bom",
}

var oneWayPhrases = []string{"so ida", "somente ida", "apenas ida", "ida apenas", "so de ida", "sem volta", "one way"}

var roundTripPhrases = []string{"ida e volta", "ida volta", "com volta", "e volta", "round trip"}

// IsConfirmation reports whether a short message affirms the pending quote.
func IsConfirmation(text string) bool {
	norm := textnorm.Normalize(text)
	if norm == "" || len(strings.Fields(norm)) > maxConfirmationWords {
		return false
	}
	if containsAny(norm, negations) {
		return false
	}
	return containsAny(norm, confirmPhrases)
}

// IsGreeting reports whether the message opens with a greeting.
func IsGreeting(text string) bool {
	return containsAny(textnorm.Normalize(text), greetingPhrases)
}

// TripType reads an explicit trip type. ok is false when none is named.
func TripType(text string) (oneWay bool, ok bool) {
	norm := textnorm.Normalize(text)
	switch {
	case containsAny(norm, oneWayPhrases):
		return true, true
	case containsAny(norm, roundTripPhrases):
		return false, true
	default:
		return false, false
	}
}

func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if textnorm.ContainsPhrase(norm, p) {
			return true
		}
	}
	return false
}
