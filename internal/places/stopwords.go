package places

import "strings"

// stopWords are connectors and date/passenger vocabulary that must never be
// taken as a place mention. Entries are normalized.
var stopWords = toSet(
	"a", "o", "as", "os", "ao", "aos", "e", "ou", "de", "do", "da", "dos", "das", "desde",
	"em", "no", "na", "nos", "nas", "um", "uma", "com", "sem", "por", "pelo", "pela",
	"para", "pra", "pro", "ate", "entre", "via", "x",
	"eu", "me", "mim", "nos", "quero", "queria", "gostaria", "preciso", "vou", "ir", "voar",
	"viajar", "viagem", "passagem", "passagens", "voo", "voos", "aereo", "aerea", "cotacao",
	"dia", "dias", "data", "datas", "hoje", "amanha", "ontem", "depois", "antes",
	"semana", "mes", "ano", "proxima", "proximo", "que", "vem",
	"saindo", "partindo", "sair", "partir", "voltando", "volta", "ida", "retorno", "regresso",
	"somente", "so", "apenas",
	"adulto", "adultos", "crianca", "criancas", "bebe", "bebes", "infantil", "colo",
	"pessoa", "pessoas", "passageiro", "passageiros",
	"oi", "ola", "bom", "boa", "tarde", "noite", "ok", "sim", "nao", "favor",
	"obrigado", "obrigada", "valeu",
	"janeiro", "fevereiro", "marco", "abril", "maio", "junho", "julho", "agosto",
	"setembro", "outubro", "novembro", "dezembro",
	"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez",
)

// codeLookalikes are lower-case words that spell a known airport code but are
// far more likely to be ordinary words in a Portuguese message.
var codeLookalikes = toSet("sao", "for", "the", "bel", "nat", "mia", "joi", "mad")

// trailStops end a place phrase captured by a pattern: whatever follows them
// belongs to the date or passenger clauses.
var trailStops = toSet(
	"dia", "dias", "data", "com", "em", "no", "na", "ida", "volta", "voltando", "retorno",
	"saindo", "partindo", "hoje", "amanha", "depois", "semana", "mes", "para", "pra",
	"adulto", "adultos", "crianca", "criancas", "bebe", "bebes", "pessoa", "pessoas",
	"somente", "so", "apenas", "e", "entre", "a",
)

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// IsStopWord reports whether the normalized phrase is a connector word.
func IsStopWord(phrase string) bool {
	_, ok := stopWords[strings.TrimSpace(phrase)]
	return ok
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
