package usecase

import (
	"errors"
	"fmt"

	"trip-quote-agent/internal/domain"
)

const (
	welcomeReply = "Olá! Eu preparo cotações de passagens aéreas. Me diga de onde para onde você quer ir, " +
		"a data e quantos passageiros. Exemplo: \"de Belo Horizonte para São Paulo dia 15/03, 2 adultos\"."
	limitReply      = "Consigo cotar no máximo 9 passageiros por pedido. Para grupos maiores, divida em mais de uma cotação."
	confirmQuestion = "Está tudo certo? Responda \"confirmo\" para eu gerar o link da cotação."
	restartHint     = "Vamos recomeçar: me diga origem, destino, data e passageiros."
	flaggedReply    = "Não posso ajudar com isso. Posso cotar passagens aéreas: me diga origem, destino, data e passageiros."
	offTopicReply   = "Eu só consigo ajudar com cotações de passagens aéreas."

	// ApologyReply is sent by the transport when a turn fails unexpectedly.
	ApologyReply = "Desculpe, tive um problema para processar sua mensagem. Tente novamente em instantes."
)

func quoteReply(link string) string {
	return "Pronto! Aqui está a sua cotação:\n" + link
}

func unrecognizedNotice(text string) string {
	return fmt.Sprintf("Não reconheci o local \"%s\". Pode escrever o nome da cidade ou o código do aeroporto?", text)
}

func unservedNotice(code string) string {
	return fmt.Sprintf("Ainda não atendemos %s. Pode escolher outro aeroporto?", code)
}

// validationNotice turns a business rule violation into corrective copy.
func validationNotice(err error) string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return "Não consegui validar a sua viagem."
	}
	switch ve.Code {
	case domain.CodeLimitExceeded:
		return limitReply
	case domain.CodeSameEndpoints:
		return "Origem e destino não podem ser o mesmo lugar. Para onde você quer ir?"
	case domain.CodeUnknownAirport:
		return "Um dos aeroportos informados não é atendido. Pode escolher outro?"
	case domain.CodeDateOutOfWindow:
		return "Só consigo cotar datas entre hoje e os próximos 360 dias. Pode escolher outra data?"
	case domain.CodeReturnMissing:
		return "Falta a data de volta."
	case domain.CodeReturnBeforeOutbound:
		return "A data de volta não pode ser antes da data de ida. Pode conferir as datas?"
	default:
		return "Ainda faltam dados para a cotação."
	}
}
