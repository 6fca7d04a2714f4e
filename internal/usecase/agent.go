package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/civil"

	"trip-quote-agent/internal/domain"
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	Moderate(ctx context.Context, input string) (bool, error)
}

// Agent is the conversational fallback consulted when a message yields no
// slot deterministically. Its answers are raw and still need validation.
type Agent struct {
	params      ParamGetter
	llm         LLMClient
	paramPrefix string

	cacheMu sync.RWMutex
	model   string
}

func NewAgent(p ParamGetter, llm LLMClient, paramPrefix string) (*Agent, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	return &Agent{params: p, llm: llm, paramPrefix: paramPrefix}, nil
}

// Interpret moderates text, then asks the model for trip slots given the
// current state. Flagged input is ErrorInvalidQuestion.
func (a *Agent) Interpret(ctx context.Context, text string, state domain.ConversationState, today civil.Date) (domain.AgentAnswer, error) {
	model, err := a.ensureModel(ctx)
	if err != nil {
		return domain.AgentAnswer{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	flagged, err := a.llm.Moderate(ctx, text)
	if err != nil {
		return domain.AgentAnswer{}, upstreamError("moderation", err)
	}
	if flagged {
		return domain.AgentAnswer{}, newError(ErrorInvalidQuestion, "moderation_flagged", nil)
	}

	raw, err := a.llm.Chat(ctx, model, buildAgentMessages(state, today, text))
	if err != nil {
		return domain.AgentAnswer{}, upstreamError("agent", err)
	}
	answer, err := parseAgentAnswer(raw)
	if err != nil {
		return domain.AgentAnswer{}, newError(ErrorUpstream, "agent_malformed_response", err)
	}
	return answer, nil
}

// ensureModel loads the model name once. A failed load is retried on the
// next call.
func (a *Agent) ensureModel(ctx context.Context) (string, error) {
	a.cacheMu.RLock()
	if a.model != "" {
		model := a.model
		a.cacheMu.RUnlock()
		return model, nil
	}
	a.cacheMu.RUnlock()

	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	if a.model != "" {
		return a.model, nil
	}
	model, err := a.params.GetParameter(ctx, a.paramPrefix+"/config/agent_model")
	if err != nil {
		return "", fmt.Errorf("usecase: load agent model: %w", err)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("usecase: agent model parameter is empty")
	}
	a.model = model
	return model, nil
}
