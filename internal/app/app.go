// Package app wires configuration into a ready handler. Both the Lambda
// entrypoint and the local dev server build through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"trip-quote-agent/handler"
	"trip-quote-agent/internal/config"
	"trip-quote-agent/internal/dates"
	"trip-quote-agent/internal/integrations/evolution"
	"trip-quote-agent/internal/integrations/gemini"
	"trip-quote-agent/internal/integrations/openai"
	"trip-quote-agent/internal/integrations/paramstore"
	"trip-quote-agent/internal/places"
	"trip-quote-agent/internal/quote"
	"trip-quote-agent/internal/repository"
	"trip-quote-agent/internal/usecase"
)

const paramCacheTTL = 5 * time.Minute

// NewLogger returns a JSON slog logger at level ("debug", "info", "warn",
// "error"). Unknown levels fall back to info.
func NewLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

// Store is the session store surface the handler and chat service share.
type Store interface {
	usecase.SessionStore
	handler.SessionCounter
}

// Build creates every dependency named by cfg. The returned cleanup releases
// clients that hold connections.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*handler.Handler, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", "err", err)
			}
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, cleanup, err
	}

	params, err := newParams(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	misses := places.NewLogRecorder(logger)
	resolver := places.NewResolver(places.WithRecorder(misses))
	extractor := dates.NewExtractor(dates.WithLocation(loc))
	builder := quote.NewBuilder(cfg.QuoteBaseURL, resolver.IsOfficial, extractor.Today)

	chatOpts := []usecase.ChatOption{
		usecase.WithLogger(logger),
		usecase.WithMaxMessageLength(cfg.MaxMessageLength),
	}
	agent, closeAgent, err := newAgent(ctx, cfg, params)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	if closeAgent != nil {
		closers = append(closers, closeAgent)
	}
	if agent != nil {
		chatOpts = append(chatOpts, usecase.WithAgent(agent))
	}

	chat, err := usecase.NewChatService(store, resolver, extractor, builder, chatOpts...)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("app: create chat service: %w", err)
	}

	handlerOpts := []handler.Option{
		handler.WithLogger(logger),
		handler.WithRateLimit(cfg.RateLimitPerMinute),
		handler.WithMissReporter(misses),
	}
	if cfg.EvolutionEnabled() {
		if params == nil {
			cleanup()
			return nil, func() {}, errors.New("app: evolution replies need parameter store access")
		}
		notifier, err := evolution.NewClient(cfg.EvolutionBaseURL, cfg.EvolutionInstance, params, cfg.ParamPrefix+"/evolution-api-key")
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("app: create evolution client: %w", err)
		}
		handlerOpts = append(handlerOpts, handler.WithNotifier(notifier))
	}

	h, err := handler.NewHandler(chat, store, handlerOpts...)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("app: create handler: %w", err)
	}
	logger.Info("app ready",
		"store", cfg.StoreBackend,
		"agent", cfg.AgentProvider,
		"evolution", cfg.EvolutionEnabled(),
		"timezone", loc.String())
	return h, cleanup, nil
}

// newParams returns nil when nothing needs Parameter Store.
func newParams(ctx context.Context, cfg config.Config) (*paramstore.Client, error) {
	if cfg.AgentProvider == config.ProviderNone && !cfg.EvolutionEnabled() {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	client, err := paramstore.New(awsssm.NewFromConfig(awsCfg), paramstore.WithCacheTTL(paramCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}
	return client, nil
}

func newStore(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.StateTable, cfg.SessionTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("app: create dynamodb store: %w", err)
		}
		return store, nil, nil
	case config.BackendRedis:
		rdb := repository.NewRedis(cfg.RedisAddr)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("app: ping redis: %w", err)
		}
		store, err := repository.NewRedisStore(rdb, cfg.RedisPrefix, cfg.SessionTTL)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("app: create redis store: %w", err)
		}
		return store, rdb.Close, nil
	case config.BackendMemory:
		return repository.NewMemoryStore(cfg.SessionTTL), nil, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}

func newAgent(ctx context.Context, cfg config.Config, params *paramstore.Client) (*usecase.Agent, func() error, error) {
	var (
		llm     usecase.LLMClient
		closeFn func() error
	)
	switch cfg.AgentProvider {
	case config.ProviderNone:
		return nil, nil, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(params, cfg.ParamPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("app: create openai client: %w", err)
		}
		llm = client
	case config.ProviderGemini:
		client, err := gemini.NewFromParamStore(ctx, params, cfg.ParamPrefix+"/gemini-token")
		if err != nil {
			return nil, nil, fmt.Errorf("app: create gemini client: %w", err)
		}
		llm, closeFn = client, client.Close
	default:
		return nil, nil, fmt.Errorf("app: unknown agent provider %q", cfg.AgentProvider)
	}

	agent, err := usecase.NewAgent(params, llm, cfg.ParamPrefix)
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, nil, fmt.Errorf("app: create agent: %w", err)
	}
	return agent, closeFn, nil
}
