package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"trip-quote-agent/internal/config"
	"trip-quote-agent/internal/quote"
)

func memoryConfig() config.Config {
	return config.Config{
		StoreBackend:       config.BackendMemory,
		SessionTTL:         time.Hour,
		AgentProvider:      config.ProviderNone,
		QuoteBaseURL:       quote.DefaultBaseURL,
		Timezone:           "America/Sao_Paulo",
		MaxMessageLength:   1000,
		RateLimitPerMinute: 20,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func post(t *testing.T, h interface {
	Handle(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}, body string) map[string]any {
	t.Helper()
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/chat",
		Body:       body,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func TestBuild_MemoryBackend(t *testing.T) {
	h, cleanup, err := Build(context.Background(), memoryConfig(), quietLogger())
	require.NoError(t, err)
	defer cleanup()

	out := post(t, h, `{"sessionId":"s-1","message":"de recife para salvador, 1 adulto"}`)
	state := out["state"].(map[string]any)
	require.Equal(t, "REC", state["origin"])
	require.Equal(t, "SSA", state["destination"])

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	require.Contains(t, resp.Body, `"activeSessions":1`)
}

func TestBuild_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.StoreBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisPrefix = "test:"

	h, cleanup, err := Build(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer cleanup()

	post(t, h, `{"sessionId":"s-1","message":"de recife para salvador"}`)
	require.NotEmpty(t, mr.Keys())
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := memoryConfig()
	cfg.StoreBackend = config.BackendRedis
	cfg.RedisAddr = addr

	_, cleanup, err := Build(context.Background(), cfg, quietLogger())
	require.ErrorContains(t, err, "ping redis")
	cleanup()
}

func TestBuild_BadTimezone(t *testing.T) {
	cfg := memoryConfig()
	cfg.Timezone = "Mars/Olympus"
	_, _, err := Build(context.Background(), cfg, quietLogger())
	require.ErrorContains(t, err, "timezone")
}

func TestNewLogger_Levels(t *testing.T) {
	require.True(t, NewLogger("debug").Enabled(context.Background(), slog.LevelDebug))
	require.False(t, NewLogger("warn").Enabled(context.Background(), slog.LevelInfo))
	require.True(t, NewLogger("nonsense").Enabled(context.Background(), slog.LevelInfo))
	require.False(t, NewLogger("").Enabled(context.Background(), slog.LevelDebug))
}
