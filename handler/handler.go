package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/integrations/evolution"
	"trip-quote-agent/internal/places"
	"trip-quote-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	healthTopMisses   = 10
)

type ChatUseCase interface {
	HandleMessage(ctx context.Context, sessionKey, text string) (usecase.Reply, error)
}

type SessionCounter interface {
	ActiveSessions(ctx context.Context) (int, error)
}

// Notifier pushes a webhook reply back to the messaging channel.
type Notifier interface {
	SendText(ctx context.Context, number, text string) error
}

// MissReporter lists the place texts users wrote that matched no airport.
type MissReporter interface {
	Top(n int) []places.MissCount
}

type Handler struct {
	chat     ChatUseCase
	sessions SessionCounter
	notifier Notifier
	misses   MissReporter
	limiter  *sessionLimiter
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Handler)

func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithMissReporter adds the most frequent unrecognized places to /health.
func WithMissReporter(r MissReporter) Option {
	return func(h *Handler) {
		h.misses = r
	}
}

// WithRateLimit allows perMinute messages per session key. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(h *Handler) {
		if perMinute > 0 {
			h.limiter = newSessionLimiter(perMinute)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(chat ChatUseCase, sessions SessionCounter, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("handler: session counter must not be nil")
	}
	h := &Handler{chat: chat, sessions: sessions, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply     string                   `json:"reply"`
	SessionID string                   `json:"sessionId"`
	QuoteURL  string                   `json:"quoteUrl,omitempty"`
	State     domain.ConversationState `json:"state"`
}

// webhookRequest accepts both the flat {text, number} shape and the
// Evolution API messages.upsert event.
type webhookRequest struct {
	Text   string `json:"text"`
	Number string `json:"number"`
	Data   *struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		Message struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"data"`
}

type webhookResponse struct {
	OK bool `json:"ok"`
}

type healthResponse struct {
	Status          string             `json:"status"`
	Timestamp       string             `json:"timestamp"`
	ActiveSessions  int                `json:"activeSessions"`
	TopUnrecognized []places.MissCount `json:"topUnrecognized,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle routes API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)
	logger := h.logger.With("correlationId", corrID, "method", req.HTTPMethod, "path", req.Path)

	path := strings.TrimRight(req.Path, "/")
	var resp events.APIGatewayProxyResponse
	switch {
	case path == "/api/chat" && req.HTTPMethod == http.MethodPost:
		resp = h.handleChat(ctx, logger, req.Body)
	case path == "/webhook/evo" && req.HTTPMethod == http.MethodPost:
		resp = h.handleWebhook(ctx, logger, req.Body)
	case path == "/health" && req.HTTPMethod == http.MethodGet:
		resp = h.handleHealth(ctx, logger)
	case path == "/api/chat" || path == "/webhook/evo" || path == "/health":
		resp = jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED"})
	default:
		resp = jsonResponse(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	}
	resp.Headers[correlationHeader] = corrID
	logger.InfoContext(ctx, "request handled", "status", resp.StatusCode)
	return resp, nil
}

func (h *Handler) handleChat(ctx context.Context, logger *slog.Logger, body string) events.APIGatewayProxyResponse {
	var in chatRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if h.limiter != nil && !h.limiter.Allow(sessionID) {
		logger.WarnContext(ctx, "rate limit exceeded", "sessionId", sessionID)
		return jsonResponse(http.StatusTooManyRequests, errorResponse{Error: string(usecase.ErrorRateLimited)})
	}

	reply, err := h.chat.HandleMessage(ctx, sessionID, in.Message)
	if err != nil {
		code := usecase.CodeOf(err)
		logger.ErrorContext(ctx, "chat turn failed", "sessionId", sessionID, "code", code, "err", err)
		return jsonResponse(statusFor(code), errorResponse{Error: string(code)})
	}
	return jsonResponse(http.StatusOK, chatResponse{
		Reply:     reply.Text,
		SessionID: sessionID,
		QuoteURL:  reply.QuoteURL,
		State:     reply.State,
	})
}

// handleWebhook always acknowledges so the provider does not redeliver; the
// reply travels through the notifier.
func (h *Handler) handleWebhook(ctx context.Context, logger *slog.Logger, body string) events.APIGatewayProxyResponse {
	ack := jsonResponse(http.StatusOK, webhookResponse{OK: true})

	var in webhookRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		logger.WarnContext(ctx, "webhook body is not JSON", "err", err)
		return ack
	}
	number, text, fromMe := in.Number, in.Text, false
	if in.Data != nil {
		fromMe = in.Data.Key.FromMe
		if number == "" {
			number = in.Data.Key.RemoteJID
		}
		if text == "" {
			text = in.Data.Message.Conversation
		}
		if text == "" {
			text = in.Data.Message.ExtendedTextMessage.Text
		}
	}
	number = evolution.NormalizeNumber(number)
	if fromMe || number == "" || strings.TrimSpace(text) == "" {
		return ack
	}
	if h.limiter != nil && !h.limiter.Allow(number) {
		logger.WarnContext(ctx, "rate limit exceeded", "number", number)
		return ack
	}

	replyText := usecase.ApologyReply
	reply, err := h.chat.HandleMessage(ctx, number, text)
	if err != nil {
		logger.ErrorContext(ctx, "webhook turn failed", "number", number, "code", usecase.CodeOf(err), "err", err)
	} else {
		replyText = reply.Text
	}
	if h.notifier != nil {
		if err := h.notifier.SendText(ctx, number, replyText); err != nil {
			logger.ErrorContext(ctx, "webhook reply not delivered", "number", number, "err", err)
		}
	}
	return ack
}

func (h *Handler) handleHealth(ctx context.Context, logger *slog.Logger) events.APIGatewayProxyResponse {
	out := healthResponse{Status: "ok", Timestamp: h.now().UTC().Format(time.RFC3339)}
	n, err := h.sessions.ActiveSessions(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "count active sessions", "err", err)
		out.Status = "degraded"
		out.ActiveSessions = -1
	} else {
		out.ActiveSessions = n
	}
	if h.misses != nil {
		out.TopUnrecognized = h.misses.Top(healthTopMisses)
	}
	return jsonResponse(http.StatusOK, out)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
