package repository

import (
	"context"
	"errors"
	"time"

	"trip-quote-agent/internal/domain"
)

const defaultSessionTTL = 24 * time.Hour

var errEmptyKey = errors.New("repository: session key must not be empty")

// SessionStore persists conversation state and the pending quote per session
// key. Load on an unknown key returns an empty one-way state and no error.
type SessionStore interface {
	Load(ctx context.Context, key string) (domain.Session, error)
	SaveState(ctx context.Context, key string, state domain.ConversationState) error
	SavePending(ctx context.Context, key string, pending domain.PendingQuote) error
	DeletePending(ctx context.Context, key string) error
	// Clear removes both the state and the pending quote.
	Clear(ctx context.Context, key string) error
	ActiveSessions(ctx context.Context) (int, error)
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ SessionStore = (*DynamoStore)(nil)
	_ SessionStore = (*RedisStore)(nil)
)
