package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trip-quote-agent/internal/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "abc", sampleState()))
	require.NoError(t, s.SavePending(ctx, "abc", domain.PendingQuote{State: sampleState()}))

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, sampleState(), got.State)
	require.NotNil(t, got.Pending)

	got.Pending.State.Origin = "XXX"
	again, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "CNF", again.Pending.State.Origin, "loaded pending quote is a copy")

	require.NoError(t, s.DeletePending(ctx, "abc"))
	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, got.Pending)

	require.NoError(t, s.Clear(ctx, "abc"))
	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	require.True(t, got.State.IsEmpty())

	_, err = s.Load(ctx, "")
	require.ErrorIs(t, err, errEmptyKey)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := fixedNow
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "a", sampleState()))
	require.NoError(t, s.SaveState(ctx, "b", sampleState()))
	n, err := s.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	now = now.Add(30 * time.Second)
	require.NoError(t, s.SaveState(ctx, "b", sampleState()))
	now = now.Add(45 * time.Second)

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.True(t, got.State.IsEmpty())

	n, err = s.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SaveState(ctx, "k", sampleState())
			_, _ = s.Load(ctx, "k")
		}()
	}
	wg.Wait()
	n, err := s.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
