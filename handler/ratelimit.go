package handler

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedSessions bounds the limiter map; idle entries are dropped once
// it is reached.
const maxTrackedSessions = 10000

type trackedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// sessionLimiter holds one token bucket per session key.
type sessionLimiter struct {
	mu       sync.Mutex
	limiters map[string]*trackedLimiter
	every    rate.Limit
	burst    int
	now      func() time.Time
}

func newSessionLimiter(perMinute int) *sessionLimiter {
	return &sessionLimiter{
		limiters: make(map[string]*trackedLimiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (s *sessionLimiter) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t, ok := s.limiters[key]
	if !ok {
		if len(s.limiters) >= maxTrackedSessions {
			s.evictIdle(now)
		}
		t = &trackedLimiter{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[key] = t
	}
	t.lastSeen = now
	return t.limiter.AllowN(now, 1)
}

// evictIdle drops limiters unused for a minute; their buckets are full again
// by then.
func (s *sessionLimiter) evictIdle(now time.Time) {
	for k, t := range s.limiters {
		if now.Sub(t.lastSeen) >= time.Minute {
			delete(s.limiters, k)
		}
	}
}
