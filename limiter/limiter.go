package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter answers whether a caller identity may proceed right now.
// Implementations must be safe under concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory enforces the ceiling with one token bucket per caller identity.
// Burst equals the ceiling, so a full window's worth of pings may arrive
// at once but the next one is rejected until tokens refill. Suitable for a
// single instance; use Redis when the ceiling must hold across instances.
type Memory struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

func NewMemory(limit int, window time.Duration) *Memory {
	if limit <= 0 {
		limit = 1
	}
	m := &Memory{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Every(window / time.Duration(limit)),
		burst:   limit,
	}
	go m.cleanupClients()
	return m
}

func (m *Memory) cleanupClients() {
	for {
		time.Sleep(time.Minute)
		m.mu.Lock()
		for key, c := range m.clients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(m.clients, key)
			}
		}
		m.mu.Unlock()
	}
}

func (m *Memory) Allow(_ context.Context, key string) bool {
	return m.allowAt(time.Now(), key)
}

func (m *Memory) allowAt(now time.Time, key string) bool {
	m.mu.Lock()
	c, ok := m.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.clients[key] = c
	}
	c.lastSeen = now
	m.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}
