package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// rateLimiter hands out a token bucket per client address. Buckets that
// go quiet are pruned so long-lived servers don't accumulate entries.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
	}
	go rl.prune()
	return rl
}

func (rl *rateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	client, ok := rl.clients[addr]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(10), 20),
		}
		rl.clients[addr] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

func (rl *rateLimiter) prune() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for addr, client := range rl.clients {
			if time.Since(client.lastSeen) > 3*time.Minute {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func (s *Server) enforceRateLimit(w http.ResponseWriter, r *http.Request, action string) bool {
	addr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		addr = r.RemoteAddr
	}
	if s.limiter.allow(addr) {
		return true
	}
	log.Warn().Str("remote", addr).Str("action", action).Msg("rate limit exceeded")
	writeError(w, http.StatusTooManyRequests, "too many requests")
	return false
}
