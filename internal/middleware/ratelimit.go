package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused limiter is kept.
const idleLimiterTTL = 10 * time.Minute

// LimiterStore maintains per-key rate limiters and performs periodic cleanup.
type LimiterStore struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	clients  map[string]*clientEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore creates a store allowing limitPerMinute events per key with
// the given burst. A cleanup goroutine runs every cleanupInterval until Stop.
func NewLimiterStore(limitPerMinute, burst int, cleanupInterval time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		limit:   rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:   burst,
		clients: map[string]*clientEntry{},
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

func (s *LimiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) cleanup() {
	cutoff := s.now().Add(-idleLimiterTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.clients {
		if v.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
}

// Stop stops the cleanup goroutine.
func (s *LimiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *LimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.clients[key]; ok {
		e.lastSeen = s.now()
		return e.limiter
	}
	limiter := rate.NewLimiter(s.limit, s.burst)
	s.clients[key] = &clientEntry{limiter: limiter, lastSeen: s.now()}
	return limiter
}

// Allow checks whether an event for the given key is permitted.
func (s *LimiterStore) Allow(key string) bool {
	return s.getLimiter(key).Allow()
}

func (s *LimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func rateLimit(store *LimiterStore, keyOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.Allow(keyOf(c)) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests, please slow down").
				WithSeverity(dto.ErrorSeverityWarning)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// RateLimitByIP limits requests per client IP. Used for unauthenticated endpoints.
func RateLimitByIP(store *LimiterStore) gin.HandlerFunc {
	return rateLimit(store, func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByUser limits requests per authenticated user, falling back to the
// client IP. It must run after JWTAuth.
func RateLimitByUser(store *LimiterStore) gin.HandlerFunc {
	return rateLimit(store, func(c *gin.Context) string {
		if id, ok := GetUserID(c); ok {
			return "user:" + id
		}
		return "ip:" + c.ClientIP()
	})
}
