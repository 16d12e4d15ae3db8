package middleware

import (
	"mais/pkg/logger"
	"net/http"
	"strings"
	"sync"
	"time"
)

type TenantExtractor func(r *http.Request) string

// TenantRateLimiter applies a sliding-window request limit per tenant, so
// one noisy tenant cannot starve the others.
type TenantRateLimiter struct {
	mu              sync.RWMutex
	requests        map[string][]time.Time
	limit           int
	window          time.Duration
	tenantExtractor TenantExtractor
	log             *logger.Logger
	stopCh          chan struct{}
}

func NewTenantRateLimiter(limit int, window time.Duration, extractor TenantExtractor, log *logger.Logger) *TenantRateLimiter {
	limiter := &TenantRateLimiter{
		requests:        make(map[string][]time.Time),
		limit:           limit,
		window:          window,
		tenantExtractor: extractor,
		log:             log,
		stopCh:          make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *TenantRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for tenant, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, tenant)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *TenantRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *TenantRateLimiter) Allow(tenantID string) bool {
	if tenantID == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[tenantID]
	rl.mu.RUnlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		return false
	}

	validTimestamps = append(validTimestamps, now)

	rl.mu.Lock()
	rl.requests[tenantID] = validTimestamps
	rl.mu.Unlock()

	return true
}

func TenantRateLimit(limiter *TenantRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := limiter.tenantExtractor(r)

			if tenantID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(tenantID) {
				rejectRateLimited(w, limiter.log, r, tenantID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, tenantID string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFrom(r.Context()),
		"tenant_id", tenantID,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

// DefaultTenantExtractor pulls the tenant ID from a /api/v1/tenants/:id/...
// path, falling back to the X-Tenant-ID header.
func DefaultTenantExtractor(r *http.Request) string {
	const prefix = "/api/v1/tenants/"
	if strings.HasPrefix(r.URL.Path, prefix) {
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		if i := strings.IndexByte(rest, '/'); i > 0 {
			return rest[:i]
		}
		return rest
	}
	return r.Header.Get("X-Tenant-ID")
}
