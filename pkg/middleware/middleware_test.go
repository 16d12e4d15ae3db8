package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mais/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func TestDefaultTenantExtractor(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		want   string
	}{
		{"tenant path with subresource", "/api/v1/tenants/t-1/bookings", "", "t-1"},
		{"tenant path without subresource", "/api/v1/tenants/t-2", "", "t-2"},
		{"non-tenant path falls back to header", "/api/v1/payments/webhook", "t-3", "t-3"},
		{"no tenant anywhere", "/health", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("X-Tenant-ID", tt.header)
			}
			if got := DefaultTenantExtractor(r); got != tt.want {
				t.Errorf("DefaultTenantExtractor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTenantRateLimiter_IsolatesTenants(t *testing.T) {
	limiter := NewTenantRateLimiter(2, time.Minute, DefaultTenantExtractor, testLogger())
	defer limiter.Stop()

	if !limiter.Allow("tenant-a") || !limiter.Allow("tenant-a") {
		t.Fatal("first two requests for tenant-a should be allowed")
	}
	if limiter.Allow("tenant-a") {
		t.Error("third request for tenant-a should be rejected")
	}
	if !limiter.Allow("tenant-b") {
		t.Error("tenant-b should not be affected by tenant-a's limit")
	}
}

func TestWebhookSignatureVerification(t *testing.T) {
	const secret = "test-secret"
	body := `{"booking_id":"b-1","status":"paid"}`

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	validSig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	handler := WebhookSignatureVerification(secret, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{"valid signature", validSig, http.StatusOK},
		{"missing signature", "", http.StatusUnauthorized},
		{"wrong signature", "sha256=deadbeef", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
			if tt.signature != "" {
				r.Header.Set("X-Hub-Signature-256", tt.signature)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"b-1"}`))
		}),
	)

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/bookings", strings.NewReader(`{}`))
		r.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusCreated)
		}
		if w.Body.String() != `{"id":"b-1"}` {
			t.Fatalf("request %d: body = %q", i, w.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("handler called %d times, want 1 (second request should replay cache)", calls)
	}
}
