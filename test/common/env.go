package common

import (
	"os"
	"testing"
	"time"
)

const DefaultHealthCheckTimeout = 30 * time.Second

// RequireIntegrationEnv skips the test unless the integration environment
// is opted into with RUN_INTEGRATION_TESTS=1. The suite expects a running
// service (TEST_BOOKINGS_URL / TEST_TENANTS_URL) backed by Mongo and Kafka.
func RequireIntegrationEnv(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "1" {
		t.Skip("integration tests disabled; set RUN_INTEGRATION_TESTS=1")
	}
}

func BookingsURL() string {
	return getEnv("TEST_BOOKINGS_URL", "http://localhost:8080")
}

func TenantsURL() string {
	return getEnv("TEST_TENANTS_URL", "http://localhost:8081")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
