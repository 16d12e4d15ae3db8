package sealer

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	token, err := s.Seal("tenant-1", "booking-42")
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	tenantID, bookingID, err := s.Open(token)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if tenantID != "tenant-1" {
		t.Errorf("tenantID = %q, want tenant-1", tenantID)
	}
	if bookingID != "booking-42" {
		t.Errorf("bookingID = %q, want booking-42", bookingID)
	}
}

func TestSealer_RejectsTamperedToken(t *testing.T) {
	s, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	token, err := s.Seal("tenant-1", "booking-42")
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, _, err := s.Open(tampered); err == nil {
		t.Error("Open() should reject a tampered token")
	}
}

func TestSealer_RejectsForeignKey(t *testing.T) {
	s1, _ := New(testKey(t))
	s2, _ := New(testKey(t))

	token, err := s1.Seal("tenant-1", "booking-42")
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	if _, _, err := s2.Open(token); err == nil {
		t.Error("a token sealed with one key should not open with another")
	}
}

func TestNew_RejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"wrong length", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.key); err == nil {
				t.Error("New() should reject the key")
			}
		})
	}
}
