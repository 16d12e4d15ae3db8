package kafka

import (
	"errors"
	"testing"
	"time"
)

func TestMessageBuilder_Build(t *testing.T) {
	payload := map[string]string{"booking_id": "b-1", "tenant_id": "t-1"}

	msg := NewMessage().
		WithKey("t-1").
		WithValue(payload).
		WithEventType("booking.created").
		WithTenantID("t-1").
		WithSource("bookings-service").
		Build()

	if msg.Key != "t-1" {
		t.Errorf("Key = %q, want %q", msg.Key, "t-1")
	}
	if msg.GetEventID() == "" {
		t.Error("Build() should generate an event ID")
	}
	if msg.GetEventType() != "booking.created" {
		t.Errorf("EventType = %q, want booking.created", msg.GetEventType())
	}
	if msg.GetTenantID() != "t-1" {
		t.Errorf("TenantID = %q, want t-1", msg.GetTenantID())
	}
	if _, exists := msg.GetHeader(HeaderTimestamp); !exists {
		t.Error("Build() should set a timestamp header")
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if decoded["booking_id"] != "b-1" {
		t.Errorf("decoded booking_id = %q, want b-1", decoded["booking_id"])
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := NewMessage().WithKey("t-1").WithRawValue([]byte(`{}`)).Build()

	if got := msg.GetRetryCount(); got != 0 {
		t.Errorf("initial retry count = %d, want 0", got)
	}

	msg.IncrementRetryCount()
	msg.IncrementRetryCount()

	if got := msg.GetRetryCount(); got != 2 {
		t.Errorf("retry count after two increments = %d, want 2", got)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		retries int
		max     int
		want    bool
	}{
		{"transient under limit", errors.New("connection refused"), 0, 3, true},
		{"transient at limit", errors.New("i/o timeout"), 3, 3, false},
		{"permanent", NewPermanentError("bad payload", nil), 0, 3, false},
		{"business", NewBusinessError("booking not found", nil), 0, 3, false},
		{"nil error", nil, 0, 3, false},
		{"unclassified defaults to permanent", errors.New("something odd"), 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err, tt.retries, tt.max); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError_WrappedKafkaError(t *testing.T) {
	inner := NewTransientError("broker unavailable", errors.New("dial tcp"))
	wrapped := errors.Join(errors.New("publish failed"), inner)

	if got := ClassifyError(wrapped); got != ErrorTypeTransient {
		t.Errorf("ClassifyError() = %v, want ErrorTypeTransient", got)
	}
}

func TestMessageBuilder_TimestampPreserved(t *testing.T) {
	before := time.Now()
	msg := NewMessage().WithKey("k").WithRawValue([]byte(`{}`)).Build()

	if msg.Timestamp.Before(before.Add(-time.Second)) {
		t.Error("Build() should stamp the message with the current time")
	}
}
