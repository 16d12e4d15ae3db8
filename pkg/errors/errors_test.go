package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection reset")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestDoubleBooking(t *testing.T) {
	err := DoubleBooking("slot no longer available")

	if err.Code != CodeDoubleBooking {
		t.Errorf("expected code %s, got %s", CodeDoubleBooking, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Message != "slot no longer available" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestDoubleBooking_DistinctFromInternal(t *testing.T) {
	conflict := DoubleBooking("slot no longer available")
	storage := Internal("insert failed", errors.New("socket closed"))

	if conflict.Code == storage.Code {
		t.Fatal("double booking and storage errors must carry distinct codes")
	}
	if !IsCode(conflict, CodeDoubleBooking) {
		t.Error("IsCode should match the double booking code")
	}
	if IsCode(storage, CodeDoubleBooking) {
		t.Error("storage errors must never classify as double booking")
	}
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("cancelled", "confirmed")

	if err.Code != CodeInvalidTransition {
		t.Errorf("expected code %s, got %s", CodeInvalidTransition, err.Code)
	}
	if err.Details["from"] != "cancelled" || err.Details["to"] != "confirmed" {
		t.Errorf("expected from/to details, got %v", err.Details)
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id detail '12345', got %v", err.Details["id"])
	}
}

func TestAsAppError_PassThrough(t *testing.T) {
	original := Validation("bad input", nil)
	got := AsAppError(original)
	if got != original {
		t.Error("AsAppError should return the original AppError unchanged")
	}
}

func TestAsAppError_WrapsUnknown(t *testing.T) {
	got := AsAppError(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Errorf("unknown errors should become %s, got %s", CodeInternal, got.Code)
	}
}
