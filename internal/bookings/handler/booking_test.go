package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "mais/pkg/errors"
	"mais/pkg/logger"
	"mais/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc             func(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, string, error)
	cancelFunc             func(ctx context.Context, tenantID string, id string, by string) (*model.Booking, error)
	cancelByTokenFunc      func(ctx context.Context, token string) (*model.Booking, error)
	handlePaymentEventFunc func(ctx context.Context, event *model.PaymentEvent) error
	getAvailabilityFunc    func(ctx context.Context, tenantID string, from, to time.Time) (*model.Availability, error)
}

func (m *mockBookingService) Create(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, tenantID, req)
	}
	return &model.Booking{ID: "bk-1", TenantID: tenantID}, "", nil
}

func (m *mockBookingService) GetByID(ctx context.Context, tenantID string, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, TenantID: tenantID}, nil
}

func (m *mockBookingService) List(ctx context.Context, tenantID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, tenantID string, id string, by string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, tenantID, id, by)
	}
	return &model.Booking{ID: id, TenantID: tenantID, Status: model.StatusCancelled}, nil
}

func (m *mockBookingService) CancelByToken(ctx context.Context, token string) (*model.Booking, error) {
	if m.cancelByTokenFunc != nil {
		return m.cancelByTokenFunc(ctx, token)
	}
	return &model.Booking{ID: "bk-1", Status: model.StatusCancelled}, nil
}

func (m *mockBookingService) HandlePaymentEvent(ctx context.Context, event *model.PaymentEvent) error {
	if m.handlePaymentEventFunc != nil {
		return m.handlePaymentEventFunc(ctx, event)
	}
	return nil
}

func (m *mockBookingService) GetAvailability(ctx context.Context, tenantID string, from, to time.Time) (*model.Availability, error) {
	if m.getAvailabilityFunc != nil {
		return m.getAvailabilityFunc(ctx, tenantID, from, to)
	}
	return &model.Availability{TenantID: tenantID, From: from, To: to}, nil
}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func tenantParams() httprouter.Params {
	return httprouter.Params{{Key: "tenantId", Value: "t-1"}}
}

func TestCreate_Success(t *testing.T) {
	mockService := &mockBookingService{
		createFunc: func(_ context.Context, tenantID string, _ *model.BookingRequest) (*model.Booking, string, error) {
			return &model.Booking{ID: "bk-1", TenantID: tenantID, Status: model.StatusPending}, "tok-abc", nil
		},
	}
	handler := NewBookingHandler(mockService, testLog())

	body := `{"date":"2026-09-15","client_email":"dana@example.com","client_name":"Dana Levi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req, tenantParams())

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Data CreateBookingResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.ManageToken != "tok-abc" {
		t.Errorf("manage_token = %q, want tok-abc", resp.Data.ManageToken)
	}
	if resp.Data.Booking == nil || resp.Data.Booking.ID != "bk-1" {
		t.Errorf("booking missing from create response: %+v", resp.Data)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	handler := NewBookingHandler(&mockBookingService{}, testLog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/bookings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Create(w, req, tenantParams())

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"double booking", apperrors.DoubleBooking("Requested slot is already booked"), http.StatusConflict, apperrors.CodeDoubleBooking},
		{"validation", apperrors.Validation("Invalid booking input", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"tenant missing", apperrors.NotFoundWithID("Tenant", "t-1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"storage failure", apperrors.Internal("Failed to create booking", nil), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockBookingService{
				createFunc: func(context.Context, string, *model.BookingRequest) (*model.Booking, string, error) {
					return nil, "", tt.err
				},
			}
			handler := NewBookingHandler(mockService, testLog())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/bookings", strings.NewReader(`{}`))
			w := httptest.NewRecorder()

			handler.Create(w, req, tenantParams())

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestCancel_AttributedToOwner(t *testing.T) {
	var gotBy string
	mockService := &mockBookingService{
		cancelFunc: func(_ context.Context, tenantID string, id string, by string) (*model.Booking, error) {
			gotBy = by
			return &model.Booking{ID: id, TenantID: tenantID, Status: model.StatusCancelled}, nil
		},
	}
	handler := NewBookingHandler(mockService, testLog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/bookings/bk-1/cancel", nil)
	w := httptest.NewRecorder()

	handler.Cancel(w, req, httprouter.Params{
		{Key: "tenantId", Value: "t-1"},
		{Key: "id", Value: "bk-1"},
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if gotBy != "owner" {
		t.Errorf("cancelled_by = %q, want owner", gotBy)
	}
}

func TestCancelByToken_InvalidToken(t *testing.T) {
	mockService := &mockBookingService{
		cancelByTokenFunc: func(context.Context, string) (*model.Booking, error) {
			return nil, apperrors.InvalidInput("Invalid manage token")
		},
	}
	handler := NewBookingHandler(mockService, testLog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/manage/garbage/cancel", nil)
	w := httptest.NewRecorder()

	handler.CancelByToken(w, req, httprouter.Params{{Key: "token", Value: "garbage"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetAvailability_DefaultWindow(t *testing.T) {
	var gotFrom, gotTo time.Time
	mockService := &mockBookingService{
		getAvailabilityFunc: func(_ context.Context, tenantID string, from, to time.Time) (*model.Availability, error) {
			gotFrom, gotTo = from, to
			return &model.Availability{TenantID: tenantID, From: from, To: to}, nil
		},
	}
	handler := NewBookingHandler(mockService, testLog())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/t-1/availability", nil)
	w := httptest.NewRecorder()

	handler.GetAvailability(w, req, tenantParams())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	wantDays := float64(defaultAvailabilityWindowDays)
	if days := gotTo.Sub(gotFrom).Hours() / 24; days < wantDays-1 || days > wantDays+1 {
		t.Errorf("default window = %.1f days, want about %.0f", days, wantDays)
	}
}

func TestPaymentWebhook(t *testing.T) {
	var gotEvent *model.PaymentEvent
	mockService := &mockBookingService{
		handlePaymentEventFunc: func(_ context.Context, event *model.PaymentEvent) error {
			gotEvent = event
			return nil
		},
	}
	handler := NewPaymentWebhookHandler(mockService, testLog())

	body := `{"type":"payment.succeeded","tenant_id":"t-1","booking_id":"bk-1","payment_id":"pay-9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Receive(w, req, httprouter.Params{})

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", w.Code, w.Body.String())
	}
	if gotEvent == nil || gotEvent.Type != model.PaymentSucceeded || gotEvent.BookingID != "bk-1" {
		t.Errorf("webhook event = %+v", gotEvent)
	}
}

func TestPaymentWebhook_InvalidBody(t *testing.T) {
	handler := NewPaymentWebhookHandler(&mockBookingService{}, testLog())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	handler.Receive(w, req, httprouter.Params{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
