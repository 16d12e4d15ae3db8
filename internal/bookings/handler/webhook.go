package handler

import (
	"encoding/json"
	"net/http"

	"mais/internal/bookings/service"
	httputil "mais/pkg/http"
	"mais/pkg/logger"
	"mais/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// PaymentWebhookHandler receives payment provider callbacks. It is mounted
// behind HMAC signature verification, never on the public API surface.
type PaymentWebhookHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewPaymentWebhookHandler(service service.BookingService, log *logger.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentWebhookHandler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Receive", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.HandlePaymentEvent(r.Context(), &event); err != nil {
		h.log.Warn("Payment webhook rejected",
			"event_type", event.Type,
			"tenant_id", event.TenantID,
			"booking_id", event.BookingID,
			"error", err,
		)
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Receive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PaymentWebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/webhook", h.Receive)
}
