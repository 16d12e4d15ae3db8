package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"mais/internal/bookings/service"
	httputil "mais/pkg/http"
	"mais/pkg/logger"
	"mais/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// defaultAvailabilityWindowDays bounds an availability query when the
// caller omits the window.
const defaultAvailabilityWindowDays = 30

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// CreateBookingResponse pairs the created booking with the opaque manage
// token the client uses for self-service cancellation. The token is
// returned exactly once, here.
type CreateBookingResponse struct {
	Booking     *model.Booking `json:"booking"`
	ManageToken string         `json:"manage_token,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenantId")

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, token, err := h.service.Create(r.Context(), tenantID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, CreateBookingResponse{Booking: booking, ManageToken: token}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenantId")
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), tenantID, id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenantId")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	startTime, endTime, err := httputil.ExtractTimeWindow(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.List(r.Context(), tenantID, startTime, endTime, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenantId")
	id := ps.ByName("id")

	booking, err := h.service.Cancel(r.Context(), tenantID, id, "owner")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

// CancelByToken serves the client-facing manage link. No tenant ID in the
// path: the token itself carries tenant and booking identity.
func (h *BookingHandler) CancelByToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	booking, err := h.service.CancelByToken(r.Context(), token)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CancelByToken", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "CancelByToken", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenantID := ps.ByName("tenantId")

	fromPtr, toPtr, err := httputil.ExtractTimeWindow(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	from := time.Now()
	if fromPtr != nil {
		from = *fromPtr
	}
	to := from.AddDate(0, 0, defaultAvailabilityWindowDays)
	if toPtr != nil {
		to = *toPtr
	}

	availability, err := h.service.GetAvailability(r.Context(), tenantID, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tenants/:tenantId/bookings", h.Create)
	router.GET("/api/v1/tenants/:tenantId/bookings", h.List)
	router.GET("/api/v1/tenants/:tenantId/bookings/:id", h.GetByID)
	router.POST("/api/v1/tenants/:tenantId/bookings/:id/cancel", h.Cancel)
	router.GET("/api/v1/tenants/:tenantId/availability", h.GetAvailability)
	router.POST("/api/v1/bookings/manage/:token/cancel", h.CancelByToken)
}
