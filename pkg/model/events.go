package model

import "time"

// Booking event types published to the booking events topic after every
// committed write. Messages are keyed by tenant ID so read-side caches can
// evict everything scoped to that tenant, and so per-tenant ordering holds.
const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
)

const (
	TopicBookingEvents    = "mais.booking.events"
	TopicBookingEventsDLQ = "mais.booking.events.dlq"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	TenantID    string    `json:"tenant_id"`
	BookingID   string    `json:"booking_id"`
	SlotKey     string    `json:"slot_key"`
	Status      string    `json:"status"`
	ClientEmail string    `json:"client_email,omitempty"`
	ClientName  string    `json:"client_name,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
