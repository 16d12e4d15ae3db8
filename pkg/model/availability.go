package model

import "time"

// Availability reports what is already taken for a tenant inside a window.
// Clients derive free slots from it; the server never promises a slot is
// free, only the create path decides that.
type Availability struct {
	TenantID    string       `json:"tenant_id"`
	BookingMode string       `json:"booking_mode"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	BookedDates []string     `json:"booked_dates,omitempty"`
	BookedSlots []BookedSlot `json:"booked_slots,omitempty"`
}

type BookedSlot struct {
	ServiceID string    `json:"service_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
