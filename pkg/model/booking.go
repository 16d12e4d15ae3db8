package model

import (
	"fmt"
	"time"
)

// Booking statuses. A booking holds its slot while pending, confirmed or
// paid; cancelled, refunded and fulfilled are terminal and release it.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusFulfilled = "fulfilled"
)

// Tenant booking modes.
const (
	ModeDate     = "date"
	ModeTimeslot = "timeslot"
)

// Booking is a reservation owned by exactly one tenant. Exactly one of the
// two slot identities is populated: Date for whole-day tenants, or
// ServiceID+StartTime/EndTime for timeslot tenants. SlotHeld is the derived
// flag the partial unique indexes filter on; it is written together with
// Status on every status change, never independently.
type Booking struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID       string     `json:"tenant_id" bson:"tenant_id" validate:"required,mongodb"`
	Date           string     `json:"date,omitempty" bson:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ServiceID      string     `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,mongodb"`
	StartTime      *time.Time `json:"start_time,omitempty" bson:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	ClientTimezone string     `json:"client_timezone,omitempty" bson:"client_timezone,omitempty" validate:"omitempty,timezone"`
	ClientEmail    string     `json:"client_email" bson:"client_email" validate:"required,email"`
	ClientName     string     `json:"client_name" bson:"client_name" validate:"required,min=2,max=100"`
	Status         string     `json:"status" bson:"status" validate:"required,oneof=pending confirmed paid cancelled refunded fulfilled"`
	SlotHeld       bool       `json:"-" bson:"slot_held"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy    string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the client payload for creating a booking. The tenant
// identity comes from the URL, the booking mode from the tenant record.
type BookingRequest struct {
	Date           string     `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ServiceID      string     `json:"service_id,omitempty" validate:"omitempty,mongodb"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	ClientTimezone string     `json:"client_timezone,omitempty" validate:"omitempty,timezone"`
	ClientEmail    string     `json:"client_email" validate:"required,email"`
	ClientName     string     `json:"client_name" validate:"required,min=2,max=100"`
}

// HoldsSlot reports whether a booking in the given status occupies its slot
// for uniqueness purposes.
func HoldsSlot(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusPaid:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusCancelled, StatusRefunded, StatusFulfilled:
		return true
	}
	return false
}

// SlotKey is the tenant-scoped identity of the slot this booking occupies.
// TenantID leads the key so identical dates or start times never collide
// across tenants.
func (b *Booking) SlotKey() string {
	if b.Date != "" {
		return fmt.Sprintf("%s|%s", b.TenantID, b.Date)
	}
	var start int64
	if b.StartTime != nil {
		start = b.StartTime.Unix()
	}
	return fmt.Sprintf("%s|%s|%d", b.TenantID, b.ServiceID, start)
}
