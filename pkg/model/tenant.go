package model

import "time"

// Tenant is the isolation boundary: every booking-related document carries
// its tenant's ID, and no uniqueness constraint or query spans tenants.
type Tenant struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	BookingMode  string    `json:"booking_mode" bson:"booking_mode" validate:"required,oneof=date timeslot"`
	Timezone     string    `json:"timezone" bson:"timezone" validate:"omitempty,timezone"`
	ContactPhone string    `json:"contact_phone" bson:"contact_phone" validate:"required,e164"`
	ContactEmail string    `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TenantUpdate struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	BookingMode  string `json:"booking_mode,omitempty" validate:"omitempty,oneof=date timeslot"`
	Timezone     string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	ContactPhone string `json:"contact_phone,omitempty" validate:"omitempty,e164"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Active       *bool  `json:"active,omitempty"`
}
