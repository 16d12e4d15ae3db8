package model

import "time"

// ServiceOffering is a bookable service of a timeslot-mode tenant. Slot
// length is fixed per offering, so two bookings with distinct aligned start
// times never overlap.
type ServiceOffering struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID    string    `json:"tenant_id" bson:"tenant_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ServiceOfferingUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMin *int   `json:"duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	Active      *bool  `json:"active,omitempty"`
}
