package model

// Payment webhook event types accepted from the payment provider.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentRefunded  = "payment.refunded"
)

// PaymentEvent is the signature-verified callback payload from the payment
// provider. It drives booking status transitions, never slot changes.
type PaymentEvent struct {
	Type      string `json:"type" validate:"required,oneof=payment.succeeded payment.refunded"`
	TenantID  string `json:"tenant_id" validate:"required"`
	BookingID string `json:"booking_id" validate:"required"`
	PaymentID string `json:"payment_id,omitempty"`
}
