package notifications

import (
	"context"
	"fmt"

	"mais/pkg/kafka"
	"mais/pkg/logger"
	"mais/pkg/model"
)

// Notifier delivers client-facing messages. Implementations wrap an email
// or SMS provider; delivery failures bubble up so the consumer's retry and
// DLQ policy applies.
type Notifier interface {
	SendConfirmation(ctx context.Context, event *model.BookingEvent) error
	SendCancellation(ctx context.Context, event *model.BookingEvent) error
}

// Worker turns booking events into client notifications.
type Worker struct {
	notifier Notifier
	log      *logger.Logger
}

func NewWorker(notifier Notifier, log *logger.Logger) *Worker {
	return &Worker{
		notifier: notifier,
		log:      log,
	}
}

// Handler decodes a booking event and dispatches the matching notification.
// Unknown event types are acknowledged without action so a schema addition
// upstream never wedges the consumer group.
func (w *Worker) Handler() kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return fmt.Errorf("%w: %v", kafka.ErrInvalidMessage, err)
		}

		if event.ClientEmail == "" {
			w.log.Debug("Booking event carries no client contact, skipping",
				"event_type", event.Type,
				"booking_id", event.BookingID,
			)
			return nil
		}

		switch event.Type {
		case model.EventBookingCreated:
			if err := w.notifier.SendConfirmation(ctx, &event); err != nil {
				return fmt.Errorf("failed to send confirmation for booking %s: %w", event.BookingID, err)
			}
		case model.EventBookingCancelled:
			if err := w.notifier.SendCancellation(ctx, &event); err != nil {
				return fmt.Errorf("failed to send cancellation notice for booking %s: %w", event.BookingID, err)
			}
		default:
			w.log.Debug("Ignoring booking event type", "event_type", event.Type)
			return nil
		}

		w.log.Info("Notification dispatched",
			"event_type", event.Type,
			"tenant_id", event.TenantID,
			"booking_id", event.BookingID,
		)
		return nil
	}
}

// LogNotifier is the default Notifier: it records the notification instead
// of delivering it. Stands in until a provider integration is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendConfirmation(_ context.Context, event *model.BookingEvent) error {
	n.log.Info("Would send booking confirmation",
		"client_email", event.ClientEmail,
		"client_name", event.ClientName,
		"booking_id", event.BookingID,
		"slot_key", event.SlotKey,
	)
	return nil
}

func (n *LogNotifier) SendCancellation(_ context.Context, event *model.BookingEvent) error {
	n.log.Info("Would send booking cancellation notice",
		"client_email", event.ClientEmail,
		"client_name", event.ClientName,
		"booking_id", event.BookingID,
	)
	return nil
}
