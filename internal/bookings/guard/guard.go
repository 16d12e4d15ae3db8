package guard

import (
	"context"
	"errors"

	bookingserrors "mais/internal/bookings/errors"
	apperrors "mais/pkg/errors"
	"mais/pkg/logger"
	"mais/pkg/model"
)

// BookingStore is the slice of the repository the guard needs. The mongo
// repository satisfies it; tests use an in-memory fake.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, fromStatuses []string, to string, slotHeld bool, cancelledBy string) (int64, error)
}

// transitionSources maps a target status to the statuses it may be reached
// from. Terminal statuses (cancelled, refunded, fulfilled) appear in no
// value set, so nothing ever transitions out of them.
var transitionSources = map[string][]string{
	model.StatusConfirmed: {model.StatusPending},
	model.StatusPaid:      {model.StatusPending, model.StatusConfirmed},
	model.StatusCancelled: {model.StatusPending, model.StatusConfirmed},
	model.StatusRefunded:  {model.StatusPaid},
	model.StatusFulfilled: {model.StatusConfirmed, model.StatusPaid},
}

// AllowedSources returns the statuses from which `to` is reachable.
func AllowedSources(to string) []string {
	return transitionSources[to]
}

// Guard enforces the two booking invariants: at most one live booking per
// tenant-scoped slot, and status changes only along the lifecycle graph.
// It holds no locks; exclusivity comes from the storage layer's partial
// unique indexes, which is what keeps the guarantee intact across
// horizontally scaled instances.
type Guard struct {
	store BookingStore
	log   *logger.Logger
}

func New(store BookingStore, log *logger.Logger) *Guard {
	return &Guard{
		store: store,
		log:   log,
	}
}

// CreateBooking atomically claims the booking's slot. The insert is the
// conflict check: when the slot is already held, the store reports
// ErrSlotTaken and the caller gets DOUBLE_BOOKING. Any other storage
// failure is INTERNAL_ERROR; the two must never be conflated, or clients
// would retry conflicts and give up on outages.
func (g *Guard) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if booking.Status == "" {
		booking.Status = model.StatusPending
	}

	if !model.HoldsSlot(booking.Status) {
		return apperrors.InvalidInput("a new booking must start in a slot-holding status")
	}
	booking.SlotHeld = true

	if err := g.store.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			g.log.Info("Slot contention on create",
				"tenant_id", booking.TenantID,
				"slot_key", booking.SlotKey(),
			)
			return apperrors.DoubleBooking("The requested slot is already booked")
		}
		return apperrors.Internal("Failed to create booking", err)
	}

	return nil
}

// Transition moves a booking to a new status with a compare-and-set
// filtered on the allowed source statuses. A zero-match update is re-read
// once and classified: missing document means NotFound, anything else
// means the current status does not permit the change.
func (g *Guard) Transition(ctx context.Context, tenantID string, id string, to string, by string) (*model.Booking, error) {
	sources := AllowedSources(to)
	if len(sources) == 0 {
		return nil, apperrors.InvalidInput("unknown or unreachable target status: " + to)
	}

	matched, err := g.store.UpdateStatus(ctx, tenantID, id, sources, to, model.HoldsSlot(to), by)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	if matched == 0 {
		existing, findErr := g.store.FindByID(ctx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, bookingserrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(findErr, bookingserrors.ErrInvalidID) {
				return nil, apperrors.InvalidInput("Invalid booking ID format")
			}
			return nil, apperrors.Internal("Failed to check booking status", findErr)
		}

		g.log.Warn("Rejected booking status transition",
			"tenant_id", tenantID,
			"booking_id", id,
			"from", existing.Status,
			"to", to,
		)
		return nil, apperrors.InvalidTransition(existing.Status, to)
	}

	updated, err := g.store.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to re-read booking after transition", err)
	}

	return updated, nil
}
