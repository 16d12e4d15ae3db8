package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bookingserrors "mais/internal/bookings/errors"
	"mais/internal/bookings/guard"
	"mais/internal/bookings/repository"
	"mais/internal/bookings/validator"
	"mais/pkg/cache"
	"mais/pkg/config"
	apperrors "mais/pkg/errors"
	"mais/pkg/kafka"
	"mais/pkg/model"
	"mais/pkg/sanitizer"
	"mais/pkg/sealer"
)

type BookingService interface {
	Create(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, string, error)
	GetByID(ctx context.Context, tenantID string, id string) (*model.Booking, error)
	List(ctx context.Context, tenantID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, tenantID string, id string, by string) (*model.Booking, error)
	CancelByToken(ctx context.Context, token string) (*model.Booking, error)
	HandlePaymentEvent(ctx context.Context, event *model.PaymentEvent) error
	GetAvailability(ctx context.Context, tenantID string, from, to time.Time) (*model.Availability, error)
}

// TenantDirectory resolves tenants and their service offerings; backed by
// the tenant directory HTTP client in production.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetOffering(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error)
}

// EventPublisher emits booking events after committed writes.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// AvailabilityCache caches computed availability per tenant.
type AvailabilityCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	EvictTenant(tenantID string)
}

type bookingService struct {
	repo      repository.BookingRepository
	guard     *guard.Guard
	validator *validator.BookingValidator
	tenants   TenantDirectory
	sealer    *sealer.Sealer
	cache     AvailabilityCache
	producer  EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	g *guard.Guard,
	v *validator.BookingValidator,
	tenants TenantDirectory,
	s *sealer.Sealer,
	availabilityCache AvailabilityCache,
	producer EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		guard:     g,
		validator: v,
		tenants:   tenants,
		sealer:    s,
		cache:     availabilityCache,
		producer:  producer,
		cfg:       cfg,
	}
}

// Create runs the full write path: resolve tenant, normalize, validate,
// then let the guard claim the slot. On success it returns the booking and
// an opaque manage token for client self-service cancellation.
func (s *bookingService) Create(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, string, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	if !tenant.Active {
		return nil, "", apperrors.Forbidden("Tenant is not accepting bookings")
	}

	booking := s.buildBooking(tenant.ID, req)

	if tenant.BookingMode == model.ModeTimeslot {
		if err := s.applyOffering(ctx, tenant, booking); err != nil {
			return nil, "", err
		}
	}

	if err := s.validator.ValidateCreate(booking, tenant); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "tenant_id", tenantID, "error", err)
		return nil, "", apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}

	if err := s.guard.CreateBooking(ctx, booking); err != nil {
		return nil, "", err
	}

	token := ""
	if s.sealer != nil {
		token, err = s.sealer.Seal(tenant.ID, booking.ID)
		if err != nil {
			// The booking exists; a missing manage link is recoverable.
			s.cfg.Log.Warn("Failed to mint manage token", "booking_id", booking.ID, "error", err)
			token = ""
		}
	}

	s.afterWrite(ctx, model.EventBookingCreated, booking)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"tenant_id", booking.TenantID,
		"slot_key", booking.SlotKey(),
	)
	return booking, token, nil
}

// applyOffering resolves the requested offering and fixes the slot length
// from its duration. The offering, not the client, decides where the slot
// ends; together with start-time uniqueness this keeps aligned slots
// non-overlapping.
func (s *bookingService) applyOffering(ctx context.Context, tenant *model.Tenant, booking *model.Booking) error {
	if booking.ServiceID == "" {
		// The validator reports the missing field.
		return nil
	}

	offering, err := s.tenants.GetOffering(ctx, tenant.ID, booking.ServiceID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) || apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			return apperrors.Validation("Invalid booking input", map[string]any{
				"service_id": "no such service offering for this tenant",
			})
		}
		return err
	}
	if !offering.Active {
		return apperrors.Validation("Invalid booking input", map[string]any{
			"service_id": "service offering is not accepting bookings",
		})
	}

	if booking.StartTime != nil {
		end := booking.StartTime.Add(time.Duration(offering.DurationMin) * time.Minute)
		booking.EndTime = &end
	}
	return nil
}

func (s *bookingService) buildBooking(tenantID string, req *model.BookingRequest) *model.Booking {
	return &model.Booking{
		TenantID:       tenantID,
		Date:           sanitizer.NormalizeID(req.Date),
		ServiceID:      sanitizer.NormalizeID(req.ServiceID),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ClientTimezone: sanitizer.NormalizeID(req.ClientTimezone),
		ClientEmail:    sanitizer.NormalizeEmail(req.ClientEmail),
		ClientName:     sanitizer.NormalizeName(req.ClientName),
		Status:         model.StatusPending,
	}
}

func (s *bookingService) GetByID(ctx context.Context, tenantID string, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, tenantID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByTenant(ctx, tenantID, startTime, endTime)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "tenant_id", tenantID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByTenant(ctx, tenantID, startTime, endTime, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "tenant_id", tenantID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Cancel(ctx context.Context, tenantID string, id string, by string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.guard.Transition(ctx, tenantID, id, model.StatusCancelled, by)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, model.EventBookingCancelled, booking)
	s.cfg.Log.Info("Booking cancelled",
		"id", booking.ID,
		"tenant_id", booking.TenantID,
		"cancelled_by", by,
	)
	return booking, nil
}

func (s *bookingService) CancelByToken(ctx context.Context, token string) (*model.Booking, error) {
	if s.sealer == nil {
		return nil, apperrors.Internal("Manage tokens are not configured", nil)
	}

	tenantID, bookingID, err := s.sealer.Open(token)
	if err != nil {
		// Do not leak whether the token was malformed or just foreign.
		return nil, apperrors.InvalidInput("Invalid manage token")
	}

	return s.Cancel(ctx, tenantID, bookingID, "client")
}

func (s *bookingService) HandlePaymentEvent(ctx context.Context, event *model.PaymentEvent) error {
	if event.TenantID == "" || event.BookingID == "" {
		return apperrors.InvalidInput("tenant_id and booking_id are required")
	}

	var to string
	switch event.Type {
	case model.PaymentSucceeded:
		to = model.StatusPaid
	case model.PaymentRefunded:
		to = model.StatusRefunded
	default:
		return apperrors.InvalidInput("unknown payment event type: " + event.Type)
	}

	booking, err := s.guard.Transition(ctx, event.TenantID, event.BookingID, to, "payments")
	if err != nil {
		return err
	}

	s.afterWrite(ctx, model.EventBookingStatusChanged, booking)
	s.cfg.Log.Info("Payment event applied",
		"booking_id", booking.ID,
		"tenant_id", booking.TenantID,
		"status", booking.Status,
		"payment_id", event.PaymentID,
	)
	return nil
}

func (s *bookingService) GetAvailability(ctx context.Context, tenantID string, from, to time.Time) (*model.Availability, error) {
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}

	key := cache.Key(tenantID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if availability, ok := cached.(*model.Availability); ok {
				return availability, nil
			}
		}
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	availability := &model.Availability{
		TenantID:    tenant.ID,
		BookingMode: tenant.BookingMode,
		From:        from,
		To:          to,
	}

	switch tenant.BookingMode {
	case model.ModeDate:
		dates, err := s.repo.FindHeldDates(ctx, tenantID, from.Format("2006-01-02"), to.Format("2006-01-02"))
		if err != nil {
			return nil, apperrors.Internal("Failed to load availability", err)
		}
		sort.Strings(dates)
		availability.BookedDates = dates

	case model.ModeTimeslot:
		held, err := s.repo.FindHeldSlots(ctx, tenantID, from, to)
		if err != nil {
			return nil, apperrors.Internal("Failed to load availability", err)
		}
		slots := make([]model.BookedSlot, 0, len(held))
		for _, b := range held {
			if b.StartTime == nil || b.EndTime == nil {
				continue
			}
			slots = append(slots, model.BookedSlot{
				ServiceID: b.ServiceID,
				StartTime: *b.StartTime,
				EndTime:   *b.EndTime,
			})
		}
		availability.BookedSlots = slots

	default:
		return nil, apperrors.Internal("tenant has unknown booking mode", nil)
	}

	if s.cache != nil {
		s.cache.Set(key, availability)
	}

	return availability, nil
}

// afterWrite publishes the booking event and evicts the tenant's cached
// availability. Failures are logged, never surfaced: the write is already
// committed and the cache TTL backstops a lost event.
func (s *bookingService) afterWrite(ctx context.Context, eventType string, booking *model.Booking) {
	if s.cache != nil {
		s.cache.EvictTenant(booking.TenantID)
	}

	if s.producer == nil {
		return
	}

	event := model.BookingEvent{
		Type:        eventType,
		TenantID:    booking.TenantID,
		BookingID:   booking.ID,
		SlotKey:     booking.SlotKey(),
		Status:      booking.Status,
		ClientEmail: booking.ClientEmail,
		ClientName:  booking.ClientName,
		OccurredAt:  time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.TenantID).
		WithValue(event).
		WithEventType(eventType).
		WithTenantID(booking.TenantID).
		WithSource("bookings-service").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
