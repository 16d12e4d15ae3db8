package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "mais/internal/bookings/errors"
	"mais/pkg/config"
	mongotx "mais/pkg/db/mongo"
	"mais/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// BookingRepository is the single typed write path for bookings. Callers
// hand it structs; it owns the one BSON encoding step and the translation
// of duplicate-key errors into ErrSlotTaken. Every read and mutation
// filters by tenant_id.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, tenantID string, id string) (*model.Booking, error)
	FindByTenant(ctx context.Context, tenantID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, error)
	CountByTenant(ctx context.Context, tenantID string, startTime, endTime *time.Time) (int64, error)
	UpdateStatus(ctx context.Context, tenantID string, id string, fromStatuses []string, to string, slotHeld bool, cancelledBy string) (int64, error)
	FindHeldDates(ctx context.Context, tenantID string, fromDate, toDate string) ([]string, error)
	FindHeldSlots(ctx context.Context, tenantID string, from, to time.Time) ([]*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// Create inserts the booking. The insert is the conflict check: when a live
// booking already holds the slot, the partial unique index rejects the write
// and the duplicate-key error comes back as ErrSlotTaken.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrSlotTaken, booking.SlotKey())
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, tenantID string, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "tenant_id": tenantID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByTenant(ctx context.Context, tenantID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := tenantWindowFilter(tenantID, startTime, endTime)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByTenant(ctx context.Context, tenantID string, startTime, endTime *time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, tenantWindowFilter(tenantID, startTime, endTime))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

// UpdateStatus is a compare-and-set: the filter pins the current status to
// the allowed sources, so a concurrent transition makes this a no-op rather
// than an overwrite. Returns the number of matched documents; zero means
// the caller must re-read and classify.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, tenantID string, id string, fromStatuses []string, to string, slotHeld bool, cancelledBy string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":       objectID,
		"tenant_id": tenantID,
		"status":    bson.M{"$in": fromStatuses},
	}

	// status and slot_held always change together
	set := bson.M{
		"status":    to,
		"slot_held": slotHeld,
	}
	if to == model.StatusCancelled {
		set["cancelled_at"] = time.Now().UTC().Truncate(time.Millisecond)
		set["cancelled_by"] = cancelledBy
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("failed to update booking status: %w", err)
	}

	return result.MatchedCount, nil
}

func (r *mongoBookingRepository) FindHeldDates(ctx context.Context, tenantID string, fromDate, toDate string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id": tenantID,
		"slot_held": true,
		"date":      bson.M{"$gte": fromDate, "$lte": toDate},
	}

	values, err := r.collection.Distinct(ctx, "date", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find held dates: %w", err)
	}

	dates := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			dates = append(dates, s)
		}
	}

	return dates, nil
}

func (r *mongoBookingRepository) FindHeldSlots(ctx context.Context, tenantID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":  tenantID,
		"slot_held":  true,
		"start_time": bson.M{"$gte": from, "$lt": to},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find held slots: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode held slots: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func tenantWindowFilter(tenantID string, startTime, endTime *time.Time) bson.M {
	filter := bson.M{"tenant_id": tenantID}

	window := bson.M{}
	if startTime != nil {
		window["$gte"] = *startTime
	}
	if endTime != nil {
		window["$lt"] = *endTime
	}
	if len(window) > 0 {
		filter["start_time"] = window
	}

	return filter
}
