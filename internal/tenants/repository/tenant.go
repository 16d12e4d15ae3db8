package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingsrepo "mais/internal/bookings/repository"
	tenantserrors "mais/internal/tenants/errors"
	"mais/pkg/config"
	mongotx "mais/pkg/db/mongo"
	"mais/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName         = "Tenants"
	OfferingCollectionName = "ServiceOfferings"
)

type mongoTenantRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	tenants   *mongo.Collection
	offerings *mongo.Collection
	txManager mongotx.TransactionManager
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tenant, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, tenant *model.Tenant) error
	Delete(ctx context.Context, id string) error

	CreateOffering(ctx context.Context, offering *model.ServiceOffering) error
	FindOfferingByID(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error)
	FindOfferingsByTenant(ctx context.Context, tenantID string) ([]*model.ServiceOffering, error)
	UpdateOffering(ctx context.Context, tenantID string, id string, offering *model.ServiceOffering) error
	DeleteOffering(ctx context.Context, tenantID string, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTenantRepository(cfg *config.Config) TenantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTenantRepository{
		cfg:       cfg,
		db:        db,
		tenants:   db.Collection(CollectionName),
		offerings: db.Collection(OfferingCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoTenantRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tenant.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.tenants.InsertOne(ctx, tenant)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		tenant.ID = oid.Hex()
	}

	return nil
}

func (r *mongoTenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	var tenant model.Tenant
	err = r.tenants.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	return &tenant, nil
}

func (r *mongoTenantRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tenant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.tenants.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var tenants []*model.Tenant
	if err = cursor.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("failed to decode tenants: %w", err)
	}

	return tenants, nil
}

func (r *mongoTenantRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.tenants.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return count, nil
}

func (r *mongoTenantRepository) Update(ctx context.Context, id string, tenant *model.Tenant) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          tenant.Name,
			"booking_mode":  tenant.BookingMode,
			"timezone":      tenant.Timezone,
			"contact_phone": tenant.ContactPhone,
			"contact_email": tenant.ContactEmail,
			"active":        tenant.Active,
		},
	}

	result, err := r.tenants.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, id)
	}

	return nil
}

// Delete removes the tenant and cascades to its bookings and service
// offerings inside one transaction, so a half-deleted tenant is never
// observable.
func (r *mongoTenantRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.tenants.DeleteOne(sessCtx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to delete tenant: %w", err)
		}
		if result.DeletedCount == 0 {
			return fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, id)
		}

		tenantFilter := bson.M{"tenant_id": id}
		if _, err := r.offerings.DeleteMany(sessCtx, tenantFilter); err != nil {
			return fmt.Errorf("failed to delete tenant offerings: %w", err)
		}
		if _, err := r.db.Collection(bookingsrepo.CollectionName).DeleteMany(sessCtx, tenantFilter); err != nil {
			return fmt.Errorf("failed to delete tenant bookings: %w", err)
		}

		return nil
	})
}

func (r *mongoTenantRepository) CreateOffering(ctx context.Context, offering *model.ServiceOffering) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	offering.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.offerings.InsertOne(ctx, offering)
	if err != nil {
		return fmt.Errorf("failed to create service offering: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		offering.ID = oid.Hex()
	}

	return nil
}

func (r *mongoTenantRepository) FindOfferingByID(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	var offering model.ServiceOffering
	err = r.offerings.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}).Decode(&offering)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tenantserrors.ErrOfferingNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service offering: %w", err)
	}
	return &offering, nil
}

func (r *mongoTenantRepository) FindOfferingsByTenant(ctx context.Context, tenantID string) ([]*model.ServiceOffering, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.offerings.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query service offerings: %w", err)
	}
	defer cursor.Close(ctx)

	var offerings []*model.ServiceOffering
	if err = cursor.All(ctx, &offerings); err != nil {
		return nil, fmt.Errorf("failed to decode service offerings: %w", err)
	}

	return offerings, nil
}

func (r *mongoTenantRepository) UpdateOffering(ctx context.Context, tenantID string, id string, offering *model.ServiceOffering) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":         offering.Name,
			"duration_min": offering.DurationMin,
			"active":       offering.Active,
		},
	}

	result, err := r.offerings.UpdateOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID}, update)
	if err != nil {
		return fmt.Errorf("failed to update service offering: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tenantserrors.ErrOfferingNotFound, id)
	}

	return nil
}

func (r *mongoTenantRepository) DeleteOffering(ctx context.Context, tenantID string, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	result, err := r.offerings.DeleteOne(ctx, bson.M{"_id": objectID, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("failed to delete service offering: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", tenantserrors.ErrOfferingNotFound, id)
	}

	return nil
}

func (r *mongoTenantRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
