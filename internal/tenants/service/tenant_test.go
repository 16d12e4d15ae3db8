package service

import (
	"context"
	"fmt"
	"testing"

	tenantserrors "mais/internal/tenants/errors"
	"mais/internal/tenants/validator"
	"mais/pkg/config"
	mongotx "mais/pkg/db/mongo"
	apperrors "mais/pkg/errors"
	"mais/pkg/logger"
	"mais/pkg/model"
)

type mockTenantRepo struct {
	createFunc           func(ctx context.Context, tenant *model.Tenant) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Tenant, error)
	deleteFunc           func(ctx context.Context, id string) error
	createOfferingFunc   func(ctx context.Context, offering *model.ServiceOffering) error
	findOfferingByIDFunc func(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error)
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tenant)
	}
	tenant.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, id)
}

func (m *mockTenantRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tenant, error) {
	return []*model.Tenant{}, nil
}

func (m *mockTenantRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockTenantRepo) Update(ctx context.Context, id string, tenant *model.Tenant) error {
	return nil
}

func (m *mockTenantRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTenantRepo) CreateOffering(ctx context.Context, offering *model.ServiceOffering) error {
	if m.createOfferingFunc != nil {
		return m.createOfferingFunc(ctx, offering)
	}
	offering.ID = "507f1f77bcf86cd799439012"
	return nil
}

func (m *mockTenantRepo) FindOfferingByID(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error) {
	if m.findOfferingByIDFunc != nil {
		return m.findOfferingByIDFunc(ctx, tenantID, id)
	}
	return nil, fmt.Errorf("%w: %s", tenantserrors.ErrOfferingNotFound, id)
}

func (m *mockTenantRepo) FindOfferingsByTenant(ctx context.Context, tenantID string) ([]*model.ServiceOffering, error) {
	return []*model.ServiceOffering{}, nil
}

func (m *mockTenantRepo) UpdateOffering(ctx context.Context, tenantID string, id string, offering *model.ServiceOffering) error {
	return nil
}

func (m *mockTenantRepo) DeleteOffering(ctx context.Context, tenantID string, id string) error {
	return nil
}

func (m *mockTenantRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func newService(repo *mockTenantRepo) TenantService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
	return NewTenantService(repo, validator.NewTenantValidator(), cfg)
}

func TestCreate_DefaultsTimezoneFromPhone(t *testing.T) {
	var created *model.Tenant
	repo := &mockTenantRepo{
		createFunc: func(_ context.Context, tenant *model.Tenant) error {
			tenant.ID = "507f1f77bcf86cd799439011"
			created = tenant
			return nil
		},
	}
	svc := newService(repo)

	tenant := &model.Tenant{
		Name:         "  Studio   One ",
		BookingMode:  model.ModeDate,
		ContactPhone: "+972501234567",
	}
	if err := svc.Create(context.Background(), tenant); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if created.Timezone != "Asia/Jerusalem" {
		t.Errorf("timezone = %q, want Asia/Jerusalem (inferred from phone)", created.Timezone)
	}
	if created.Name != "Studio One" {
		t.Errorf("name not normalized: %q", created.Name)
	}
	if !created.Active {
		t.Error("new tenant should start active")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newService(&mockTenantRepo{})

	tenant := &model.Tenant{
		Name:         "Studio One",
		BookingMode:  "walk-in",
		ContactPhone: "+972501234567",
	}
	err := svc.Create(context.Background(), tenant)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newService(&mockTenantRepo{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439011")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestDelete_InvalidID(t *testing.T) {
	repo := &mockTenantRepo{
		deleteFunc: func(_ context.Context, id string) error {
			return fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
		},
	}
	svc := newService(repo)

	err := svc.Delete(context.Background(), "not-an-object-id")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCreateOffering_RejectsDateModeTenant(t *testing.T) {
	repo := &mockTenantRepo{
		findByIDFunc: func(_ context.Context, id string) (*model.Tenant, error) {
			return &model.Tenant{
				ID:           id,
				Name:         "Studio One",
				BookingMode:  model.ModeDate,
				ContactPhone: "+972501234567",
				Active:       true,
			}, nil
		},
	}
	svc := newService(repo)

	offering := &model.ServiceOffering{Name: "Haircut", DurationMin: 30}
	err := svc.CreateOffering(context.Background(), "507f1f77bcf86cd799439011", offering)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestGetOffering(t *testing.T) {
	repo := &mockTenantRepo{
		findOfferingByIDFunc: func(_ context.Context, tenantID string, id string) (*model.ServiceOffering, error) {
			return &model.ServiceOffering{
				ID:          id,
				TenantID:    tenantID,
				Name:        "Haircut",
				DurationMin: 30,
				Active:      true,
			}, nil
		},
	}
	svc := newService(repo)

	offering, err := svc.GetOffering(context.Background(), "507f1f77bcf86cd799439011", "507f1f77bcf86cd799439012")
	if err != nil {
		t.Fatalf("GetOffering() error: %v", err)
	}
	if offering.DurationMin != 30 {
		t.Errorf("duration_min = %d, want 30", offering.DurationMin)
	}
}

func TestGetOffering_NotFound(t *testing.T) {
	svc := newService(&mockTenantRepo{})

	_, err := svc.GetOffering(context.Background(), "507f1f77bcf86cd799439011", "507f1f77bcf86cd799439012")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestCreateOffering_BindsTenantID(t *testing.T) {
	var created *model.ServiceOffering
	repo := &mockTenantRepo{
		findByIDFunc: func(_ context.Context, id string) (*model.Tenant, error) {
			return &model.Tenant{
				ID:           id,
				Name:         "Studio One",
				BookingMode:  model.ModeTimeslot,
				ContactPhone: "+972501234567",
				Active:       true,
			}, nil
		},
		createOfferingFunc: func(_ context.Context, offering *model.ServiceOffering) error {
			offering.ID = "507f1f77bcf86cd799439012"
			created = offering
			return nil
		},
	}
	svc := newService(repo)

	offering := &model.ServiceOffering{
		TenantID:    "attacker-controlled",
		Name:        "Haircut",
		DurationMin: 30,
	}
	if err := svc.CreateOffering(context.Background(), "507f1f77bcf86cd799439011", offering); err != nil {
		t.Fatalf("CreateOffering() error: %v", err)
	}

	if created.TenantID != "507f1f77bcf86cd799439011" {
		t.Errorf("offering tenant_id = %q, must come from the path, not the body", created.TenantID)
	}
}
