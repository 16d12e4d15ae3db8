package service

import (
	"context"
	"errors"
	"sync"

	tenantserrors "mais/internal/tenants/errors"
	"mais/internal/tenants/repository"
	"mais/internal/tenants/validator"
	"mais/pkg/config"
	apperrors "mais/pkg/errors"
	"mais/pkg/locale"
	"mais/pkg/model"
	"mais/pkg/sanitizer"
)

type TenantService interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Tenant, int64, error)
	Update(ctx context.Context, id string, updates *model.TenantUpdate) (*model.Tenant, error)
	Delete(ctx context.Context, id string) error

	CreateOffering(ctx context.Context, tenantID string, offering *model.ServiceOffering) error
	GetOffering(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error)
	GetOfferings(ctx context.Context, tenantID string) ([]*model.ServiceOffering, error)
	UpdateOffering(ctx context.Context, tenantID string, id string, updates *model.ServiceOfferingUpdate) (*model.ServiceOffering, error)
	DeleteOffering(ctx context.Context, tenantID string, id string) error
}

type tenantService struct {
	repo      repository.TenantRepository
	validator *validator.TenantValidator
	cfg       *config.Config
}

func NewTenantService(
	repo repository.TenantRepository,
	v *validator.TenantValidator,
	cfg *config.Config,
) TenantService {
	return &tenantService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *tenantService) Create(ctx context.Context, tenant *model.Tenant) error {
	s.sanitize(tenant)
	s.applyDefaults(tenant)

	if err := s.validator.Validate(tenant); err != nil {
		s.cfg.Log.Warn("Tenant validation failed",
			"name", tenant.Name,
			"contact_phone", tenant.ContactPhone,
			"error", err,
		)
		return apperrors.Validation("Tenant validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		s.cfg.Log.Error("Failed to create tenant",
			"name", tenant.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create tenant", err)
	}

	s.cfg.Log.Info("Tenant created successfully",
		"id", tenant.ID,
		"name", tenant.Name,
		"booking_mode", tenant.BookingMode,
		"timezone", tenant.Timezone,
	)

	return nil
}

func (s *tenantService) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}

	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tenant", id)
		}
		if errors.Is(err, tenantserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid tenant ID format")
		}
		s.cfg.Log.Error("Failed to get tenant by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve tenant", err)
	}

	return tenant, nil
}

func (s *tenantService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Tenant, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var tenants []*model.Tenant
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count tenants", "error", errCount)
			errCount = apperrors.Internal("Failed to count tenants", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		tenants, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list tenants", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve tenants", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return tenants, count, nil
}

func (s *tenantService) Update(ctx context.Context, id string, updates *model.TenantUpdate) (*model.Tenant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Tenant validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Tenant validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Tenant", id)
		}
		s.cfg.Log.Error("Failed to update tenant", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update tenant", err)
	}

	s.cfg.Log.Info("Tenant updated successfully", "id", id, "name", merged.Name)
	return merged, nil
}

// Delete removes the tenant and everything scoped to it. The repository
// runs the cascade in one transaction.
func (s *tenantService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Tenant ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Tenant", id)
		}
		if errors.Is(err, tenantserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid tenant ID format")
		}
		s.cfg.Log.Error("Failed to delete tenant", "id", id, "error", err)
		return apperrors.Internal("Failed to delete tenant", err)
	}

	s.cfg.Log.Info("Tenant deleted with bookings and offerings", "id", id)
	return nil
}

func (s *tenantService) CreateOffering(ctx context.Context, tenantID string, offering *model.ServiceOffering) error {
	tenant, err := s.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.BookingMode != model.ModeTimeslot {
		return apperrors.InvalidInput("Service offerings apply to timeslot-mode tenants only")
	}

	offering.TenantID = tenant.ID
	offering.Name = sanitizer.NormalizeName(offering.Name)

	if err := s.validator.ValidateOffering(offering); err != nil {
		s.cfg.Log.Warn("Service offering validation failed",
			"tenant_id", tenantID,
			"name", offering.Name,
			"error", err,
		)
		return apperrors.Validation("Service offering validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.CreateOffering(ctx, offering); err != nil {
		s.cfg.Log.Error("Failed to create service offering", "tenant_id", tenantID, "error", err)
		return apperrors.Internal("Failed to create service offering", err)
	}

	s.cfg.Log.Info("Service offering created successfully",
		"id", offering.ID,
		"tenant_id", tenantID,
		"duration_min", offering.DurationMin,
	)
	return nil
}

func (s *tenantService) GetOffering(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service offering ID cannot be empty")
	}

	offering, err := s.repo.FindOfferingByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, tenantserrors.ErrOfferingNotFound) {
			return nil, apperrors.NotFoundWithID("Service offering", id)
		}
		if errors.Is(err, tenantserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service offering ID format")
		}
		s.cfg.Log.Error("Failed to get service offering", "tenant_id", tenantID, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service offering", err)
	}

	return offering, nil
}

func (s *tenantService) GetOfferings(ctx context.Context, tenantID string) ([]*model.ServiceOffering, error) {
	if _, err := s.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	offerings, err := s.repo.FindOfferingsByTenant(ctx, tenantID)
	if err != nil {
		s.cfg.Log.Error("Failed to list service offerings", "tenant_id", tenantID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service offerings", err)
	}

	return offerings, nil
}

func (s *tenantService) UpdateOffering(ctx context.Context, tenantID string, id string, updates *model.ServiceOfferingUpdate) (*model.ServiceOffering, error) {
	existing, err := s.repo.FindOfferingByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, tenantserrors.ErrOfferingNotFound) {
			return nil, apperrors.NotFoundWithID("Service offering", id)
		}
		if errors.Is(err, tenantserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service offering ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve service offering", err)
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	if err := s.validator.ValidateOffering(&merged); err != nil {
		return nil, apperrors.Validation("Service offering validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.UpdateOffering(ctx, tenantID, id, &merged); err != nil {
		if errors.Is(err, tenantserrors.ErrOfferingNotFound) {
			return nil, apperrors.NotFoundWithID("Service offering", id)
		}
		s.cfg.Log.Error("Failed to update service offering", "tenant_id", tenantID, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service offering", err)
	}

	s.cfg.Log.Info("Service offering updated successfully", "id", id, "tenant_id", tenantID)
	return &merged, nil
}

func (s *tenantService) DeleteOffering(ctx context.Context, tenantID string, id string) error {
	if err := s.repo.DeleteOffering(ctx, tenantID, id); err != nil {
		if errors.Is(err, tenantserrors.ErrOfferingNotFound) {
			return apperrors.NotFoundWithID("Service offering", id)
		}
		if errors.Is(err, tenantserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service offering ID format")
		}
		s.cfg.Log.Error("Failed to delete service offering", "tenant_id", tenantID, "id", id, "error", err)
		return apperrors.Internal("Failed to delete service offering", err)
	}

	s.cfg.Log.Info("Service offering deleted", "id", id, "tenant_id", tenantID)
	return nil
}

func (s *tenantService) sanitize(tenant *model.Tenant) {
	tenant.Name = sanitizer.NormalizeName(tenant.Name)
	tenant.ContactPhone = sanitizer.NormalizePhone(tenant.ContactPhone)
	tenant.ContactEmail = sanitizer.NormalizeEmail(tenant.ContactEmail)
	tenant.Timezone = sanitizer.TrimAndNormalize(tenant.Timezone)
}

// applyDefaults runs on create only. New tenants start active; deactivation
// is an explicit update.
func (s *tenantService) applyDefaults(tenant *model.Tenant) {
	if tenant.Timezone == "" {
		tenant.Timezone = locale.InferTimezoneFromPhone(tenant.ContactPhone)
	}
	tenant.Active = true
}

func (s *tenantService) mergeUpdates(existing *model.Tenant, updates *model.TenantUpdate) *model.Tenant {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.BookingMode != "" {
		merged.BookingMode = updates.BookingMode
	}
	if updates.Timezone != "" {
		merged.Timezone = sanitizer.TrimAndNormalize(updates.Timezone)
	}
	if updates.ContactPhone != "" {
		merged.ContactPhone = sanitizer.NormalizePhone(updates.ContactPhone)
	}
	if updates.ContactEmail != "" {
		merged.ContactEmail = sanitizer.NormalizeEmail(updates.ContactEmail)
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
