package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tenants "roomledger/internal/tenants/domain"
)

// Repository is the persistence port the service depends on.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*tenants.Tenant, error)
	ListAll(ctx context.Context) ([]tenants.Tenant, error)
	Create(ctx context.Context, tenant *tenants.Tenant) error
	Rename(ctx context.Context, id int64, name string) error
	DeleteByID(ctx context.Context, id int64) error
}

// BillPurger removes a tenant's bills when the tenant is deleted.
type BillPurger interface {
	DeleteByTenant(ctx context.Context, tenantID int64) error
}

// TenantService manages the room/tenant directory.
type TenantService struct {
	repo   Repository
	bills  BillPurger
	logger *log.Logger
}

// NewTenantService constructs the service. The purger is optional; without
// one, bill cleanup is left to the storage layer's cascade.
func NewTenantService(repo Repository, bills BillPurger, logger *log.Logger) (*TenantService, error) {
	if repo == nil {
		return nil, errors.New("tenant service: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TenantService{repo: repo, bills: bills, logger: logger}, nil
}

// SaveTenant registers a new tenant. The name must be non-blank.
func (s *TenantService) SaveTenant(ctx context.Context, name string) (*tenants.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, tenants.ErrEmptyTenantName
	}
	tenant := &tenants.Tenant{Name: name}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	s.logger.Printf("tenant created id=%d name=%q", tenant.ID, tenant.Name)
	return tenant, nil
}

// GetTenantByID loads one tenant.
func (s *TenantService) GetTenantByID(ctx context.Context, id int64) (*tenants.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	return tenant, nil
}

// GetAllTenants lists the directory ordered by id.
func (s *TenantService) GetAllTenants(ctx context.Context) ([]tenants.Tenant, error) {
	return s.repo.ListAll(ctx)
}

// RenameTenant changes a tenant's display name.
func (s *TenantService) RenameTenant(ctx context.Context, id int64, name string) (*tenants.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, tenants.ErrEmptyTenantName
	}
	if err := s.repo.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return &tenants.Tenant{ID: id, Name: name}, nil
}

// DeleteTenant removes a tenant and all bills recorded for it.
func (s *TenantService) DeleteTenant(ctx context.Context, id int64) error {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find tenant: %w", err)
	}
	if tenant == nil {
		return fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	if s.bills != nil {
		if err := s.bills.DeleteByTenant(ctx, id); err != nil {
			return fmt.Errorf("purge tenant bills: %w", err)
		}
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("tenant deleted id=%d name=%q", tenant.ID, tenant.Name)
	return nil
}
