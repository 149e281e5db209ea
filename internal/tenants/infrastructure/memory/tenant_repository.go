package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	tenants "roomledger/internal/tenants/domain"
)

// TenantRepository is an in-memory tenant directory.
type TenantRepository struct {
	mu      sync.RWMutex
	tenants map[int64]tenants.Tenant
	nextID  int64
}

// NewTenantRepository constructs a repository.
func NewTenantRepository() *TenantRepository {
	return &TenantRepository{tenants: make(map[int64]tenants.Tenant)}
}

// FindByID loads a tenant by id, (nil, nil) when absent.
func (r *TenantRepository) FindByID(ctx context.Context, id int64) (*tenants.Tenant, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	return &tenant, nil
}

// ListAll returns every tenant ordered by id.
func (r *TenantRepository) ListAll(ctx context.Context) ([]tenants.Tenant, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]tenants.Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		list = append(list, tenant)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Create stores a new tenant and assigns its id.
func (r *TenantRepository) Create(ctx context.Context, tenant *tenants.Tenant) error {
	_ = ctx
	if tenant == nil {
		return tenants.ErrNilTenant
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	tenant.ID = r.nextID
	r.tenants[tenant.ID] = *tenant
	return nil
}

// Rename changes a tenant's display name.
func (r *TenantRepository) Rename(ctx context.Context, id int64, name string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, ok := r.tenants[id]
	if !ok {
		return fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	tenant.Name = name
	r.tenants[id] = tenant
	return nil
}

// DeleteByID removes a tenant.
func (r *TenantRepository) DeleteByID(ctx context.Context, id int64) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants[id]; !ok {
		return fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	delete(r.tenants, id)
	return nil
}
