package tenants

import "context"

// Repository persists tenants. FindByID returns (nil, nil) when absent.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Tenant, error)
	ListAll(ctx context.Context) ([]Tenant, error)
	Create(ctx context.Context, tenant *Tenant) error
	Rename(ctx context.Context, id int64, name string) error
	DeleteByID(ctx context.Context, id int64) error
}
