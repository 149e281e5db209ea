package billing

import "context"

// Repository persists bills.
//
// Implementations must enforce uniqueness of (tenantID, month, year) as a
// hard constraint and report a violated insert as ErrDuplicateBillingPeriod,
// so that a lost check-then-insert race fails deterministically instead of
// corrupting state. Find methods return (nil, nil) when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Bill, error)
	FindByTenantAndPeriod(ctx context.Context, tenantID int64, period Period) (*Bill, error)
	// FindLatestByTenant returns the tenant's most recent bill, ordered by
	// year desc, month desc, id desc. The id tiebreaker keeps the result
	// deterministic even if the uniqueness constraint were ever violated.
	FindLatestByTenant(ctx context.Context, tenantID int64) (*Bill, error)

	ListAll(ctx context.Context) ([]Bill, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]Bill, error)
	ListByPeriod(ctx context.Context, period Period) ([]Bill, error)
	ListByYear(ctx context.Context, year int) ([]Bill, error)
	ListByTenantAndYear(ctx context.Context, tenantID int64, year int) ([]Bill, error)

	Create(ctx context.Context, bill *Bill) error
	Update(ctx context.Context, bill *Bill) error
	DeleteByID(ctx context.Context, id int64) error
	// DeleteByTenant removes all bills of a tenant. Used when a tenant is
	// deleted; individual bill deletions go through DeleteByID.
	DeleteByTenant(ctx context.Context, tenantID int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}
