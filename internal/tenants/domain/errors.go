package tenants

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant id does not resolve.
	ErrTenantNotFound = errors.New("tenants: tenant not found")
	// ErrEmptyTenantName is returned when a tenant name is blank.
	ErrEmptyTenantName = errors.New("tenants: tenant name cannot be empty")
	// ErrNilTenant is returned when a nil tenant is passed to a write.
	ErrNilTenant = errors.New("tenants: nil tenant")
)
