package tenants

// Tenant is a rented room. Bills reference tenants by id; the tenant side
// holds no bill collection, "bills for a tenant" is a repository query.
type Tenant struct {
	ID   int64
	Name string
}
