package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tenants "roomledger/internal/tenants/domain"
)

const defaultTenantsTable = "tenants"

// TenantRepository is a Postgres implementation of the tenant directory.
type TenantRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*TenantRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(r *TenantRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewTenantRepository constructs a repository with defaults.
func NewTenantRepository(db *sql.DB, opts ...RepositoryOption) *TenantRepository {
	repo := &TenantRepository{db: db, table: defaultTenantsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EnsureSchema creates the tenants table when absent.
func (r *TenantRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("tenant repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
)`, r.table))
	return err
}

// FindByID loads a tenant by id, (nil, nil) when absent.
func (r *TenantRepository) FindByID(ctx context.Context, id int64) (*tenants.Tenant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("tenant repo: nil db")
	}
	var tenant tenants.Tenant
	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE id = $1`, r.table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&tenant.ID, &tenant.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// ListAll returns every tenant ordered by id.
func (r *TenantRepository) ListAll(ctx context.Context) ([]tenants.Tenant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("tenant repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY id`, r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []tenants.Tenant
	for rows.Next() {
		var tenant tenants.Tenant
		if err := rows.Scan(&tenant.ID, &tenant.Name); err != nil {
			return nil, err
		}
		list = append(list, tenant)
	}
	return list, rows.Err()
}

// Create inserts a tenant and assigns its generated id.
func (r *TenantRepository) Create(ctx context.Context, tenant *tenants.Tenant) error {
	if r == nil || r.db == nil {
		return errors.New("tenant repo: nil db")
	}
	if tenant == nil {
		return tenants.ErrNilTenant
	}
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, r.table)
	return r.db.QueryRowContext(ctx, query, tenant.Name).Scan(&tenant.ID)
}

// Rename changes a tenant's display name.
func (r *TenantRepository) Rename(ctx context.Context, id int64, name string) error {
	if r == nil || r.db == nil {
		return errors.New("tenant repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET name = $2 WHERE id = $1`, r.table), id, name)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	return nil
}

// DeleteByID removes a tenant. Bills cascade through the bills table's
// foreign key; callers that need explicit cascade semantics purge bills
// first (see the tenant service).
func (r *TenantRepository) DeleteByID(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("tenant repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, id)
	}
	return nil
}
