package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	billing "roomledger/internal/billing/domain"
)

const defaultBillsTable = "bills"

const billColumns = `id, tenant_id, bill_month, bill_year,
	electricity_kwh_previous, electricity_kwh_current,
	water_m3_previous, water_m3_current,
	trash_fee, wifi_fee, room_rent,
	electricity_cost, water_cost, total_amount,
	occupant_name, paid`

// BillRepository is a Postgres implementation of the bill store. The
// unique index on (tenant_id, bill_month, bill_year) makes a lost
// check-then-insert race fail deterministically; the violation is mapped
// to ErrDuplicateBillingPeriod.
type BillRepository struct {
	db           *sql.DB
	table        string
	tenantsTable string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*BillRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(r *BillRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// WithTenantsTable overrides the tenants table the foreign key targets.
func WithTenantsTable(table string) RepositoryOption {
	return func(r *BillRepository) {
		if table != "" {
			r.tenantsTable = table
		}
	}
}

// NewBillRepository constructs a repository with defaults.
func NewBillRepository(db *sql.DB, opts ...RepositoryOption) *BillRepository {
	repo := &BillRepository{db: db, table: defaultBillsTable, tenantsTable: "tenants"}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EnsureSchema creates the bills table and its uniqueness index when absent.
func (r *BillRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id BIGSERIAL PRIMARY KEY,
	tenant_id BIGINT NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
	bill_month INT NOT NULL,
	bill_year INT NOT NULL,
	electricity_kwh_previous DOUBLE PRECISION NOT NULL DEFAULT 0,
	electricity_kwh_current DOUBLE PRECISION NOT NULL DEFAULT 0,
	water_m3_previous DOUBLE PRECISION NOT NULL DEFAULT 0,
	water_m3_current DOUBLE PRECISION NOT NULL DEFAULT 0,
	trash_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
	wifi_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
	room_rent DOUBLE PRECISION NOT NULL DEFAULT 0,
	electricity_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	water_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	occupant_name TEXT NOT NULL DEFAULT '',
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	CONSTRAINT %[1]s_tenant_period_unique UNIQUE (tenant_id, bill_month, bill_year)
)`, r.table, r.tenantsTable))
	return err
}

// FindByID loads a bill by id.
func (r *BillRepository) FindByID(ctx context.Context, id int64) (*billing.Bill, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, billColumns, r.table)
	return r.queryOne(ctx, query, id)
}

// FindByTenantAndPeriod loads the tenant's bill for one period.
func (r *BillRepository) FindByTenantAndPeriod(ctx context.Context, tenantID int64, period billing.Period) (*billing.Bill, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE tenant_id = $1 AND bill_month = $2 AND bill_year = $3`, billColumns, r.table)
	return r.queryOne(ctx, query, tenantID, period.Month, period.Year)
}

// FindLatestByTenant returns the tenant's most recent bill by
// (year desc, month desc, id desc).
func (r *BillRepository) FindLatestByTenant(ctx context.Context, tenantID int64) (*billing.Bill, error) {
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE tenant_id = $1
ORDER BY bill_year DESC, bill_month DESC, id DESC
LIMIT 1`, billColumns, r.table)
	return r.queryOne(ctx, query, tenantID)
}

// ListAll returns every bill, newest period first.
func (r *BillRepository) ListAll(ctx context.Context) ([]billing.Bill, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY bill_year DESC, bill_month DESC, id DESC`, billColumns, r.table)
	return r.queryList(ctx, query)
}

// ListByTenant returns all bills of a tenant, newest period first.
func (r *BillRepository) ListByTenant(ctx context.Context, tenantID int64) ([]billing.Bill, error) {
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE tenant_id = $1
ORDER BY bill_year DESC, bill_month DESC, id DESC`, billColumns, r.table)
	return r.queryList(ctx, query, tenantID)
}

// ListByPeriod returns all bills for one period across tenants.
func (r *BillRepository) ListByPeriod(ctx context.Context, period billing.Period) ([]billing.Bill, error) {
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE bill_month = $1 AND bill_year = $2
ORDER BY id DESC`, billColumns, r.table)
	return r.queryList(ctx, query, period.Month, period.Year)
}

// ListByYear returns all bills of a calendar year, newest period first.
func (r *BillRepository) ListByYear(ctx context.Context, year int) ([]billing.Bill, error) {
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE bill_year = $1
ORDER BY bill_month DESC, id DESC`, billColumns, r.table)
	return r.queryList(ctx, query, year)
}

// ListByTenantAndYear returns a tenant's bills for a calendar year.
func (r *BillRepository) ListByTenantAndYear(ctx context.Context, tenantID int64, year int) ([]billing.Bill, error) {
	query := fmt.Sprintf(`
SELECT %s FROM %s
WHERE tenant_id = $1 AND bill_year = $2
ORDER BY bill_month DESC, id DESC`, billColumns, r.table)
	return r.queryList(ctx, query, tenantID, year)
}

// Create inserts a bill and assigns its generated id.
func (r *BillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	if bill == nil {
		return billing.ErrNilBill
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	tenant_id, bill_month, bill_year,
	electricity_kwh_previous, electricity_kwh_current,
	water_m3_previous, water_m3_current,
	trash_fee, wifi_fee, room_rent,
	electricity_cost, water_cost, total_amount,
	occupant_name, paid
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING id`, r.table)

	err := r.db.QueryRowContext(ctx, query,
		bill.TenantID, bill.Month, bill.Year,
		bill.ElectricityKWhPrevious, bill.ElectricityKWhCurrent,
		bill.WaterM3Previous, bill.WaterM3Current,
		bill.TrashFee, bill.WifiFee, bill.RoomRent,
		bill.ElectricityCost, bill.WaterCost, bill.TotalAmount,
		bill.OccupantName, bill.Paid,
	).Scan(&bill.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tenant %d for %s", billing.ErrDuplicateBillingPeriod, bill.TenantID, bill.Period())
		}
		return err
	}
	return nil
}

// Update overwrites a stored bill.
func (r *BillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	if bill == nil {
		return billing.ErrNilBill
	}

	query := fmt.Sprintf(`
UPDATE %s SET
	bill_month = $2, bill_year = $3,
	electricity_kwh_previous = $4, electricity_kwh_current = $5,
	water_m3_previous = $6, water_m3_current = $7,
	trash_fee = $8, wifi_fee = $9, room_rent = $10,
	electricity_cost = $11, water_cost = $12, total_amount = $13,
	occupant_name = $14, paid = $15
WHERE id = $1`, r.table)

	result, err := r.db.ExecContext(ctx, query,
		bill.ID, bill.Month, bill.Year,
		bill.ElectricityKWhPrevious, bill.ElectricityKWhCurrent,
		bill.WaterM3Previous, bill.WaterM3Current,
		bill.TrashFee, bill.WifiFee, bill.RoomRent,
		bill.ElectricityCost, bill.WaterCost, bill.TotalAmount,
		bill.OccupantName, bill.Paid,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tenant %d for %s", billing.ErrDuplicateBillingPeriod, bill.TenantID, bill.Period())
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", billing.ErrBillNotFound, bill.ID)
	}
	return nil
}

// DeleteByID removes a bill.
func (r *BillRepository) DeleteByID(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
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
		return fmt.Errorf("%w: id %d", billing.ErrBillNotFound, id)
	}
	return nil
}

// DeleteByTenant removes all bills of a tenant.
func (r *BillRepository) DeleteByTenant(ctx context.Context, tenantID int64) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1`, r.table), tenantID)
	return err
}

// ExistsByID reports whether a bill id is stored.
func (r *BillRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("bill repo: nil db")
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.table)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BillRepository) queryOne(ctx context.Context, query string, args ...any) (*billing.Bill, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("bill repo: nil db")
	}
	bill, err := scanBill(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bill, nil
}

func (r *BillRepository) queryList(ctx context.Context, query string, args ...any) ([]billing.Bill, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("bill repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []billing.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*billing.Bill, error) {
	var bill billing.Bill
	err := row.Scan(
		&bill.ID, &bill.TenantID, &bill.Month, &bill.Year,
		&bill.ElectricityKWhPrevious, &bill.ElectricityKWhCurrent,
		&bill.WaterM3Previous, &bill.WaterM3Current,
		&bill.TrashFee, &bill.WifiFee, &bill.RoomRent,
		&bill.ElectricityCost, &bill.WaterCost, &bill.TotalAmount,
		&bill.OccupantName, &bill.Paid,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
