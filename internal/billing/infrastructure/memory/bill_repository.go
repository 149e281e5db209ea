package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	billing "roomledger/internal/billing/domain"
)

// BillRepository is an in-memory bill store. It mirrors the Postgres
// implementation's semantics, including the (tenant, month, year)
// uniqueness constraint, so services behave identically under test.
type BillRepository struct {
	mu     sync.RWMutex
	bills  map[int64]*billing.Bill
	nextID int64
}

// NewBillRepository constructs a repository.
func NewBillRepository() *BillRepository {
	return &BillRepository{bills: make(map[int64]*billing.Bill)}
}

// FindByID loads a bill by id.
func (r *BillRepository) FindByID(ctx context.Context, id int64) (*billing.Bill, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bills[id].Clone(), nil
}

// FindByTenantAndPeriod loads the tenant's bill for one period.
func (r *BillRepository) FindByTenantAndPeriod(ctx context.Context, tenantID int64, period billing.Period) (*billing.Bill, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByTenantAndPeriodLocked(tenantID, period).Clone(), nil
}

// FindLatestByTenant returns the tenant's most recent bill by
// (year desc, month desc, id desc).
func (r *BillRepository) FindLatestByTenant(ctx context.Context, tenantID int64) (*billing.Bill, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *billing.Bill
	for _, bill := range r.bills {
		if bill.TenantID != tenantID {
			continue
		}
		if latest == nil {
			latest = bill
			continue
		}
		if c := bill.Period().Compare(latest.Period()); c > 0 || (c == 0 && bill.ID > latest.ID) {
			latest = bill
		}
	}
	return latest.Clone(), nil
}

// ListAll returns every bill.
func (r *BillRepository) ListAll(ctx context.Context) ([]billing.Bill, error) {
	return r.list(ctx, func(*billing.Bill) bool { return true })
}

// ListByTenant returns all bills of a tenant.
func (r *BillRepository) ListByTenant(ctx context.Context, tenantID int64) ([]billing.Bill, error) {
	return r.list(ctx, func(b *billing.Bill) bool { return b.TenantID == tenantID })
}

// ListByPeriod returns all bills for one period across tenants.
func (r *BillRepository) ListByPeriod(ctx context.Context, period billing.Period) ([]billing.Bill, error) {
	return r.list(ctx, func(b *billing.Bill) bool { return b.Period() == period })
}

// ListByYear returns all bills of a calendar year.
func (r *BillRepository) ListByYear(ctx context.Context, year int) ([]billing.Bill, error) {
	return r.list(ctx, func(b *billing.Bill) bool { return b.Year == year })
}

// ListByTenantAndYear returns a tenant's bills for a calendar year.
func (r *BillRepository) ListByTenantAndYear(ctx context.Context, tenantID int64, year int) ([]billing.Bill, error) {
	return r.list(ctx, func(b *billing.Bill) bool { return b.TenantID == tenantID && b.Year == year })
}

// Create stores a new bill and assigns its id. A second bill for the same
// (tenant, month, year) fails with ErrDuplicateBillingPeriod.
func (r *BillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	_ = ctx
	if bill == nil {
		return billing.ErrNilBill
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findByTenantAndPeriodLocked(bill.TenantID, bill.Period()); existing != nil {
		return fmt.Errorf("%w: tenant %d for %s", billing.ErrDuplicateBillingPeriod, bill.TenantID, bill.Period())
	}

	r.nextID++
	bill.ID = r.nextID
	r.bills[bill.ID] = bill.Clone()
	return nil
}

// Update overwrites a stored bill.
func (r *BillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	_ = ctx
	if bill == nil {
		return billing.ErrNilBill
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bills[bill.ID]; !ok {
		return fmt.Errorf("%w: id %d", billing.ErrBillNotFound, bill.ID)
	}
	if existing := r.findByTenantAndPeriodLocked(bill.TenantID, bill.Period()); existing != nil && existing.ID != bill.ID {
		return fmt.Errorf("%w: tenant %d for %s", billing.ErrDuplicateBillingPeriod, bill.TenantID, bill.Period())
	}
	r.bills[bill.ID] = bill.Clone()
	return nil
}

// DeleteByID removes a bill.
func (r *BillRepository) DeleteByID(ctx context.Context, id int64) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bills[id]; !ok {
		return fmt.Errorf("%w: id %d", billing.ErrBillNotFound, id)
	}
	delete(r.bills, id)
	return nil
}

// DeleteByTenant removes all bills of a tenant.
func (r *BillRepository) DeleteByTenant(ctx context.Context, tenantID int64) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, bill := range r.bills {
		if bill.TenantID == tenantID {
			delete(r.bills, id)
		}
	}
	return nil
}

// ExistsByID reports whether a bill id is stored.
func (r *BillRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bills[id]
	return ok, nil
}

func (r *BillRepository) findByTenantAndPeriodLocked(tenantID int64, period billing.Period) *billing.Bill {
	for _, bill := range r.bills {
		if bill.TenantID == tenantID && bill.Period() == period {
			return bill
		}
	}
	return nil
}

func (r *BillRepository) list(ctx context.Context, match func(*billing.Bill) bool) ([]billing.Bill, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []billing.Bill
	for _, bill := range r.bills {
		if match(bill) {
			result = append(result, *bill)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Period().Compare(result[j].Period()); c != 0 {
			return c > 0
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
