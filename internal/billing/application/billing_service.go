package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	billing "roomledger/internal/billing/domain"
	"roomledger/internal/observability/metrics"
	settings "roomledger/internal/settings/domain"
	tenants "roomledger/internal/tenants/domain"
)

// TenantDirectory resolves tenants for billing. FindByID returns
// (nil, nil) when the tenant does not exist.
type TenantDirectory interface {
	FindByID(ctx context.Context, id int64) (*tenants.Tenant, error)
	ListAll(ctx context.Context) ([]tenants.Tenant, error)
}

// PriceSource reads live unit prices by setting key. Absent or unparsable
// values fall back to zero; it never reports an error to the caller.
type PriceSource interface {
	GetNumeric(ctx context.Context, key string) float64
}

// BillingService handles bill creation, update, deletion and lookups.
type BillingService struct {
	repo    billing.Repository
	tenants TenantDirectory
	prices  PriceSource
}

// NewBillingService constructs the service.
func NewBillingService(repo billing.Repository, directory TenantDirectory, prices PriceSource) (*BillingService, error) {
	if repo == nil {
		return nil, errors.New("billing service: nil repository")
	}
	if directory == nil {
		return nil, errors.New("billing service: nil tenant directory")
	}
	if prices == nil {
		return nil, errors.New("billing service: nil price source")
	}
	return &BillingService{repo: repo, tenants: directory, prices: prices}, nil
}

// CreateBill creates the tenant's bill for (month, year).
//
// The new bill's previous readings are chained from the tenant's bill for
// the immediately preceding calendar month, or zero when no such bill
// exists. A blank occupant name falls back to the tenant's display name.
// Costs are computed from the live unit prices; exactly one store write
// happens. The repository's uniqueness constraint backstops the duplicate
// check against concurrent creations for the same period.
func (s *BillingService) CreateBill(ctx context.Context, tenantID int64, year, month int,
	electricityKWhCurrent, waterM3Current, trashFee, wifiFee, roomRent float64,
	occupantName string) (*billing.Bill, error) {

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBillOp("create", result, time.Since(start))
	}()

	bill, err := s.createBill(ctx, tenantID, year, month, electricityKWhCurrent, waterM3Current, trashFee, wifiFee, roomRent, occupantName)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return bill, nil
}

func (s *BillingService) createBill(ctx context.Context, tenantID int64, year, month int,
	electricityKWhCurrent, waterM3Current, trashFee, wifiFee, roomRent float64,
	occupantName string) (*billing.Bill, error) {

	period, err := billing.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	tenant, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByTenantAndPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: tenant %d for %s", billing.ErrDuplicateBillingPeriod, tenantID, period)
	}

	previous, err := s.repo.FindByTenantAndPeriod(ctx, tenantID, period.Previous())
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(occupantName) == "" {
		occupantName = tenant.Name
	}

	bill := &billing.Bill{
		TenantID:              tenantID,
		Month:                 month,
		Year:                  year,
		ElectricityKWhCurrent: electricityKWhCurrent,
		WaterM3Current:        waterM3Current,
		TrashFee:              trashFee,
		WifiFee:               wifiFee,
		RoomRent:              roomRent,
		OccupantName:          occupantName,
	}
	if previous != nil {
		bill.ElectricityKWhPrevious = previous.ElectricityKWhCurrent
		bill.WaterM3Previous = previous.WaterM3Current
	}

	billing.ComputeCosts(bill,
		s.prices.GetNumeric(ctx, settings.KeyElectricityPrice),
		s.prices.GetNumeric(ctx, settings.KeyWaterPrice))

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// UpdateBill applies the editable fields of input to the stored bill and
// recomputes its costs from the live prices.
//
// Mutable: period, current readings, fees, rent, occupant name, paid flag.
// The tenant reference and the previous readings keep their creation-time
// values: editing a bill does not re-chain it to a different neighbour.
func (s *BillingService) UpdateBill(ctx context.Context, input *billing.Bill) (*billing.Bill, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBillOp("update", result, time.Since(start))
	}()

	bill, err := s.updateBill(ctx, input)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return bill, nil
}

func (s *BillingService) updateBill(ctx context.Context, input *billing.Bill) (*billing.Bill, error) {
	if input == nil {
		return nil, billing.ErrNilBill
	}
	if input.ID == 0 {
		return nil, billing.ErrMissingBillID
	}
	if _, err := billing.NewPeriod(input.Month, input.Year); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: id %d", billing.ErrBillNotFound, input.ID)
	}

	existing.Month = input.Month
	existing.Year = input.Year
	existing.ElectricityKWhCurrent = input.ElectricityKWhCurrent
	existing.WaterM3Current = input.WaterM3Current
	existing.TrashFee = input.TrashFee
	existing.WifiFee = input.WifiFee
	existing.RoomRent = input.RoomRent
	existing.OccupantName = input.OccupantName
	existing.Paid = input.Paid

	billing.ComputeCosts(existing,
		s.prices.GetNumeric(ctx, settings.KeyElectricityPrice),
		s.prices.GetNumeric(ctx, settings.KeyWaterPrice))

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteBill removes a bill. Later bills keep the previous readings they
// recorded at their own creation time; nothing is re-chained.
func (s *BillingService) DeleteBill(ctx context.Context, id int64) error {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBillOp("delete", result, time.Since(start))
	}()

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return err
	}
	if !exists {
		result = metrics.ResultError
		return fmt.Errorf("%w: id %d", billing.ErrBillNotFound, id)
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		result = metrics.ResultError
		return err
	}
	return nil
}

// GetBillByID returns a bill or (nil, nil) when absent.
func (s *BillingService) GetBillByID(ctx context.Context, id int64) (*billing.Bill, error) {
	return s.repo.FindByID(ctx, id)
}

// GetAllBills returns every bill.
func (s *BillingService) GetAllBills(ctx context.Context) ([]billing.Bill, error) {
	return s.repo.ListAll(ctx)
}

// GetBillsByTenant returns all bills of a tenant.
func (s *BillingService) GetBillsByTenant(ctx context.Context, tenantID int64) ([]billing.Bill, error) {
	if _, err := s.resolveTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// GetBillsByMonthAndYear returns all bills for one period across tenants.
func (s *BillingService) GetBillsByMonthAndYear(ctx context.Context, month, year int) ([]billing.Bill, error) {
	period, err := billing.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPeriod(ctx, period)
}

// GetBillsByYear returns all bills of a calendar year.
func (s *BillingService) GetBillsByYear(ctx context.Context, year int) ([]billing.Bill, error) {
	return s.repo.ListByYear(ctx, year)
}

// GetBillsByTenantAndYear returns a tenant's bills for a calendar year.
func (s *BillingService) GetBillsByTenantAndYear(ctx context.Context, tenantID int64, year int) ([]billing.Bill, error) {
	if _, err := s.resolveTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenantAndYear(ctx, tenantID, year)
}

// GetBillsByTenantAndMonthYear returns a tenant's bills for one period.
// Under the uniqueness constraint this is zero or one bill.
func (s *BillingService) GetBillsByTenantAndMonthYear(ctx context.Context, tenantID int64, month, year int) ([]billing.Bill, error) {
	period, err := billing.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	bill, err := s.repo.FindByTenantAndPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, nil
	}
	return []billing.Bill{*bill}, nil
}

// GetLatestBillForTenant returns the tenant's most recent bill by
// (year desc, month desc, id desc), or (nil, nil) when the tenant has no
// bills yet.
func (s *BillingService) GetLatestBillForTenant(ctx context.Context, tenantID int64) (*billing.Bill, error) {
	if _, err := s.resolveTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.repo.FindLatestByTenant(ctx, tenantID)
}

func (s *BillingService) resolveTenant(ctx context.Context, tenantID int64) (*tenants.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, tenantID)
	}
	return tenant, nil
}
