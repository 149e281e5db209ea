package application

import (
	"context"
	"errors"
	"testing"
	"time"

	billing "roomledger/internal/billing/domain"
	billingmemory "roomledger/internal/billing/infrastructure/memory"
	settings "roomledger/internal/settings/domain"
	tenants "roomledger/internal/tenants/domain"
	tenantmemory "roomledger/internal/tenants/infrastructure/memory"
)

type staticPrices map[string]float64

func (p staticPrices) GetNumeric(_ context.Context, key string) float64 {
	return p[key]
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func defaultPrices() staticPrices {
	return staticPrices{
		settings.KeyElectricityPrice: 3000,
		settings.KeyWaterPrice:       13000,
	}
}

func newBillingFixture(t *testing.T) (*BillingService, *billingmemory.BillRepository, *tenantmemory.TenantRepository) {
	t.Helper()
	billRepo := billingmemory.NewBillRepository()
	tenantRepo := tenantmemory.NewTenantRepository()
	service, err := NewBillingService(billRepo, tenantRepo, defaultPrices())
	if err != nil {
		t.Fatalf("new billing service: %v", err)
	}
	return service, billRepo, tenantRepo
}

func mustTenant(t *testing.T, repo *tenantmemory.TenantRepository, name string) *tenants.Tenant {
	t.Helper()
	tenant := &tenants.Tenant{Name: name}
	if err := repo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func TestCreateBill_FirstBillHasZeroPreviousReadings(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	bill, err := service.CreateBill(context.Background(), tenant.ID, 2024, 3, 120, 15, 20000, 50000, 2000000, "")
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if bill.ElectricityKWhPrevious != 0 || bill.WaterM3Previous != 0 {
		t.Fatalf("expected zero previous readings, got elec=%v water=%v",
			bill.ElectricityKWhPrevious, bill.WaterM3Previous)
	}
	if bill.ID == 0 {
		t.Fatal("expected assigned bill id")
	}
}

func TestCreateBill_ChainsFromPreviousMonth(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 3, 100, 10, 0, 0, 0, ""); err != nil {
		t.Fatalf("create march bill: %v", err)
	}
	april, err := service.CreateBill(ctx, tenant.ID, 2024, 4, 150, 20, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("create april bill: %v", err)
	}
	if april.ElectricityKWhPrevious != 100 || april.WaterM3Previous != 10 {
		t.Fatalf("expected previous readings chained from march, got elec=%v water=%v",
			april.ElectricityKWhPrevious, april.WaterM3Previous)
	}
}

func TestCreateBill_ChainsAcrossYearBoundary(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 12, 300, 30, 0, 0, 0, ""); err != nil {
		t.Fatalf("create december bill: %v", err)
	}
	january, err := service.CreateBill(ctx, tenant.ID, 2025, 1, 350, 35, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("create january bill: %v", err)
	}
	if january.ElectricityKWhPrevious != 300 || january.WaterM3Previous != 30 {
		t.Fatalf("expected previous readings chained from december, got elec=%v water=%v",
			january.ElectricityKWhPrevious, january.WaterM3Previous)
	}
}

func TestCreateBill_DuplicatePeriodRejected(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 5, 100, 10, 0, 0, 0, ""); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	_, err := service.CreateBill(ctx, tenant.ID, 2024, 5, 120, 12, 0, 0, 0, "")
	if !errors.Is(err, billing.ErrDuplicateBillingPeriod) {
		t.Fatalf("expected ErrDuplicateBillingPeriod, got %v", err)
	}
}

func TestCreateBill_OccupantFallsBackToTenantName(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 2")

	ctx := context.Background()
	bill, err := service.CreateBill(ctx, tenant.ID, 2024, 5, 100, 10, 0, 0, 0, "   ")
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if bill.OccupantName != "Room 2" {
		t.Fatalf("expected occupant fallback to tenant name, got %q", bill.OccupantName)
	}

	named, err := service.CreateBill(ctx, tenant.ID, 2024, 6, 120, 12, 0, 0, 0, "Alex Tran")
	if err != nil {
		t.Fatalf("create named bill: %v", err)
	}
	if named.OccupantName != "Alex Tran" {
		t.Fatalf("expected explicit occupant kept, got %q", named.OccupantName)
	}
}

func TestCreateBill_UnknownTenant(t *testing.T) {
	service, _, _ := newBillingFixture(t)
	_, err := service.CreateBill(context.Background(), 42, 2024, 5, 100, 10, 0, 0, 0, "")
	if !errors.Is(err, tenants.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestCreateBill_InvalidPeriod(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	if _, err := service.CreateBill(context.Background(), tenant.ID, 2024, 13, 100, 10, 0, 0, 0, ""); !errors.Is(err, billing.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := service.CreateBill(context.Background(), tenant.ID, 0, 5, 100, 10, 0, 0, 0, ""); !errors.Is(err, billing.ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
}

func TestCreateBill_RoomScenario(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 3, 100, 10, 20000, 50000, 2000000, ""); err != nil {
		t.Fatalf("create march bill: %v", err)
	}
	bill, err := service.CreateBill(ctx, tenant.ID, 2024, 4, 150, 20, 20000, 50000, 2000000, "")
	if err != nil {
		t.Fatalf("create april bill: %v", err)
	}

	if bill.ElectricityCost != 150000 {
		t.Fatalf("expected electricity cost 150000, got %v", bill.ElectricityCost)
	}
	if bill.WaterCost != 130000 {
		t.Fatalf("expected water cost 130000, got %v", bill.WaterCost)
	}
	if bill.TotalAmount != 2350000 {
		t.Fatalf("expected total 2350000, got %v", bill.TotalAmount)
	}
}

func TestUpdateBill_RecomputesAndKeepsImmutables(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 3, 100, 10, 0, 0, 0, ""); err != nil {
		t.Fatalf("create march bill: %v", err)
	}
	created, err := service.CreateBill(ctx, tenant.ID, 2024, 4, 150, 20, 20000, 50000, 2000000, "")
	if err != nil {
		t.Fatalf("create april bill: %v", err)
	}

	input := &billing.Bill{
		ID:                    created.ID,
		TenantID:              999, // must be ignored
		Month:                 4,
		Year:                  2024,
		ElectricityKWhCurrent: 200,
		WaterM3Current:        25,
		TrashFee:              20000,
		WifiFee:               50000,
		RoomRent:              2000000,
		OccupantName:          "New Occupant",
		Paid:                  true,
	}
	updated, err := service.UpdateBill(ctx, input)
	if err != nil {
		t.Fatalf("update bill: %v", err)
	}

	if updated.TenantID != tenant.ID {
		t.Fatalf("expected tenant reference unchanged, got %d", updated.TenantID)
	}
	if updated.ElectricityKWhPrevious != 100 || updated.WaterM3Previous != 10 {
		t.Fatalf("expected previous readings unchanged, got elec=%v water=%v",
			updated.ElectricityKWhPrevious, updated.WaterM3Previous)
	}
	if updated.ElectricityCost != 300000 {
		t.Fatalf("expected recomputed electricity cost 300000, got %v", updated.ElectricityCost)
	}
	if updated.WaterCost != 195000 {
		t.Fatalf("expected recomputed water cost 195000, got %v", updated.WaterCost)
	}
	if !updated.Paid {
		t.Fatal("expected paid flag applied")
	}
	if updated.OccupantName != "New Occupant" {
		t.Fatalf("expected occupant applied, got %q", updated.OccupantName)
	}
}

func TestUpdateBill_Missing(t *testing.T) {
	service, _, _ := newBillingFixture(t)

	if _, err := service.UpdateBill(context.Background(), nil); !errors.Is(err, billing.ErrNilBill) {
		t.Fatalf("expected ErrNilBill, got %v", err)
	}
	if _, err := service.UpdateBill(context.Background(), &billing.Bill{Month: 1, Year: 2024}); !errors.Is(err, billing.ErrMissingBillID) {
		t.Fatalf("expected ErrMissingBillID, got %v", err)
	}
	input := &billing.Bill{ID: 99, Month: 1, Year: 2024}
	if _, err := service.UpdateBill(context.Background(), input); !errors.Is(err, billing.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestDeleteBill(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	bill, err := service.CreateBill(ctx, tenant.ID, 2024, 4, 150, 20, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if err := service.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if err := service.DeleteBill(ctx, bill.ID); !errors.Is(err, billing.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestDeleteBill_DoesNotRechainLaterBills(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	march, err := service.CreateBill(ctx, tenant.ID, 2024, 3, 100, 10, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("create march bill: %v", err)
	}
	april, err := service.CreateBill(ctx, tenant.ID, 2024, 4, 150, 20, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("create april bill: %v", err)
	}
	if err := service.DeleteBill(ctx, march.ID); err != nil {
		t.Fatalf("delete march bill: %v", err)
	}

	got, err := service.GetBillByID(ctx, april.ID)
	if err != nil {
		t.Fatalf("get april bill: %v", err)
	}
	if got.ElectricityKWhPrevious != 100 || got.WaterM3Previous != 10 {
		t.Fatalf("expected april previous readings frozen, got elec=%v water=%v",
			got.ElectricityKWhPrevious, got.WaterM3Previous)
	}
}

func TestGetLatestBillForTenant(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	latest, err := service.GetLatestBillForTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest bill, got %+v", latest)
	}

	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 12, 100, 10, 0, 0, 0, ""); err != nil {
		t.Fatalf("create december bill: %v", err)
	}
	if _, err := service.CreateBill(ctx, tenant.ID, 2025, 1, 150, 20, 0, 0, 0, ""); err != nil {
		t.Fatalf("create january bill: %v", err)
	}

	latest, err = service.GetLatestBillForTenant(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Month != 1 || latest.Year != 2025 {
		t.Fatalf("expected latest 1/2025, got %d/%d", latest.Month, latest.Year)
	}
}

func TestGetBillsByTenantAndMonthYear(t *testing.T) {
	service, _, tenantRepo := newBillingFixture(t)
	tenant := mustTenant(t, tenantRepo, "Room 1")

	ctx := context.Background()
	if _, err := service.CreateBill(ctx, tenant.ID, 2024, 5, 100, 10, 0, 0, 0, ""); err != nil {
		t.Fatalf("create bill: %v", err)
	}

	bills, err := service.GetBillsByTenantAndMonthYear(ctx, tenant.ID, 5, 2024)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(bills))
	}

	bills, err = service.GetBillsByTenantAndMonthYear(ctx, tenant.ID, 6, 2024)
	if err != nil {
		t.Fatalf("query empty period: %v", err)
	}
	if len(bills) != 0 {
		t.Fatalf("expected no bills, got %d", len(bills))
	}
}
