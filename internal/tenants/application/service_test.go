package application

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	billing "roomledger/internal/billing/domain"
	billingmemory "roomledger/internal/billing/infrastructure/memory"
	tenants "roomledger/internal/tenants/domain"
	tenantmemory "roomledger/internal/tenants/infrastructure/memory"
)

func newTenantFixture(t *testing.T) (*TenantService, *billingmemory.BillRepository) {
	t.Helper()
	billRepo := billingmemory.NewBillRepository()
	service, err := NewTenantService(tenantmemory.NewTenantRepository(), billRepo, log.New(os.Stdout, "", 0))
	if err != nil {
		t.Fatalf("new tenant service: %v", err)
	}
	return service, billRepo
}

func TestSaveTenant(t *testing.T) {
	service, _ := newTenantFixture(t)
	ctx := context.Background()

	tenant, err := service.SaveTenant(ctx, "  Room 1  ")
	if err != nil {
		t.Fatalf("save tenant: %v", err)
	}
	if tenant.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if tenant.Name != "Room 1" {
		t.Fatalf("expected trimmed name, got %q", tenant.Name)
	}

	if _, err := service.SaveTenant(ctx, "   "); !errors.Is(err, tenants.ErrEmptyTenantName) {
		t.Fatalf("expected ErrEmptyTenantName, got %v", err)
	}
}

func TestGetTenantByID_Missing(t *testing.T) {
	service, _ := newTenantFixture(t)
	if _, err := service.GetTenantByID(context.Background(), 42); !errors.Is(err, tenants.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestRenameTenant(t *testing.T) {
	service, _ := newTenantFixture(t)
	ctx := context.Background()

	tenant, err := service.SaveTenant(ctx, "Room 1")
	if err != nil {
		t.Fatalf("save tenant: %v", err)
	}

	renamed, err := service.RenameTenant(ctx, tenant.ID, "Room 1A")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Room 1A" {
		t.Fatalf("expected new name, got %q", renamed.Name)
	}

	loaded, err := service.GetTenantByID(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Name != "Room 1A" {
		t.Fatalf("expected persisted rename, got %q", loaded.Name)
	}

	if _, err := service.RenameTenant(ctx, tenant.ID, ""); !errors.Is(err, tenants.ErrEmptyTenantName) {
		t.Fatalf("expected ErrEmptyTenantName, got %v", err)
	}
	if _, err := service.RenameTenant(ctx, 42, "x"); !errors.Is(err, tenants.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestDeleteTenant_PurgesBills(t *testing.T) {
	service, billRepo := newTenantFixture(t)
	ctx := context.Background()

	tenant, err := service.SaveTenant(ctx, "Room 1")
	if err != nil {
		t.Fatalf("save tenant: %v", err)
	}
	other, err := service.SaveTenant(ctx, "Room 2")
	if err != nil {
		t.Fatalf("save other: %v", err)
	}

	if err := billRepo.Create(ctx, &billing.Bill{TenantID: tenant.ID, Month: 3, Year: 2024}); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if err := billRepo.Create(ctx, &billing.Bill{TenantID: other.ID, Month: 3, Year: 2024}); err != nil {
		t.Fatalf("create other bill: %v", err)
	}

	if err := service.DeleteTenant(ctx, tenant.ID); err != nil {
		t.Fatalf("delete tenant: %v", err)
	}

	if _, err := service.GetTenantByID(ctx, tenant.ID); !errors.Is(err, tenants.ErrTenantNotFound) {
		t.Fatalf("expected tenant gone, got %v", err)
	}
	bills, err := billRepo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if len(bills) != 1 || bills[0].TenantID != other.ID {
		t.Fatalf("expected only other tenant's bills left, got %+v", bills)
	}
}

func TestDeleteTenant_Missing(t *testing.T) {
	service, _ := newTenantFixture(t)
	if err := service.DeleteTenant(context.Background(), 42); !errors.Is(err, tenants.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}
