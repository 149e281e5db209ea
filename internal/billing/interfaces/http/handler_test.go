package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "roomledger/internal/billing/application"
	billingmemory "roomledger/internal/billing/infrastructure/memory"
	settings "roomledger/internal/settings/domain"
	tenants "roomledger/internal/tenants/domain"
	tenantmemory "roomledger/internal/tenants/infrastructure/memory"
)

type staticPrices map[string]float64

func (p staticPrices) GetNumeric(_ context.Context, key string) float64 {
	return p[key]
}

func newHandlerFixture(t *testing.T) (*BillHandler, *tenants.Tenant) {
	t.Helper()
	billRepo := billingmemory.NewBillRepository()
	tenantRepo := tenantmemory.NewTenantRepository()
	prices := staticPrices{
		settings.KeyElectricityPrice: 3000,
		settings.KeyWaterPrice:       13000,
	}
	service, err := billingapp.NewBillingService(billRepo, tenantRepo, prices)
	if err != nil {
		t.Fatalf("new billing service: %v", err)
	}
	handler, err := NewBillHandler(service, tenantRepo, nil)
	if err != nil {
		t.Fatalf("new bill handler: %v", err)
	}

	tenant := &tenants.Tenant{Name: "Room 1"}
	if err := tenantRepo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return handler, tenant
}

func createBillRequestBody(t *testing.T, tenantID int64, month, year int) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"tenant_id":               tenantID,
		"month":                   month,
		"year":                    year,
		"electricity_kwh_current": 150,
		"water_m3_current":        20,
		"trash_fee":               20000,
		"wifi_fee":                50000,
		"room_rent":               2000000,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestBillHandler_Create(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 4, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created billResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned bill id")
	}
	if created.ElectricityCost != 450000 {
		t.Fatalf("expected electricity cost 450000, got %v", created.ElectricityCost)
	}
	if created.OccupantName != "Room 1" {
		t.Fatalf("expected occupant fallback, got %q", created.OccupantName)
	}
}

func TestBillHandler_CreateDuplicateConflict(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 4, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 4, 2024))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestBillHandler_CreateUnknownTenant(t *testing.T) {
	handler, _ := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, 42, 4, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestBillHandler_CreateInvalidMonth(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 13, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestBillHandler_GetMissing(t *testing.T) {
	handler, _ := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills/99", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestBillHandler_ListFilters(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	for _, period := range []struct{ month, year int }{
		{3, 2024}, {4, 2024},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, period.month, period.year))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("seed bill %d/%d: got %d", period.month, period.year, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills?month=4&year=2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []billResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Month != 4 {
		t.Fatalf("expected single 4/2024 bill, got %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bills?month=4", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for month without year, got %d", resp.Code)
	}
}

func TestBillHandler_Delete(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 4, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	var created billResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/bills/1", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/bills/1", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}
}

func TestBillHandler_ExportPDF(t *testing.T) {
	handler, tenant := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", createBillRequestBody(t, tenant.ID, 4, 2024))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("seed bill: got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bills/1/export.pdf", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", got)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF payload")
	}
}
