package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomledger/internal/audit"
	"roomledger/internal/auth"
	billingapp "roomledger/internal/billing/application"
	billing "roomledger/internal/billing/domain"
	"roomledger/internal/billing/interfaces"
	"roomledger/internal/observability/metrics"
	settings "roomledger/internal/settings/domain"
	tenants "roomledger/internal/tenants/domain"
)

// BillHandler serves bill CRUD and export endpoints.
type BillHandler struct {
	service     *billingapp.BillingService
	tenants     billingapp.TenantDirectory
	auditLogger audit.Logger
}

// NewBillHandler constructs a BillHandler.
func NewBillHandler(service *billingapp.BillingService, directory billingapp.TenantDirectory, auditLogger audit.Logger) (*BillHandler, error) {
	if service == nil {
		return nil, errors.New("bill handler: nil service")
	}
	if directory == nil {
		return nil, errors.New("bill handler: nil tenant directory")
	}
	return &BillHandler{service: service, tenants: directory, auditLogger: auditLogger}, nil
}

// ServeHTTP routes bill requests under /api/v1/bills.
func (h *BillHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/bills" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/bills/")
	if path == r.URL.Path || path == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(path, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "bill id must be an integer", http.StatusBadRequest)
		return
	}

	if len(parts) == 2 && parts[1] == "export.pdf" && r.Method == http.MethodGet {
		h.handleExportPDF(w, r, id)
		return
	}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *BillHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tenantID, hasTenant, err := parseInt64Query(query.Get("tenant_id"), "tenant_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	month, hasMonth, err := parseIntQuery(query.Get("month"), "month")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	year, hasYear, err := parseIntQuery(query.Get("year"), "year")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if hasMonth && !hasYear {
		http.Error(w, "month filter requires year", http.StatusBadRequest)
		return
	}

	var bills []billing.Bill
	switch {
	case hasTenant && hasMonth:
		bills, err = h.service.GetBillsByTenantAndMonthYear(r.Context(), tenantID, month, year)
	case hasTenant && hasYear:
		bills, err = h.service.GetBillsByTenantAndYear(r.Context(), tenantID, year)
	case hasTenant:
		bills, err = h.service.GetBillsByTenant(r.Context(), tenantID)
	case hasMonth:
		bills, err = h.service.GetBillsByMonthAndYear(r.Context(), month, year)
	case hasYear:
		bills, err = h.service.GetBillsByYear(r.Context(), year)
	default:
		bills, err = h.service.GetAllBills(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, billResponses(bills))
}

func (h *BillHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	bill, err := h.service.GetBillByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if bill == nil {
		http.Error(w, "bill not found", http.StatusNotFound)
		return
	}
	respondJSON(w, toBillResponse(*bill))
}

func (h *BillHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	bill, err := h.service.CreateBill(r.Context(), req.TenantID, req.Year, req.Month,
		req.ElectricityKWhCurrent, req.WaterM3Current,
		req.TrashFee, req.WifiFee, req.RoomRent, req.OccupantName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toBillResponse(*bill))
	h.logAudit(r, bill.ID, "bill.create", map[string]any{
		"tenant_id": bill.TenantID,
		"month":     bill.Month,
		"year":      bill.Year,
	})
}

func (h *BillHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	input := &billing.Bill{
		ID:                    id,
		Month:                 req.Month,
		Year:                  req.Year,
		ElectricityKWhCurrent: req.ElectricityKWhCurrent,
		WaterM3Current:        req.WaterM3Current,
		TrashFee:              req.TrashFee,
		WifiFee:               req.WifiFee,
		RoomRent:              req.RoomRent,
		OccupantName:          req.OccupantName,
		Paid:                  req.Paid,
	}
	bill, err := h.service.UpdateBill(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, toBillResponse(*bill))
	h.logAudit(r, bill.ID, "bill.update", map[string]any{
		"month": bill.Month,
		"year":  bill.Year,
		"paid":  bill.Paid,
	})
}

func (h *BillHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.service.DeleteBill(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, id, "bill.delete", nil)
}

func (h *BillHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id int64) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	bill, err := h.service.GetBillByID(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	if bill == nil {
		result = metrics.ResultError
		http.Error(w, "bill not found", http.StatusNotFound)
		return
	}

	tenantName := bill.OccupantName
	if tenant, err := h.tenants.FindByID(r.Context(), bill.TenantID); err == nil && tenant != nil {
		tenantName = tenant.Name
	}

	data, err := interfaces.BuildBillPDF(bill, tenantName)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, id, "bill.export", map[string]any{"format": "pdf"})
}

func (h *BillHandler) logAudit(r *http.Request, billID int64, action string, meta map[string]any) {
	logAudit(h.auditLogger, r, "bill", strconv.FormatInt(billID, 10), action, meta)
}

// ExportBillsXLSXHandler serves the all-bills workbook export.
type ExportBillsXLSXHandler struct {
	service     *billingapp.BillingService
	tenants     billingapp.TenantDirectory
	auditLogger audit.Logger
}

// NewExportBillsXLSXHandler constructs an ExportBillsXLSXHandler.
func NewExportBillsXLSXHandler(service *billingapp.BillingService, directory billingapp.TenantDirectory, auditLogger audit.Logger) (*ExportBillsXLSXHandler, error) {
	if service == nil {
		return nil, errors.New("export handler: nil service")
	}
	if directory == nil {
		return nil, errors.New("export handler: nil tenant directory")
	}
	return &ExportBillsXLSXHandler{service: service, tenants: directory, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/exports/bills.xlsx. Optional month/year
// query parameters restrict the workbook to one period or one year.
func (h *ExportBillsXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	query := r.URL.Query()
	month, hasMonth, err := parseIntQuery(query.Get("month"), "month")
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	year, hasYear, err := parseIntQuery(query.Get("year"), "year")
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if hasMonth && !hasYear {
		result = metrics.ResultError
		http.Error(w, "month filter requires year", http.StatusBadRequest)
		return
	}

	var bills []billing.Bill
	switch {
	case hasMonth:
		bills, err = h.service.GetBillsByMonthAndYear(r.Context(), month, year)
	case hasYear:
		bills, err = h.service.GetBillsByYear(r.Context(), year)
	default:
		bills, err = h.service.GetAllBills(r.Context())
	}
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	names := make(map[int64]string)
	if allTenants, err := h.tenants.ListAll(r.Context()); err == nil {
		for _, tenant := range allTenants {
			names[tenant.ID] = tenant.Name
		}
	}

	data, err := interfaces.BuildBillsXLSX(bills, names)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	logAudit(h.auditLogger, r, "bill", "", "bill.export", map[string]any{"format": "xlsx"})
}

type createBillRequest struct {
	TenantID              int64   `json:"tenant_id"`
	Month                 int     `json:"month"`
	Year                  int     `json:"year"`
	ElectricityKWhCurrent float64 `json:"electricity_kwh_current"`
	WaterM3Current        float64 `json:"water_m3_current"`
	TrashFee              float64 `json:"trash_fee"`
	WifiFee               float64 `json:"wifi_fee"`
	RoomRent              float64 `json:"room_rent"`
	OccupantName          string  `json:"occupant_name"`
}

type updateBillRequest struct {
	Month                 int     `json:"month"`
	Year                  int     `json:"year"`
	ElectricityKWhCurrent float64 `json:"electricity_kwh_current"`
	WaterM3Current        float64 `json:"water_m3_current"`
	TrashFee              float64 `json:"trash_fee"`
	WifiFee               float64 `json:"wifi_fee"`
	RoomRent              float64 `json:"room_rent"`
	OccupantName          string  `json:"occupant_name"`
	Paid                  bool    `json:"paid"`
}

type billResponse struct {
	ID                     int64   `json:"id"`
	TenantID               int64   `json:"tenant_id"`
	Month                  int     `json:"month"`
	Year                   int     `json:"year"`
	ElectricityKWhPrevious float64 `json:"electricity_kwh_previous"`
	ElectricityKWhCurrent  float64 `json:"electricity_kwh_current"`
	ElectricityCost        float64 `json:"electricity_cost"`
	WaterM3Previous        float64 `json:"water_m3_previous"`
	WaterM3Current         float64 `json:"water_m3_current"`
	WaterCost              float64 `json:"water_cost"`
	TrashFee               float64 `json:"trash_fee"`
	WifiFee                float64 `json:"wifi_fee"`
	RoomRent               float64 `json:"room_rent"`
	TotalAmount            float64 `json:"total_amount"`
	OccupantName           string  `json:"occupant_name"`
	Paid                   bool    `json:"paid"`
}

func toBillResponse(bill billing.Bill) billResponse {
	return billResponse{
		ID:                     bill.ID,
		TenantID:               bill.TenantID,
		Month:                  bill.Month,
		Year:                   bill.Year,
		ElectricityKWhPrevious: bill.ElectricityKWhPrevious,
		ElectricityKWhCurrent:  bill.ElectricityKWhCurrent,
		ElectricityCost:        bill.ElectricityCost,
		WaterM3Previous:        bill.WaterM3Previous,
		WaterM3Current:         bill.WaterM3Current,
		WaterCost:              bill.WaterCost,
		TrashFee:               bill.TrashFee,
		WifiFee:                bill.WifiFee,
		RoomRent:               bill.RoomRent,
		TotalAmount:            bill.TotalAmount,
		OccupantName:           bill.OccupantName,
		Paid:                   bill.Paid,
	}
}

func billResponses(bills []billing.Bill) []billResponse {
	result := make([]billResponse, 0, len(bills))
	for _, bill := range bills {
		result = append(result, toBillResponse(bill))
	}
	return result
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, billing.ErrBillNotFound),
		errors.Is(err, tenants.ErrTenantNotFound),
		errors.Is(err, settings.ErrSettingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, billing.ErrDuplicateBillingPeriod):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, billing.ErrInvalidMonth),
		errors.Is(err, billing.ErrInvalidYear),
		errors.Is(err, billing.ErrMissingBillID),
		errors.Is(err, billing.ErrNilBill),
		errors.Is(err, tenants.ErrEmptyTenantName),
		errors.Is(err, settings.ErrEmptyKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func logAudit(logger audit.Logger, r *http.Request, resourceType, resourceID, action string, meta map[string]any) {
	if logger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = logger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func parseIntQuery(value, key string) (int, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, errors.New(key + " must be an integer")
	}
	return parsed, true, nil
}

func parseInt64Query(value, key string) (int64, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, errors.New(key + " must be an integer")
	}
	return parsed, true, nil
}
