package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomledger/internal/audit"
	billingapp "roomledger/internal/billing/application"
)

// QuickEntryHandler serves bulk meter-reading entry.
type QuickEntryHandler struct {
	service     *billingapp.QuickEntryService
	auditLogger audit.Logger
}

// NewQuickEntryHandler constructs a QuickEntryHandler.
func NewQuickEntryHandler(service *billingapp.QuickEntryService, auditLogger audit.Logger) (*QuickEntryHandler, error) {
	if service == nil {
		return nil, errors.New("quick entry handler: nil service")
	}
	return &QuickEntryHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/quick-entry. GET proposes a pre-filled batch
// plan, POST executes a batch.
func (h *QuickEntryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handlePlan(w, r)
	case http.MethodPost:
		h.handleBatch(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *QuickEntryHandler) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.PlanEntries(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := batchPlanPayload{Month: plan.Month, Year: plan.Year}
	for _, entry := range plan.Entries {
		resp.Entries = append(resp.Entries, entryPayload{
			TenantID:            entry.TenantID,
			TenantName:          entry.TenantName,
			ElectricityPrevious: entry.ElectricityPrevious,
			WaterPrevious:       entry.WaterPrevious,
			ElectricityCurrent:  entry.ElectricityCurrent,
			WaterCurrent:        entry.WaterCurrent,
			RoomRent:            entry.RoomRent,
			TrashFee:            entry.TrashFee,
			WifiFee:             entry.WifiFee,
			OccupantName:        entry.OccupantName,
			Selected:            entry.Selected,
		})
	}
	respondJSON(w, resp)
}

func (h *QuickEntryHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchPlanPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	plan := billingapp.BatchPlan{Month: req.Month, Year: req.Year}
	for _, entry := range req.Entries {
		plan.Entries = append(plan.Entries, billingapp.MeterReadingEntry{
			TenantID:            entry.TenantID,
			TenantName:          entry.TenantName,
			ElectricityPrevious: entry.ElectricityPrevious,
			WaterPrevious:       entry.WaterPrevious,
			ElectricityCurrent:  entry.ElectricityCurrent,
			WaterCurrent:        entry.WaterCurrent,
			RoomRent:            entry.RoomRent,
			TrashFee:            entry.TrashFee,
			WifiFee:             entry.WifiFee,
			OccupantName:        entry.OccupantName,
			Selected:            entry.Selected,
		})
	}

	result, err := h.service.CreateBatch(r.Context(), plan)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := batchResultResponse{Created: result.Created, Failed: result.Failed}
	for _, batchErr := range result.Errors {
		resp.Errors = append(resp.Errors, batchErrorResponse{
			TenantID:   batchErr.TenantID,
			TenantName: batchErr.TenantName,
			Message:    batchErr.Message,
		})
	}
	respondJSON(w, resp)
	logAudit(h.auditLogger, r, "bill", "", "quickentry.batch", map[string]any{
		"month":   req.Month,
		"year":    req.Year,
		"created": result.Created,
		"failed":  result.Failed,
	})
}

type entryPayload struct {
	TenantID            int64    `json:"tenant_id"`
	TenantName          string   `json:"tenant_name"`
	ElectricityPrevious float64  `json:"electricity_previous"`
	WaterPrevious       float64  `json:"water_previous"`
	ElectricityCurrent  *float64 `json:"electricity_current"`
	WaterCurrent        *float64 `json:"water_current"`
	RoomRent            float64  `json:"room_rent"`
	TrashFee            float64  `json:"trash_fee"`
	WifiFee             float64  `json:"wifi_fee"`
	OccupantName        string   `json:"occupant_name"`
	Selected            bool     `json:"selected"`
}

type batchPlanPayload struct {
	Month   int            `json:"month"`
	Year    int            `json:"year"`
	Entries []entryPayload `json:"entries"`
}

type batchErrorResponse struct {
	TenantID   int64  `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Message    string `json:"message"`
}

type batchResultResponse struct {
	Created int                  `json:"created"`
	Failed  int                  `json:"failed"`
	Errors  []batchErrorResponse `json:"errors,omitempty"`
}
