package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"roomledger/internal/audit"
	"roomledger/internal/auth"
	tenantapp "roomledger/internal/tenants/application"
	tenants "roomledger/internal/tenants/domain"
)

// Handler serves the room/tenant directory endpoints.
type Handler struct {
	service     *tenantapp.TenantService
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *tenantapp.TenantService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("tenant handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes tenant requests under /api/v1/tenants.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/tenants" {
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

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tenants/")
	if path == r.URL.Path || path == "" || strings.Contains(path, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		http.Error(w, "tenant id must be an integer", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleRename(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.GetAllTenants(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	result := make([]tenantResponse, 0, len(list))
	for _, tenant := range list {
		result = append(result, toTenantResponse(tenant))
	}
	respondJSON(w, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	tenant, err := h.service.GetTenantByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, toTenantResponse(*tenant))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tenant, err := h.service.SaveTenant(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toTenantResponse(*tenant))
	h.logAudit(r, tenant.ID, "tenant.create", map[string]any{"name": tenant.Name})
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request, id int64) {
	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tenant, err := h.service.RenameTenant(r.Context(), id, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, toTenantResponse(*tenant))
	h.logAudit(r, id, "tenant.rename", map[string]any{"name": req.Name})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.service.DeleteTenant(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, id, "tenant.delete", nil)
}

func (h *Handler) logAudit(r *http.Request, tenantID int64, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "tenant",
		ResourceID:   strconv.FormatInt(tenantID, 10),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type tenantRequest struct {
	Name string `json:"name"`
}

type tenantResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toTenantResponse(tenant tenants.Tenant) tenantResponse {
	return tenantResponse{ID: tenant.ID, Name: tenant.Name}
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
	case errors.Is(err, tenants.ErrTenantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tenants.ErrEmptyTenantName), errors.Is(err, tenants.ErrNilTenant):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
