package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"roomledger/internal/audit"
	"roomledger/internal/auth"
	settingapp "roomledger/internal/settings/application"
	settings "roomledger/internal/settings/domain"
)

// Handler serves pricing settings endpoints.
type Handler struct {
	service     *settingapp.SettingService
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *settingapp.SettingService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("setting handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes settings requests under /api/v1/settings.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/settings" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPut:
			h.handleSave(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/v1/settings/")
	if key == r.URL.Path || key == "" || strings.Contains(key, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.handleGet(w, r, key)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.GetAllSettings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	result := make([]settingResponse, 0, len(list))
	for _, setting := range list {
		result = append(result, toSettingResponse(setting))
	}
	respondJSON(w, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.service.GetSettingValue(r.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, map[string]string{"key": key, "value": value})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	setting, err := h.service.SaveSetting(r.Context(), req.Key, req.Value, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, toSettingResponse(*setting))
	h.logAudit(r, setting.Key, map[string]any{"value": setting.Value})
}

func (h *Handler) logAudit(r *http.Request, key string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "setting.save",
		ResourceType: "setting",
		ResourceID:   key,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type settingRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type settingResponse struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func toSettingResponse(setting settings.Setting) settingResponse {
	return settingResponse{Key: setting.Key, Value: setting.Value, Description: setting.Description}
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
	case errors.Is(err, settings.ErrSettingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, settings.ErrEmptyKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
