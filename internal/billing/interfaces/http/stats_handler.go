package http

import (
	"errors"
	"net/http"

	billingapp "roomledger/internal/billing/application"
)

const (
	dashboardBreakdownMonths = 6
	dashboardRecentBills     = 5
)

// StatisticsHandler serves aggregate statistics queries.
type StatisticsHandler struct {
	service *billingapp.StatisticsService
	clock   billingapp.Clock
}

// NewStatisticsHandler constructs a StatisticsHandler. The clock supplies
// the default year for unscoped queries.
func NewStatisticsHandler(service *billingapp.StatisticsService, clock billingapp.Clock) (*StatisticsHandler, error) {
	if service == nil {
		return nil, errors.New("statistics handler: nil service")
	}
	if clock == nil {
		return nil, errors.New("statistics handler: nil clock")
	}
	return &StatisticsHandler{service: service, clock: clock}, nil
}

// ServeHTTP handles GET /api/v1/statistics. The year defaults to the
// current calendar year; month and tenant_id narrow the selection.
func (h *StatisticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	year, hasYear, err := parseIntQuery(query.Get("year"), "year")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !hasYear {
		year = h.clock.Now().Year()
	}

	var month *int
	if value, ok, err := parseIntQuery(query.Get("month"), "month"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if ok {
		month = &value
	}

	var tenantID *int64
	if value, ok, err := parseInt64Query(query.Get("tenant_id"), "tenant_id"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if ok {
		tenantID = &value
	}

	stats, err := h.service.Aggregate(r.Context(), month, year, tenantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, toStatisticsResponse(stats))
}

// DashboardHandler serves the landing-page summary.
type DashboardHandler struct {
	service *billingapp.StatisticsService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(service *billingapp.StatisticsService) (*DashboardHandler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	return &DashboardHandler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	monthly, err := h.service.MonthlyBreakdown(r.Context(), dashboardBreakdownMonths)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	recent, err := h.service.RecentBills(r.Context(), dashboardRecentBills)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := dashboardResponse{
		TotalRooms:   summary.TotalRooms,
		TotalBills:   summary.TotalBills,
		TotalRevenue: summary.TotalRevenue,
		UnpaidBills:  summary.UnpaidBills,
		RecentBills:  billResponses(recent),
	}
	for _, stat := range monthly {
		resp.Monthly = append(resp.Monthly, monthlyStatResponse{
			Month:                stat.Month,
			Year:                 stat.Year,
			TotalRoomRent:        stat.TotalRoomRent,
			TotalElectricityCost: stat.TotalElectricityCost,
			TotalWaterCost:       stat.TotalWaterCost,
			TotalAmount:          stat.TotalAmount,
			BillCount:            stat.BillCount,
		})
	}
	respondJSON(w, resp)
}

type statisticsResponse struct {
	Month    *int   `json:"month,omitempty"`
	Year     int    `json:"year"`
	TenantID *int64 `json:"tenant_id,omitempty"`

	TotalRoomRent        float64 `json:"total_room_rent"`
	TotalElectricityCost float64 `json:"total_electricity_cost"`
	TotalWaterCost       float64 `json:"total_water_cost"`
	TotalTrashFee        float64 `json:"total_trash_fee"`
	TotalWifiFee         float64 `json:"total_wifi_fee"`
	TotalAmount          float64 `json:"total_amount"`
	GrandTotal           float64 `json:"grand_total"`
	BillCount            int     `json:"bill_count"`
}

func toStatisticsResponse(stats billingapp.BillStatistics) statisticsResponse {
	return statisticsResponse{
		Month:                stats.Month,
		Year:                 stats.Year,
		TenantID:             stats.TenantID,
		TotalRoomRent:        stats.TotalRoomRent,
		TotalElectricityCost: stats.TotalElectricityCost,
		TotalWaterCost:       stats.TotalWaterCost,
		TotalTrashFee:        stats.TotalTrashFee,
		TotalWifiFee:         stats.TotalWifiFee,
		TotalAmount:          stats.TotalAmount,
		GrandTotal:           stats.GrandTotal(),
		BillCount:            stats.BillCount,
	}
}

type monthlyStatResponse struct {
	Month                int     `json:"month"`
	Year                 int     `json:"year"`
	TotalRoomRent        float64 `json:"total_room_rent"`
	TotalElectricityCost float64 `json:"total_electricity_cost"`
	TotalWaterCost       float64 `json:"total_water_cost"`
	TotalAmount          float64 `json:"total_amount"`
	BillCount            int     `json:"bill_count"`
}

type dashboardResponse struct {
	TotalRooms   int                   `json:"total_rooms"`
	TotalBills   int                   `json:"total_bills"`
	TotalRevenue float64               `json:"total_revenue"`
	UnpaidBills  int                   `json:"unpaid_bills"`
	Monthly      []monthlyStatResponse `json:"monthly"`
	RecentBills  []billResponse        `json:"recent_bills"`
}
