package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	billing "roomledger/internal/billing/domain"
	tenants "roomledger/internal/tenants/domain"
)

// BillStatistics aggregates cost components over a filtered bill set.
type BillStatistics struct {
	Month    *int
	Year     int
	TenantID *int64

	TotalRoomRent        float64
	TotalElectricityCost float64
	TotalWaterCost       float64
	TotalTrashFee        float64
	TotalWifiFee         float64
	TotalAmount          float64

	BillCount int
}

// GrandTotal is always recomputed from the five component totals so a
// change in any single summation cannot drift from the headline figure.
func (s BillStatistics) GrandTotal() float64 {
	return s.TotalRoomRent + s.TotalElectricityCost + s.TotalWaterCost + s.TotalTrashFee + s.TotalWifiFee
}

// DashboardSummary holds the landing-page headline numbers.
type DashboardSummary struct {
	TotalRooms   int
	TotalBills   int
	TotalRevenue float64
	UnpaidBills  int
}

// MonthlyStat is one month's component sums, used for chart feeds.
type MonthlyStat struct {
	Month                int
	Year                 int
	TotalRoomRent        float64
	TotalElectricityCost float64
	TotalWaterCost       float64
	TotalAmount          float64
	BillCount            int
}

// StatisticsService reduces bill sets into aggregates. Read-only.
type StatisticsService struct {
	repo    billing.Repository
	tenants TenantDirectory
	clock   Clock
}

// NewStatisticsService constructs the service.
func NewStatisticsService(repo billing.Repository, directory TenantDirectory, clock Clock) (*StatisticsService, error) {
	if repo == nil {
		return nil, errors.New("statistics service: nil repository")
	}
	if directory == nil {
		return nil, errors.New("statistics service: nil tenant directory")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &StatisticsService{repo: repo, tenants: directory, clock: clock}, nil
}

// Aggregate sums cost components over the bills selected by the filter.
// Year is always required; month and tenant are optional. An empty
// selection yields zero totals and a count of zero.
func (s *StatisticsService) Aggregate(ctx context.Context, month *int, year int, tenantID *int64) (BillStatistics, error) {
	stats := BillStatistics{Month: month, Year: year, TenantID: tenantID}
	if year < 1 {
		return stats, billing.ErrInvalidYear
	}
	if month != nil {
		if _, err := billing.NewPeriod(*month, year); err != nil {
			return stats, err
		}
	}

	bills, err := s.selectBills(ctx, month, year, tenantID)
	if err != nil {
		return stats, err
	}

	for _, bill := range bills {
		stats.TotalRoomRent += bill.RoomRent
		stats.TotalElectricityCost += bill.ElectricityCost
		stats.TotalWaterCost += bill.WaterCost
		stats.TotalTrashFee += bill.TrashFee
		stats.TotalWifiFee += bill.WifiFee
		stats.TotalAmount += bill.TotalAmount
		stats.BillCount++
	}
	return stats, nil
}

func (s *StatisticsService) selectBills(ctx context.Context, month *int, year int, tenantID *int64) ([]billing.Bill, error) {
	if tenantID != nil {
		tenant, err := s.tenants.FindByID(ctx, *tenantID)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			return nil, fmt.Errorf("%w: id %d", tenants.ErrTenantNotFound, *tenantID)
		}
		if month != nil {
			bill, err := s.repo.FindByTenantAndPeriod(ctx, *tenantID, billing.Period{Month: *month, Year: year})
			if err != nil {
				return nil, err
			}
			if bill == nil {
				return nil, nil
			}
			return []billing.Bill{*bill}, nil
		}
		return s.repo.ListByTenantAndYear(ctx, *tenantID, year)
	}
	if month != nil {
		return s.repo.ListByPeriod(ctx, billing.Period{Month: *month, Year: year})
	}
	return s.repo.ListByYear(ctx, year)
}

// Summary computes the dashboard headline numbers across all bills.
func (s *StatisticsService) Summary(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary

	allTenants, err := s.tenants.ListAll(ctx)
	if err != nil {
		return summary, err
	}
	bills, err := s.repo.ListAll(ctx)
	if err != nil {
		return summary, err
	}

	summary.TotalRooms = len(allTenants)
	summary.TotalBills = len(bills)
	for _, bill := range bills {
		summary.TotalRevenue += bill.TotalAmount
		if !bill.Paid {
			summary.UnpaidBills++
		}
	}
	return summary, nil
}

// MonthlyBreakdown returns per-month component sums for the trailing
// months calendar months, oldest first, ending at the current month.
func (s *StatisticsService) MonthlyBreakdown(ctx context.Context, months int) ([]MonthlyStat, error) {
	if months < 1 {
		months = 1
	}
	bills, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// Anchor on the first of the month: AddDate from day 29-31 normalizes
	// forward when the target month is shorter, skewing the slots.
	now := s.clock.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats := make([]MonthlyStat, 0, months)
	for i := months - 1; i >= 0; i-- {
		at := anchor.AddDate(0, -i, 0)
		stat := MonthlyStat{Month: int(at.Month()), Year: at.Year()}
		for _, bill := range bills {
			if bill.Month != stat.Month || bill.Year != stat.Year {
				continue
			}
			stat.TotalRoomRent += bill.RoomRent
			stat.TotalElectricityCost += bill.ElectricityCost
			stat.TotalWaterCost += bill.WaterCost
			stat.TotalAmount += bill.TotalAmount
			stat.BillCount++
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// RecentBills returns the newest bills by (year desc, month desc, id desc).
func (s *StatisticsService) RecentBills(ctx context.Context, limit int) ([]billing.Bill, error) {
	if limit < 1 {
		return nil, nil
	}
	bills, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(bills, func(i, j int) bool {
		if c := bills[i].Period().Compare(bills[j].Period()); c != 0 {
			return c > 0
		}
		return bills[i].ID > bills[j].ID
	})
	if len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}
