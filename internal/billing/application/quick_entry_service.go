package application

import (
	"context"
	"errors"
	"time"

	billing "roomledger/internal/billing/domain"
	"roomledger/internal/observability/metrics"
)

// MeterReadingEntry is one tenant's row in a quick-entry batch. Previous
// readings and fee values are pre-filled from the tenant's latest bill;
// current readings are supplied by the operator. A nil current reading
// means the field was left blank.
type MeterReadingEntry struct {
	TenantID   int64
	TenantName string

	ElectricityPrevious float64
	WaterPrevious       float64

	ElectricityCurrent *float64
	WaterCurrent       *float64

	RoomRent float64
	TrashFee float64
	WifiFee  float64

	OccupantName string

	// Selected controls whether a bill is created for this tenant.
	// Every entry starts selected; deselecting or leaving a current
	// reading blank both mean "skip this tenant for this batch".
	Selected bool
}

// BatchPlan is a proposed quick-entry batch: one period, one entry per
// tenant.
type BatchPlan struct {
	Month   int
	Year    int
	Entries []MeterReadingEntry
}

// BatchError records one tenant's failure inside a batch.
type BatchError struct {
	TenantID   int64
	TenantName string
	Message    string
}

// BatchResult reports a batch outcome. Failures are collected per tenant;
// they never abort the remaining entries.
type BatchResult struct {
	Created int
	Failed  int
	Errors  []BatchError
}

// QuickEntryService plans and executes bulk bill creation for a period.
type QuickEntryService struct {
	repo    billing.Repository
	tenants TenantDirectory
	engine  *BillingService
	clock   Clock
}

// NewQuickEntryService constructs the service.
func NewQuickEntryService(repo billing.Repository, directory TenantDirectory, engine *BillingService, clock Clock) (*QuickEntryService, error) {
	if repo == nil {
		return nil, errors.New("quick entry service: nil repository")
	}
	if directory == nil {
		return nil, errors.New("quick entry service: nil tenant directory")
	}
	if engine == nil {
		return nil, errors.New("quick entry service: nil billing service")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &QuickEntryService{repo: repo, tenants: directory, engine: engine, clock: clock}, nil
}

// DefaultPeriod proposes the billing period for a new batch: the month
// after the newest bill across all tenants (December rolls into January of
// the next year), or the current calendar month when no bills exist yet.
func (s *QuickEntryService) DefaultPeriod(ctx context.Context) (billing.Period, error) {
	bills, err := s.repo.ListAll(ctx)
	if err != nil {
		return billing.Period{}, err
	}
	if len(bills) == 0 {
		now := s.clock.Now()
		return billing.Period{Month: int(now.Month()), Year: now.Year()}, nil
	}

	latest := bills[0].Period()
	for _, bill := range bills[1:] {
		if period := bill.Period(); period.Compare(latest) > 0 {
			latest = period
		}
	}
	return latest.Next(), nil
}

// PlanEntries builds a batch plan for the default period with one
// pre-filled entry per tenant: previous readings and fee values carried
// over from the tenant's latest bill, or zeros and the tenant's name for
// a first bill. Every entry starts selected.
func (s *QuickEntryService) PlanEntries(ctx context.Context) (BatchPlan, error) {
	period, err := s.DefaultPeriod(ctx)
	if err != nil {
		return BatchPlan{}, err
	}

	allTenants, err := s.tenants.ListAll(ctx)
	if err != nil {
		return BatchPlan{}, err
	}

	plan := BatchPlan{Month: period.Month, Year: period.Year, Entries: make([]MeterReadingEntry, 0, len(allTenants))}
	for _, tenant := range allTenants {
		entry := MeterReadingEntry{
			TenantID:     tenant.ID,
			TenantName:   tenant.Name,
			OccupantName: tenant.Name,
			Selected:     true,
		}

		latest, err := s.repo.FindLatestByTenant(ctx, tenant.ID)
		if err != nil {
			return BatchPlan{}, err
		}
		if latest != nil {
			entry.ElectricityPrevious = latest.ElectricityKWhCurrent
			entry.WaterPrevious = latest.WaterM3Current
			entry.RoomRent = latest.RoomRent
			entry.TrashFee = latest.TrashFee
			entry.WifiFee = latest.WifiFee
			entry.OccupantName = latest.OccupantName
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

// CreateBatch creates one bill per selected entry with both current
// readings present, processing tenants sequentially. A failure for one
// tenant is collected and does not prevent the remaining tenants from
// being processed.
func (s *QuickEntryService) CreateBatch(ctx context.Context, plan BatchPlan) (BatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveQuickEntryBatch(time.Since(start))
	}()

	var result BatchResult
	if _, err := billing.NewPeriod(plan.Month, plan.Year); err != nil {
		return result, err
	}

	for _, entry := range plan.Entries {
		if !entry.Selected {
			continue
		}
		if entry.ElectricityCurrent == nil || entry.WaterCurrent == nil {
			continue
		}

		_, err := s.engine.CreateBill(ctx, entry.TenantID, plan.Year, plan.Month,
			*entry.ElectricityCurrent, *entry.WaterCurrent,
			entry.TrashFee, entry.WifiFee, entry.RoomRent, entry.OccupantName)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchError{
				TenantID:   entry.TenantID,
				TenantName: entry.TenantName,
				Message:    err.Error(),
			})
			metrics.ObserveQuickEntryBill(metrics.ResultError)
			continue
		}
		result.Created++
		metrics.ObserveQuickEntryBill(metrics.ResultSuccess)
	}
	return result, nil
}
