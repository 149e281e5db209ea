package billing

// Bill is one tenant's invoice for a single billing period.
//
// The previous meter readings are a snapshot taken when the bill was
// created: they are chained from the tenant's bill for the immediately
// preceding calendar month (or zero when none exists) and are never
// revised afterwards, even when neighbouring bills are edited or deleted.
// The cost fields are derived from the stored readings and the live unit
// prices via ComputeCosts; they are never accepted from caller input.
type Bill struct {
	ID       int64
	TenantID int64
	Month    int
	Year     int

	ElectricityKWhPrevious float64
	ElectricityKWhCurrent  float64
	WaterM3Previous        float64
	WaterM3Current         float64

	TrashFee float64
	WifiFee  float64
	RoomRent float64

	ElectricityCost float64
	WaterCost       float64
	TotalAmount     float64

	// OccupantName records who lived in the room at billing time,
	// independent of the tenant's (room's) display name.
	OccupantName string
	Paid         bool
}

// Period returns the bill's billing period.
func (b *Bill) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// Clone returns a detached copy.
func (b *Bill) Clone() *Bill {
	if b == nil {
		return nil
	}
	copy := *b
	return &copy
}
