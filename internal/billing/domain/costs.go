package billing

// ComputeCosts recomputes the derived cost fields of a bill from its
// stored readings, fees and the given unit prices.
//
// A current reading below its previous reading (meter reset or data-entry
// reversal) clamps that utility's cost to zero rather than going negative.
func ComputeCosts(bill *Bill, electricityPricePerKWh, waterPricePerM3 float64) {
	bill.ElectricityCost = 0
	if bill.ElectricityKWhCurrent >= bill.ElectricityKWhPrevious {
		bill.ElectricityCost = (bill.ElectricityKWhCurrent - bill.ElectricityKWhPrevious) * electricityPricePerKWh
	}

	bill.WaterCost = 0
	if bill.WaterM3Current >= bill.WaterM3Previous {
		bill.WaterCost = (bill.WaterM3Current - bill.WaterM3Previous) * waterPricePerM3
	}

	bill.TotalAmount = bill.RoomRent + bill.ElectricityCost + bill.WaterCost + bill.TrashFee + bill.WifiFee
}
