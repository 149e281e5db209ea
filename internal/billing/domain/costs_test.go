package billing

import "testing"

func TestComputeCosts(t *testing.T) {
	bill := &Bill{
		ElectricityKWhPrevious: 100,
		ElectricityKWhCurrent:  150,
		WaterM3Previous:        10,
		WaterM3Current:         20,
		RoomRent:               2500000,
		TrashFee:               20000,
		WifiFee:                50000,
	}
	ComputeCosts(bill, 3000, 13000)

	if bill.ElectricityCost != 150000 {
		t.Fatalf("expected electricity cost 150000, got %v", bill.ElectricityCost)
	}
	if bill.WaterCost != 130000 {
		t.Fatalf("expected water cost 130000, got %v", bill.WaterCost)
	}
	want := 2500000.0 + 150000 + 130000 + 20000 + 50000
	if bill.TotalAmount != want {
		t.Fatalf("expected total %v, got %v", want, bill.TotalAmount)
	}
}

func TestComputeCosts_ClampsNegativeDelta(t *testing.T) {
	bill := &Bill{
		ElectricityKWhPrevious: 100,
		ElectricityKWhCurrent:  80,
		WaterM3Previous:        20,
		WaterM3Current:         5,
		RoomRent:               1000000,
	}
	ComputeCosts(bill, 3000, 13000)

	if bill.ElectricityCost != 0 {
		t.Fatalf("expected electricity cost 0, got %v", bill.ElectricityCost)
	}
	if bill.WaterCost != 0 {
		t.Fatalf("expected water cost 0, got %v", bill.WaterCost)
	}
	if bill.TotalAmount != 1000000 {
		t.Fatalf("expected total 1000000, got %v", bill.TotalAmount)
	}
}

func TestComputeCosts_ZeroDelta(t *testing.T) {
	bill := &Bill{
		ElectricityKWhPrevious: 50,
		ElectricityKWhCurrent:  50,
		WaterM3Previous:        7,
		WaterM3Current:         7,
	}
	ComputeCosts(bill, 3000, 13000)

	if bill.ElectricityCost != 0 || bill.WaterCost != 0 || bill.TotalAmount != 0 {
		t.Fatalf("expected all-zero costs, got elec=%v water=%v total=%v",
			bill.ElectricityCost, bill.WaterCost, bill.TotalAmount)
	}
}

func TestComputeCosts_Overwrite(t *testing.T) {
	bill := &Bill{
		ElectricityKWhPrevious: 0,
		ElectricityKWhCurrent:  10,
		ElectricityCost:        999999,
		WaterCost:              999999,
		TotalAmount:            999999,
	}
	ComputeCosts(bill, 1000, 1000)

	if bill.ElectricityCost != 10000 {
		t.Fatalf("expected recomputed electricity cost 10000, got %v", bill.ElectricityCost)
	}
	if bill.WaterCost != 0 {
		t.Fatalf("expected recomputed water cost 0, got %v", bill.WaterCost)
	}
	if bill.TotalAmount != 10000 {
		t.Fatalf("expected recomputed total 10000, got %v", bill.TotalAmount)
	}
}
