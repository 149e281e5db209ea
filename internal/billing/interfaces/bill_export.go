package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "roomledger/internal/billing/domain"
)

// BuildBillPDF renders a printable statement for one bill.
func BuildBillPDF(bill *billing.Bill, tenantName string) ([]byte, error) {
	if bill == nil {
		return nil, billing.ErrNilBill
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Utility Bill")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Room: %s", tenantName))
	pdf.Ln(5)
	if bill.OccupantName != "" && bill.OccupantName != tenantName {
		pdf.Cell(0, 6, fmt.Sprintf("Occupant: %s", bill.OccupantName))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", bill.Period()))
	pdf.Ln(5)
	status := "UNPAID"
	if bill.Paid {
		status = "PAID"
	}
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", status))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Previous", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Current", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	pdf.CellFormat(60, 6, "Electricity (kWh)", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", bill.ElectricityKWhPrevious), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", bill.ElectricityKWhCurrent), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", bill.ElectricityCost), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.CellFormat(60, 6, "Water (m3)", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", bill.WaterM3Previous), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", bill.WaterM3Current), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", bill.WaterCost), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	for _, line := range []struct {
		label  string
		amount float64
	}{
		{"Room Rent", bill.RoomRent},
		{"Trash Fee", bill.TrashFee},
		{"Wifi Fee", bill.WifiFee},
	} {
		pdf.CellFormat(60, 6, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, "", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, "", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", line.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(140, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", bill.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBillsXLSX renders a workbook listing bills, one row per bill.
// The tenant name map fills the Room column; unknown ids fall back to
// the bill's occupant name.
func BuildBillsXLSX(bills []billing.Bill, tenantNames map[int64]string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "bills"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Room", "Occupant", "Month", "Year",
		"Elec Prev", "Elec Curr", "Elec Cost",
		"Water Prev", "Water Curr", "Water Cost",
		"Rent", "Trash", "Wifi", "Total", "Paid",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for i, bill := range bills {
		row := i + 2
		name := tenantNames[bill.TenantID]
		if name == "" {
			name = bill.OccupantName
		}
		values := []any{
			name, bill.OccupantName, bill.Month, bill.Year,
			bill.ElectricityKWhPrevious, bill.ElectricityKWhCurrent, bill.ElectricityCost,
			bill.WaterM3Previous, bill.WaterM3Current, bill.WaterCost,
			bill.RoomRent, bill.TrashFee, bill.WifiFee, bill.TotalAmount, bill.Paid,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
