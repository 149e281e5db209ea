package settings

// Well-known setting keys read by the billing engine.
const (
	KeyElectricityPrice = "ELECTRICITY_PRICE"
	KeyWaterPrice       = "WATER_PRICE"
	KeyTrashFee         = "TRASH_FEE"
	KeyWifiFee          = "WIFI_FEE"
)

// Setting is a named configuration value. Values are string-encoded
// numbers; reads are always live, so changing a price affects only bills
// computed after the change.
type Setting struct {
	Key         string
	Value       string
	Description string
}
