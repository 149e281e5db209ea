package application

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	settings "roomledger/internal/settings/domain"
)

// SeedConfig holds the initial pricing values seeded into the settings
// store on first boot. Values are per-unit or flat monthly fees in the
// configured currency.
type SeedConfig struct {
	ElectricityPrice float64 `yaml:"electricity_price"`
	WaterPrice       float64 `yaml:"water_price"`
	TrashFee         float64 `yaml:"trash_fee"`
	WifiFee          float64 `yaml:"wifi_fee"`
	Currency         string  `yaml:"currency"`
}

// DefaultSeedConfig returns the built-in pricing defaults.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		ElectricityPrice: 3000,
		WaterPrice:       13000,
		TrashFee:         20000,
		WifiFee:          50000,
		Currency:         "VND",
	}
}

// LoadSeedConfig reads a yaml seed file over the built-in defaults.
// An empty path returns the defaults unchanged.
func LoadSeedConfig(path string) (SeedConfig, error) {
	cfg := DefaultSeedConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read seed config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse seed config: %w", err)
	}
	return cfg, nil
}

// Defaults expands the seed config into settings rows.
func (c SeedConfig) Defaults() []settings.Setting {
	return []settings.Setting{
		{Key: settings.KeyElectricityPrice, Value: formatPrice(c.ElectricityPrice), Description: "Electricity price per kWh"},
		{Key: settings.KeyWaterPrice, Value: formatPrice(c.WaterPrice), Description: "Water price per cubic meter"},
		{Key: settings.KeyTrashFee, Value: formatPrice(c.TrashFee), Description: "Flat monthly trash collection fee"},
		{Key: settings.KeyWifiFee, Value: formatPrice(c.WifiFee), Description: "Flat monthly wifi fee"},
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
