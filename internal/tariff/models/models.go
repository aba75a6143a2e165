package models

// CacheKey is the shared cache entry holding the serialized tariff list.
const CacheKey = "shipping_tariffs_v1"

// Tariff is the rate card of one delivery zone. Amounts are decimal strings
// exactly as stored, so no float rounding reaches clients.
type Tariff struct {
	Zone             string `json:"zone"`
	BaseRate         string `json:"base_rate"`
	WeightMultiplier string `json:"weight_multiplier"`
}

// Defaults mirrors the seed migration and backs the in-memory store.
func Defaults() []Tariff {
	return []Tariff{
		{Zone: "ZONE1", BaseRate: "1500.00", WeightMultiplier: "200.00"},
		{Zone: "ZONE2", BaseRate: "3000.00", WeightMultiplier: "350.00"},
		{Zone: "ZONE3", BaseRate: "12000.00", WeightMultiplier: "1500.00"},
	}
}
