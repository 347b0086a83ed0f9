// Package costing computes per-batch and per-quote costs by joining
// consumption movements against the price catalog and fixed coefficients.
package costing

import (
	"time"

	"birrificio/internal/core/types"
)

// Coefficients are the stored cost rates. They are carried over when a new
// year is created and editable as master data.
type Coefficients struct {
	// Gas and water rates, applied to counter deltas.
	GasUnitCost   types.Money `json:"gasUnitCost"`   // per counter unit
	WaterUnitCost types.Money `json:"waterUnitCost"` // per counter unit

	// CO2 and nitrogen flat rates per batch, applied when the flag is set.
	CO2Cost      types.Money `json:"co2Cost"`
	NitrogenCost types.Money `json:"nitrogenCost"`

	// Excise duty per liter (already adjusted for the brewery's rate class).
	ExcisePerLiter types.Money `json:"excisePerLiter"`

	// Storage, pallet and management fees.
	StoragePerLiter types.Money `json:"storagePerLiter"`
	PalletFee       types.Money `json:"palletFee"`
	ManagementPerHl types.Money `json:"managementPerHl"`
}

// Quote is a priced offer for a prospective production run. Quotes are
// year-scoped and intentionally NOT carried over to a new year.
type Quote struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Client string      `json:"client"`
	Date   time.Time   `json:"date"`
	Liters float64     `json:"liters"`
	Format string      `json:"format"`
	Items  []QuoteItem `json:"items"`
	Notes  string      `json:"notes,omitempty"`
}

// QuoteItem is one estimated material line of a quote.
type QuoteItem struct {
	Product  string         `json:"product"`
	Brand    string         `json:"brand"`
	Supplier string         `json:"supplier"`
	Quantity types.Quantity `json:"quantity"`
}
