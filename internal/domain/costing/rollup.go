package costing

import (
	"github.com/shopspring/decimal"

	"birrificio/internal/core/types"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/formats"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/pricing"
)

// MaterialCost is one costed consumption line. PriceFound is false when the
// catalog has no entry for the key; the cost is then zero and the caller
// must surface the miss, never treat the material as free.
type MaterialCost struct {
	Category   movement.Category `json:"category"`
	Product    string            `json:"product"`
	Brand      string            `json:"brand"`
	Supplier   string            `json:"supplier"`
	Quantity   types.Quantity    `json:"quantity"`
	UnitPrice  types.Money       `json:"unitPrice"`
	Cost       types.Money       `json:"cost"`
	PriceFound bool              `json:"priceFound"`
}

// Breakdown is the full cost analysis of one batch.
type Breakdown struct {
	Lot           string         `json:"lot"`
	Ingredients   []MaterialCost `json:"ingredients"`
	Packaging     []MaterialCost `json:"packaging"`
	GasCost       types.Money    `json:"gasCost"`
	WaterCost     types.Money    `json:"waterCost"`
	CO2Cost       types.Money    `json:"co2Cost"`
	NitrogenCost  types.Money    `json:"nitrogenCost"`
	ExciseCost    types.Money    `json:"exciseCost"`
	StorageCost   types.Money    `json:"storageCost"`
	PalletCost    types.Money    `json:"palletCost"`
	ManagementFee types.Money    `json:"managementFee"`
	Total         types.Money    `json:"total"`

	// MissingPrices lists products whose catalog lookup failed.
	MissingPrices []string `json:"missingPrices,omitempty"`
}

// CostPerLiter returns the total divided by the batch's final volume,
// zero when the volume is not recorded.
func (b Breakdown) CostPerLiter(finalVolume float64) types.Money {
	if finalVolume <= 0 {
		return decimal.Zero
	}
	return b.Total.Div(decimal.NewFromFloat(finalVolume))
}

// BatchCost joins a batch's recorded consumption movements against the
// price catalog and applies the coefficient formulas.
func BatchCost(
	b batch.Batch,
	movements []movement.Movement,
	catalog []pricing.Entry,
	coeff Coefficients,
) Breakdown {
	out := Breakdown{Lot: b.Lot, Total: decimal.Zero}

	for _, m := range movements {
		m.Normalize()
		if !m.IsOutbound() || m.ProductionLot != b.Lot {
			continue
		}

		line := MaterialCost{
			Category: m.Category,
			Product:  m.Product,
			Brand:    m.Brand,
			Supplier: m.Supplier,
			Quantity: m.Quantity.Abs(),
		}
		if entry, ok := pricing.Lookup(catalog, m.Product, m.Brand, m.Supplier); ok {
			line.UnitPrice = entry.UnitPrice
			line.Cost = entry.UnitPrice.Mul(line.Quantity.Decimal())
			line.PriceFound = true
		} else {
			line.UnitPrice = decimal.Zero
			line.Cost = decimal.Zero
			out.MissingPrices = append(out.MissingPrices, m.Product)
		}

		if isPackagingCategory(m.Category) {
			out.Packaging = append(out.Packaging, line)
		} else {
			out.Ingredients = append(out.Ingredients, line)
		}
		out.Total = out.Total.Add(line.Cost)
	}

	liters := decimal.NewFromFloat(b.FinalVolume)

	out.GasCost = coeff.GasUnitCost.Mul(decimal.NewFromFloat(b.BrewGas.Delta() + b.PackagingGas.Delta()))
	out.WaterCost = coeff.WaterUnitCost.Mul(decimal.NewFromFloat(b.WashWater.Delta()))
	if b.UsesCO2 {
		out.CO2Cost = coeff.CO2Cost
	} else {
		out.CO2Cost = decimal.Zero
	}
	if b.UsesNitrogen {
		out.NitrogenCost = coeff.NitrogenCost
	} else {
		out.NitrogenCost = decimal.Zero
	}
	out.ExciseCost = coeff.ExcisePerLiter.Mul(liters)
	out.StorageCost = coeff.StoragePerLiter.Mul(liters)
	out.PalletCost = coeff.PalletFee
	out.ManagementFee = coeff.ManagementPerHl.Mul(liters.Div(decimal.NewFromInt(100)))

	out.Total = out.Total.
		Add(out.GasCost).
		Add(out.WaterCost).
		Add(out.CO2Cost).
		Add(out.NitrogenCost).
		Add(out.ExciseCost).
		Add(out.StorageCost).
		Add(out.PalletCost).
		Add(out.ManagementFee)

	return out
}

// QuoteCost prices a quote's material lines against the catalog and adds
// the per-unit packaging yield costs for the chosen format.
func QuoteCost(q Quote, catalog []pricing.Entry, coeff Coefficients) Breakdown {
	out := Breakdown{Lot: q.ID, Total: decimal.Zero}

	for _, item := range q.Items {
		line := MaterialCost{
			Product:  movement.NormalizeKey(item.Product),
			Brand:    movement.NormalizeKey(item.Brand),
			Supplier: movement.NormalizeKey(item.Supplier),
			Quantity: item.Quantity,
		}
		if entry, ok := pricing.Lookup(catalog, item.Product, item.Brand, item.Supplier); ok {
			line.UnitPrice = entry.UnitPrice
			line.Cost = entry.UnitPrice.Mul(item.Quantity.Decimal())
			line.PriceFound = true
		} else {
			line.UnitPrice = decimal.Zero
			line.Cost = decimal.Zero
			out.MissingPrices = append(out.MissingPrices, line.Product)
		}
		out.Ingredients = append(out.Ingredients, line)
		out.Total = out.Total.Add(line.Cost)
	}

	liters := decimal.NewFromFloat(q.Liters)
	out.ExciseCost = coeff.ExcisePerLiter.Mul(liters)
	out.ManagementFee = coeff.ManagementPerHl.Mul(liters.Div(decimal.NewFromInt(100)))
	out.Total = out.Total.Add(out.ExciseCost).Add(out.ManagementFee)

	if q.Format != "" {
		if _, err := formats.Get(q.Format); err == nil {
			out.PalletCost = coeff.PalletFee
			out.Total = out.Total.Add(out.PalletCost)
		}
	}

	return out
}

func isPackagingCategory(c movement.Category) bool {
	switch c {
	case movement.CategoryTappi, movement.CategoryFusti, movement.CategoryCartoni, movement.CategoryBottiglie:
		return true
	}
	return false
}
