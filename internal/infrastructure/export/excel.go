// Package export renders derived snapshots as spreadsheet files. Inputs
// are fully-computed projection slices; nothing here reads the store.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/warehouse"
)

const sheet = "Sheet1"

// WarehouseStock renders the product-level stock table.
func WarehouseStock(entries []warehouse.StockEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	writeRow(f, 1, "Categoria", "Prodotto", "Marca", "Fornitore", "Giacenza")
	for i, e := range entries {
		writeRow(f, i+2, string(e.Category), e.Product, e.Brand, e.Supplier, e.Quantity.Float64())
	}
	return save(f)
}

// BeerStock renders the finished-beer stock table.
func BeerStock(items []beerstock.StockItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	writeRow(f, 1, "Cliente", "Birra", "Lotto", "Formato", "Giacenza", "Scadenza")
	for i, item := range items {
		expiry := ""
		if !item.Expiry.IsZero() {
			expiry = item.Expiry.Format("02/01/2006")
		}
		writeRow(f, i+2, item.Client, item.Beer, item.Lot, item.Format, item.Quantity.Float64(), expiry)
	}
	return save(f)
}

// BatchCost renders a batch cost breakdown: one line per costed material,
// then the coefficient charges and the total.
func BatchCost(b costing.Breakdown) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	writeRow(f, 1, "Lotto", b.Lot)
	writeRow(f, 2, "Voce", "Prodotto", "Quantità", "Prezzo unitario", "Costo")

	row := 3
	for _, line := range b.Ingredients {
		row = writeMaterial(f, row, "Ingrediente", line)
	}
	for _, line := range b.Packaging {
		row = writeMaterial(f, row, "Confezionamento", line)
	}

	charges := []struct {
		label string
		value string
	}{
		{"Gas", b.GasCost.StringFixed(2)},
		{"Acqua", b.WaterCost.StringFixed(2)},
		{"CO2", b.CO2Cost.StringFixed(2)},
		{"Azoto", b.NitrogenCost.StringFixed(2)},
		{"Accise", b.ExciseCost.StringFixed(2)},
		{"Stoccaggio", b.StorageCost.StringFixed(2)},
		{"Pedana", b.PalletCost.StringFixed(2)},
		{"Gestione", b.ManagementFee.StringFixed(2)},
	}
	for _, c := range charges {
		writeRow(f, row, c.label, "", "", "", c.value)
		row++
	}

	writeRow(f, row, "Totale", "", "", "", b.Total.StringFixed(2))
	row++
	for _, missing := range b.MissingPrices {
		writeRow(f, row, "PREZZO MANCANTE", missing)
		row++
	}
	return save(f)
}

func writeMaterial(f *excelize.File, row int, kind string, line costing.MaterialCost) int {
	price := line.UnitPrice.StringFixed(4)
	if !line.PriceFound {
		price = "N/D"
	}
	writeRow(f, row, kind, line.Product, line.Quantity.Float64(), price, line.Cost.StringFixed(2))
	return row + 1
}

func writeRow(f *excelize.File, row int, values ...any) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cell, v)
	}
}

func save(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
