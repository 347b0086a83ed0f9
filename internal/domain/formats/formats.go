// Package formats holds the static packaged-beer format table.
package formats

import (
	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/movement"
)

// Format describes one packaging format: per-unit volume, carton grouping
// and the warehouse category consumed for the container itself.
type Format struct {
	Code           string            `json:"code"`
	Description    string            `json:"description"`
	LitersPerUnit  float64           `json:"litersPerUnit"`
	UnitsPerCarton int               `json:"unitsPerCarton"` // 0 for formats not packed in cartons
	Container      movement.Category `json:"container"`
}

// IsBottle reports whether the format consumes caps on packaging.
func (f Format) IsBottle() bool {
	return f.Container == movement.CategoryBottiglie
}

// table is the fixed set of formats the brewery packages into.
var table = []Format{
	{Code: "B033", Description: "Bottiglia 0,33 l", LitersPerUnit: 0.33, UnitsPerCarton: 24, Container: movement.CategoryBottiglie},
	{Code: "B050", Description: "Bottiglia 0,50 l", LitersPerUnit: 0.50, UnitsPerCarton: 20, Container: movement.CategoryBottiglie},
	{Code: "B075", Description: "Bottiglia 0,75 l", LitersPerUnit: 0.75, UnitsPerCarton: 12, Container: movement.CategoryBottiglie},
	{Code: "F20", Description: "Fusto 20 l", LitersPerUnit: 20, UnitsPerCarton: 0, Container: movement.CategoryFusti},
	{Code: "F24", Description: "Fusto 24 l", LitersPerUnit: 24, UnitsPerCarton: 0, Container: movement.CategoryFusti},
}

// All returns the full format table.
func All() []Format {
	out := make([]Format, len(table))
	copy(out, table)
	return out
}

// Get resolves a format code.
func Get(code string) (Format, error) {
	code = movement.NormalizeKey(code)
	for _, f := range table {
		if f.Code == code {
			return f, nil
		}
	}
	return Format{}, apperror.NewValidation("unknown packaging format").WithDetail("format", code)
}
