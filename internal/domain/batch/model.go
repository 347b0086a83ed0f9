// Package batch defines brew batches (production lots), their packaging
// events and fermentation readings.
package batch

import (
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain/movement"
)

// CounterPair is a before/after meter reading; the difference is the
// derived consumption.
type CounterPair struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Delta returns the derived consumption for the pair.
func (c CounterPair) Delta() float64 {
	return c.After - c.Before
}

// Batch is one brewing run. Lot is the unique uppercase production-lot
// code. An empty Fermenter means the batch is closed and the fermenter
// released. Once CostClosed is set, inputs affecting cost become immutable.
type Batch struct {
	Lot            string      `json:"lot"`
	Client         string      `json:"client"`
	Beer           string      `json:"beer"`
	ProductionDate time.Time   `json:"productionDate"`
	Fermenter      string      `json:"fermenter,omitempty"`
	InitialGravity float64     `json:"initialGravity"`
	FinalVolume    float64     `json:"finalVolume"` // liters
	MustMeter      CounterPair `json:"mustMeter"`
	BrewGas        CounterPair `json:"brewGas"`
	PackagingGas   CounterPair `json:"packagingGas"`
	WashWater      CounterPair `json:"washWater"`
	UsesCO2        bool        `json:"usesCo2"`
	UsesNitrogen   bool        `json:"usesNitrogen"`
	Fermentation   string      `json:"fermentation"` // alta/bassa fermentazione
	ExpectedDays   int         `json:"expectedDays"`
	Notes          string      `json:"notes,omitempty"`
	CostClosed     bool        `json:"costClosed"`
}

// IsClosed reports whether the fermenter has been released.
func (b Batch) IsClosed() bool {
	return b.Fermenter == ""
}

// Normalize maps identity fields to canonical form.
func (b *Batch) Normalize() {
	b.Lot = movement.NormalizeKey(b.Lot)
	b.Client = movement.NormalizeKey(b.Client)
	b.Beer = movement.NormalizeKey(b.Beer)
}

// Validate checks the header before save.
func (b Batch) Validate() error {
	if b.Lot == "" {
		return apperror.NewValidation("production lot code is required").WithDetail("field", "lot")
	}
	if b.Beer == "" {
		return apperror.NewValidation("beer name is required").WithDetail("field", "beer")
	}
	if b.ProductionDate.IsZero() {
		return apperror.NewValidation("production date is required").WithDetail("field", "productionDate")
	}
	return nil
}

// CostInputsEqual reports whether every cost-affecting input matches. Used
// to enforce immutability after cost-analysis closure: notes and fermenter
// release stay editable, everything else is frozen.
func (b Batch) CostInputsEqual(other Batch) bool {
	return b.Client == other.Client &&
		b.Beer == other.Beer &&
		b.ProductionDate.Equal(other.ProductionDate) &&
		b.InitialGravity == other.InitialGravity &&
		b.FinalVolume == other.FinalVolume &&
		b.MustMeter == other.MustMeter &&
		b.BrewGas == other.BrewGas &&
		b.PackagingGas == other.PackagingGas &&
		b.WashWater == other.WashWater &&
		b.UsesCO2 == other.UsesCO2 &&
		b.UsesNitrogen == other.UsesNitrogen &&
		b.Fermentation == other.Fermentation &&
		b.ExpectedDays == other.ExpectedDays
}

// PackagingEvent records one packaging run of a production lot into a
// format. Liters is always Units times the format's per-unit volume.
type PackagingEvent struct {
	ProductionLot string         `json:"productionLot"`
	Format        string         `json:"format"`
	Units         int            `json:"units"`
	Liters        types.Quantity `json:"liters"`
	Operation     string         `json:"operation"`
	Expiry        time.Time      `json:"expiry"`
	Date          time.Time      `json:"date"`
}

// FermentationReading is one (lot, day) measurement. Day is the whole-day
// offset from the batch's production date; a re-save for the same day
// overwrites the previous reading.
type FermentationReading struct {
	Lot         string    `json:"lot"`
	Day         int       `json:"day"`
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Gravity     float64   `json:"gravity"`
}

// FindBatch returns the header for a production lot, if present.
func FindBatch(batches []Batch, lot string) (Batch, bool) {
	lot = movement.NormalizeKey(lot)
	for _, b := range batches {
		if b.Lot == lot {
			return b, true
		}
	}
	return Batch{}, false
}
