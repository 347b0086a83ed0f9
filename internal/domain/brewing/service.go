// Package brewing manages brew batches: header saves with their ingredient
// side effects, packaging runs, and fermentation readings. Every save is
// one atomic read-modify-write; stock sufficiency for the whole set of
// derived consumptions is validated before anything is written.
package brewing

import (
	"context"
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/id"
	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/costing"
	"birrificio/internal/domain/formats"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
	"birrificio/pkg/logger"
)

// Service provides batch operations.
type Service struct {
	store domain.Store
}

// NewService creates a new brewing service.
func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// IngredientConsumption is one raw-material draw recorded with a batch
// save. The operator chooses the supplier lot; quantity is positive.
type IngredientConsumption struct {
	Category    movement.Category `json:"category"`
	Product     string            `json:"product"`
	Brand       string            `json:"brand"`
	Supplier    string            `json:"supplier"`
	SupplierLot string            `json:"supplierLot"`
	Quantity    types.Quantity    `json:"quantity"`
}

// SaveBatch creates or updates a batch header and appends its ingredient
// consumption movements as one combined operation. On update of a batch
// whose cost analysis is closed, only notes and fermenter release may
// change.
func (s *Service) SaveBatch(ctx context.Context, year string, b batch.Batch, consumptions []IngredientConsumption) error {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return err
	}
	for _, c := range consumptions {
		if !c.Quantity.IsPositive() {
			return apperror.NewValidation("consumption quantity must be positive").WithDetail("product", c.Product)
		}
		if c.SupplierLot == "" {
			return apperror.NewValidation("supplier lot is required for consumption").WithDetail("product", c.Product)
		}
	}

	operation := id.NewString()

	err := s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		existingIdx := -1
		for i := range d.Batches {
			if d.Batches[i].Lot == b.Lot {
				existingIdx = i
				break
			}
		}

		if existingIdx >= 0 {
			existing := d.Batches[existingIdx]
			if existing.CostClosed {
				b.CostClosed = true
				if !b.CostInputsEqual(existing) {
					return apperror.NewCostClosed(b.Lot)
				}
				if len(consumptions) > 0 {
					return apperror.NewCostClosed(b.Lot)
				}
			}
		}

		// A fermenter holds one open batch at a time.
		if b.Fermenter != "" {
			fermenter := movement.NormalizeKey(b.Fermenter)
			for i := range d.Batches {
				if i == existingIdx || d.Batches[i].IsClosed() {
					continue
				}
				if movement.NormalizeKey(d.Batches[i].Fermenter) == fermenter {
					return apperror.NewConflict("fermenter is already occupied").
						WithDetail("fermenter", b.Fermenter).
						WithDetail("lot", d.Batches[i].Lot)
				}
			}
		}

		requests := make([]warehouse.Consumption, 0, len(consumptions))
		for _, c := range consumptions {
			requests = append(requests, warehouse.Consumption{
				Product:     c.Product,
				SupplierLot: c.SupplierLot,
				Quantity:    c.Quantity,
			})
		}
		if err := warehouse.CheckConsumptions(d.Movements, requests); err != nil {
			return err
		}

		if existingIdx >= 0 {
			d.Batches[existingIdx] = b
		} else {
			d.Batches = append(d.Batches, b)
		}

		for _, c := range consumptions {
			d.Movements = append(d.Movements, movement.Movement{
				Date:          b.ProductionDate,
				Category:      c.Category,
				Product:       movement.NormalizeKey(c.Product),
				Brand:         movement.NormalizeKey(c.Brand),
				Supplier:      movement.NormalizeKey(c.Supplier),
				Quantity:      c.Quantity.Neg(),
				Reference:     operation,
				SupplierLot:   c.SupplierLot,
				ProductionLot: b.Lot,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "batch saved", "lot", b.Lot, "consumptions", len(consumptions))
	return nil
}

// PackagingMaterials names the supplier lots the operator draws the
// packaging materials from. Carton is optional; Cap applies to bottle
// formats only.
type PackagingMaterials struct {
	Container MaterialLot  `json:"container"`
	Carton    *MaterialLot `json:"carton,omitempty"`
	Cap       *MaterialLot `json:"cap,omitempty"`
}

// MaterialLot identifies one packaging material and the lot to consume.
type MaterialLot struct {
	Product     string `json:"product"`
	Brand       string `json:"brand"`
	Supplier    string `json:"supplier"`
	SupplierLot string `json:"supplierLot"`
}

// SavePackaging records a packaging event and synthesizes the container,
// carton and cap consumption movements. All derived requirements are
// checked before any write: an insufficient lot leaves zero new movements
// and zero new packaging records.
func (s *Service) SavePackaging(ctx context.Context, year string, ev batch.PackagingEvent, materials PackagingMaterials) error {
	ev.ProductionLot = movement.NormalizeKey(ev.ProductionLot)
	ev.Format = movement.NormalizeKey(ev.Format)
	if ev.Units <= 0 {
		return apperror.NewValidation("unit count must be positive").WithDetail("field", "units")
	}
	if ev.Date.IsZero() {
		ev.Date = time.Now()
	}

	format, err := formats.Get(ev.Format)
	if err != nil {
		return err
	}
	ev.Liters = types.NewQuantityFromFloat64(float64(ev.Units) * format.LitersPerUnit)
	if ev.Operation == "" {
		ev.Operation = id.NewString()
	}

	if format.IsBottle() && materials.Cap == nil {
		return apperror.NewValidation("bottle packaging requires a cap lot").WithDetail("format", format.Code)
	}

	err = s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		if _, ok := batch.FindBatch(d.Batches, ev.ProductionLot); !ok {
			return apperror.NewNotFound("batch", ev.ProductionLot)
		}

		type draw struct {
			material MaterialLot
			category movement.Category
			quantity types.Quantity
		}
		draws := []draw{
			{materials.Container, format.Container, types.NewQuantityFromInt(ev.Units)},
		}
		if materials.Carton != nil && format.UnitsPerCarton > 0 {
			cartons := float64(ev.Units) / float64(format.UnitsPerCarton)
			draws = append(draws, draw{*materials.Carton, movement.CategoryCartoni, types.NewQuantityFromFloat64(cartons)})
		}
		if format.IsBottle() {
			draws = append(draws, draw{*materials.Cap, movement.CategoryTappi, types.NewQuantityFromInt(ev.Units)})
		}

		requests := make([]warehouse.Consumption, 0, len(draws))
		for _, dr := range draws {
			requests = append(requests, warehouse.Consumption{
				Product:     dr.material.Product,
				SupplierLot: dr.material.SupplierLot,
				Quantity:    dr.quantity,
			})
		}
		if err := warehouse.CheckConsumptions(d.Movements, requests); err != nil {
			return err
		}

		d.Packagings = append(d.Packagings, ev)
		for _, dr := range draws {
			d.Movements = append(d.Movements, movement.Movement{
				Date:          ev.Date,
				Category:      dr.category,
				Product:       movement.NormalizeKey(dr.material.Product),
				Brand:         movement.NormalizeKey(dr.material.Brand),
				Supplier:      movement.NormalizeKey(dr.material.Supplier),
				Quantity:      dr.quantity.Neg(),
				Reference:     ev.Operation,
				SupplierLot:   dr.material.SupplierLot,
				ProductionLot: ev.ProductionLot,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "packaging saved",
		"lot", ev.ProductionLot,
		"format", ev.Format,
		"units", ev.Units,
	)
	return nil
}

// SaveReading records a fermentation measurement. The day number is the
// whole-day offset from the batch's production date; saving twice for the
// same day overwrites the earlier reading.
func (s *Service) SaveReading(ctx context.Context, year, lot string, date time.Time, temperature, gravity float64) error {
	lot = movement.NormalizeKey(lot)

	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		header, ok := batch.FindBatch(d.Batches, lot)
		if !ok {
			return apperror.NewNotFound("batch", lot)
		}

		day := movement.DayNumber(header.ProductionDate, date)
		if day < 0 {
			return apperror.NewValidation("reading date precedes production date").WithDetail("lot", lot)
		}

		reading := batch.FermentationReading{
			Lot:         lot,
			Day:         day,
			Date:        date,
			Temperature: temperature,
			Gravity:     gravity,
		}
		for i := range d.Fermentations {
			if d.Fermentations[i].Lot == lot && d.Fermentations[i].Day == day {
				d.Fermentations[i] = reading
				return nil
			}
		}
		d.Fermentations = append(d.Fermentations, reading)
		return nil
	})
}

// CloseBatch releases the batch's fermenter.
func (s *Service) CloseBatch(ctx context.Context, year, lot string) error {
	lot = movement.NormalizeKey(lot)
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		for i := range d.Batches {
			if d.Batches[i].Lot == lot {
				d.Batches[i].Fermenter = ""
				return nil
			}
		}
		return apperror.NewNotFound("batch", lot)
	})
}

// CloseCostAnalysis freezes the batch's cost inputs.
func (s *Service) CloseCostAnalysis(ctx context.Context, year, lot string) error {
	lot = movement.NormalizeKey(lot)
	return s.store.Mutate(ctx, year, func(d *domain.Dataset) error {
		for i := range d.Batches {
			if d.Batches[i].Lot == lot {
				d.Batches[i].CostClosed = true
				return nil
			}
		}
		return apperror.NewNotFound("batch", lot)
	})
}

// BatchCost computes the cost breakdown for one batch from its recorded
// consumptions, the price catalog and the year's coefficients.
func (s *Service) BatchCost(ctx context.Context, year, lot string) (*costing.Breakdown, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	lot = movement.NormalizeKey(lot)
	header, ok := batch.FindBatch(d.Batches, lot)
	if !ok {
		return nil, apperror.NewNotFound("batch", lot)
	}
	breakdown := costing.BatchCost(header, d.Movements, d.PriceCatalog, d.Coefficients)
	return &breakdown, nil
}

// QuoteCost prices one stored quote against the current catalog.
func (s *Service) QuoteCost(ctx context.Context, year, quoteID string) (*costing.Breakdown, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	for _, q := range d.Quotes {
		if q.ID == quoteID {
			breakdown := costing.QuoteCost(q, d.PriceCatalog, d.Coefficients)
			return &breakdown, nil
		}
	}
	return nil, apperror.NewNotFound("quote", quoteID)
}

// GetBatches returns the year's batch headers.
func (s *Service) GetBatches(ctx context.Context, year string) ([]batch.Batch, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	return d.Batches, nil
}

// GetReadings returns the fermentation readings for one lot.
func (s *Service) GetReadings(ctx context.Context, year, lot string) ([]batch.FermentationReading, error) {
	d, err := s.store.Get(ctx, year)
	if err != nil {
		return nil, err
	}
	lot = movement.NormalizeKey(lot)
	readings := make([]batch.FermentationReading, 0)
	for _, r := range d.Fermentations {
		if r.Lot == lot {
			readings = append(readings, r)
		}
	}
	return readings, nil
}
