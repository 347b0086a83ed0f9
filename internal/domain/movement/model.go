// Package movement defines the raw-material movement log: the append-only
// list of signed quantity events every warehouse projection folds over.
package movement

import (
	"strings"
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
)

// Category enumerates the raw-material families tracked in the warehouse.
type Category string

const (
	CategoryMalti       Category = "MALTI"
	CategoryLuppoli     Category = "LUPPOLI"
	CategoryLieviti     Category = "LIEVITI"
	CategoryAdditivi    Category = "ADDITIVI"
	CategorySanificanti Category = "SANIFICANTI"
	CategoryTappi       Category = "TAPPI"
	CategoryFusti       Category = "FUSTI"
	CategoryCartoni     Category = "CARTONI"
	CategoryBottiglie   Category = "BOTTIGLIE"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryMalti,
	CategoryLuppoli,
	CategoryLieviti,
	CategoryAdditivi,
	CategorySanificanti,
	CategoryTappi,
	CategoryFusti,
	CategoryCartoni,
	CategoryBottiglie,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Invoice markers for movements the system synthesizes itself.
const (
	// RefAutoDischarge tags the outbound movement written when a lot is
	// found past its expiry date.
	RefAutoDischarge = "SCARICO AUTOMATICO"

	// RefCarryForward tags the Jan-1 opening movements emitted when a new
	// year imports the previous year's remaining stock.
	RefCarryForward = "RIPORTO ANNO PRECEDENTE"

	// NoteExpired is the production-lot note on auto-discharge movements.
	NoteExpired = "SCADUTO"
)

// Movement is one raw-material ledger entry. Quantity is signed: positive
// for inbound (purchase, carry-forward), negative for outbound (consumption,
// discharge). UnitPrice is set only on inbound movements that represent a
// purchase.
type Movement struct {
	Date          time.Time      `json:"date"`
	Category      Category       `json:"category"`
	Product       string         `json:"product"`
	Brand         string         `json:"brand"`
	Supplier      string         `json:"supplier"`
	Quantity      types.Quantity `json:"quantity"`
	Reference     string         `json:"reference"`
	SupplierLot   string         `json:"supplierLot"`
	ProductionLot string         `json:"productionLot,omitempty"`
	Expiry        *time.Time     `json:"expiry,omitempty"`
	UnitPrice     *types.Money   `json:"unitPrice,omitempty"`
}

// IsInbound reports whether the movement adds stock.
func (m Movement) IsInbound() bool {
	return m.Quantity.IsPositive()
}

// IsOutbound reports whether the movement consumes stock.
func (m Movement) IsOutbound() bool {
	return m.Quantity.IsNegative()
}

// Normalize maps the identity fields to their canonical uppercase-trimmed
// form. Aggregation identity is case and whitespace insensitive.
func (m *Movement) Normalize() {
	m.Category = Category(NormalizeKey(string(m.Category)))
	m.Product = NormalizeKey(m.Product)
	m.Brand = NormalizeKey(m.Brand)
	m.Supplier = NormalizeKey(m.Supplier)
	m.SupplierLot = strings.TrimSpace(m.SupplierLot)
	m.ProductionLot = NormalizeKey(m.ProductionLot)
	m.Reference = strings.TrimSpace(m.Reference)
}

// Validate checks the entry before it is appended to the log.
func (m Movement) Validate() error {
	if !m.Category.IsValid() {
		return apperror.NewValidation("unknown category").WithDetail("category", string(m.Category))
	}
	if m.Product == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "product")
	}
	if m.Date.IsZero() {
		return apperror.NewValidation("movement date is required").WithDetail("field", "date")
	}
	if m.Quantity.IsZero() {
		return apperror.NewValidation("quantity must not be zero").WithDetail("field", "quantity")
	}
	if m.UnitPrice != nil && m.IsOutbound() {
		return apperror.NewValidation("unit price is only allowed on inbound movements").WithDetail("field", "unitPrice")
	}
	return nil
}

// NormalizeKey returns the canonical form used for all aggregation keys.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SameDay reports whether two timestamps fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayNumber returns the whole-day offset of t from start, by calendar date.
// Negative when t precedes start. The dates are rebuilt in UTC before
// subtracting: local midnights are 23 or 25 hours apart across a DST
// switch, which would make adjacent days collapse into the same offset.
func DayNumber(start, t time.Time) int {
	sy, sm, sd := start.Date()
	ty, tm, td := t.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	d := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(d.Sub(s).Hours() / 24)
}
