// Package beerstock derives finished-beer stock per (client, beer, lot,
// format) from three sources: manual opening balances, packaging
// completions and signed beer movements.
package beerstock

import (
	"fmt"
	"time"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain/movement"
)

// OwnClient is the brewery's own virtual client: its finished-goods
// warehouse, distinct from third-party consignment stock.
const OwnClient = "ALVERESE"

// MovementType classifies a beer movement.
type MovementType string

const (
	// TypeSale draws down stock (negative quantity).
	TypeSale MovementType = "VENDITA"
	// TypePurchase credits stock (positive quantity), used when beer is
	// transferred to another client's virtual stock.
	TypePurchase MovementType = "ACQUISTO"
	// TypeAdjustment corrects stock in either direction.
	TypeAdjustment MovementType = "RETTIFICA"
)

// StockKey identifies one finished-beer ledger line.
type StockKey struct {
	Client string `json:"client"`
	Beer   string `json:"beer"`
	Lot    string `json:"lot"`
	Format string `json:"format"`
}

func (k StockKey) normalize() StockKey {
	return StockKey{
		Client: movement.NormalizeKey(k.Client),
		Beer:   movement.NormalizeKey(k.Beer),
		Lot:    movement.NormalizeKey(k.Lot),
		Format: movement.NormalizeKey(k.Format),
	}
}

// InitialStock is a manually entered opening balance for one ledger line.
type InitialStock struct {
	StockKey
	Quantity types.Quantity `json:"quantity"`
	Expiry   time.Time      `json:"expiry"`
}

// BeerMovement is one signed finished-beer ledger event, linked to the
// document that produced it (sales order id, inventory check id).
type BeerMovement struct {
	StockKey
	Date       time.Time      `json:"date"`
	Type       MovementType   `json:"type"`
	Quantity   types.Quantity `json:"quantity"`
	RelatedDoc string         `json:"relatedDoc,omitempty"`
}

// Validate checks a beer movement's sign against its type.
func (m BeerMovement) Validate() error {
	switch m.Type {
	case TypeSale:
		if !m.Quantity.IsNegative() {
			return apperror.NewValidation("sale movements must have a negative quantity").WithDetail("type", string(m.Type))
		}
	case TypePurchase:
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation("purchase movements must have a positive quantity").WithDetail("type", string(m.Type))
		}
	case TypeAdjustment:
		if m.Quantity.IsZero() {
			return apperror.NewValidation("adjustment movements must not be zero").WithDetail("type", string(m.Type))
		}
	default:
		return apperror.NewValidation("unknown beer movement type").WithDetail("type", string(m.Type))
	}
	return nil
}

// StockItem is one line of the derived finished-beer stock table.
type StockItem struct {
	StockKey
	Quantity types.Quantity `json:"quantity"`
	Expiry   time.Time      `json:"expiry,omitempty"`
}

// InventoryCheck is the record of one monthly physical count. Its id is
// derived from year and month, so re-running the check for the same month
// replaces the previous run.
type InventoryCheck struct {
	ID    string      `json:"id"`
	Date  time.Time   `json:"date"`
	Items []CheckItem `json:"items"`
}

// CheckID derives the monthly check identifier.
func CheckID(year string, month time.Month) string {
	return fmt.Sprintf("%s-%02d", year, int(month))
}

// CheckItem records one counted line: the calculated ledger quantity, the
// physical count converted to base units, and their difference.
type CheckItem struct {
	StockKey
	Calculated  types.Quantity `json:"calculated"`
	Physical    types.Quantity `json:"physical"`
	Discrepancy types.Quantity `json:"discrepancy"`
}

// SalesOrder is a finished-beer sale to a client. Saving it draws down
// ALVERESE stock and credits the destination client's virtual stock.
type SalesOrder struct {
	ID     string      `json:"id"`
	Date   time.Time   `json:"date"`
	Client string      `json:"client"`
	Notes  string      `json:"notes,omitempty"`
	Items  []OrderItem `json:"items"`
}

// OrderItem is one order line, always expressed in base units.
type OrderItem struct {
	Beer     string         `json:"beer"`
	Lot      string         `json:"lot"`
	Format   string         `json:"format"`
	Quantity types.Quantity `json:"quantity"`
}
