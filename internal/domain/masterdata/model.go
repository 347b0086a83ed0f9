// Package masterdata holds the year-scoped master records: clients, beers
// and fermenter configuration. These are carried over verbatim when a new
// year imports from the previous one.
package masterdata

import (
	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/movement"
)

// Client is a customer of the brewery. Name is the unique key.
type Client struct {
	Name    string `json:"name"`
	VATCode string `json:"vatCode,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Beer is a recipe/label the brewery produces. Name is the unique key.
type Beer struct {
	Name  string  `json:"name"`
	Style string  `json:"style,omitempty"`
	ABV   float64 `json:"abv,omitempty"`
	Plato float64 `json:"plato,omitempty"` // degrees Plato, used for excise
}

// Fermenter is one configured vessel. Name is the unique key; occupancy is
// derived from open batches, not stored here.
type Fermenter struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"` // liters
}

// Normalize canonicalizes the unique keys.
func (c *Client) Normalize()    { c.Name = movement.NormalizeKey(c.Name) }
func (b *Beer) Normalize()      { b.Name = movement.NormalizeKey(b.Name) }
func (f *Fermenter) Normalize() { f.Name = movement.NormalizeKey(f.Name) }

// Validate checks the client record.
func (c Client) Validate() error {
	if movement.NormalizeKey(c.Name) == "" {
		return apperror.NewValidation("client name is required").WithDetail("field", "name")
	}
	return nil
}

// Validate checks the beer record.
func (b Beer) Validate() error {
	if movement.NormalizeKey(b.Name) == "" {
		return apperror.NewValidation("beer name is required").WithDetail("field", "name")
	}
	return nil
}

// Validate checks the fermenter record.
func (f Fermenter) Validate() error {
	if movement.NormalizeKey(f.Name) == "" {
		return apperror.NewValidation("fermenter name is required").WithDetail("field", "name")
	}
	if f.Capacity <= 0 {
		return apperror.NewValidation("fermenter capacity must be positive").WithDetail("field", "capacity")
	}
	return nil
}
