// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is an exact decimal amount in the catalog currency. Sums stay exact
// (15.49 + 7.99 is 23.48, not a float approximation) and the JSON form is a
// bare number, not a quoted string.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal as a Price.
func NewPrice(d decimal.Decimal) Price { return Price{d} }

// ParsePrice parses a decimal string such as "15.49".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("price: %w", err)
	}
	return Price{d}, nil
}

// MustPrice is ParsePrice that panics on invalid input. For fixtures.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Add returns p + q exactly.
func (p Price) Add(q Price) Price { return Price{p.Decimal.Add(q.Decimal)} }

// Float64 converts for use as a solver coefficient.
func (p Price) Float64() float64 {
	f, _ := p.Decimal.Float64()
	return f
}

// MarshalJSON emits a bare JSON number ("23.48", no quotes).
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Price) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	p.Decimal = d
	return nil
}
