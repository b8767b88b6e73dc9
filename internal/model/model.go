// Package model defines the storefront entities shared by the remote client,
// the session and the view bridge.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Product is a purchasable catalog entry. IDs are assigned by the remote API.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Category string `json:"category,omitempty"`
}

// Price is a finite, non-negative amount. It decodes from a JSON number or from a
// decimal string such as "79.00".
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", data, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid price %q: not finite", data)
	}
	if v < 0 {
		return fmt.Errorf("invalid price %q: negative", data)
	}
	*p = Price(v)
	return nil
}

// CartLine is one remote-tracked cart entry. ID is absent for a line the
// remote has not confirmed yet. Product is not checked against the current
// catalog.
type CartLine struct {
	ID       *int64 `json:"id,omitempty"`
	Product  *int64 `json:"product,omitempty"`
	Quantity int    `json:"quantity"`
}

// TargetID returns the identifier used to remove the line: its own ID, or
// its product reference when the ID is absent.
func (l CartLine) TargetID() (int64, bool) {
	if l.ID != nil {
		return *l.ID, true
	}
	if l.Product != nil {
		return *l.Product, true
	}
	return 0, false
}

// CartItem is a cart line joined with its catalog product, if known.
type CartItem struct {
	Line    CartLine `json:"line"`
	Product *Product `json:"product,omitempty"`
}

// Flags reports which operation categories are in flight.
type Flags struct {
	Products bool `json:"products"`
	Detail   bool `json:"detail"`
	Cart     bool `json:"cart"`
	Action   bool `json:"action"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
