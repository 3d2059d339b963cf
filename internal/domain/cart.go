package domain

import (
	"fmt"
	"math"
	"time"
)

const TaxRate = 0.10

// MaxQuantity caps a single cart line.
const MaxQuantity = math.MaxInt32

type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

func (l CartLine) LineTotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart keeps insertion order, which is also display order. Owner is the id of
// the user the lines were added by; empty when unknown.
type Cart struct {
	Owner string     `json:"owner,omitempty"`
	Lines []CartLine `json:"lines"`
}

func (c Cart) Find(productID string) (int, bool) {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{Owner: c.Owner}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Owner: c.Owner, Lines: lines}
}

// Normalize drops lines without a product id or with quantity below one and folds
// duplicate product ids into the first occurrence. Quantities are capped at
// MaxQuantity.
func (c Cart) Normalize() Cart {
	out := Cart{Owner: c.Owner}
	for _, l := range c.Lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i, ok := out.Find(l.ProductID); ok {
			out.Lines[i].Quantity = AddQuantity(out.Lines[i].Quantity, l.Quantity)
			continue
		}
		l.Quantity = min(l.Quantity, MaxQuantity)
		out.Lines = append(out.Lines, l)
	}
	return out
}

// AddQuantity sums two positive quantities without exceeding MaxQuantity.
func AddQuantity(a, b int) int {
	if a >= MaxQuantity || b >= MaxQuantity-a {
		return MaxQuantity
	}
	return a + b
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals works in full precision; round only when presenting.
func ComputeTotals(lines []CartLine) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.LineTotal()
	}
	tax := subtotal * TaxRate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Receipt is the outcome of a simulated checkout; no payment is taken.
type Receipt struct {
	OrderRef string     `json:"order_ref"`
	Lines    []CartLine `json:"lines"`
	Totals   Totals     `json:"totals"`
	PlacedAt time.Time  `json:"placed_at"`
}
