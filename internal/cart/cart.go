package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a session cart. UnitPrice is captured when the
// product is first added and never refreshed by later quantity changes.
type Line struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Cart is the session-scoped bag of lines, keyed by product ID.
type Cart struct {
	Lines map[uuid.UUID]Line `json:"lines"`
}

// NewCart returns an empty cart ready for mutation.
func NewCart() Cart {
	return Cart{Lines: map[uuid.UUID]Line{}}
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy so callers can never mutate stored state.
func (c Cart) Clone() Cart {
	copied := Cart{Lines: make(map[uuid.UUID]Line, len(c.Lines))}
	for id, line := range c.Lines {
		copied.Lines[id] = line
	}
	return copied
}
