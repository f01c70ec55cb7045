package enums

import "fmt"

// ProductAvailability mirrors the catalog's shelf state for a product.
type ProductAvailability string

const (
	ProductAvailabilityInStock    ProductAvailability = "in_stock"
	ProductAvailabilityOutOfStock ProductAvailability = "out_of_stock"
	ProductAvailabilityComingSoon ProductAvailability = "coming_soon"
)

var validProductAvailabilities = []ProductAvailability{
	ProductAvailabilityInStock,
	ProductAvailabilityOutOfStock,
	ProductAvailabilityComingSoon,
}

// String implements fmt.Stringer.
func (p ProductAvailability) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductAvailability.
func (p ProductAvailability) IsValid() bool {
	for _, candidate := range validProductAvailabilities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Purchasable reports whether cart additions are allowed in this state.
func (p ProductAvailability) Purchasable() bool {
	return p == ProductAvailabilityInStock
}

// ParseProductAvailability converts raw input into a ProductAvailability.
func ParseProductAvailability(value string) (ProductAvailability, error) {
	for _, candidate := range validProductAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product availability %q", value)
}
