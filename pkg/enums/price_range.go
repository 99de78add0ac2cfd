package enums

import "fmt"

// PriceRange buckets an artist's pricing into four tiers.
type PriceRange string

const (
	PriceRangeBudget   PriceRange = "$"
	PriceRangeModerate PriceRange = "$$"
	PriceRangePremium  PriceRange = "$$$"
	PriceRangeLuxury   PriceRange = "$$$$"
)

var validPriceRanges = []PriceRange{
	PriceRangeBudget,
	PriceRangeModerate,
	PriceRangePremium,
	PriceRangeLuxury,
}

// String implements fmt.Stringer.
func (p PriceRange) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceRange.
func (p PriceRange) IsValid() bool {
	for _, candidate := range validPriceRanges {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceRange converts raw input into a PriceRange.
func ParsePriceRange(value string) (PriceRange, error) {
	for _, candidate := range validPriceRanges {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price range %q", value)
}
