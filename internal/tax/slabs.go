package tax

import (
	"fmt"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// DefaultSlabs returns the built-in five-slab table used when no slab
// configuration is supplied.
func DefaultSlabs() []models.Slab {
	return []models.Slab{
		models.NewSlab(0, 250000, 0),
		models.NewSlab(250000, 500000, 5),
		models.NewSlab(500000, 1000000, 20),
		models.NewSlab(1000000, 5000000, 30),
		models.NewOpenSlab(5000000, 35),
	}
}

// DefaultParams returns the default slab table with no cess or surcharge.
func DefaultParams() models.TaxParams {
	return models.TaxParams{Slabs: DefaultSlabs()}
}

// ValidateSlabs checks that slabs, sorted by lower bound, start at zero,
// are contiguous, and end with the only unbounded slab.
func ValidateSlabs(slabs []models.Slab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("at least one slab is required")
	}

	sorted := sortedSlabs(slabs)
	for i, s := range sorted {
		if !isFinite(s.Lower) || s.Lower < 0 {
			return fmt.Errorf("slab %d: lower bound must be a non-negative number", i)
		}
		if !isFinite(s.Rate) || s.Rate < 0 || s.Rate > 100 {
			return fmt.Errorf("slab %d: rate %v out of range [0, 100]", i, s.Rate)
		}
		if s.Upper != nil && (!isFinite(*s.Upper) || *s.Upper <= s.Lower) {
			return fmt.Errorf("slab %d: upper bound must be greater than lower bound %v", i, s.Lower)
		}

		last := i == len(sorted)-1
		if !last && s.Upper == nil {
			return fmt.Errorf("slab %d: only the last slab may be unbounded", i)
		}
		if last && s.Upper != nil {
			return fmt.Errorf("slab %d: last slab must be unbounded", i)
		}
		if i == 0 && s.Lower != 0 {
			return fmt.Errorf("slab %d: first slab must start at 0, got %v", i, s.Lower)
		}
		if i > 0 && *sorted[i-1].Upper != s.Lower {
			return fmt.Errorf("slab %d: lower bound %v does not meet previous upper bound %v", i, s.Lower, *sorted[i-1].Upper)
		}
	}

	return nil
}

// ValidateParams checks the slab table and that the levies are non-negative.
func ValidateParams(params models.TaxParams) error {
	if err := ValidateSlabs(params.Slabs); err != nil {
		return err
	}
	if !isFinite(params.CessPercent) || params.CessPercent < 0 {
		return fmt.Errorf("cess percent must be a non-negative number, got %v", params.CessPercent)
	}
	if !isFinite(params.FixedSurcharge) || params.FixedSurcharge < 0 {
		return fmt.Errorf("fixed surcharge must be a non-negative number, got %v", params.FixedSurcharge)
	}
	return nil
}
