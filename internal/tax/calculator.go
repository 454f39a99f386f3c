// Package tax implements progressive slab-based income tax computation.
//
// Calculate is a pure function: it owns no state and may be called
// concurrently. Slabs are expected to partition [0, ∞) without gaps. Income
// left over after the last slab is not taxed, and a bounded band only
// contributes its width regardless of where the previous band ended, so gaps
// and overlaps produce under- or over-counted tax. ValidateSlabs rejects such
// tables before they reach a calculation.
package tax

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Calculate computes the tax owed on grossSalary after deductions using the
// slab table and levies in params.
func Calculate(grossSalary, deductions float64, params models.TaxParams) (*models.TaxResult, error) {
	if !isFinite(grossSalary) || grossSalary < 0 {
		return nil, fmt.Errorf("%w: gross salary must be a non-negative number, got %v", apperrors.ErrInvalidInput, grossSalary)
	}
	if !isFinite(deductions) {
		return nil, fmt.Errorf("%w: deductions must be a finite number, got %v", apperrors.ErrInvalidInput, deductions)
	}

	gross := decimal.NewFromFloat(grossSalary)
	taxable := decimal.Max(decimal.Zero, gross.Sub(decimal.NewFromFloat(deductions)))

	slabs := sortedSlabs(params.Slabs)
	breakdown := make([]models.TaxBreakdownEntry, 0, len(slabs))

	remaining := taxable
	taxBeforeCess := decimal.Zero
	for _, slab := range slabs {
		capacity := remaining
		if slab.Upper != nil {
			capacity = decimal.NewFromFloat(*slab.Upper).Sub(decimal.NewFromFloat(slab.Lower))
		}

		amount := decimal.Min(remaining, capacity)
		if amount.IsNegative() {
			amount = decimal.Zero
		}

		slabTax := amount.Mul(decimal.NewFromFloat(slab.Rate)).Div(hundred)
		taxBeforeCess = taxBeforeCess.Add(slabTax)
		remaining = remaining.Sub(amount)

		breakdown = append(breakdown, models.TaxBreakdownEntry{
			Range:  slab.RangeLabel(),
			Amount: money(amount),
			Rate:   slab.Rate,
			Tax:    money(slabTax),
		})
	}

	cess := taxBeforeCess.Mul(decimal.NewFromFloat(params.CessPercent)).Div(hundred)
	surcharge := decimal.NewFromFloat(params.FixedSurcharge)
	total := taxBeforeCess.Add(cess).Add(surcharge)

	return &models.TaxResult{
		GrossSalary:    money(gross),
		Deductions:     Round2(deductions),
		TaxableIncome:  money(taxable),
		Breakdown:      breakdown,
		TaxBeforeCess:  money(taxBeforeCess),
		CessPercent:    params.CessPercent,
		CessAmount:     money(cess),
		FixedSurcharge: money(surcharge),
		TotalTax:       money(total),
	}, nil
}

// Round2 rounds v to two decimal places, with exact halves rounded away
// from zero.
func Round2(v float64) float64 {
	return money(decimal.NewFromFloat(v))
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// sortedSlabs returns a copy of slabs ordered by lower bound.
func sortedSlabs(slabs []models.Slab) []models.Slab {
	out := make([]models.Slab, len(slabs))
	copy(out, slabs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Lower < out[j].Lower
	})
	return out
}
