package models

import (
	"strconv"
	"time"
)

// Slab is an income band taxed at a single rate. Lower is inclusive,
// Upper is exclusive and nil means the band is unbounded.
type Slab struct {
	Lower float64  `json:"lower" yaml:"lower"`
	Upper *float64 `json:"upper" yaml:"upper"`
	Rate  float64  `json:"rate" yaml:"rate"`
}

// NewSlab creates a bounded slab.
func NewSlab(lower, upper, rate float64) Slab {
	return Slab{Lower: lower, Upper: &upper, Rate: rate}
}

// NewOpenSlab creates the unbounded top slab.
func NewOpenSlab(lower, rate float64) Slab {
	return Slab{Lower: lower, Rate: rate}
}

// Bounded reports whether the slab has an upper bound.
func (s Slab) Bounded() bool {
	return s.Upper != nil
}

// RangeLabel renders the band for display, e.g. "250000 - 500000" or "1000000+".
func (s Slab) RangeLabel() string {
	lower := formatAmount(s.Lower)
	if s.Upper == nil {
		return lower + "+"
	}
	return lower + " - " + formatAmount(*s.Upper)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TaxBreakdownEntry is one slab's contribution to a result.
type TaxBreakdownEntry struct {
	Range  string  `json:"range"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
	Tax    float64 `json:"tax"`
}

// TaxResult is the full output of a tax calculation.
type TaxResult struct {
	GrossSalary    float64             `json:"gross_salary"`
	Deductions     float64             `json:"deductions"`
	TaxableIncome  float64             `json:"taxable_income"`
	Breakdown      []TaxBreakdownEntry `json:"breakdown"`
	TaxBeforeCess  float64             `json:"tax_before_cess"`
	CessPercent    float64             `json:"cess_percent"`
	CessAmount     float64             `json:"cess_amount"`
	FixedSurcharge float64             `json:"fixed_surcharge"`
	TotalTax       float64             `json:"total_tax"`
}

// TaxParams carries the slab table and levies applied to every calculation.
type TaxParams struct {
	Slabs          []Slab  `json:"slabs" yaml:"slabs"`
	CessPercent    float64 `json:"cess_percent" yaml:"cess_percent"`
	FixedSurcharge float64 `json:"fixed_surcharge" yaml:"fixed_surcharge"`
}

// CalculateTaxRequest is the JSON body accepted by the calculation API.
// Salary is accepted as an alias of GrossSalary for form-style clients.
type CalculateTaxRequest struct {
	GrossSalary *float64 `json:"gross_salary"`
	Salary      *float64 `json:"salary,omitempty"`
	Deductions  float64  `json:"deductions"`
	RequestID   string   `json:"request_id,omitempty"`
}

// Gross returns the gross salary, preferring GrossSalary over Salary.
func (r *CalculateTaxRequest) Gross() (float64, bool) {
	if r.GrossSalary != nil {
		return *r.GrossSalary, true
	}
	if r.Salary != nil {
		return *r.Salary, true
	}
	return 0, false
}

// CalculationRequestedEvent asks the service to compute a result asynchronously.
type CalculationRequestedEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	GrossSalary float64   `json:"gross_salary"`
	Deductions  float64   `json:"deductions"`
	Timestamp   time.Time `json:"timestamp"`
}
