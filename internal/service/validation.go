package service

import (
	"math"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// ValidateCalculateTaxRequest checks that the request carries a finite,
// non-negative gross salary and deduction amount.
func ValidateCalculateTaxRequest(req *models.CalculateTaxRequest) error {
	if req == nil {
		return errors.NewValidationError("", "request body is required")
	}

	gross, ok := req.Gross()
	if !ok {
		return errors.NewValidationError("gross_salary", "gross salary is required")
	}
	if err := validateAmount("gross_salary", gross); err != nil {
		return err
	}

	return validateAmount("deductions", req.Deductions)
}

func validateAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewValidationError(field, "must be a finite number")
	}
	if v < 0 {
		return errors.NewValidationError(field, "cannot be negative")
	}
	return nil
}
