package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// CalculateTax handles POST /api/v1/tax/calculate
func (h *Handlers) CalculateTax(c *gin.Context) {
	var req models.CalculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request",
			zap.String("correlation_id", middleware.GetCorrelationID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.calculate(c, &req)
}

// CalculateTaxQuery handles GET /api/v1/tax/calculate?salary=..&deductions=..
func (h *Handlers) CalculateTaxQuery(c *gin.Context) {
	gross, err := parseAmount("salary", c.Query("salary"), true)
	if err != nil {
		handleError(c, err)
		return
	}
	deductions, err := parseAmount("deductions", c.Query("deductions"), false)
	if err != nil {
		handleError(c, err)
		return
	}

	h.calculate(c, &models.CalculateTaxRequest{GrossSalary: &gross, Deductions: deductions})
}

func (h *Handlers) calculate(c *gin.Context, req *models.CalculateTaxRequest) {
	if req.RequestID == "" {
		req.RequestID = middleware.GetCorrelationID(c)
	}

	result, err := h.taxService.Calculate(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSlabs handles GET /api/v1/tax/slabs
func (h *Handlers) ListSlabs(c *gin.Context) {
	params := h.taxService.Params()
	c.JSON(http.StatusOK, gin.H{
		"slabs":           params.Slabs,
		"cess_percent":    params.CessPercent,
		"fixed_surcharge": params.FixedSurcharge,
	})
}

// parseAmount parses a user-supplied number. An empty optional value is 0.
func parseAmount(field, raw string, required bool) (float64, error) {
	if raw == "" {
		if required {
			return 0, errors.NewValidationError(field, field+" is required")
		}
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewValidationError(field, field+" must be a number")
	}
	return v, nil
}
