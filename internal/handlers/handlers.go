package handlers

import (
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/service"
)

// Handlers holds all HTTP handlers for the tax service.
type Handlers struct {
	taxService *service.TaxService
	config     *config.Config
	logger     *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(taxService *service.TaxService, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		taxService: taxService,
		config:     cfg,
		logger:     logger.Named("handlers"),
	}
}
