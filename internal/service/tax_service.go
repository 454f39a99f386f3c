package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/tax"
)

// ResultPublisher announces completed calculations.
type ResultPublisher interface {
	PublishTaxCalculated(ctx context.Context, requestID string, result *models.TaxResult) error
}

// TaxService validates requests and runs them through the slab calculator
// with a fixed set of tax parameters. Cache and publisher are optional.
type TaxService struct {
	params      models.TaxParams
	fingerprint string
	cache       repository.ResultCache
	publisher   ResultPublisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// Option configures optional TaxService collaborators.
type Option func(*TaxService)

func WithCache(cache repository.ResultCache) Option {
	return func(s *TaxService) { s.cache = cache }
}

func WithPublisher(publisher ResultPublisher) Option {
	return func(s *TaxService) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TaxService) { s.metrics = m }
}

// NewTaxService creates a service bound to params. params is copied and
// validated by the caller; see config.Load.
func NewTaxService(params models.TaxParams, logger *zap.Logger, opts ...Option) *TaxService {
	params.Slabs = append([]models.Slab(nil), params.Slabs...)

	s := &TaxService{
		params:      params,
		fingerprint: fingerprint(params),
		logger:      logger.Named("tax-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate validates req and returns its tax result.
func (s *TaxService) Calculate(ctx context.Context, req *models.CalculateTaxRequest) (*models.TaxResult, error) {
	start := time.Now()

	if err := ValidateCalculateTaxRequest(req); err != nil {
		s.observe("invalid", start)
		return nil, err
	}
	gross, _ := req.Gross()

	log := s.logger.With(zap.String("correlation_id", middleware.CorrelationIDFromContext(ctx)))
	key := s.cacheKey(gross, req.Deductions)

	if cached := s.lookup(ctx, log, key); cached != nil {
		s.observe("cached", start)
		return cached, nil
	}

	result, err := tax.Calculate(gross, req.Deductions, s.params)
	if err != nil {
		s.observe("invalid", start)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			log.Warn("Failed to cache result", zap.Error(err))
		}
	}

	if s.publisher != nil {
		outcome := "success"
		if err := s.publisher.PublishTaxCalculated(ctx, req.RequestID, result); err != nil {
			outcome = "error"
			log.Warn("Failed to publish tax event", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.EventPublished(outcome)
		}
	}

	log.Debug("Tax calculated",
		zap.Float64("gross_salary", result.GrossSalary),
		zap.Float64("taxable_income", result.TaxableIncome),
		zap.Float64("total_tax", result.TotalTax),
	)
	s.observe("computed", start)
	return result, nil
}

// CalculateLegacy computes the total tax on salary with no deductions,
// matching the single-field form.
func (s *TaxService) CalculateLegacy(ctx context.Context, salary float64) (float64, error) {
	result, err := s.Calculate(ctx, &models.CalculateTaxRequest{GrossSalary: &salary})
	if err != nil {
		return 0, err
	}
	return result.TotalTax, nil
}

// Params returns a copy of the active tax parameters.
func (s *TaxService) Params() models.TaxParams {
	p := s.params
	p.Slabs = s.Slabs()
	return p
}

// Slabs returns a copy of the active slab table.
func (s *TaxService) Slabs() []models.Slab {
	return append([]models.Slab(nil), s.params.Slabs...)
}

func (s *TaxService) lookup(ctx context.Context, log *zap.Logger, key string) *models.TaxResult {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("Result cache lookup failed", zap.Error(err))
		s.cacheResult("error")
		return nil
	case cached == nil:
		s.cacheResult("miss")
		return nil
	default:
		s.cacheResult("hit")
		return cached
	}
}

func (s *TaxService) cacheResult(result string) {
	if s.metrics != nil {
		s.metrics.CacheResult(result)
	}
}

func (s *TaxService) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCalculation(outcome, time.Since(start))
	}
}

func (s *TaxService) cacheKey(gross, deductions float64) string {
	return s.fingerprint + ":" +
		strconv.FormatFloat(gross, 'f', -1, 64) + ":" +
		strconv.FormatFloat(deductions, 'f', -1, 64)
}

// fingerprint identifies a parameter set so cached results never outlive a
// slab table change.
func fingerprint(params models.TaxParams) string {
	data, err := json.Marshal(params)
	if err != nil {
		return "unhashable"
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
