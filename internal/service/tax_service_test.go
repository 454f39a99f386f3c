package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/tax"
)

func float(v float64) *float64 { return &v }

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) (*models.TaxResult, error) {
	return nil, stderrors.New("redis down")
}

func (failingCache) Set(ctx context.Context, key string, result *models.TaxResult) error {
	return stderrors.New("redis down")
}

func (failingCache) Close() error { return nil }

func TestTaxService_Calculate(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop())

	result, err := svc.Calculate(context.Background(), &models.CalculateTaxRequest{
		GrossSalary: float(600000),
		Deductions:  100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 12500.0, result.TaxBeforeCess)
	assert.Equal(t, 500000.0, result.TaxableIncome)
}

func TestTaxService_SalaryAlias(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop())

	result, err := svc.Calculate(context.Background(), &models.CalculateTaxRequest{Salary: float(300000)})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, result.TotalTax)
}

func TestTaxService_ValidationErrors(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop())

	tests := []struct {
		name  string
		req   *models.CalculateTaxRequest
		field string
	}{
		{"nil request", nil, ""},
		{"missing gross", &models.CalculateTaxRequest{}, "gross_salary"},
		{"negative gross", &models.CalculateTaxRequest{GrossSalary: float(-5)}, "gross_salary"},
		{"negative deductions", &models.CalculateTaxRequest{GrossSalary: float(5), Deductions: -1}, "deductions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Calculate(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)

			v, ok := errors.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, v.Field)
		})
	}
}

func TestTaxService_CacheHit(t *testing.T) {
	cache := repository.NewMemoryResultCache()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop(), WithCache(cache), WithMetrics(m))

	req := &models.CalculateTaxRequest{GrossSalary: float(300000)}
	first, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("computed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("cached")))
}

func TestTaxService_CacheKeyIncludesParams(t *testing.T) {
	cache := repository.NewMemoryResultCache()

	withCess := tax.DefaultParams()
	withCess.CessPercent = 4

	plain := NewTaxService(tax.DefaultParams(), zap.NewNop(), WithCache(cache))
	cessed := NewTaxService(withCess, zap.NewNop(), WithCache(cache))

	req := &models.CalculateTaxRequest{GrossSalary: float(300000)}
	a, err := plain.Calculate(context.Background(), req)
	require.NoError(t, err)
	b, err := cessed.Calculate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, a.TotalTax)
	assert.Equal(t, 2600.0, b.TotalTax)
	assert.Equal(t, 2, cache.Len())
}

func TestTaxService_CacheFailureIsIgnored(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop(), WithCache(failingCache{}))

	result, err := svc.Calculate(context.Background(), &models.CalculateTaxRequest{GrossSalary: float(300000)})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, result.TotalTax)
}

func TestTaxService_PublishesEvents(t *testing.T) {
	publisher := events.NewMockEventPublisher()
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop(), WithPublisher(publisher))

	ctx := middleware.WithCorrelationID(context.Background(), "corr-1")
	_, err := svc.Calculate(ctx, &models.CalculateTaxRequest{GrossSalary: float(300000), RequestID: "req-1"})
	require.NoError(t, err)

	_, err = svc.Calculate(ctx, &models.CalculateTaxRequest{GrossSalary: float(-1)})
	require.Error(t, err)

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeTaxCalculated, published[0].Type)
	assert.Equal(t, "req-1", published[0].RequestID)
	assert.Equal(t, "corr-1", published[0].CorrelationID)
	assert.Equal(t, 2500.0, published[0].Result.TotalTax)
}

func TestTaxService_PublishFailureIsIgnored(t *testing.T) {
	publisher := events.NewMockEventPublisher()
	publisher.Err = stderrors.New("kafka down")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop(), WithPublisher(publisher), WithMetrics(m))

	_, err := svc.Calculate(context.Background(), &models.CalculateTaxRequest{GrossSalary: float(300000)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")))
}

func TestTaxService_CalculateLegacy(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop())

	total, err := svc.CalculateLegacy(context.Background(), 1200000)
	require.NoError(t, err)
	assert.Equal(t, 172500.0, total)
}

func TestTaxService_SlabsAreCopied(t *testing.T) {
	svc := NewTaxService(tax.DefaultParams(), zap.NewNop())

	slabs := svc.Slabs()
	slabs[1].Rate = 99

	assert.Equal(t, 5.0, svc.Slabs()[1].Rate)
	assert.Equal(t, 5.0, svc.Params().Slabs[1].Rate)
}
