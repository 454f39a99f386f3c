package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/tax"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, StageDev, cfg.Stage)
	assert.Equal(t, tax.DefaultSlabs(), cfg.Tax.Slabs)
	assert.Equal(t, 0.0, cfg.Tax.CessPercent)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Features.EnableResultCache)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TAX_CESS_PERCENT", "4")
	t.Setenv("TAX_FIXED_SURCHARGE", "150.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FEATURE_TAX_EVENTS", "true")
	t.Setenv("TAX_SLABS", `[{"lower":0,"upper":100000,"rate":0},{"lower":100000,"upper":null,"rate":10}]`)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4.0, cfg.Tax.CessPercent)
	assert.Equal(t, 150.5, cfg.Tax.FixedSurcharge)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Features.EnableTaxEvents)
	require.Len(t, cfg.Tax.Slabs, 2)
	assert.Nil(t, cfg.Tax.Slabs[1].Upper)
	assert.Equal(t, 10.0, cfg.Tax.Slabs[1].Rate)
}

func TestFromEnv_SlabFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slabs.yaml")
	content := `
cess_percent: 4
fixed_surcharge: 200
slabs:
  - {lower: 0, upper: 300000, rate: 0}
  - {lower: 300000, upper: 700000, rate: 5}
  - {lower: 700000, rate: 10}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TAX_SLABS_FILE", path)

	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Len(t, cfg.Tax.Slabs, 3)
	assert.Equal(t, 4.0, cfg.Tax.CessPercent)
	assert.Equal(t, 200.0, cfg.Tax.FixedSurcharge)
	assert.Nil(t, cfg.Tax.Slabs[2].Upper)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		env  map[string]string
	}{
		{
			name: "malformed slab JSON",
			key:  "TAX_SLABS",
			env:  map[string]string{"TAX_SLABS": `[{"lower":`},
		},
		{
			name: "slab table with gap",
			key:  "tax",
			env:  map[string]string{"TAX_SLABS": `[{"lower":0,"upper":100,"rate":0},{"lower":200,"rate":10}]`},
		},
		{
			name: "non-numeric port",
			key:  "SERVER_PORT",
			env:  map[string]string{"SERVER_PORT": "eighty"},
		},
		{
			name: "non-numeric cess",
			key:  "TAX_CESS_PERCENT",
			env:  map[string]string{"TAX_CESS_PERCENT": "four"},
		},
		{
			name: "negative surcharge",
			key:  "tax",
			env:  map[string]string{"TAX_FIXED_SURCHARGE": "-10"},
		},
		{
			name: "missing slab file",
			key:  "TAX_SLABS_FILE",
			env:  map[string]string{"TAX_SLABS_FILE": "/nonexistent/slabs.yaml"},
		},
		{
			name: "unknown cache backend",
			key:  "CACHE_BACKEND",
			env:  map[string]string{"CACHE_BACKEND": "memcached"},
		},
		{
			name: "bad feature flag",
			key:  "FEATURE_RESULT_CACHE",
			env:  map[string]string{"FEATURE_RESULT_CACHE": "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			require.Error(t, err)

			var cfgErr *apperrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}
