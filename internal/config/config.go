package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	apperrors "github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/tax"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type Config struct {
	Stage     string
	LogLevel  string
	Server    ServerConfig
	Tax       models.TaxParams
	Redis     RedisConfig
	Kafka     KafkaConfig
	Features  FeatureFlags
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Backend  string
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	ResultsTopic  string
	RequestsTopic string
	ConsumerGroup string
}

type FeatureFlags struct {
	EnableResultCache     bool
	EnableTaxEvents       bool
	EnableRequestConsumer bool
	EnableDebugEndpoint   bool
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// slabFile is the YAML layout of TAX_SLABS_FILE.
type slabFile struct {
	Slabs          []models.Slab `yaml:"slabs"`
	CessPercent    *float64      `yaml:"cess_percent"`
	FixedSurcharge *float64      `yaml:"fixed_surcharge"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists. Any malformed value is
// returned as a *errors.ConfigError.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, apperrors.NewConfigError(".env", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment.
func FromEnv() (*Config, error) {
	var p envParser

	cfg := &Config{
		Stage:    getEnvString("APP_STAGE", StageDev),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         p.int("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(p.int("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(p.int("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Redis: RedisConfig{
			Backend:  getEnvString("CACHE_BACKEND", CacheBackendRedis),
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     p.int("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       p.int("REDIS_DB", 0),
			TTL:      time.Duration(p.int("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			ResultsTopic:  getEnvString("KAFKA_RESULTS_TOPIC", "tax.results"),
			RequestsTopic: getEnvString("KAFKA_REQUESTS_TOPIC", "tax.requests"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "tax-service"),
		},
		Features: FeatureFlags{
			EnableResultCache:     p.bool("FEATURE_RESULT_CACHE", false),
			EnableTaxEvents:       p.bool("FEATURE_TAX_EVENTS", false),
			EnableRequestConsumer: p.bool("FEATURE_REQUEST_CONSUMER", false),
			EnableDebugEndpoint:   p.bool("FEATURE_DEBUG_ENDPOINT", false),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: p.int("RATE_LIMIT_RPS", 50),
			Burst:             p.int("RATE_LIMIT_BURST", 100),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	if b := cfg.Redis.Backend; b != CacheBackendRedis && b != CacheBackendMemory {
		return nil, apperrors.NewConfigError("CACHE_BACKEND", errors.Errorf("unknown backend %q", b))
	}

	params, err := loadTaxParams()
	if err != nil {
		return nil, err
	}
	cfg.Tax = params

	return cfg, nil
}

// loadTaxParams resolves the slab table from TAX_SLABS, TAX_SLABS_FILE or
// the built-in default, then applies the cess and surcharge overrides.
func loadTaxParams() (models.TaxParams, error) {
	params := tax.DefaultParams()

	if path := os.Getenv("TAX_SLABS_FILE"); path != "" {
		file, err := readSlabFile(path)
		if err != nil {
			return params, apperrors.NewConfigError("TAX_SLABS_FILE", err)
		}
		params.Slabs = file.Slabs
		if file.CessPercent != nil {
			params.CessPercent = *file.CessPercent
		}
		if file.FixedSurcharge != nil {
			params.FixedSurcharge = *file.FixedSurcharge
		}
	}

	if raw := os.Getenv("TAX_SLABS"); raw != "" {
		var slabs []models.Slab
		if err := json.Unmarshal([]byte(raw), &slabs); err != nil {
			return params, apperrors.NewConfigError("TAX_SLABS", errors.Wrap(err, "parse slab JSON"))
		}
		params.Slabs = slabs
	}

	var p envParser
	params.CessPercent = p.float("TAX_CESS_PERCENT", params.CessPercent)
	params.FixedSurcharge = p.float("TAX_FIXED_SURCHARGE", params.FixedSurcharge)
	if p.err != nil {
		return params, p.err
	}

	if err := tax.ValidateParams(params); err != nil {
		return params, apperrors.NewConfigError("tax", err)
	}

	return params, nil
}

func readSlabFile(path string) (*slabFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var file slabFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &file, nil
}

// envParser records the first malformed variable it sees.
type envParser struct {
	err error
}

func (p *envParser) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return intValue
}

func (p *envParser) float(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return floatValue
}

func (p *envParser) bool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, err)
		return defaultValue
	}
	return boolValue
}

func (p *envParser) fail(key string, err error) {
	if p.err == nil {
		p.err = apperrors.NewConfigError(key, err)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
