package repository

import (
	"context"
	"sync"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// MemoryResultCache is an in-process ResultCache without expiry, selected
// with CACHE_BACKEND=memory when Redis is not available.
type MemoryResultCache struct {
	mu   sync.RWMutex
	data map[string]models.TaxResult
}

func NewMemoryResultCache() *MemoryResultCache {
	return &MemoryResultCache{data: make(map[string]models.TaxResult)}
}

func (c *MemoryResultCache) Get(ctx context.Context, key string) (*models.TaxResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.data[key]
	if !ok {
		return nil, nil
	}
	result.Breakdown = append([]models.TaxBreakdownEntry(nil), result.Breakdown...)
	return &result, nil
}

func (c *MemoryResultCache) Set(ctx context.Context, key string, result *models.TaxResult) error {
	stored := *result
	stored.Breakdown = append([]models.TaxBreakdownEntry(nil), result.Breakdown...)

	c.mu.Lock()
	c.data[key] = stored
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached results.
func (c *MemoryResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *MemoryResultCache) Close() error {
	return nil
}
