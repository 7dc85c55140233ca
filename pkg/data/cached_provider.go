package data

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/dividendlab/drip-backtest/pkg/dates"
	"github.com/dividendlab/drip-backtest/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string]*types.MarketData
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*types.MarketData),
	}
}

// Get retrieves a bundle from cache if available
func (c *MemoryCache) Get(key string) (*types.MarketData, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if exists {
		// Return a copy to prevent external modifications
		return cloneBundle(data), true
	}

	return nil, false
}

// Set stores a bundle in cache
func (c *MemoryCache) Set(key string, data *types.MarketData) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = cloneBundle(data)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*types.MarketData)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// cloneBundle copies a bundle deeply enough that callers mutating record
// slices (e.g. split adjustment) cannot corrupt the cached copy.
func cloneBundle(data *types.MarketData) *types.MarketData {
	if data == nil {
		return nil
	}
	out := &types.MarketData{
		TickerData:    make([]types.SymbolData, len(data.TickerData)),
		ExchangeRates: append([]types.ExchangeRate(nil), data.ExchangeRates...),
		Holidays:      append([]dates.Date(nil), data.Holidays...),
	}
	for i, symbol := range data.TickerData {
		out.TickerData[i] = types.SymbolData{
			Symbol:    symbol.Symbol,
			Prices:    append([]types.PriceRecord(nil), symbol.Prices...),
			Dividends: append([]types.DividendRecord(nil), symbol.Dividends...),
			Splits:    append([]types.SplitRecord(nil), symbol.Splits...),
			Error:     symbol.Error,
		}
	}
	return out
}

// CachedProvider wraps another MarketDataProvider with caching so repeated
// backtests over the same bundle skip the disk read
type CachedProvider struct {
	provider MarketDataProvider
	cache    DataCache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider MarketDataProvider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider MarketDataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads a bundle with caching to improve performance
func (p *CachedProvider) LoadData(source string) (*types.MarketData, error) {
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	log.Printf("🔄 Loading market data from %s", filepath.Base(source))
	data, err := p.provider.LoadData(source)
	if err != nil {
		log.Printf("❌ Failed to load data from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	p.cache.Set(source, data)

	log.Printf("✅ Loaded and cached data from %s (%d symbols)", filepath.Base(source), len(data.TickerData))
	return data, nil
}

// ValidateData validates a bundle using the underlying provider
func (p *CachedProvider) ValidateData(data *types.MarketData) error {
	return p.provider.ValidateData(data)
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() DataCache {
	return p.cache
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
