package marketdata

import (
	"context"
	"time"

	"github.com/rotationlab/backend/pkg/logger"
	"github.com/rotationlab/backend/pkg/redis"
)

// CachedSource wraps a Source with a per-symbol Redis cache keyed by the
// current date, so repeated runs on the same day fetch each history once.
type CachedSource struct {
	inner  Source
	cache  *redis.Cache
	logger *logger.Logger
	ttl    time.Duration
}

// NewCachedSource wraps inner with caching. With Redis disabled the wrapper
// degrades to a pass-through.
func NewCachedSource(inner Source, cache *redis.Cache, log *logger.Logger, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		logger: log,
		ttl:    ttl,
	}
}

// Fetch implements Source.
func (c *CachedSource) Fetch(ctx context.Context, symbols []string, lookbackDays int) (*Frame, error) {
	asOf := time.Now().UTC().Format("2006-01-02")

	frame := NewFrame()
	var misses []string
	for _, sym := range symbols {
		var bars []Bar
		found, err := c.cache.Get(ctx, redis.SeriesKey(sym, asOf), &bars)
		if err != nil {
			c.logger.WithError(err).WithField("symbol", sym).Warn("Cache read failed")
		}
		if found && len(bars) > 0 {
			frame.Series[sym] = &PriceSeries{Symbol: sym, Bars: bars}
			continue
		}
		misses = append(misses, sym)
	}

	if len(misses) == 0 {
		return frame, nil
	}

	fetched, err := c.inner.Fetch(ctx, misses, lookbackDays)
	if err != nil {
		return nil, err
	}

	for sym, series := range fetched.Series {
		frame.Series[sym] = series
		if err := c.cache.Set(ctx, redis.SeriesKey(sym, asOf), series.Bars, c.ttl); err != nil {
			c.logger.WithError(err).WithField("symbol", sym).Warn("Cache write failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"hits":   len(symbols) - len(misses),
		"misses": len(misses),
	}).Debug("Series cache lookup")

	return frame, nil
}
