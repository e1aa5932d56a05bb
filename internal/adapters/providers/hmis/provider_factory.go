package hmis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	"github.com/zatekoja/phr/backend/pkg/config"
)

const hospitalsCacheKey = "hmis:hospitals"

// NewHospitalSystemProvider returns the HTTP provider when HMIS is configured,
// wrapped so the hospital list is served from cache. Without configuration
// it returns a DisabledProvider.
func NewHospitalSystemProvider(cfg *config.HMISConfig, cache providers.CacheProvider) providers.HospitalSystemProvider {
	if !cfg.Enabled() {
		return NewDisabledProvider()
	}

	primary := NewHTTPProvider(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	if cache == nil {
		return primary
	}
	return NewCachedProvider(primary, cache, cfg.HospitalCacheTTL)
}

// CachedProvider wraps a HospitalSystemProvider with a cached hospital list
type CachedProvider struct {
	providers.HospitalSystemProvider
	cache providers.CacheProvider
	ttl   time.Duration
}

// NewCachedProvider creates a new cached provider
func NewCachedProvider(inner providers.HospitalSystemProvider, cache providers.CacheProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedProvider{
		HospitalSystemProvider: inner,
		cache:                  cache,
		ttl:                    ttl,
	}
}

// ListHospitals serves the hospital list from cache, refreshing it on a miss.
// Failed lookups are not cached.
func (p *CachedProvider) ListHospitals(ctx context.Context) ([]entities.Hospital, error) {
	logger := observability.LoggerFromContext(ctx)

	if cached, err := p.cache.Get(ctx, hospitalsCacheKey); err == nil {
		var hospitals []entities.Hospital
		if err := json.Unmarshal(cached, &hospitals); err == nil {
			return hospitals, nil
		}
		logger.Warn().Err(err).Msg("Failed to unmarshal cached hospital list")
	}

	hospitals, err := p.HospitalSystemProvider.ListHospitals(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(hospitals); err == nil {
		if err := p.cache.Set(ctx, hospitalsCacheKey, data, int(p.ttl.Seconds())); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache hospital list")
		}
	}
	return hospitals, nil
}
