package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smmboost/panel/internal/app/config"
	"github.com/smmboost/panel/internal/app/logger"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
	"go.uber.org/zap"
)

// ErrCatalogUnavailable wraps every catalog fetch failure. Callers render an
// empty or error state; stale prices are never presented as current.
var ErrCatalogUnavailable = errors.New("service catalog unavailable")

const catalogKey = "services"

type (
	// CatalogService caches the public service list. The cached copy is good
	// enough for browsing; anything money-affecting goes through Refresh so
	// an administrator's price change cannot be validated against.
	CatalogService interface {
		Services(ctx context.Context) ([]models.Service, error)
		Refresh(ctx context.Context) ([]models.Service, error)
		Invalidate()
	}
	CatalogServiceImpl struct {
		backendClient clients.PanelBackendClient
		cache         *staleCache
	}
)

func NewCatalogService(c config.AppConfig, backendClient clients.PanelBackendClient) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		backendClient: backendClient,
		cache:         newStaleCache(c.CatalogTTL, c.CacheCleanupInterval),
	}
}

// Services returns the cached catalog when fresh, fetching otherwise. Safe
// to call before authentication completes.
func (cs *CatalogServiceImpl) Services(ctx context.Context) ([]models.Service, error) {
	if cached, found := cs.cache.Get(catalogKey); found {
		return cached.([]models.Service), nil
	}
	return cs.Refresh(ctx)
}

// Refresh forces a round trip and replaces the cached entry, unless an
// invalidation raced past the fetch.
func (cs *CatalogServiceImpl) Refresh(ctx context.Context) ([]models.Service, error) {
	gen := cs.cache.generation(catalogKey)
	services, err := cs.backendClient.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if !cs.cache.put(catalogKey, gen, services) {
		logger.Log.Debug("discarding stale catalog fetch", zap.Uint64("generation", gen))
	}
	return services, nil
}

func (cs *CatalogServiceImpl) Invalidate() {
	cs.cache.invalidate(catalogKey)
}

// FindService resolves a service id against a concrete fetch result; order
// submission passes the slice returned by Refresh so the resolution cannot
// be a leftover of an earlier category filter.
func FindService(services []models.Service, serviceID int64) (models.Service, bool) {
	for _, svc := range services {
		if svc.ID == serviceID {
			return svc, true
		}
	}
	return models.Service{}, false
}
