package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogRepo "petcare/database/repository/catalog"
	"petcare/models"
	"petcare/utils"

	"go.uber.org/zap"
)

// CatalogService is the booking core's read-only view of catalog data.
type CatalogService interface {
	GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error)
	GetBasePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error)
}

// DefaultCatalogService reads through a Redis cache in front of Mongo.
type DefaultCatalogService struct {
	Repo   catalogRepo.CatalogRepository
	Cache  Cache
	TTL    time.Duration
	Logger *zap.Logger
}

func NewCatalogService(repo catalogRepo.CatalogRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *DefaultCatalogService {
	return &DefaultCatalogService{Repo: repo, Cache: cache, TTL: ttl, Logger: logger}
}

func (s *DefaultCatalogService) GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error) {
	var settings models.AvailabilitySettings
	key := utils.SettingsCachePrefix + category
	if s.cached(ctx, key, &settings) {
		return &settings, nil
	}

	fresh, err := s.Repo.GetAvailabilitySettings(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("availability settings for %s: %w", category, err)
	}
	s.store(ctx, key, fresh)
	return fresh, nil
}

func (s *DefaultCatalogService) GetBasePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error) {
	var price models.ServicePrice
	key := utils.PriceCachePrefix + serviceRef + ":" + string(location)
	if s.cached(ctx, key, &price) {
		return &price, nil
	}

	fresh, err := s.Repo.GetServicePrice(ctx, serviceRef, location)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", serviceRef, err)
	}
	if fresh.Amount <= 0 {
		return nil, fmt.Errorf("price for %s is not positive", serviceRef)
	}
	s.store(ctx, key, fresh)
	return fresh, nil
}

// cached fills dst from the cache. Cache failures degrade to a repository read.
func (s *DefaultCatalogService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.Cache == nil {
		return false
	}
	b, err := s.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, errCacheMiss) {
			s.Logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.Logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DefaultCatalogService) store(ctx context.Context, key string, v interface{}) {
	if s.Cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, b, s.TTL); err != nil {
		s.Logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
