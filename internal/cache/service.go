package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-templatefn/pkg/interfaces"
)

// DefaultCapacity bounds each TTL bucket when no capacity is configured.
const DefaultCapacity = 10000

// Config controls the result cache.
type Config struct {
	DefaultTTL time.Duration
	Capacity   int
}

// Service adapts go-repository-cache to interfaces.CacheProvider. Entries in a
// repocache service share one TTL, so every distinct TTL gets its own bounded
// service, created on first use.
type Service struct {
	cfg Config

	mu       sync.RWMutex
	services map[time.Duration]repocache.CacheService
}

// New builds the default TTL bucket eagerly so configuration errors surface
// at construction.
func New(cfg Config) (*Service, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = repocache.DefaultConfig().TTL
	}
	s := &Service{
		cfg:      cfg,
		services: make(map[time.Duration]repocache.CacheService),
	}
	if _, err := s.bucket(cfg.DefaultTTL); err != nil {
		return nil, err
	}
	return s, nil
}

// GetOrFetch returns the value cached under key or stores the result of fetch
// for ttl.
func (s *Service) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch interfaces.CacheFetchFunc) (any, error) {
	if fetch == nil {
		return nil, errors.New("cache: fetch function is required")
	}
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	svc, err := s.bucket(ttl)
	if err != nil {
		return nil, err
	}
	return repocache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
}

// Delete drops key from every TTL bucket.
func (s *Service) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, svc := range s.snapshot() {
		if err := svc.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteByPrefix drops every key starting with prefix.
func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) error {
	var errs []error
	for _, svc := range s.snapshot() {
		if err := svc.DeleteByPrefix(ctx, prefix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) bucket(ttl time.Duration) (repocache.CacheService, error) {
	s.mu.RLock()
	svc, ok := s.services[ttl]
	s.mu.RUnlock()
	if ok {
		return svc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if svc, ok := s.services[ttl]; ok {
		return svc, nil
	}
	cfg := repocache.DefaultConfig()
	cfg.TTL = ttl
	cfg.Capacity = s.cfg.Capacity
	svc, err := repocache.NewCacheService(cfg)
	if err != nil {
		return nil, fmt.Errorf("cache: build %s bucket: %w", ttl, err)
	}
	s.services[ttl] = svc
	return svc, nil
}

func (s *Service) snapshot() []repocache.CacheService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repocache.CacheService, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	return out
}

var _ interfaces.CacheProvider = (*Service)(nil)
