// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package services

import (
	"context"
	"time"

	"github.com/librarium-app/librarium/internal/logging"
)

// ExpiringCache is the slice of the summary cache the janitor needs.
type ExpiringCache interface {
	CleanupExpired() int
}

// CacheJanitorService periodically sweeps expired entries out of a
// cache. Expiry in the cache itself is lazy, so without the janitor
// entries that are never read again would sit in memory until evicted.
type CacheJanitorService struct {
	cache    ExpiringCache
	interval time.Duration
	name     string
}

// NewCacheJanitorService builds a janitor sweeping at the given
// interval.
func NewCacheJanitorService(cache ExpiringCache, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.cache.CleanupExpired(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("Swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer.
func (j *CacheJanitorService) String() string {
	return j.name
}
