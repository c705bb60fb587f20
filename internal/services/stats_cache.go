// stats_cache.go
//
// K9 management data service: dogs, trainers and training journals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of k9-management.
// k9-management is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// k9-management is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with k9-management.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const statsCacheKey = "k9:stats:dashboard"

// StatsCache keeps the dashboard counts in redis for a short ttl.
// A nil cache or a nil client computes the stats on every call.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache wraps an optional redis client
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{client: client, ttl: ttl}
}

// DashboardStats returns cached counts or computes and caches them. Redis failures fall back to the store.
func (c *StatsCache) DashboardStats(ctx context.Context, db *gorm.DB) (*DashboardStatsResult, error) {
	if c == nil || c.client == nil {
		return DashboardStats(db)
	}

	cached, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err == nil {
		var stats DashboardStatsResult
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("stats cache: get failed: %v", err)
	}

	stats, err := DashboardStats(db)
	if err != nil {
		return nil, err
	}

	if body, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, statsCacheKey, body, c.ttl).Err(); err != nil {
			log.Printf("stats cache: set failed: %v", err)
		}
	}

	return stats, nil
}

// Invalidate drops the cached counts after a write that changes them
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Printf("stats cache: invalidate failed: %v", err)
	}
}
