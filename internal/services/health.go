// health.go
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
	"fmt"
	"log"
	"time"

	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Cache        string            `json:"cache"`
	Broker       string            `json:"broker"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck checks the store and, when configured, the stats cache and the event broker.
// Only the store decides the overall status; the optional services degrade.
func HealthCheck(cfg *config.Config, db *gorm.DB, cache *redis.Client) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Cache:   "disabled",
		Broker:  "disabled",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
		defer cancel()
		if err := cache.Ping(ctx).Err(); err != nil {
			result.Cache = "unreachable"
			result.Details["cache_error"] = err.Error()
			log.Printf("Health check degraded - cache ping: %v", err)
		} else {
			result.Cache = "ok"
		}
	}

	if cfg.AMQPURL != "" {
		if err := utils.PingBroker(cfg.AMQPURL); err != nil {
			result.Broker = "unreachable"
			result.Details["broker_error"] = err.Error()
			log.Printf("Health check degraded - broker ping: %v", err)
		} else {
			result.Broker = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - store operational")
	}

	return result
}
