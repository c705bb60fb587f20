// stats.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StatsHandler handles the dashboard routes
type StatsHandler struct {
	DB     *gorm.DB
	Stats  *services.StatsCache
	Hasher services.PasswordHasher
	Seed   []byte
}

// Dashboard handles GET /api/stats/dashboard
// @Summary Dashboard statistics
// @Description Counts of active users by role, dogs by status and journals by approval status
// @Tags Stats
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Stats.DashboardStats(c.UserContext(), h.DB)
	if err != nil {
		return serviceError(c, err, "dashboardStats")
	}
	return utils.DataResponse(c, stats, fiber.StatusOK)
}

// InitDashboard handles POST /api/dashboard/init
// @Summary Seed default data
// @Description Write the default users and dogs into a store that has no users yet
// @Tags Stats
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Router /dashboard/init [post]
func (h *StatsHandler) InitDashboard(c *fiber.Ctx) error {
	seeded, err := services.SeedDefaults(h.DB, h.Hasher, h.Seed)
	if err != nil {
		return serviceError(c, err, "initDashboard")
	}

	message := "Dashboard already has data"
	if seeded {
		message = "Dashboard initialized with default data"
		h.Stats.Invalidate(c.UserContext())
	}
	return utils.MessageResponse(c, message, fiber.Map{"initialized": seeded})
}

// HealthHandler reports store, cache and broker reachability
type HealthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Redis *redis.Client
}

// Health handles GET /api/health
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Redis)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
