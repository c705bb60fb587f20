// routes.go
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
	"github.com/localnerve/k9-management/internal/middleware"
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the shared resources the route handlers use
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Hasher services.PasswordHasher
	Stats  *services.StatsCache
	Events services.EventPublisher
	Seed   []byte
}

// RegisterRoutes mounts the API on router. With API auth enabled every route except
// login, session validation, logout, health and dashboard init needs a session, and writes to users,
// dogs and reviews need an ADMIN or MANAGER.
func RegisterRoutes(router fiber.Router, deps Deps) {
	session := middleware.Passthrough()
	managers := middleware.Passthrough()
	admins := middleware.Passthrough()
	if deps.Cfg.APIAuth {
		session = middleware.RequireSession(deps.DB)
		managers = middleware.RequireRole(models.RoleAdmin, models.RoleManager)
		admins = middleware.RequireRole(models.RoleAdmin)
	}

	authHandler := &AuthHandler{
		DB:              deps.DB,
		Hasher:          deps.Hasher,
		SessionTTL:      deps.Cfg.SessionTTL,
		RequireSessions: deps.Cfg.APIAuth,
	}
	healthHandler := &HealthHandler{Cfg: deps.Cfg, DB: deps.DB, Redis: deps.Redis}
	userHandler := &UserHandler{DB: deps.DB, Hasher: deps.Hasher, Stats: deps.Stats}
	dogHandler := &DogHandler{DB: deps.DB, Stats: deps.Stats}
	journalHandler := &JournalHandler{DB: deps.DB, Stats: deps.Stats, Events: deps.Events}
	statsHandler := &StatsHandler{DB: deps.DB, Stats: deps.Stats, Hasher: deps.Hasher, Seed: deps.Seed}

	// Public routes
	router.Get("/health", healthHandler.Health)
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-session", authHandler.ValidateSession)
	auth.Post("/logout", authHandler.Logout)

	// User routes
	users := router.Group("/users", session)
	users.Get("/", userHandler.ListUsers)
	users.Post("/", managers, userHandler.CreateUser)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", managers, userHandler.UpdateUser)
	users.Delete("/:id", admins, userHandler.DeleteUser)
	users.Get("/:id/dogs", userHandler.ListUserDogs)
	users.Post("/:id/dogs/:dog_id", managers, userHandler.AssignDog)
	users.Delete("/:id/dogs/:dog_id", managers, userHandler.UnassignDog)

	// Dog routes
	dogs := router.Group("/dogs", session)
	dogs.Get("/", dogHandler.ListDogs)
	dogs.Post("/", managers, dogHandler.CreateDog)
	dogs.Get("/:id", dogHandler.GetDog)
	dogs.Put("/:id", managers, dogHandler.UpdateDog)
	dogs.Delete("/:id", admins, dogHandler.DeleteDog)

	// Journal routes, fixed paths before /:id
	journals := router.Group("/journals", session)
	journals.Get("/", journalHandler.ListJournals)
	journals.Post("/", journalHandler.CreateJournal)
	journals.Get("/pending", journalHandler.ListPending)
	journals.Get("/approved", journalHandler.ListApproved)
	journals.Get("/resolve", journalHandler.ResolveJournal)
	journals.Get("/by-dog/:dog_id", journalHandler.ListByDog)
	journals.Get("/by-trainer/:trainer_id", journalHandler.ListByTrainer)
	journals.Post("/migrate-from-localstorage", journalHandler.ImportJournals)
	journals.Get("/:id", journalHandler.GetJournal)
	journals.Put("/:id", journalHandler.UpdateJournal)
	journals.Delete("/:id", managers, journalHandler.DeleteJournal)
	journals.Post("/:id/approve", managers, journalHandler.ApproveJournal)

	// Dashboard routes
	router.Get("/stats/dashboard", session, statsHandler.Dashboard)
	// No session: seeding only ever writes to a store without users
	router.Post("/dashboard/init", statsHandler.InitDashboard)
}
