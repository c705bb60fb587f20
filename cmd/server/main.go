// main.go
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

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/k9-management/data"
	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/database"
	"github.com/localnerve/k9-management/internal/handlers"
	"github.com/localnerve/k9-management/internal/middleware"
	"github.com/localnerve/k9-management/internal/services"

	_ "github.com/localnerve/k9-management/docs/api" // Swagger docs
)

// @title K9 Management API
// @version 1.0.0
// @description Dogs, trainers, assignments and training journals with an approval workflow
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/k9-management
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey SessionToken
// @in header
// @name X-Session-Token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional stats cache and review event broker
	redisClient := config.NewRedisClient(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	statsCache := services.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	events := services.NewEventPublisher(cfg.AMQPURL, cfg.AMQPQueue)

	// Expired session cleanup
	sweeper := services.NewSessionSweeper(db, cfg.SessionCleanupInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		// Disable startup message for cleaner logs
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("k9_management")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	handlers.RegisterRoutes(api, handlers.Deps{
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Hasher: services.NewPasswordHasher(cfg.PasswordMode, cfg.BcryptCost),
		Stats:  statsCache,
		Events: events,
		Seed:   data.DefaultSeed,
	})

	// 404 handler
	app.Use(middleware.NotFound())

	if cfg.APIAuth {
		log.Printf("API auth enabled: session token required on data routes")
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
