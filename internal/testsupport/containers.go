// containers.go
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

// Package testsupport starts the backing services for integration runs in containers.
// It is used by the integration tests and by the standalone cmd/testcontainers executable.
// Expects environment variables to be loaded from .env files.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbNetworkAlias     = "db"
	redisNetworkAlias  = "redis"
	brokerNetworkAlias = "rabbitmq"
	brokerUser         = "k9"
	brokerPassword     = "k9"
	readyAttempts      = 30
)

// Containers are the running backing services and the config that reaches them from the host
type Containers struct {
	Network         *testcontainers.DockerNetwork
	DBContainer     testcontainers.Container
	RedisContainer  testcontainers.Container
	BrokerContainer testcontainers.Container
	Config          *config.Config
}

// Terminate stops every started container and removes the network
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.BrokerContainer != nil {
		if err := tc.BrokerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate RabbitMQ: %v", err)
		}
	}
	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// Start runs DB_IMAGE, and REDIS_IMAGE and AMQP_IMAGE when set, on a private network.
// On error every container already started is terminated.
func Start(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	cfg, err := tc.startDatabase(ctx, t)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	tc.Config = cfg

	if redisImage := os.Getenv("REDIS_IMAGE"); redisImage != "" {
		addr, err := tc.startRedis(ctx, t, redisImage)
		if err != nil {
			tc.Terminate(t)
			return nil, err
		}
		cfg.RedisAddr = addr
		logMessage(t, "REDIS_ADDR=%s", addr)
	}

	if amqpImage := os.Getenv("AMQP_IMAGE"); amqpImage != "" {
		url, err := tc.startBroker(ctx, t, amqpImage)
		if err != nil {
			tc.Terminate(t)
			return nil, err
		}
		cfg.AMQPURL = url
		logMessage(t, "AMQP_URL=%s", url)
	}

	logMessage(t, "K9 management testcontainers started successfully")
	return tc, nil
}

func (tc *Containers) startDatabase(ctx context.Context, t *testing.T) (*config.Config, error) {
	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		return nil, fmt.Errorf("DB_IMAGE is required")
	}
	dbType := strings.ToLower(getEnv("DB_TYPE", "mariadb"))

	cfg := &config.Config{
		DBType:                 dbType,
		DBDatabase:             getEnv("DB_DATABASE", "k9_"+uuid.New().String()[:8]),
		DBUser:                 getEnv("DB_USER", "k9"),
		DBPassword:             getEnv("DB_PASSWORD", uuid.New().String()),
		DBConnectionLimit:      5,
		DBLogLevel:             getEnv("DB_LOG_LEVEL", "silent"),
		SessionTTL:             24 * time.Hour,
		SessionCleanupInterval: time.Hour,
		PasswordMode:           "plain",
		BcryptCost:             4,
		StatsCacheTTL:          30 * time.Second,
		AMQPQueue:              getEnv("AMQP_QUEUE", "journal_reviewed"),
	}

	tcpDbPort, err := nat.NewPort("tcp", getEnv("DB_PORT", defaultDBPort(dbType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	if err := logImageCache(ctx, t, dbImage); err != nil {
		return nil, err
	}

	waitFor := wait.Strategy(wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second))
	if isPostgres(dbType) {
		// postgres listens once during init before restarting
		waitFor = wait.ForAll(
			wait.ForListeningPort(tcpDbPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second)
	}

	networkName := tc.Network.Name
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          getDBInitEnvMap(dbType, cfg),
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				hostConfig.Tmpfs = map[string]string{dataDir(dbType): "rw"}
			},
			WaitingFor: waitFor,
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database host: %w", err)
	}
	dbPort, err := dbContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		return nil, fmt.Errorf("failed to get database port: %w", err)
	}
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	if isPostgres(dbType) {
		err = waitForStore(cfg)
	} else {
		err = waitForMySQL(cfg)
	}
	if err != nil {
		return nil, err
	}

	logMessage(t, "DB_TYPE=%s DB_HOST=%s DB_PORT=%s DB_DATABASE=%s", dbType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase)
	return cfg, nil
}

func (tc *Containers) startRedis(ctx context.Context, t *testing.T, redisImage string) (string, error) {
	tcpRedisPort, err := nat.NewPort("tcp", "6379")
	if err != nil {
		return "", fmt.Errorf("failed to create Redis port: %w", err)
	}
	if err := logImageCache(ctx, t, redisImage); err != nil {
		return "", err
	}

	networkName := tc.Network.Name
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{string(tcpRedisPort)},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:     []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {redisNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start Redis: %w", err)
	}
	tc.RedisContainer = redisContainer

	host, _ := redisContainer.Host(ctx)
	port, err := redisContainer.MappedPort(ctx, tcpRedisPort)
	if err != nil {
		return "", fmt.Errorf("failed to get Redis port: %w", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func (tc *Containers) startBroker(ctx context.Context, t *testing.T, amqpImage string) (string, error) {
	tcpAmqpPort, err := nat.NewPort("tcp", "5672")
	if err != nil {
		return "", fmt.Errorf("failed to create AMQP port: %w", err)
	}
	if err := logImageCache(ctx, t, amqpImage); err != nil {
		return "", err
	}

	networkName := tc.Network.Name
	brokerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        amqpImage,
			ExposedPorts: []string{string(tcpAmqpPort)},
			// guest may only connect from localhost
			Env: map[string]string{
				"RABBITMQ_DEFAULT_USER": brokerUser,
				"RABBITMQ_DEFAULT_PASS": brokerPassword,
			},
			WaitingFor: wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {brokerNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start RabbitMQ: %w", err)
	}
	tc.BrokerContainer = brokerContainer

	host, _ := brokerContainer.Host(ctx)
	port, err := brokerContainer.MappedPort(ctx, tcpAmqpPort)
	if err != nil {
		return "", fmt.Errorf("failed to get AMQP port: %w", err)
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", brokerUser, brokerPassword, host, port.Port()), nil
}

func getDBInitEnvMap(dbType string, cfg *config.Config) map[string]string {
	if isPostgres(dbType) {
		return map[string]string{
			"POSTGRES_PASSWORD": cfg.DBPassword,
			"POSTGRES_USER":     cfg.DBUser,
			"POSTGRES_DB":       cfg.DBDatabase,
		}
	}
	return map[string]string{
		"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", uuid.New().String()),
		"MYSQL_DATABASE":      cfg.DBDatabase,
		"MYSQL_USER":          cfg.DBUser,
		"MYSQL_PASSWORD":      cfg.DBPassword,
	}
}

// waitForMySQL pings with the app user until the server accepts it
func waitForMySQL(cfg *config.Config) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open MySQL for readiness check: %w", err)
	}
	defer db.Close()

	for i := 0; i < readyAttempts; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("MySQL not ready after %d seconds: %w", readyAttempts, err)
}

// waitForStore retries a full store connection until it succeeds
func waitForStore(cfg *config.Config) error {
	var err error
	for i := 0; i < readyAttempts; i++ {
		db, connectErr := database.Connect(cfg)
		if connectErr == nil {
			return database.Close(db)
		}
		err = connectErr
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database not ready after %d seconds: %w", readyAttempts, err)
}

// logImageCache reports whether an image will be pulled
func logImageCache(ctx context.Context, t *testing.T, imageName string) error {
	exists, err := imageExists(ctx, imageName)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}
	if exists {
		logMessage(t, "Image %s exists, reusing...", imageName)
	} else {
		logMessage(t, "Image %s does not exist, pulling...", imageName)
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func isPostgres(dbType string) bool {
	return dbType == "postgres" || dbType == "postgresql"
}

func defaultDBPort(dbType string) string {
	if isPostgres(dbType) {
		return "5432"
	}
	return "3306"
}

func dataDir(dbType string) string {
	if isPostgres(dbType) {
		return "/var/lib/postgresql/data"
	}
	return "/var/lib/mysql"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
