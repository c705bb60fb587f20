// integration_test.go
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

package services_test

import (
	"context"
	"os"
	"testing"

	"github.com/localnerve/k9-management/data"
	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/database"
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/testsupport"
	"github.com/localnerve/k9-management/internal/types"
	"github.com/testcontainers/testcontainers-go"
)

// TestWithServerDatabase runs the core workflows against DB_IMAGE (mariadb, mysql or postgres),
// plus the stats cache and review events when REDIS_IMAGE and AMQP_IMAGE are set.
func TestWithServerDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	tc, err := testsupport.Start(t)
	if err != nil {
		t.Skipf("Integration containers unavailable: %v", err)
	}
	t.Cleanup(func() { tc.Terminate(t) })

	db, err := database.Connect(tc.Config)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	seeded, err := services.SeedDefaults(db, services.PlainPasswords{}, data.DefaultSeed)
	if err != nil || !seeded {
		t.Fatalf("SeedDefaults = %v, %v", seeded, err)
	}

	t.Run("assignment sync", func(t *testing.T) {
		dog := mustCreateDog(t, db, "Rex", "IT-1")
		trainer := mustCreateUser(t, db, "it-trainer", models.RoleTrainer, "Rex")

		result, err := services.SyncAssignments(db, trainer.ID, []string{"Rex", "Ghost"})
		if err != nil {
			t.Fatalf("SyncAssignments failed: %v", err)
		}
		if len(result.Assigned) != 1 || len(result.Skipped) != 1 {
			t.Errorf("unexpected sync result: %+v", result)
		}

		var count int64
		db.Model(&models.Assignment{}).Where("user_id = ? AND dog_id = ?", trainer.ID, dog.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected one assignment row after resync, got %d", count)
		}
	})

	t.Run("approval and resolve", func(t *testing.T) {
		f := journalFixture{
			dog:     mustCreateDog(t, db, "Luna", "IT-2"),
			trainer: mustCreateUser(t, db, "it-hlv", models.RoleTrainer, "Luna"),
			manager: mustCreateUser(t, db, "it-manager", models.RoleManager),
		}

		sparse := mustCreateJournal(t, db, f.input("2025-02-01"))
		full := f.input("2025-02-01")
		full.TrainingActivities = "Tracking, two long lines"
		full.CareActivities = "Brushing and feeding"
		winner := mustCreateJournal(t, db, full)

		resolved, err := services.ResolveJournalByDogAndDate(db, "Luna", "2025-02-01")
		if err != nil {
			t.Fatalf("ResolveJournalByDogAndDate failed: %v", err)
		}
		if resolved.Journal.ID != winner.ID || len(resolved.Candidates) != 2 {
			t.Errorf("expected %d to win over %d, got %+v", winner.ID, sparse.ID, resolved)
		}

		rejected, err := services.ApproveJournal(db, sparse.ID, f.manager.ID, false, "  duplicate  ")
		if err != nil {
			t.Fatalf("ApproveJournal failed: %v", err)
		}
		if rejected.ApprovalStatus != models.ApprovalRejected || rejected.RejectionReason == nil || *rejected.RejectionReason != "duplicate" {
			t.Errorf("unexpected rejection: %s %v", rejected.ApprovalStatus, rejected.RejectionReason)
		}

		_, err = services.ApproveJournal(db, 999999, f.manager.ID, true, "")
		if types.ErrorType(err) != "not_found" {
			t.Errorf("expected not_found, got %v", err)
		}
	})

	t.Run("dashboard stats cache", func(t *testing.T) {
		cache := services.NewStatsCache(config.NewRedisClient(tc.Config), tc.Config.StatsCacheTTL)
		stats, err := cache.DashboardStats(context.Background(), db)
		if err != nil {
			t.Fatalf("DashboardStats failed: %v", err)
		}
		if stats.TotalUsers < 3 || stats.TotalJournals != 2 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		cache.Invalidate(context.Background())
	})

	t.Run("review events", func(t *testing.T) {
		if tc.Config.AMQPURL == "" {
			t.Skip("AMQP_IMAGE not set")
		}
		publisher := services.NewEventPublisher(tc.Config.AMQPURL, tc.Config.AMQPQueue)
		journals, err := services.ListJournals(db, services.JournalFilter{Status: models.ApprovalRejected})
		if err != nil || len(journals) == 0 {
			t.Fatalf("expected a rejected journal, got %v %v", journals, err)
		}
		event := services.NewJournalReviewedEvent(&journals[0])
		if err := publisher.PublishJournalReviewed(context.Background(), event); err != nil {
			t.Errorf("PublishJournalReviewed failed: %v", err)
		}
	})
}
