// setup_test.go
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
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/database"
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"gorm.io/gorm"
)

// setupTestDB creates a migrated SQLite file database for one test.
// A file is used instead of :memory: so every pooled connection sees the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "k9_test.db"),
		DBConnectionLimit: 4,
		DBBusyTimeout:     5 * time.Second,
		DBLogLevel:        "silent",
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close(db)
	})

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string, role models.Role, dogs ...string) *services.UserResult {
	t.Helper()
	user, err := services.CreateUser(db, services.UserInput{
		Name:         "Name " + username,
		Username:     username,
		Password:     "secret",
		Role:         role,
		AssignedDogs: dogs,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func mustCreateDog(t *testing.T, db *gorm.DB, name, chipID string) *models.Dog {
	t.Helper()
	dog, err := services.CreateDog(db, services.DogInput{Name: name, ChipID: chipID, Breed: "Malinois"})
	if err != nil {
		t.Fatalf("CreateDog(%s) failed: %v", name, err)
	}
	return dog
}

func mustCreateJournal(t *testing.T, db *gorm.DB, in services.JournalInput) *services.JournalView {
	t.Helper()
	journal, err := services.CreateJournal(db, in)
	if err != nil {
		t.Fatalf("CreateJournal failed: %v", err)
	}
	return journal
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func strPtr(s string) *string {
	return &s
}
