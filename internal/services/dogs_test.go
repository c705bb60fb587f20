// dogs_test.go
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
	"testing"
	"time"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
)

func TestCreateDogDefaultsAndConflict(t *testing.T) {
	db := setupTestDB(t)

	dog := mustCreateDog(t, db, "Rex", "C1")
	if dog.Status != models.DogActive || dog.HealthStatus != models.HealthGood {
		t.Errorf("unexpected defaults: %s %s", dog.Status, dog.HealthStatus)
	}

	_, err := services.CreateDog(db, services.DogInput{Name: "Other", ChipID: "C1", Breed: "Becgie"})
	assertErrorIs(t, err, types.ErrConflict)

	_, err = services.CreateDog(db, services.DogInput{Name: "NoChip", Breed: "Becgie"})
	assertErrorIs(t, err, types.ErrValidation)

	_, err = services.CreateDog(db, services.DogInput{Name: "Sick", ChipID: "C9", Breed: "Becgie", HealthStatus: "DYING"})
	assertErrorIs(t, err, types.ErrValidation)
}

func TestGetDogByNameLowestIDWins(t *testing.T) {
	db := setupTestDB(t)

	first := mustCreateDog(t, db, "Rex", "C1")
	mustCreateDog(t, db, "Rex", "C2")
	mustCreateDog(t, db, "rex", "C3")

	dog, err := services.GetDogByName(db, "Rex")
	if err != nil {
		t.Fatalf("GetDogByName failed: %v", err)
	}
	if dog.ID != first.ID {
		t.Errorf("expected dog %d, got %d", first.ID, dog.ID)
	}

	_, err = services.GetDogByName(db, "REX")
	assertErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateDogTrainerAndFields(t *testing.T) {
	db := setupTestDB(t)

	trainer := mustCreateUser(t, db, "hlv1", models.RoleTrainer)
	dog := mustCreateDog(t, db, "Rex", "C1")

	trainerID := types.FlexUint64(trainer.ID)
	retired := models.DogRetired
	updated, err := services.UpdateDog(db, dog.ID, services.DogPatch{
		TrainerID:   &trainerID,
		Status:      &retired,
		HandlerName: strPtr("Nguyễn Văn A"),
	})
	if err != nil {
		t.Fatalf("UpdateDog failed: %v", err)
	}
	if updated.TrainerID == nil || *updated.TrainerID != trainer.ID {
		t.Errorf("trainer not set: %v", updated.TrainerID)
	}
	if updated.Trainer == nil || updated.Trainer.Username != "hlv1" {
		t.Errorf("trainer not preloaded: %+v", updated.Trainer)
	}
	if updated.Status != models.DogRetired || updated.HandlerName != "Nguyễn Văn A" {
		t.Errorf("fields not updated: %+v", updated)
	}
	if updated.ChipID != "C1" || updated.Breed != "Malinois" {
		t.Errorf("omitted fields changed: %+v", updated)
	}

	none := types.FlexUint64(0)
	updated, err = services.UpdateDog(db, dog.ID, services.DogPatch{TrainerID: &none})
	if err != nil {
		t.Fatalf("UpdateDog failed: %v", err)
	}
	if updated.TrainerID != nil {
		t.Errorf("expected trainer cleared, got %d", *updated.TrainerID)
	}

	_, err = services.UpdateDog(db, 999, services.DogPatch{Notes: strPtr("x")})
	assertErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteDog(t *testing.T) {
	db := setupTestDB(t)

	dog := mustCreateDog(t, db, "Rex", "C1")
	trainer := mustCreateUser(t, db, "hlv1", models.RoleTrainer, "Rex")
	mustCreateJournal(t, db, services.JournalInput{
		DogID: types.FlexUint64(dog.ID), TrainerID: types.FlexUint64(trainer.ID), JournalDate: "2025-01-15",
	})

	if err := services.DeleteDog(db, dog.ID); err != nil {
		t.Fatalf("DeleteDog failed: %v", err)
	}
	assertErrorIs(t, services.DeleteDog(db, dog.ID), types.ErrNotFound)

	var journals int64
	db.Model(&models.TrainingJournal{}).Where("dog_id = ?", dog.ID).Count(&journals)
	if journals != 1 {
		t.Errorf("expected journal kept after dog delete, got %d", journals)
	}

	dogs, err := services.ListAssignedDogs(db, trainer.ID)
	if err != nil {
		t.Fatalf("ListAssignedDogs failed: %v", err)
	}
	if len(dogs) != 0 {
		t.Errorf("expected deleted dog left out of assigned dogs, got %d", len(dogs))
	}
}

func TestPrimaryTrainerID(t *testing.T) {
	db := setupTestDB(t)

	dog := mustCreateDog(t, db, "Rex", "C1")

	id, err := services.PrimaryTrainerID(db, dog.ID)
	if err != nil || id != nil {
		t.Fatalf("expected no primary trainer, got %v, %v", id, err)
	}

	first := mustCreateUser(t, db, "hlv1", models.RoleTrainer, "Rex")
	second := mustCreateUser(t, db, "hlv2", models.RoleTrainer, "Rex")

	// make the second assignment unambiguously newer
	db.Model(&models.Assignment{}).Where("user_id = ?", first.ID).Update("assigned_at", time.Now().UTC().Add(-time.Hour))

	id, err = services.PrimaryTrainerID(db, dog.ID)
	if err != nil {
		t.Fatalf("PrimaryTrainerID failed: %v", err)
	}
	if id == nil || *id != second.ID {
		t.Errorf("expected primary trainer %d, got %v", second.ID, id)
	}
}

func TestUpdateDogTrimsIdentity(t *testing.T) {
	db := setupTestDB(t)
	dog := mustCreateDog(t, db, "Rex", "C1")
	trainer := mustCreateUser(t, db, "hlv1", models.RoleTrainer)

	updated, err := services.UpdateDog(db, dog.ID, services.DogPatch{
		Name:   strPtr(" Luna "),
		ChipID: strPtr(" C9 "),
		Breed:  strPtr(" Malinois"),
	})
	if err != nil {
		t.Fatalf("UpdateDog failed: %v", err)
	}
	if updated.Name != "Luna" || updated.ChipID != "C9" || updated.Breed != "Malinois" {
		t.Errorf("expected trimmed values, got %q %q %q", updated.Name, updated.ChipID, updated.Breed)
	}

	result, err := services.SyncAssignments(db, trainer.ID, []string{"Luna"})
	if err != nil {
		t.Fatalf("SyncAssignments failed: %v", err)
	}
	if len(result.Assigned) != 1 {
		t.Errorf("renamed dog not matched by name: %+v", result)
	}

	_, err = services.UpdateDog(db, dog.ID, services.DogPatch{Breed: strPtr("  ")})
	assertErrorIs(t, err, types.ErrValidation)
}
