// assignments.go
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
	"time"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncResult reports which requested dog names became active trainer assignments
// and which were skipped because no dog carries that name.
type SyncResult struct {
	Assigned []string `json:"assigned"`
	Skipped  []string `json:"skipped"`
}

// AssignedDog is an active assignment joined with its dog
type AssignedDog struct {
	models.Dog
	AssignmentType models.AssignmentType `json:"assignment_type"`
	AssignedAt     time.Time             `json:"assigned_at"`
}

var assignmentConflictColumns = []clause.Column{{Name: "user_id"}, {Name: "dog_id"}, {Name: "assignment_type"}}

// SyncAssignments makes the named dogs the user's complete set of active TRAINER assignments.
// Every existing assignment of the user, of any type, is deactivated first.
func SyncAssignments(db *gorm.DB, userID uint64, dogNames []string) (*SyncResult, error) {
	var result *SyncResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = syncAssignmentsTx(tx, userID, types.CompactNames(dogNames))
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}
	return result, nil
}

func syncAssignmentsTx(tx *gorm.DB, userID uint64, dogNames []string) (*SyncResult, error) {
	result := &SyncResult{Assigned: []string{}, Skipped: []string{}}

	if err := tx.Model(&models.Assignment{}).
		Where("user_id = ?", userID).
		Update("status", models.AssignmentInactive).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, name := range dogNames {
		var dogs []models.Dog
		if err := tx.Select("id").Where("name = ?", name).Order("id ASC").Limit(1).Find(&dogs).Error; err != nil {
			return nil, err
		}
		if len(dogs) == 0 {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		if err := upsertAssignment(tx, userID, dogs[0].ID, models.AssignmentTrainer, now); err != nil {
			return nil, err
		}
		result.Assigned = append(result.Assigned, name)
	}

	return result, nil
}

func upsertAssignment(tx *gorm.DB, userID, dogID uint64, assignmentType models.AssignmentType, at time.Time) error {
	assignment := models.Assignment{
		UserID:         userID,
		DogID:          dogID,
		AssignmentType: assignmentType,
		Status:         models.AssignmentActive,
		AssignedAt:     at,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   assignmentConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"status", "assigned_at"}),
	}).Create(&assignment).Error
}

// AssignDog activates a single assignment of the given type, creating it if needed
func AssignDog(db *gorm.DB, userID, dogID uint64, assignmentType models.AssignmentType) error {
	if assignmentType == "" {
		assignmentType = models.AssignmentTrainer
	}
	if !assignmentType.Valid() {
		return validationError("invalid assignment_type %q", assignmentType)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := quiet(tx).Select("id").First(&user, userID).Error; err != nil {
			return notFoundError("user %d", userID)
		}
		var dog models.Dog
		if err := quiet(tx).Select("id").First(&dog, dogID).Error; err != nil {
			return notFoundError("dog %d", dogID)
		}
		return upsertAssignment(tx, userID, dogID, assignmentType, time.Now().UTC())
	})
	return translateError(err)
}

// UnassignDog deactivates every assignment between the user and the dog
func UnassignDog(db *gorm.DB, userID, dogID uint64) error {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Assignment{}).
			Where("user_id = ? AND dog_id = ? AND status = ?", userID, dogID, models.AssignmentActive).
			Update("status", models.AssignmentInactive)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return translateError(err)
	}
	if affected == 0 {
		return notFoundError("no active assignment of dog %d to user %d", dogID, userID)
	}
	return nil
}

// ListAssignedDogs returns the dogs actively assigned to the user, newest assignment first.
// Assignments whose dog no longer exists are left out.
func ListAssignedDogs(db *gorm.DB, userID uint64) ([]AssignedDog, error) {
	var assignments []models.Assignment
	err := db.Preload("Dog").
		Where("user_id = ? AND status = ?", userID, models.AssignmentActive).
		Order("assigned_at DESC, id DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, translateError(err)
	}

	dogs := make([]AssignedDog, 0, len(assignments))
	for _, a := range assignments {
		if a.Dog == nil {
			continue
		}
		dogs = append(dogs, AssignedDog{Dog: *a.Dog, AssignmentType: a.AssignmentType, AssignedAt: a.AssignedAt})
	}
	return dogs, nil
}

// AssignedDogNames returns the sorted, distinct names of the dogs actively assigned to the user
func AssignedDogNames(db *gorm.DB, userID uint64) ([]string, error) {
	names := []string{}
	err := db.Table("user_dog_assignments a").
		Select("DISTINCT d.name").
		Joins("JOIN dogs d ON d.id = a.dog_id").
		Where("a.user_id = ? AND a.status = ?", userID, models.AssignmentActive).
		Order("d.name ASC").
		Pluck("d.name", &names).Error
	if err != nil {
		return nil, translateError(err)
	}
	return names, nil
}

// ListActiveAssignments returns the user's active assignment rows
func ListActiveAssignments(db *gorm.DB, userID uint64) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := db.Where("user_id = ? AND status = ?", userID, models.AssignmentActive).
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, translateError(err)
	}
	return assignments, nil
}
