// dogs.go
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
	"strings"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

// DogInput is the body for creating a dog
type DogInput struct {
	Name         string              `json:"name"`
	ChipID       string              `json:"chip_id"`
	Breed        string              `json:"breed"`
	TrainerID    types.FlexUint64    `json:"trainer_id"`
	Status       models.DogStatus    `json:"status"`
	HealthStatus models.HealthStatus `json:"health_status"`

	BirthDate        string `json:"birth_date"`
	BirthPlace       string `json:"birth_place"`
	Gender           string `json:"gender"`
	Features         string `json:"features"`
	FurColor         string `json:"fur_color"`
	Value            string `json:"value"`
	FatherName       string `json:"father_name"`
	FatherBirth      string `json:"father_birth"`
	FatherPlace      string `json:"father_place"`
	FatherBreed      string `json:"father_breed"`
	FatherFeatures   string `json:"father_features"`
	HandlerName      string `json:"hlv_ten"`
	HandlerBirthDate string `json:"hlv_ngaysinh"`
	HandlerRank      string `json:"hlv_capbac"`
	HandlerPosition  string `json:"hlv_chucvu"`
	HandlerUnit      string `json:"hlv_donvi"`
	HandlerTraining  string `json:"hlv_daotao"`
	AcquisitionDate  string `json:"acquisition_date"`
	Notes            string `json:"notes"`
}

// DogPatch is a partial dog update. A TrainerID of zero clears the trainer.
type DogPatch struct {
	Name         *string              `json:"name"`
	ChipID       *string              `json:"chip_id"`
	Breed        *string              `json:"breed"`
	TrainerID    *types.FlexUint64    `json:"trainer_id" patch:"-"`
	Status       *models.DogStatus    `json:"status"`
	HealthStatus *models.HealthStatus `json:"health_status"`

	BirthDate        *string `json:"birth_date"`
	BirthPlace       *string `json:"birth_place"`
	Gender           *string `json:"gender"`
	Features         *string `json:"features"`
	FurColor         *string `json:"fur_color"`
	Value            *string `json:"value"`
	FatherName       *string `json:"father_name"`
	FatherBirth      *string `json:"father_birth"`
	FatherPlace      *string `json:"father_place"`
	FatherBreed      *string `json:"father_breed"`
	FatherFeatures   *string `json:"father_features"`
	HandlerName      *string `json:"hlv_ten"`
	HandlerBirthDate *string `json:"hlv_ngaysinh"`
	HandlerRank      *string `json:"hlv_capbac"`
	HandlerPosition  *string `json:"hlv_chucvu"`
	HandlerUnit      *string `json:"hlv_donvi"`
	HandlerTraining  *string `json:"hlv_daotao"`
	AcquisitionDate  *string `json:"acquisition_date"`
	Notes            *string `json:"notes"`
}

func (in *DogInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.ChipID = strings.TrimSpace(in.ChipID)
	in.Breed = strings.TrimSpace(in.Breed)

	if in.Name == "" {
		return validationError("name is required")
	}
	if in.ChipID == "" {
		return validationError("chip_id is required")
	}
	if in.Breed == "" {
		return validationError("breed is required")
	}
	if in.Status == "" {
		in.Status = models.DogActive
	}
	if !in.Status.Valid() {
		return validationError("invalid status %q", in.Status)
	}
	if in.HealthStatus == "" {
		in.HealthStatus = models.HealthGood
	}
	if !in.HealthStatus.Valid() {
		return validationError("invalid health_status %q", in.HealthStatus)
	}
	return nil
}

func (p *DogPatch) validate() error {
	for field, v := range map[string]*string{"name": p.Name, "chip_id": p.ChipID, "breed": p.Breed} {
		if v == nil {
			continue
		}
		if *v = strings.TrimSpace(*v); *v == "" {
			return validationError("%s cannot be empty", field)
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return validationError("invalid status %q", *p.Status)
	}
	if p.HealthStatus != nil && !p.HealthStatus.Valid() {
		return validationError("invalid health_status %q", *p.HealthStatus)
	}
	return nil
}

// CreateDog inserts a dog. A duplicate chip id is a wrapped types.ErrConflict.
func CreateDog(db *gorm.DB, in DogInput) (*models.Dog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	dog := models.Dog{
		Name:             in.Name,
		ChipID:           in.ChipID,
		Breed:            in.Breed,
		TrainerID:        in.TrainerID.Ptr(),
		Status:           in.Status,
		HealthStatus:     in.HealthStatus,
		BirthDate:        in.BirthDate,
		BirthPlace:       in.BirthPlace,
		Gender:           in.Gender,
		Features:         in.Features,
		FurColor:         in.FurColor,
		Value:            in.Value,
		FatherName:       in.FatherName,
		FatherBirth:      in.FatherBirth,
		FatherPlace:      in.FatherPlace,
		FatherBreed:      in.FatherBreed,
		FatherFeatures:   in.FatherFeatures,
		HandlerName:      in.HandlerName,
		HandlerBirthDate: in.HandlerBirthDate,
		HandlerRank:      in.HandlerRank,
		HandlerPosition:  in.HandlerPosition,
		HandlerUnit:      in.HandlerUnit,
		HandlerTraining:  in.HandlerTraining,
		AcquisitionDate:  in.AcquisitionDate,
		Notes:            in.Notes,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&dog).Error
	})
	if err != nil {
		return nil, conflictOr(err, "chip id %q already exists", in.ChipID)
	}

	return GetDog(db, dog.ID)
}

// GetDog returns the dog with its trainer preloaded when the reference resolves
func GetDog(db *gorm.DB, id uint64) (*models.Dog, error) {
	var dog models.Dog
	if err := quiet(db).Preload("Trainer").First(&dog, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &dog, nil
}

// GetDogByName resolves a dog by exact, case-sensitive name. The lowest id wins on duplicates.
func GetDogByName(db *gorm.DB, name string) (*models.Dog, error) {
	var dogs []models.Dog
	if err := db.Where("name = ?", name).Order("id ASC").Limit(1).Find(&dogs).Error; err != nil {
		return nil, translateError(err)
	}
	if len(dogs) == 0 {
		return nil, notFoundError("dog named %q", name)
	}
	return &dogs[0], nil
}

// ListDogs returns every dog, newest first
func ListDogs(db *gorm.DB) ([]models.Dog, error) {
	var dogs []models.Dog
	if err := db.Preload("Trainer").Order("created_at DESC, id DESC").Find(&dogs).Error; err != nil {
		return nil, translateError(err)
	}
	return dogs, nil
}

// UpdateDog applies the supplied fields
func UpdateDog(db *gorm.DB, id uint64, patch DogPatch) (*models.Dog, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	cols := patchColumns(patch)
	if patch.TrainerID != nil {
		if trainerID := patch.TrainerID.Ptr(); trainerID != nil {
			cols["trainer_id"] = *trainerID
		} else {
			cols["trainer_id"] = nil
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var dog models.Dog
		if err := quiet(tx).Select("id").First(&dog, id).Error; err != nil {
			return err
		}
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(&models.Dog{}).Where("id = ?", id).Updates(cols).Error
	})
	if err != nil {
		chipID := ""
		if patch.ChipID != nil {
			chipID = *patch.ChipID
		}
		return nil, conflictOr(err, "chip id %q already exists", chipID)
	}

	return GetDog(db, id)
}

// DeleteDog hard deletes the dog without touching assignments or journals
func DeleteDog(db *gorm.DB, id uint64) error {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Dog{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return translateError(err)
	}
	if affected == 0 {
		return notFoundError("dog %d", id)
	}
	return nil
}

// PrimaryTrainerID recomputes the primary trainer from the newest active TRAINER assignment.
// Dog.TrainerID is only a cache of this value and may disagree with it.
func PrimaryTrainerID(db *gorm.DB, dogID uint64) (*uint64, error) {
	var assignments []models.Assignment
	err := db.Where("dog_id = ? AND assignment_type = ? AND status = ?", dogID, models.AssignmentTrainer, models.AssignmentActive).
		Order("assigned_at DESC, id DESC").
		Limit(1).
		Find(&assignments).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	return &assignments[0].UserID, nil
}
