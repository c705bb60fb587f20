// dog.go
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

package models

import (
	"time"
)

// Dog is a working dog with its pedigree and handler record.
// TrainerID caches the current primary trainer; the assignments are authoritative.
type Dog struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string       `gorm:"size:255;not null;index:idx_dogs_name" json:"name"`
	ChipID       string       `gorm:"size:255;not null;uniqueIndex:idx_dogs_chip_id" json:"chip_id"`
	Breed        string       `gorm:"size:255;not null" json:"breed"`
	TrainerID    *uint64      `gorm:"index:idx_dogs_trainer_id" json:"trainer_id"`
	Status       DogStatus    `gorm:"size:16;not null" json:"status"`
	HealthStatus HealthStatus `gorm:"size:16;not null" json:"health_status"`

	BirthDate      string `gorm:"size:32" json:"birth_date"`
	BirthPlace     string `gorm:"size:255" json:"birth_place"`
	Gender         string `gorm:"size:32" json:"gender"`
	Features       string `gorm:"type:text" json:"features"`
	FurColor       string `gorm:"size:255" json:"fur_color"`
	Value          string `gorm:"size:255" json:"value"`
	FatherName     string `gorm:"size:255" json:"father_name"`
	FatherBirth    string `gorm:"size:32" json:"father_birth"`
	FatherPlace    string `gorm:"size:255" json:"father_place"`
	FatherBreed    string `gorm:"size:255" json:"father_breed"`
	FatherFeatures string `gorm:"type:text" json:"father_features"`

	// handler (hlv) record
	HandlerName      string `gorm:"column:hlv_ten;size:255" json:"hlv_ten"`
	HandlerBirthDate string `gorm:"column:hlv_ngaysinh;size:32" json:"hlv_ngaysinh"`
	HandlerRank      string `gorm:"column:hlv_capbac;size:255" json:"hlv_capbac"`
	HandlerPosition  string `gorm:"column:hlv_chucvu;size:255" json:"hlv_chucvu"`
	HandlerUnit      string `gorm:"column:hlv_donvi;size:255" json:"hlv_donvi"`
	HandlerTraining  string `gorm:"column:hlv_daotao;size:255" json:"hlv_daotao"`

	AcquisitionDate string    `gorm:"size:32" json:"acquisition_date"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Trainer *User `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
}

// TableName overrides the table name for Dog
func (Dog) TableName() string {
	return "dogs"
}
