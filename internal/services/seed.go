// seed.go
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
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

// SeedData is the shape of the embedded default data
type SeedData struct {
	Dogs  []DogInput  `json:"dogs"`
	Users []UserInput `json:"users"`
}

// SeedDefaults loads default users and dogs into a store that has no users yet.
// Dogs are created first so the seeded users can be assigned to them by name.
// It reports whether anything was written.
func SeedDefaults(db *gorm.DB, hasher PasswordHasher, raw []byte) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	if count > 0 {
		return false, nil
	}

	var seed SeedData
	if err := json.Unmarshal(raw, &seed); err != nil {
		return false, fmt.Errorf("invalid seed data: %w", err)
	}

	for _, dog := range seed.Dogs {
		if _, err := CreateDog(db, dog); err != nil && !errors.Is(err, types.ErrConflict) {
			return false, err
		}
	}

	for _, user := range seed.Users {
		hashed, err := hasher.Hash(user.Password)
		if err != nil {
			return false, err
		}
		user.Password = hashed
		if _, err := CreateUser(db, user); err != nil && !errors.Is(err, types.ErrConflict) {
			return false, err
		}
	}

	log.Printf("Seeded %d users and %d dogs", len(seed.Users), len(seed.Dogs))
	return true, nil
}
