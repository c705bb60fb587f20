// users.go
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
	"errors"
	"strings"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

// UserInput is the body for creating a user
type UserInput struct {
	Name         string                 `json:"name"`
	Username     string                 `json:"username"`
	Password     string                 `json:"password"`
	Role         models.Role            `json:"role"`
	Status       models.UserStatus      `json:"status"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Department   string                 `json:"department"`
	Signature    string                 `json:"signature"`
	AssignedDogs types.FlexList[string] `json:"assignedDogs"`
}

// UserPatch is a partial user update; nil fields are left untouched.
// A non-nil AssignedDogs replaces the user's trainer assignments, an empty list clears them.
type UserPatch struct {
	Name         *string                 `json:"name"`
	Username     *string                 `json:"username"`
	Password     *string                 `json:"password"`
	Role         *models.Role            `json:"role"`
	Status       *models.UserStatus      `json:"status"`
	Email        *string                 `json:"email"`
	Phone        *string                 `json:"phone"`
	Department   *string                 `json:"department"`
	Signature    *string                 `json:"signature"`
	AssignedDogs *types.FlexList[string] `json:"assignedDogs" patch:"-"`
}

// UserResult is a user together with the names of the dogs actively assigned to them
type UserResult struct {
	models.User
	AssignedDogs []string `json:"assignedDogs"`
}

func (in *UserInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)

	if in.Name == "" {
		return validationError("name is required")
	}
	if in.Username == "" {
		return validationError("username is required")
	}
	if in.Password == "" {
		return validationError("password is required")
	}
	if !in.Role.Valid() {
		return validationError("invalid role %q", in.Role)
	}
	if in.Status == "" {
		in.Status = models.UserActive
	}
	if !in.Status.Valid() {
		return validationError("invalid status %q", in.Status)
	}
	return nil
}

func (p *UserPatch) validate() error {
	if p.Name != nil {
		if *p.Name = strings.TrimSpace(*p.Name); *p.Name == "" {
			return validationError("name cannot be empty")
		}
	}
	if p.Username != nil {
		if *p.Username = strings.TrimSpace(*p.Username); *p.Username == "" {
			return validationError("username cannot be empty")
		}
	}
	if p.Password != nil && *p.Password == "" {
		return validationError("password cannot be empty")
	}
	if p.Role != nil && !p.Role.Valid() {
		return validationError("invalid role %q", *p.Role)
	}
	if p.Status != nil && !p.Status.Valid() {
		return validationError("invalid status %q", *p.Status)
	}
	return nil
}

// CreateUser inserts a user and, in the same transaction, its trainer assignments.
// The password is stored as given; callers hash it first when a hasher is configured.
func CreateUser(db *gorm.DB, in UserInput) (*UserResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user := models.User{
		Name:       in.Name,
		Username:   in.Username,
		Password:   in.Password,
		Role:       in.Role,
		Status:     in.Status,
		Email:      in.Email,
		Phone:      in.Phone,
		Department: in.Department,
		Signature:  in.Signature,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if names := types.CompactNames(in.AssignedDogs.Slice()); len(names) > 0 {
			if _, err := syncAssignmentsTx(tx, user.ID, names); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, conflictOr(err, "username %q already exists", in.Username)
	}

	return GetUserWithDogs(db, user.ID)
}

// GetUser returns the user or a wrapped types.ErrNotFound
func GetUser(db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := quiet(db).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByUsername looks a user up by login name
func GetUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := quiet(db).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserWithDogs returns the user and its assigned dog names
func GetUserWithDogs(db *gorm.DB, id uint64) (*UserResult, error) {
	user, err := GetUser(db, id)
	if err != nil {
		return nil, err
	}
	names, err := AssignedDogNames(db, id)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: *user, AssignedDogs: names}, nil
}

// ListUsers returns every user, newest first, with assigned dog names
func ListUsers(db *gorm.DB) ([]UserResult, error) {
	var users []models.User
	if err := db.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, translateError(err)
	}

	var rows []struct {
		UserID uint64
		Name   string
	}
	err := db.Table("user_dog_assignments a").
		Select("DISTINCT a.user_id, d.name").
		Joins("JOIN dogs d ON d.id = a.dog_id").
		Where("a.status = ?", models.AssignmentActive).
		Order("d.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	byUser := make(map[uint64][]string)
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row.Name)
	}

	results := make([]UserResult, 0, len(users))
	for _, user := range users {
		names := byUser[user.ID]
		if names == nil {
			names = []string{}
		}
		results = append(results, UserResult{User: user, AssignedDogs: names})
	}
	return results, nil
}

// UpdateUser applies the supplied fields and, if given, re-syncs the assignments in one transaction
func UpdateUser(db *gorm.DB, id uint64, patch UserPatch) (*UserResult, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	cols := patchColumns(patch)

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := quiet(tx).Select("id").First(&user, id).Error; err != nil {
			return err
		}

		if len(cols) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}

		if patch.AssignedDogs != nil {
			if _, err := syncAssignmentsTx(tx, id, types.CompactNames(patch.AssignedDogs.Slice())); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		username := ""
		if patch.Username != nil {
			username = *patch.Username
		}
		return nil, conflictOr(err, "username %q already exists", username)
	}

	return GetUserWithDogs(db, id)
}

// DeleteUser hard deletes the user and deactivates its sessions in one transaction.
// Dogs, assignments and journals that reference it are left as they are.
func DeleteUser(db *gorm.DB, id uint64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError("user %d", id)
		}
		return tx.Model(&models.Session{}).
			Where("user_id = ? AND is_active = ?", id, true).
			Update("is_active", false).Error
	})
	return translateError(err)
}

// AuthenticateUser checks a login attempt. Inactive users cannot log in.
func AuthenticateUser(db *gorm.DB, hasher PasswordHasher, username, password string) (*UserResult, error) {
	user, err := GetUserByUsername(db, strings.TrimSpace(username))
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserActive || !hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	names, err := AssignedDogNames(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: *user, AssignedDogs: names}, nil
}
