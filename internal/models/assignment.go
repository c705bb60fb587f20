// assignment.go
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

// Assignment links a user to a dog with a responsibility type.
// At most one row exists per (user, dog, type); history is kept by flipping Status.
type Assignment struct {
	ID             uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64           `gorm:"not null;uniqueIndex:idx_assignments_triple,priority:1;index:idx_assignments_user_dog,priority:1" json:"user_id"`
	DogID          uint64           `gorm:"not null;uniqueIndex:idx_assignments_triple,priority:2;index:idx_assignments_user_dog,priority:2" json:"dog_id"`
	AssignmentType AssignmentType   `gorm:"size:16;not null;uniqueIndex:idx_assignments_triple,priority:3" json:"assignment_type"`
	Status         AssignmentStatus `gorm:"size:16;not null" json:"status"`
	AssignedAt     time.Time        `gorm:"not null" json:"assigned_at"`

	Dog *Dog `gorm:"foreignKey:DogID" json:"dog,omitempty"`
}

// TableName overrides the table name for Assignment
func (Assignment) TableName() string {
	return "user_dog_assignments"
}
