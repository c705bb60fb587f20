// enums.go
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

// Role is a user's administrative role
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleTrainer Role = "TRAINER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTrainer:
		return true
	}
	return false
}

// UserStatus gates whether a user may hold a valid session
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// DogStatus is the service status of a dog
type DogStatus string

const (
	DogActive   DogStatus = "ACTIVE"
	DogTraining DogStatus = "TRAINING"
	DogInactive DogStatus = "INACTIVE"
	DogRetired  DogStatus = "RETIRED"
)

func (s DogStatus) Valid() bool {
	switch s {
	case DogActive, DogTraining, DogInactive, DogRetired:
		return true
	}
	return false
}

// HealthStatus is a dog's recorded health
type HealthStatus string

const (
	HealthGood     HealthStatus = "GOOD"
	HealthFair     HealthStatus = "FAIR"
	HealthPoor     HealthStatus = "POOR"
	HealthCritical HealthStatus = "CRITICAL"
)

func (s HealthStatus) Valid() bool {
	switch s {
	case HealthGood, HealthFair, HealthPoor, HealthCritical:
		return true
	}
	return false
}

// AssignmentType is the kind of responsibility a user holds for a dog
type AssignmentType string

const (
	AssignmentTrainer   AssignmentType = "TRAINER"
	AssignmentManager   AssignmentType = "MANAGER"
	AssignmentCaretaker AssignmentType = "CARETAKER"
)

func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentTrainer, AssignmentManager, AssignmentCaretaker:
		return true
	}
	return false
}

// AssignmentStatus is flipped instead of deleting assignment rows
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentInactive AssignmentStatus = "INACTIVE"
)

// ApprovalStatus is a journal's review state
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}
