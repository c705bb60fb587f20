// journal.go
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

// JournalDateLayout is the calendar date format of TrainingJournal.JournalDate
const JournalDateLayout = "2006-01-02"

// TrainingJournal is one daily training record for a dog.
// Several journals may exist for the same dog and date.
type TrainingJournal struct {
	ID                  uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	DogID               uint64         `gorm:"not null;index:idx_journals_dog_date,priority:1" json:"dog_id"`
	TrainerID           uint64         `gorm:"not null;index:idx_journals_trainer_id" json:"trainer_id"`
	JournalDate         string         `gorm:"size:10;not null;index:idx_journals_dog_date,priority:2;index:idx_journals_date" json:"journal_date"`
	TrainingActivities  string         `gorm:"type:text" json:"training_activities"`
	CareActivities      string         `gorm:"type:text" json:"care_activities"`
	OperationActivities string         `gorm:"type:text" json:"operation_activities"`
	HealthStatus        string         `gorm:"size:64" json:"health_status"`
	BehaviorNotes       string         `gorm:"type:text" json:"behavior_notes"`
	WeatherConditions   string         `gorm:"size:255" json:"weather_conditions"`
	TrainingDuration    *int           `json:"training_duration"`
	SuccessRate         *int           `json:"success_rate"`
	Challenges          string         `gorm:"type:text" json:"challenges"`
	NextGoals           string         `gorm:"type:text" json:"next_goals"`
	ApprovalStatus      ApprovalStatus `gorm:"size:16;not null;index:idx_journals_approval_status" json:"approval_status"`
	ApprovedBy          *uint64        `json:"approved_by"`
	ApprovedAt          *time.Time     `json:"approved_at"`
	RejectionReason     *string        `gorm:"type:text" json:"rejection_reason"`

	HLVSignature                 SignatureJSON `json:"hlv_signature"`
	HLVSignatureTimestamp        *time.Time    `json:"hlv_signature_timestamp"`
	LeaderSignature              SignatureJSON `json:"leader_signature"`
	LeaderSignatureTimestamp     *time.Time    `json:"leader_signature_timestamp"`
	SubstituteSignature          SignatureJSON `json:"substitute_signature"`
	SubstituteSignatureTimestamp *time.Time    `json:"substitute_signature_timestamp"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName overrides the table name for TrainingJournal
func (TrainingJournal) TableName() string {
	return "training_journals"
}
