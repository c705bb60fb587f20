// journals.go
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
	"time"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

// JournalInput is the body for creating a journal. Approval fields are not accepted: new journals are always PENDING.
type JournalInput struct {
	DogID               types.FlexUint64 `json:"dog_id"`
	TrainerID           types.FlexUint64 `json:"trainer_id"`
	JournalDate         string           `json:"journal_date"`
	TrainingActivities  string           `json:"training_activities"`
	CareActivities      string           `json:"care_activities"`
	OperationActivities string           `json:"operation_activities"`
	HealthStatus        string           `json:"health_status"`
	BehaviorNotes       string           `json:"behavior_notes"`
	WeatherConditions   string           `json:"weather_conditions"`
	TrainingDuration    *int             `json:"training_duration"`
	SuccessRate         *int             `json:"success_rate"`
	Challenges          string           `json:"challenges"`
	NextGoals           string           `json:"next_goals"`

	HLVSignature                 models.SignatureJSON `json:"hlv_signature"`
	HLVSignatureTimestamp        *time.Time           `json:"hlv_signature_timestamp"`
	LeaderSignature              models.SignatureJSON `json:"leader_signature"`
	LeaderSignatureTimestamp     *time.Time           `json:"leader_signature_timestamp"`
	SubstituteSignature          models.SignatureJSON `json:"substitute_signature"`
	SubstituteSignatureTimestamp *time.Time           `json:"substitute_signature_timestamp"`
}

// JournalPatch is a partial journal update. Review state changes go through ApproveJournal.
type JournalPatch struct {
	DogID               *types.FlexUint64 `json:"dog_id"`
	TrainerID           *types.FlexUint64 `json:"trainer_id"`
	JournalDate         *string           `json:"journal_date"`
	TrainingActivities  *string           `json:"training_activities"`
	CareActivities      *string           `json:"care_activities"`
	OperationActivities *string           `json:"operation_activities"`
	HealthStatus        *string           `json:"health_status"`
	BehaviorNotes       *string           `json:"behavior_notes"`
	WeatherConditions   *string           `json:"weather_conditions"`
	TrainingDuration    *int              `json:"training_duration"`
	SuccessRate         *int              `json:"success_rate"`
	Challenges          *string           `json:"challenges"`
	NextGoals           *string           `json:"next_goals"`

	HLVSignature                 *models.SignatureJSON `json:"hlv_signature"`
	HLVSignatureTimestamp        *time.Time            `json:"hlv_signature_timestamp"`
	LeaderSignature              *models.SignatureJSON `json:"leader_signature"`
	LeaderSignatureTimestamp     *time.Time            `json:"leader_signature_timestamp"`
	SubstituteSignature          *models.SignatureJSON `json:"substitute_signature"`
	SubstituteSignatureTimestamp *time.Time            `json:"substitute_signature_timestamp"`
}

// JournalView is a journal with the names of the dog, trainer and approver it references.
// Dangling references read as empty names.
type JournalView struct {
	models.TrainingJournal
	DogName      string `json:"dog_name"`
	ChipID       string `json:"chip_id"`
	TrainerName  string `json:"trainer_name"`
	ApproverName string `json:"approver_name,omitempty"`
}

// JournalFilter narrows ListJournals. Zero values match everything.
type JournalFilter struct {
	DogID     uint64
	TrainerID uint64
	Status    models.ApprovalStatus
	Limit     int
}

func validJournalDate(date string) bool {
	_, err := time.Parse(models.JournalDateLayout, date)
	return err == nil
}

func validateMetrics(duration, successRate *int) error {
	if duration != nil && *duration < 0 {
		return validationError("training_duration cannot be negative")
	}
	if successRate != nil && (*successRate < 0 || *successRate > 100) {
		return validationError("success_rate must be between 0 and 100")
	}
	return nil
}

func (in *JournalInput) validate() error {
	in.JournalDate = strings.TrimSpace(in.JournalDate)

	if in.DogID == 0 {
		return validationError("dog_id is required")
	}
	if in.TrainerID == 0 {
		return validationError("trainer_id is required")
	}
	if in.JournalDate == "" {
		return validationError("journal_date is required")
	}
	if !validJournalDate(in.JournalDate) {
		return validationError("journal_date %q is not a YYYY-MM-DD date", in.JournalDate)
	}
	return validateMetrics(in.TrainingDuration, in.SuccessRate)
}

func (p *JournalPatch) validate() error {
	if p.DogID != nil && *p.DogID == 0 {
		return validationError("dog_id cannot be cleared")
	}
	if p.TrainerID != nil && *p.TrainerID == 0 {
		return validationError("trainer_id cannot be cleared")
	}
	if p.JournalDate != nil && !validJournalDate(*p.JournalDate) {
		return validationError("journal_date %q is not a YYYY-MM-DD date", *p.JournalDate)
	}
	return validateMetrics(p.TrainingDuration, p.SuccessRate)
}

func (in *JournalInput) journal() models.TrainingJournal {
	return models.TrainingJournal{
		DogID:                        in.DogID.Uint64(),
		TrainerID:                    in.TrainerID.Uint64(),
		JournalDate:                  in.JournalDate,
		TrainingActivities:           in.TrainingActivities,
		CareActivities:               in.CareActivities,
		OperationActivities:          in.OperationActivities,
		HealthStatus:                 in.HealthStatus,
		BehaviorNotes:                in.BehaviorNotes,
		WeatherConditions:            in.WeatherConditions,
		TrainingDuration:             in.TrainingDuration,
		SuccessRate:                  in.SuccessRate,
		Challenges:                   in.Challenges,
		NextGoals:                    in.NextGoals,
		HLVSignature:                 in.HLVSignature,
		HLVSignatureTimestamp:        in.HLVSignatureTimestamp,
		LeaderSignature:              in.LeaderSignature,
		LeaderSignatureTimestamp:     in.LeaderSignatureTimestamp,
		SubstituteSignature:          in.SubstituteSignature,
		SubstituteSignatureTimestamp: in.SubstituteSignatureTimestamp,
	}
}

func journalQuery(db *gorm.DB) *gorm.DB {
	return db.Table("training_journals tj").
		Select("tj.*, COALESCE(d.name, '') AS dog_name, COALESCE(d.chip_id, '') AS chip_id, " +
			"COALESCE(t.name, '') AS trainer_name, COALESCE(a.name, '') AS approver_name").
		Joins("LEFT JOIN dogs d ON d.id = tj.dog_id").
		Joins("LEFT JOIN users t ON t.id = tj.trainer_id").
		Joins("LEFT JOIN users a ON a.id = tj.approved_by")
}

// insertJournal writes a new PENDING journal inside tx
func insertJournal(tx *gorm.DB, journal *models.TrainingJournal) error {
	now := time.Now().UTC()
	journal.ID = 0
	journal.ApprovalStatus = models.ApprovalPending
	journal.ApprovedBy = nil
	journal.ApprovedAt = nil
	journal.RejectionReason = nil
	journal.UpdatedAt = &now
	return tx.Create(journal).Error
}

func requireReferences(tx *gorm.DB, dogID, trainerID uint64) error {
	var count int64
	if err := tx.Model(&models.Dog{}).Where("id = ?", dogID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationError("dog %d does not exist", dogID)
	}
	if err := tx.Model(&models.User{}).Where("id = ?", trainerID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationError("trainer %d does not exist", trainerID)
	}
	return nil
}

// CreateJournal inserts a journal in the PENDING state
func CreateJournal(db *gorm.DB, in JournalInput) (*JournalView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	journal := in.journal()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireReferences(tx, journal.DogID, journal.TrainerID); err != nil {
			return err
		}
		return insertJournal(tx, &journal)
	})
	if err != nil {
		return nil, translateError(err)
	}

	return GetJournal(db, journal.ID)
}

// GetJournal returns one journal with its reference names
func GetJournal(db *gorm.DB, id uint64) (*JournalView, error) {
	var views []JournalView
	if err := journalQuery(db).Where("tj.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, translateError(err)
	}
	if len(views) == 0 {
		return nil, notFoundError("journal %d", id)
	}
	return &views[0], nil
}

// ListJournals returns journals newest date first
func ListJournals(db *gorm.DB, filter JournalFilter) ([]JournalView, error) {
	query := journalQuery(db)
	if filter.DogID != 0 {
		query = query.Where("tj.dog_id = ?", filter.DogID)
	}
	if filter.TrainerID != 0 {
		query = query.Where("tj.trainer_id = ?", filter.TrainerID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, validationError("invalid approval_status %q", filter.Status)
		}
		query = query.Where("tj.approval_status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	views := []JournalView{}
	if err := query.Order("tj.journal_date DESC, tj.created_at DESC, tj.id DESC").Scan(&views).Error; err != nil {
		return nil, translateError(err)
	}
	return views, nil
}

// UpdateJournal applies the supplied fields and refreshes updated_at
func UpdateJournal(db *gorm.DB, id uint64, patch JournalPatch) (*JournalView, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	cols := patchColumns(patch)
	for _, key := range []string{"dog_id", "trainer_id"} {
		if v, ok := cols[key].(types.FlexUint64); ok {
			cols[key] = v.Uint64()
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var journal models.TrainingJournal
		if err := quiet(tx).Select("id", "dog_id", "trainer_id").First(&journal, id).Error; err != nil {
			return err
		}
		if len(cols) == 0 {
			return nil
		}

		dogID, trainerID := journal.DogID, journal.TrainerID
		if v, ok := cols["dog_id"].(uint64); ok {
			dogID = v
		}
		if v, ok := cols["trainer_id"].(uint64); ok {
			trainerID = v
		}
		if dogID != journal.DogID || trainerID != journal.TrainerID {
			if err := requireReferences(tx, dogID, trainerID); err != nil {
				return err
			}
		}

		cols["updated_at"] = time.Now().UTC()
		return tx.Model(&models.TrainingJournal{}).Where("id = ?", id).Updates(cols).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	return GetJournal(db, id)
}

// ApproveJournal records a review decision. Approval clears any rejection reason.
func ApproveJournal(db *gorm.DB, id, approverID uint64, approved bool, reason string) (*JournalView, error) {
	if approverID == 0 {
		return nil, validationError("approver is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var journal models.TrainingJournal
		if err := quiet(tx).Select("id", "approval_status").First(&journal, id).Error; err != nil {
			return err
		}

		next, err := reviewOutcome(journal.ApprovalStatus, approved)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var rejection *string
		if !approved {
			if reason = strings.TrimSpace(reason); reason != "" {
				rejection = &reason
			}
		}

		return tx.Model(&models.TrainingJournal{}).Where("id = ?", id).Updates(map[string]any{
			"approval_status":  next,
			"approved_by":      approverID,
			"approved_at":      now,
			"rejection_reason": rejection,
			"updated_at":       now,
		}).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	return GetJournal(db, id)
}

// DeleteJournal hard deletes a journal
func DeleteJournal(db *gorm.DB, id uint64) error {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.TrainingJournal{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return translateError(err)
	}
	if affected == 0 {
		return notFoundError("journal %d", id)
	}
	return nil
}
