// journal_import.go
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
	"fmt"
	"strings"

	"github.com/localnerve/k9-management/internal/models"
	"gorm.io/gorm"
)

// LegacyJournal is a journal saved in browser storage by the old client
type LegacyJournal struct {
	Key         string `json:"key"`
	GeneralInfo struct {
		DogName string `json:"dogName"`
		HLV     string `json:"hlv"`
		Date    string `json:"date"`
	} `json:"generalInfo"`
	TrainingBlocks  []LegacyBlock `json:"trainingBlocks"`
	OperationBlocks []LegacyBlock `json:"operationBlocks"`
	Care            struct {
		Morning   string `json:"morning"`
		Afternoon string `json:"afternoon"`
		Evening   string `json:"evening"`
	} `json:"care"`
	Health struct {
		Status  string `json:"status"`
		Weather string `json:"weather"`
	} `json:"health"`
	HLVComment  string `json:"hlvComment"`
	OtherIssues string `json:"otherIssues"`
}

// LegacyBlock is one free-text activity block
type LegacyBlock struct {
	Content string `json:"content"`
}

// ImportResult reports a bulk legacy import
type ImportResult struct {
	Migrated int      `json:"migrated_count"`
	Total    int      `json:"total_journals"`
	Errors   []string `json:"errors"`
}

const legacyDefaultHealth = "Tốt"

// ImportJournals stores legacy journals one by one. A record that cannot be stored is reported and skipped.
// Imported journals start PENDING and may duplicate journals already recorded for the same dog and date.
func ImportJournals(db *gorm.DB, journals []LegacyJournal) (*ImportResult, error) {
	result := &ImportResult{Total: len(journals), Errors: []string{}}

	for i := range journals {
		legacy := &journals[i]
		key := legacy.Key
		if key == "" {
			key = "unknown"
		}

		journal, err := legacyToJournal(db, legacy)
		if err == nil {
			err = db.Transaction(func(tx *gorm.DB) error {
				return insertJournal(tx, journal)
			})
		}
		if err != nil {
			err = translateError(err)
			if isStoreUnavailable(err) {
				return result, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("failed to migrate journal %s: %v", key, err))
			continue
		}
		result.Migrated++
	}

	return result, nil
}

func legacyToJournal(db *gorm.DB, legacy *LegacyJournal) (*models.TrainingJournal, error) {
	info := legacy.GeneralInfo

	dog, err := GetDogByName(db, info.DogName)
	if err != nil {
		return nil, err
	}

	var trainers []models.User
	if err := db.Select("id").Where("name = ?", info.HLV).Order("id ASC").Limit(1).Find(&trainers).Error; err != nil {
		return nil, err
	}
	if len(trainers) == 0 {
		return nil, notFoundError("trainer named %q", info.HLV)
	}

	date := strings.TrimSpace(info.Date)
	if !validJournalDate(date) {
		return nil, validationError("journal date %q is not a YYYY-MM-DD date", info.Date)
	}

	var care []string
	for _, part := range []struct{ label, text string }{
		{"Sáng", legacy.Care.Morning},
		{"Chiều", legacy.Care.Afternoon},
		{"Tối", legacy.Care.Evening},
	} {
		if part.text != "" {
			care = append(care, part.label+": "+part.text)
		}
	}

	health := legacy.Health.Status
	if health == "" {
		health = legacyDefaultHealth
	}

	return &models.TrainingJournal{
		DogID:               dog.ID,
		TrainerID:           trainers[0].ID,
		JournalDate:         date,
		TrainingActivities:  joinBlocks(legacy.TrainingBlocks),
		CareActivities:      strings.Join(care, "; "),
		OperationActivities: joinBlocks(legacy.OperationBlocks),
		HealthStatus:        health,
		BehaviorNotes:       legacy.HLVComment,
		WeatherConditions:   legacy.Health.Weather,
		Challenges:          legacy.OtherIssues,
	}, nil
}

func joinBlocks(blocks []LegacyBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Content != "" {
			parts = append(parts, block.Content)
		}
	}
	return strings.Join(parts, "; ")
}
