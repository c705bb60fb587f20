// stats.go
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
	"gorm.io/gorm"
)

// recentJournalDays is the window counted by RecentJournals
const recentJournalDays = 7

// DashboardStatsResult is a read-only snapshot of entity counts
type DashboardStatsResult struct {
	TotalUsers            int64            `json:"total_users"`
	UserRoles             map[string]int64 `json:"user_roles"`
	TotalDogs             int64            `json:"total_dogs"`
	DogStatus             map[string]int64 `json:"dog_status"`
	TotalJournals         int64            `json:"total_journals"`
	JournalApprovalStatus map[string]int64 `json:"journal_approval_status"`
	RecentJournals        int64            `json:"recent_journals"`
}

type groupCount struct {
	Label string
	Count int64
}

func countBy(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	err := query.Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

// DashboardStats counts active users, dogs and journals, grouped by role and status.
// The counts are read independently and are not a single consistent snapshot.
func DashboardStats(db *gorm.DB) (*DashboardStatsResult, error) {
	stats := &DashboardStatsResult{}
	var err error

	activeUsers := func() *gorm.DB {
		return db.Model(&models.User{}).Where("status = ?", models.UserActive)
	}
	if err = activeUsers().Count(&stats.TotalUsers).Error; err != nil {
		return nil, translateError(err)
	}
	if stats.UserRoles, err = countBy(activeUsers(), "role"); err != nil {
		return nil, translateError(err)
	}

	if err = db.Model(&models.Dog{}).Count(&stats.TotalDogs).Error; err != nil {
		return nil, translateError(err)
	}
	if stats.DogStatus, err = countBy(db.Model(&models.Dog{}), "status"); err != nil {
		return nil, translateError(err)
	}

	if err = db.Model(&models.TrainingJournal{}).Count(&stats.TotalJournals).Error; err != nil {
		return nil, translateError(err)
	}
	if stats.JournalApprovalStatus, err = countBy(db.Model(&models.TrainingJournal{}), "approval_status"); err != nil {
		return nil, translateError(err)
	}

	since := time.Now().UTC().AddDate(0, 0, -recentJournalDays).Format(models.JournalDateLayout)
	if err = db.Model(&models.TrainingJournal{}).Where("journal_date >= ?", since).Count(&stats.RecentJournals).Error; err != nil {
		return nil, translateError(err)
	}

	return stats, nil
}
