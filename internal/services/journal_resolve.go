// journal_resolve.go
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
	"unicode/utf8"

	"github.com/localnerve/k9-management/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Completeness weights for picking the canonical journal among duplicates
const (
	scoreTraining   = 100
	scoreCare       = 50
	scoreOperation  = 25
	scoreUpdated    = 1
	scoreTextMinLen = 10
)

// ResolvedJournal is the canonical journal for a dog and date.
// Candidates lists every journal id considered; MergedFrom lists the ids whose signatures were copied in.
type ResolvedJournal struct {
	Journal    JournalView `json:"journal"`
	Score      int         `json:"score"`
	Candidates []uint64    `json:"candidates"`
	MergedFrom []uint64    `json:"merged_from"`
}

// CompletenessScore weights the activity sections of a journal so the most filled-in duplicate wins
func CompletenessScore(j *models.TrainingJournal) int {
	score := 0
	if utf8.RuneCountInString(j.TrainingActivities) > scoreTextMinLen {
		score += scoreTraining
	}
	if utf8.RuneCountInString(j.CareActivities) > scoreTextMinLen {
		score += scoreCare
	}
	if utf8.RuneCountInString(j.OperationActivities) > scoreTextMinLen {
		score += scoreOperation
	}
	if j.UpdatedAt != nil {
		score += scoreUpdated
	}
	return score
}

// ResolveJournalByDogAndDate picks the most complete journal among those recorded for the named dog on date,
// then fills in signatures it lacks from its siblings. Nothing is written back.
func ResolveJournalByDogAndDate(db *gorm.DB, dogName, date string) (*ResolvedJournal, error) {
	if !validJournalDate(date) {
		return nil, validationError("date %q is not a YYYY-MM-DD date", date)
	}

	dog, err := GetDogByName(db, dogName)
	if err != nil {
		return nil, err
	}

	query := journalQuery(db).Where("tj.dog_id = ? AND tj.journal_date = ?", dog.ID, date)
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_journals_dog_date"))
	}

	var candidates []JournalView
	if err := query.Order("tj.id ASC").Scan(&candidates).Error; err != nil {
		return nil, translateError(err)
	}
	if len(candidates) == 0 {
		return nil, notFoundError("no journal for dog %q on %s", dogName, date)
	}

	return resolveCandidates(candidates), nil
}

// resolveCandidates expects candidates ordered by id ascending; the first of equal scores wins
func resolveCandidates(candidates []JournalView) *ResolvedJournal {
	best, bestScore := 0, CompletenessScore(&candidates[0].TrainingJournal)
	ids := make([]uint64, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
		if score := CompletenessScore(&candidates[i].TrainingJournal); score > bestScore {
			best, bestScore = i, score
		}
	}

	resolved := &ResolvedJournal{
		Journal:    candidates[best],
		Score:      bestScore,
		Candidates: ids,
		MergedFrom: []uint64{},
	}

	canonical := &resolved.Journal.TrainingJournal
	for i := range candidates {
		if i == best {
			continue
		}
		if mergeSignatures(canonical, &candidates[i].TrainingJournal) {
			resolved.MergedFrom = append(resolved.MergedFrom, candidates[i].ID)
		}
	}

	return resolved
}

// mergeSignatures copies each signature, with its timestamp, that sibling has and canonical lacks
func mergeSignatures(canonical, sibling *models.TrainingJournal) bool {
	merged := false
	if !canonical.HLVSignature.Present() && sibling.HLVSignature.Present() {
		canonical.HLVSignature = sibling.HLVSignature
		canonical.HLVSignatureTimestamp = sibling.HLVSignatureTimestamp
		merged = true
	}
	if !canonical.LeaderSignature.Present() && sibling.LeaderSignature.Present() {
		canonical.LeaderSignature = sibling.LeaderSignature
		canonical.LeaderSignatureTimestamp = sibling.LeaderSignatureTimestamp
		merged = true
	}
	if !canonical.SubstituteSignature.Present() && sibling.SubstituteSignature.Present() {
		canonical.SubstituteSignature = sibling.SubstituteSignature
		canonical.SubstituteSignatureTimestamp = sibling.SubstituteSignatureTimestamp
		merged = true
	}
	return merged
}
