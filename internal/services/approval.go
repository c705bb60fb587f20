// approval.go
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

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/types"
)

// approvalTransitions lists the review outcomes allowed from each state.
// Review decisions are never final: a journal can be re-approved or re-rejected.
var approvalTransitions = map[models.ApprovalStatus][]models.ApprovalStatus{
	models.ApprovalPending:  {models.ApprovalApproved, models.ApprovalRejected},
	models.ApprovalApproved: {models.ApprovalApproved, models.ApprovalRejected},
	models.ApprovalRejected: {models.ApprovalApproved, models.ApprovalRejected},
}

// CanTransition reports whether a journal in state from may be reviewed into state to
func CanTransition(from, to models.ApprovalStatus) bool {
	for _, allowed := range approvalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func reviewOutcome(current models.ApprovalStatus, approved bool) (models.ApprovalStatus, error) {
	next := models.ApprovalRejected
	if approved {
		next = models.ApprovalApproved
	}
	if !CanTransition(current, next) {
		return "", fmt.Errorf("%w: cannot move journal from %s to %s", types.ErrValidation, current, next)
	}
	return next, nil
}
