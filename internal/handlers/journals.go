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

package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"github.com/localnerve/k9-management/internal/utils"
	"gorm.io/gorm"
)

// defaultJournalLimit caps GET /api/journals when no limit is given
const defaultJournalLimit = 100

const publishTimeout = 5 * time.Second

// JournalHandler handles training journal routes
type JournalHandler struct {
	DB     *gorm.DB
	Stats  *services.StatsCache
	Events services.EventPublisher
}

// ListJournals handles GET /api/journals
// @Summary List journals
// @Description List journals, newest date first, with dog, trainer and approver names
// @Tags Journals
// @Produce json
// @Param limit query int false "Maximum rows (default 100)"
// @Param dog_id query int false "Only this dog"
// @Param trainer_id query int false "Only this trainer"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /journals [get]
func (h *JournalHandler) ListJournals(c *fiber.Ctx) error {
	dogID, err := queryID(c, "dog_id")
	if err != nil {
		return badInput(c, err.Error())
	}
	trainerID, err := queryID(c, "trainer_id")
	if err != nil {
		return badInput(c, err.Error())
	}

	filter := services.JournalFilter{
		DogID:     dogID,
		TrainerID: trainerID,
		Status:    models.ApprovalStatus(strings.ToUpper(c.Query("status"))),
		Limit:     c.QueryInt("limit", defaultJournalLimit),
	}
	return h.list(c, filter, "listJournals")
}

// ListByDog handles GET /api/journals/by-dog/:dog_id
// @Summary List a dog's journals
// @Tags Journals
// @Produce json
// @Param dog_id path int true "Dog ID"
// @Success 200 {object} utils.DataResponseStruct
// @Router /journals/by-dog/{dog_id} [get]
func (h *JournalHandler) ListByDog(c *fiber.Ctx) error {
	dogID, err := paramID(c, "dog_id")
	if err != nil {
		return badInput(c, err.Error())
	}
	return h.list(c, services.JournalFilter{DogID: dogID}, "listJournalsByDog")
}

// ListByTrainer handles GET /api/journals/by-trainer/:trainer_id
// @Summary List a trainer's journals
// @Tags Journals
// @Produce json
// @Param trainer_id path int true "Trainer ID"
// @Success 200 {object} utils.DataResponseStruct
// @Router /journals/by-trainer/{trainer_id} [get]
func (h *JournalHandler) ListByTrainer(c *fiber.Ctx) error {
	trainerID, err := paramID(c, "trainer_id")
	if err != nil {
		return badInput(c, err.Error())
	}
	return h.list(c, services.JournalFilter{TrainerID: trainerID}, "listJournalsByTrainer")
}

// ListPending handles GET /api/journals/pending
// @Summary List journals awaiting review
// @Tags Journals
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Router /journals/pending [get]
func (h *JournalHandler) ListPending(c *fiber.Ctx) error {
	return h.list(c, services.JournalFilter{Status: models.ApprovalPending}, "listPendingJournals")
}

// ListApproved handles GET /api/journals/approved
// @Summary List approved journals
// @Tags Journals
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Router /journals/approved [get]
func (h *JournalHandler) ListApproved(c *fiber.Ctx) error {
	return h.list(c, services.JournalFilter{Status: models.ApprovalApproved}, "listApprovedJournals")
}

func (h *JournalHandler) list(c *fiber.Ctx, filter services.JournalFilter, operation string) error {
	journals, err := services.ListJournals(h.DB, filter)
	if err != nil {
		return serviceError(c, err, operation)
	}
	return utils.ListResponse(c, journals, len(journals))
}

// CreateJournal handles POST /api/journals
// @Summary Create journal
// @Description Create a journal. It always starts PENDING. With a session, trainer_id defaults to the session user.
// @Tags Journals
// @Accept json
// @Produce json
// @Param body body services.JournalInput true "Journal"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /journals [post]
func (h *JournalHandler) CreateJournal(c *fiber.Ctx) error {
	var in services.JournalInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "Invalid journal body")
	}
	if in.TrainerID == 0 {
		in.TrainerID = types.FlexUint64(sessionUserID(c))
	}

	journal, err := services.CreateJournal(h.DB, in)
	if err != nil {
		return serviceError(c, err, "createJournal")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.DataResponse(c, journal, fiber.StatusCreated)
}

// GetJournal handles GET /api/journals/:id
// @Summary Get journal
// @Tags Journals
// @Produce json
// @Param id path int true "Journal ID"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /journals/{id} [get]
func (h *JournalHandler) GetJournal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	journal, err := services.GetJournal(h.DB, id)
	if err != nil {
		return serviceError(c, err, "getJournal")
	}
	return utils.DataResponse(c, journal, fiber.StatusOK)
}

// UpdateJournal handles PUT /api/journals/:id
// @Summary Update journal
// @Description Update the supplied content and signature fields. Review state is changed through approve.
// @Tags Journals
// @Accept json
// @Produce json
// @Param id path int true "Journal ID"
// @Param body body services.JournalPatch true "Fields to change"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /journals/{id} [put]
func (h *JournalHandler) UpdateJournal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	var patch services.JournalPatch
	if err := c.BodyParser(&patch); err != nil {
		return badInput(c, "Invalid journal body")
	}

	journal, err := services.UpdateJournal(h.DB, id, patch)
	if err != nil {
		return serviceError(c, err, "updateJournal")
	}
	return utils.DataResponse(c, journal, fiber.StatusOK)
}

// ApproveJournal handles POST /api/journals/:id/approve
// @Summary Approve or reject a journal
// @Description Record a review decision. approved defaults to true; approver_id defaults to the session user.
// @Tags Journals
// @Accept json
// @Produce json
// @Param id path int true "Journal ID"
// @Param body body object true "approver_id, approved, rejection_reason"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /journals/{id}/approve [post]
func (h *JournalHandler) ApproveJournal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	var body struct {
		ApproverID      types.FlexUint64 `json:"approver_id"`
		Approved        *bool            `json:"approved"`
		RejectionReason string           `json:"rejection_reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badInput(c, "Invalid approval body")
	}

	approverID := body.ApproverID.Uint64()
	if approverID == 0 {
		approverID = sessionUserID(c)
	}
	approved := body.Approved == nil || *body.Approved

	journal, err := services.ApproveJournal(h.DB, id, approverID, approved, body.RejectionReason)
	if err != nil {
		return serviceError(c, err, "approveJournal")
	}
	h.Stats.Invalidate(c.UserContext())
	h.publishReviewed(journal)

	return utils.DataResponse(c, journal, fiber.StatusOK)
}

// publishReviewed sends the review event without holding up the response
func (h *JournalHandler) publishReviewed(journal *services.JournalView) {
	if h.Events == nil {
		return
	}
	event := services.NewJournalReviewedEvent(journal)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.Events.PublishJournalReviewed(ctx, event); err != nil {
			log.Printf("journal %d review event not published: %v", event.JournalID, err)
		}
	}()
}

// DeleteJournal handles DELETE /api/journals/:id
// @Summary Delete journal
// @Tags Journals
// @Produce json
// @Param id path int true "Journal ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /journals/{id} [delete]
func (h *JournalHandler) DeleteJournal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	if err := services.DeleteJournal(h.DB, id); err != nil {
		return serviceError(c, err, "deleteJournal")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.MessageResponse(c, "Journal deleted successfully", nil)
}

// ResolveJournal handles GET /api/journals/resolve?dog_name=&date=
// @Summary Resolve duplicate journals
// @Description Pick the most complete journal for a dog and date and fill in missing signatures from its duplicates. Nothing is written.
// @Tags Journals
// @Produce json
// @Param dog_name query string true "Exact dog name"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /journals/resolve [get]
func (h *JournalHandler) ResolveJournal(c *fiber.Ctx) error {
	dogName := c.Query("dog_name")
	date := c.Query("date")
	if dogName == "" || date == "" {
		return badInput(c, "dog_name and date are required")
	}

	resolved, err := services.ResolveJournalByDogAndDate(h.DB, dogName, date)
	if err != nil {
		return serviceError(c, err, "resolveJournal")
	}
	return utils.DataResponse(c, resolved, fiber.StatusOK)
}

// ImportJournals handles POST /api/journals/migrate-from-localstorage
// @Summary Import journals saved by the old client
// @Tags Journals
// @Accept json
// @Produce json
// @Param body body object true "journals: legacy journal records"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /journals/migrate-from-localstorage [post]
func (h *JournalHandler) ImportJournals(c *fiber.Ctx) error {
	var body struct {
		Journals []services.LegacyJournal `json:"journals"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badInput(c, "Invalid import body")
	}

	result, err := services.ImportJournals(h.DB, body.Journals)
	if err != nil {
		return serviceError(c, err, "importJournals")
	}
	if result.Migrated > 0 {
		h.Stats.Invalidate(c.UserContext())
	}

	return utils.DataResponse(c, result, fiber.StatusOK)
}
