// dogs.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"github.com/localnerve/k9-management/internal/utils"
	"gorm.io/gorm"
)

// DogHandler handles dog routes
type DogHandler struct {
	DB    *gorm.DB
	Stats *services.StatsCache
}

// Older dashboard builds send camelCase chipId and trainerId
type dogBody struct {
	services.DogInput
	ChipIDAlias    string           `json:"chipId"`
	TrainerIDAlias types.FlexUint64 `json:"trainerId"`
}

type dogPatchBody struct {
	services.DogPatch
	ChipIDAlias    *string           `json:"chipId"`
	TrainerIDAlias *types.FlexUint64 `json:"trainerId"`
}

// ListDogs handles GET /api/dogs
// @Summary List dogs
// @Tags Dogs
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Router /dogs [get]
func (h *DogHandler) ListDogs(c *fiber.Ctx) error {
	dogs, err := services.ListDogs(h.DB)
	if err != nil {
		return serviceError(c, err, "listDogs")
	}
	return utils.ListResponse(c, dogs, len(dogs))
}

// CreateDog handles POST /api/dogs
// @Summary Create dog
// @Tags Dogs
// @Accept json
// @Produce json
// @Param body body services.DogInput true "Dog"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /dogs [post]
func (h *DogHandler) CreateDog(c *fiber.Ctx) error {
	var body dogBody
	if err := c.BodyParser(&body); err != nil {
		return badInput(c, "Invalid dog body")
	}

	in := body.DogInput
	if in.ChipID == "" {
		in.ChipID = body.ChipIDAlias
	}
	if in.TrainerID == 0 {
		in.TrainerID = body.TrainerIDAlias
	}

	dog, err := services.CreateDog(h.DB, in)
	if err != nil {
		return serviceError(c, err, "createDog")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.DataResponse(c, dog, fiber.StatusCreated)
}

// GetDog handles GET /api/dogs/:id
// @Summary Get dog
// @Tags Dogs
// @Produce json
// @Param id path int true "Dog ID"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dogs/{id} [get]
func (h *DogHandler) GetDog(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	dog, err := services.GetDog(h.DB, id)
	if err != nil {
		return serviceError(c, err, "getDog")
	}
	return utils.DataResponse(c, dog, fiber.StatusOK)
}

// UpdateDog handles PUT /api/dogs/:id
// @Summary Update dog
// @Description Update the supplied fields. A trainer_id of 0 clears the trainer.
// @Tags Dogs
// @Accept json
// @Produce json
// @Param id path int true "Dog ID"
// @Param body body services.DogPatch true "Fields to change"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /dogs/{id} [put]
func (h *DogHandler) UpdateDog(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	var body dogPatchBody
	if err := c.BodyParser(&body); err != nil {
		return badInput(c, "Invalid dog body")
	}

	patch := body.DogPatch
	if patch.ChipID == nil {
		patch.ChipID = body.ChipIDAlias
	}
	if patch.TrainerID == nil {
		patch.TrainerID = body.TrainerIDAlias
	}

	dog, err := services.UpdateDog(h.DB, id, patch)
	if err != nil {
		return serviceError(c, err, "updateDog")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.DataResponse(c, dog, fiber.StatusOK)
}

// DeleteDog handles DELETE /api/dogs/:id
// @Summary Delete dog
// @Tags Dogs
// @Produce json
// @Param id path int true "Dog ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dogs/{id} [delete]
func (h *DogHandler) DeleteDog(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	if err := services.DeleteDog(h.DB, id); err != nil {
		return serviceError(c, err, "deleteDog")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.MessageResponse(c, "Dog deleted successfully", nil)
}
