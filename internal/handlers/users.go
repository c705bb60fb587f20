// users.go
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
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles user routes
type UserHandler struct {
	DB     *gorm.DB
	Hasher services.PasswordHasher
	Stats  *services.StatsCache
}

// ListUsers handles GET /api/users
// @Summary List users
// @Description List every user with the names of their actively assigned dogs
// @Tags Users
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return serviceError(c, err, "listUsers")
	}
	return utils.ListResponse(c, users, len(users))
}

// CreateUser handles POST /api/users
// @Summary Create user
// @Description Create a user and assign the named dogs
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.UserInput true "User"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "Invalid user body")
	}

	if in.Password != "" {
		hashed, err := h.Hasher.Hash(in.Password)
		if err != nil {
			return serviceError(c, err, "createUser")
		}
		in.Password = hashed
	}

	user, err := services.CreateUser(h.DB, in)
	if err != nil {
		return serviceError(c, err, "createUser")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.DataResponse(c, user, fiber.StatusCreated)
}

// GetUser handles GET /api/users/:id
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	user, err := services.GetUserWithDogs(h.DB, id)
	if err != nil {
		return serviceError(c, err, "getUser")
	}
	return utils.DataResponse(c, user, fiber.StatusOK)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update user
// @Description Update the supplied fields. Supplying assignedDogs replaces the active assignments.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UserPatch true "Fields to change"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	var patch services.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badInput(c, "Invalid user body")
	}

	if patch.Password != nil && *patch.Password != "" {
		hashed, err := h.Hasher.Hash(*patch.Password)
		if err != nil {
			return serviceError(c, err, "updateUser")
		}
		patch.Password = &hashed
	}

	user, err := services.UpdateUser(h.DB, id, patch)
	if err != nil {
		return serviceError(c, err, "updateUser")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.DataResponse(c, user, fiber.StatusOK)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	if err := services.DeleteUser(h.DB, id); err != nil {
		return serviceError(c, err, "deleteUser")
	}
	h.Stats.Invalidate(c.UserContext())

	return utils.MessageResponse(c, "User deleted successfully", nil)
}

// ListUserDogs handles GET /api/users/:id/dogs
// @Summary List a user's dogs
// @Tags Assignments
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.DataResponseStruct
// @Router /users/{id}/dogs [get]
func (h *UserHandler) ListUserDogs(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}

	dogs, err := services.ListAssignedDogs(h.DB, id)
	if err != nil {
		return serviceError(c, err, "listUserDogs")
	}
	return utils.ListResponse(c, dogs, len(dogs))
}

// AssignDog handles POST /api/users/:id/dogs/:dog_id
// @Summary Assign a dog to a user
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param dog_id path int true "Dog ID"
// @Param body body object false "assignment_type: TRAINER, MANAGER or CARETAKER"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/dogs/{dog_id} [post]
func (h *UserHandler) AssignDog(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}
	dogID, err := paramID(c, "dog_id")
	if err != nil {
		return badInput(c, err.Error())
	}

	var body struct {
		AssignmentType string `json:"assignment_type"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badInput(c, "Invalid assignment body")
		}
	}

	if err := services.AssignDog(h.DB, userID, dogID, models.AssignmentType(body.AssignmentType)); err != nil {
		return serviceError(c, err, "assignDog")
	}
	return utils.MessageResponse(c, "Dog assigned successfully", nil)
}

// UnassignDog handles DELETE /api/users/:id/dogs/:dog_id
// @Summary Unassign a dog from a user
// @Tags Assignments
// @Produce json
// @Param id path int true "User ID"
// @Param dog_id path int true "Dog ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/dogs/{dog_id} [delete]
func (h *UserHandler) UnassignDog(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return badInput(c, err.Error())
	}
	dogID, err := paramID(c, "dog_id")
	if err != nil {
		return badInput(c, err.Error())
	}

	if err := services.UnassignDog(h.DB, userID, dogID); err != nil {
		return serviceError(c, err, "unassignDog")
	}
	return utils.MessageResponse(c, "Dog unassigned successfully", nil)
}
