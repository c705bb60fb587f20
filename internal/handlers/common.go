// common.go
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
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/middleware"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"github.com/localnerve/k9-management/internal/utils"
)

// serviceError maps a service failure class onto its HTTP status
func serviceError(c *fiber.Ctx, err error, operation string) error {
	errorType := types.ErrorType(err)

	switch {
	case errors.Is(err, types.ErrValidation):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, types.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, types.ErrConflict):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, errorType)
	case errors.Is(err, types.ErrStoreUnavailable):
		log.Printf("%s: store unavailable: %v", operation, err)
		return utils.ErrorResponse(c, "Store temporarily unavailable", fiber.StatusServiceUnavailable, errorType)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.credentials")
	}

	log.Printf("%s failed: %v", operation, err)
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, operation)
}

// badInput reports a request body or parameter that could not be read
func badInput(c *fiber.Ctx, message string) error {
	return utils.ErrorResponse(c, message, fiber.StatusBadRequest, "validation.input")
}

// paramID reads a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryID reads an optional numeric query parameter; absent reads as zero
func queryID(c *fiber.Ctx, name string) (uint64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// sessionUserID returns the id of the logged in user, or zero when the route is not session gated
func sessionUserID(c *fiber.Ctx) uint64 {
	if user := middleware.CurrentUser(c); user != nil {
		return user.UserID
	}
	return 0
}
