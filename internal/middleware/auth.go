// auth.go
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

package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

// SessionHeader and SessionCookie carry the session token issued at login
const (
	SessionHeader = "X-Session-Token"
	SessionCookie = "session_token"

	userLocalsKey = "sessionUser"
)

// SessionToken finds the session token on a request: header, then cookie, then bearer authorization
func SessionToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(SessionHeader)); token != "" {
		return token
	}
	if token := strings.TrimSpace(c.Cookies(SessionCookie)); token != "" {
		return token
	}
	if auth := c.Get(fiber.HeaderAuthorization); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// CurrentUser returns the user stored by RequireSession, or nil
func CurrentUser(c *fiber.Ctx) *services.SessionUser {
	user, _ := c.Locals(userLocalsKey).(*services.SessionUser)
	return user
}

// RequireSession validates the session token and stores the session user in context
func RequireSession(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Session token not found",
				Type:    "auth.session",
			}
		}

		user, err := services.ValidateSession(db, token)
		if err != nil {
			if errors.Is(err, types.ErrStoreUnavailable) {
				return err
			}
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid or expired session",
				Type:    "auth.session",
			}
		}

		c.Locals(userLocalsKey, user)

		return c.Next()
	}
}

// RequireRole refuses session users whose role is not listed. It must run after RequireSession.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Session required",
				Type:    "auth.session",
			}
		}
		if !slices.Contains(roles, user.Role) {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Role " + string(user.Role) + " is not allowed",
				Type:    "auth.role",
			}
		}
		return c.Next()
	}
}

// Passthrough stands in for auth middleware when API auth is disabled
func Passthrough() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
