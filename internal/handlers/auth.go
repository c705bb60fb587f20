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

package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/internal/middleware"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"github.com/localnerve/k9-management/internal/utils"
	"gorm.io/gorm"
)

// shortSessionTTL applies to logins without remember_me when sessions are required
const shortSessionTTL = 12 * time.Hour

// AuthHandler handles login, session validation and logout
type AuthHandler struct {
	DB         *gorm.DB
	Hasher     services.PasswordHasher
	SessionTTL time.Duration
	// RequireSessions issues a session on every login, not only with remember_me
	RequireSessions bool
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Check credentials. With remember_me a long lived session token is issued.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "username, password, remember_me"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badInput(c, "Invalid login body")
	}
	if body.Username == "" || body.Password == "" {
		return badInput(c, "Missing username or password")
	}

	user, err := services.AuthenticateUser(h.DB, h.Hasher, body.Username, body.Password)
	if err != nil {
		return serviceError(c, err, "login")
	}

	var token *string
	if body.RememberMe || h.RequireSessions {
		ttl := h.SessionTTL
		if !body.RememberMe {
			ttl = shortSessionTTL
		}
		issued, err := services.CreateSession(h.DB, user.ID, c.IP(), c.Get(fiber.HeaderUserAgent), ttl)
		if err != nil {
			return serviceError(c, err, "login")
		}
		token = &issued
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":       true,
		"data":          user,
		"session_token": token,
		"remember_me":   body.RememberMe,
	})
}

func bodyOrRequestToken(c *fiber.Ctx) string {
	var body struct {
		SessionToken string `json:"session_token"`
	}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&body)
	}
	if body.SessionToken != "" {
		return body.SessionToken
	}
	return middleware.SessionToken(c)
}

// ValidateSession handles POST /api/auth/validate-session
// @Summary Validate a session token
// @Description Return the session user and their assigned dog names
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "session_token"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/validate-session [post]
func (h *AuthHandler) ValidateSession(c *fiber.Ctx) error {
	token := bodyOrRequestToken(c)
	if token == "" {
		return badInput(c, "Missing session token")
	}

	user, err := services.ValidateSession(h.DB, token)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return utils.ErrorResponse(c, "Invalid or expired session", fiber.StatusUnauthorized, "auth.session")
		}
		return serviceError(c, err, "validateSession")
	}

	names, err := services.AssignedDogNames(h.DB, user.UserID)
	if err != nil {
		return serviceError(c, err, "validateSession")
	}

	return utils.DataResponse(c, fiber.Map{
		"user":         user,
		"assignedDogs": names,
	}, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Invalidate the session token if one is given. Always succeeds.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object false "session_token"
// @Success 200 {object} utils.MessageResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := bodyOrRequestToken(c); token != "" {
		if _, err := services.InvalidateSession(h.DB, token); err != nil {
			return serviceError(c, err, "logout")
		}
	}
	c.ClearCookie(middleware.SessionCookie)
	return utils.MessageResponse(c, "Logged out successfully", nil)
}
