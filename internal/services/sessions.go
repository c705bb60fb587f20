// sessions.go
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
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/k9-management/internal/models"
	"gorm.io/gorm"
)

// DefaultSessionTTL applies when CreateSession is given no ttl
const DefaultSessionTTL = 7 * 24 * time.Hour

const sessionTokenBytes = 32

// SessionUser is the user behind a valid session
type SessionUser struct {
	SessionID    uint64            `json:"session_id"`
	UserID       uint64            `json:"id"`
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	Role         models.Role       `json:"role"`
	Status       models.UserStatus `json:"status"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Department   string            `json:"department"`
	ExpiresAt    time.Time         `json:"expires_at"`
	LastAccessed time.Time         `json:"last_accessed"`
}

// NewSessionToken returns 32 random bytes as unpadded URL-safe base64 (43 characters)
func NewSessionToken() (string, error) {
	tokenBytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

// CreateSession opens a session for the user and returns its token
func CreateSession(db *gorm.DB, userID uint64, ipAddress, userAgent string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	session := models.Session{
		UserID:       userID,
		Token:        token,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    now.Add(ttl),
		IsActive:     true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := quiet(tx).Select("id").First(&user, userID).Error; err != nil {
			return notFoundError("user %d", userID)
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return "", translateError(err)
	}

	return token, nil
}

// ValidateSession resolves an active, unexpired session of an ACTIVE user.
// Only last_accessed is refreshed; the expiry does not slide.
func ValidateSession(db *gorm.DB, token string) (*SessionUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, notFoundError("session")
	}

	now := time.Now().UTC()
	var users []SessionUser
	err := db.Table("user_sessions s").
		Select("s.id AS session_id, s.user_id, s.expires_at, s.last_accessed, "+
			"u.name, u.username, u.role, u.status, u.email, u.phone, u.department").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.session_token = ? AND s.is_active = ? AND s.expires_at > ? AND u.status = ?",
			token, true, now, models.UserActive).
		Limit(1).
		Scan(&users).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(users) == 0 {
		return nil, notFoundError("session")
	}

	user := users[0]
	if err := db.Model(&models.Session{}).Where("id = ?", user.SessionID).Update("last_accessed", now).Error; err != nil {
		return nil, translateError(err)
	}
	user.LastAccessed = now

	return &user, nil
}

// InvalidateSession deactivates one session. It reports whether a session was active.
func InvalidateSession(db *gorm.DB, token string) (bool, error) {
	result := db.Model(&models.Session{}).
		Where("session_token = ? AND is_active = ?", token, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// InvalidateUserSessions deactivates every active session of the user and returns how many there were
func InvalidateUserSessions(db *gorm.DB, userID uint64) (int64, error) {
	result := db.Model(&models.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// CleanupExpiredSessions hard deletes expired and inactive sessions and returns the count
func CleanupExpiredSessions(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ? OR is_active = ?", time.Now().UTC(), false).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}
