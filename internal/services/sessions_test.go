// sessions_test.go
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

package services_test

import (
	"testing"
	"time"

	"github.com/localnerve/k9-management/internal/models"
	"github.com/localnerve/k9-management/internal/services"
	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
)

func mustCreateSession(t *testing.T, db *gorm.DB, userID uint64, ttl time.Duration) string {
	t.Helper()
	token, err := services.CreateSession(db, userID, "127.0.0.1", "go-test", ttl)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return token
}

func expireSession(t *testing.T, db *gorm.DB, token string) {
	t.Helper()
	err := db.Model(&models.Session{}).
		Where("session_token = ?", token).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("expire session failed: %v", err)
	}
}

func TestNewSessionToken(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		token, err := services.NewSessionToken()
		if err != nil {
			t.Fatal(err)
		}
		if len(token) != 43 {
			t.Errorf("expected 43 character token, got %d", len(token))
		}
		if seen[token] {
			t.Fatalf("duplicate token %s", token)
		}
		seen[token] = true
	}
}

func TestCreateAndValidateSession(t *testing.T) {
	db := setupTestDB(t)
	user := mustCreateUser(t, db, "hlv1", models.RoleTrainer)

	token := mustCreateSession(t, db, user.ID, 0)

	var stored models.Session
	if err := db.Where("session_token = ?", token).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if ttl := stored.ExpiresAt.Sub(stored.CreatedAt); ttl != services.DefaultSessionTTL {
		t.Errorf("expected default ttl, got %v", ttl)
	}
	if stored.IPAddress != "127.0.0.1" || stored.UserAgent != "go-test" {
		t.Errorf("client details not stored: %+v", stored)
	}

	sessionUser, err := services.ValidateSession(db, token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if sessionUser.UserID != user.ID || sessionUser.Username != "hlv1" || sessionUser.Role != models.RoleTrainer {
		t.Errorf("unexpected session user: %+v", sessionUser)
	}
	if !sessionUser.ExpiresAt.Equal(stored.ExpiresAt) {
		t.Errorf("validation must not extend expiry: %v != %v", sessionUser.ExpiresAt, stored.ExpiresAt)
	}

	_, err = services.CreateSession(db, 999, "", "", time.Hour)
	assertErrorIs(t, err, types.ErrNotFound)
}

func TestValidateSessionRejects(t *testing.T) {
	db := setupTestDB(t)
	user := mustCreateUser(t, db, "hlv1", models.RoleTrainer)

	_, err := services.ValidateSession(db, "")
	assertErrorIs(t, err, types.ErrNotFound)

	_, err = services.ValidateSession(db, "not-a-token")
	assertErrorIs(t, err, types.ErrNotFound)

	expired := mustCreateSession(t, db, user.ID, time.Hour)
	expireSession(t, db, expired)
	_, err = services.ValidateSession(db, expired)
	assertErrorIs(t, err, types.ErrNotFound)

	loggedOut := mustCreateSession(t, db, user.ID, time.Hour)
	if ok, err := services.InvalidateSession(db, loggedOut); err != nil || !ok {
		t.Fatalf("InvalidateSession = %v, %v", ok, err)
	}
	_, err = services.ValidateSession(db, loggedOut)
	assertErrorIs(t, err, types.ErrNotFound)

	if ok, _ := services.InvalidateSession(db, loggedOut); ok {
		t.Error("second logout should report no active session")
	}

	active := mustCreateSession(t, db, user.ID, time.Hour)
	inactive := models.UserInactive
	if _, err := services.UpdateUser(db, user.ID, services.UserPatch{Status: &inactive}); err != nil {
		t.Fatal(err)
	}
	_, err = services.ValidateSession(db, active)
	assertErrorIs(t, err, types.ErrNotFound)
}

func TestInvalidateUserSessions(t *testing.T) {
	db := setupTestDB(t)
	user := mustCreateUser(t, db, "hlv1", models.RoleTrainer)
	other := mustCreateUser(t, db, "hlv2", models.RoleTrainer)

	mustCreateSession(t, db, user.ID, time.Hour)
	mustCreateSession(t, db, user.ID, time.Hour)
	kept := mustCreateSession(t, db, other.ID, time.Hour)

	count, err := services.InvalidateUserSessions(db, user.ID)
	if err != nil {
		t.Fatalf("InvalidateUserSessions failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 sessions invalidated, got %d", count)
	}
	if _, err := services.ValidateSession(db, kept); err != nil {
		t.Errorf("other user's session was touched: %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)
	user := mustCreateUser(t, db, "hlv1", models.RoleTrainer)

	expired := mustCreateSession(t, db, user.ID, time.Hour)
	expireSession(t, db, expired)
	loggedOut := mustCreateSession(t, db, user.ID, time.Hour)
	if _, err := services.InvalidateSession(db, loggedOut); err != nil {
		t.Fatal(err)
	}
	live := mustCreateSession(t, db, user.ID, time.Hour)

	removed, err := services.CleanupExpiredSessions(db)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 sessions removed, got %d", removed)
	}

	var remaining int64
	db.Model(&models.Session{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("expected 1 session left, got %d", remaining)
	}
	if _, err := services.ValidateSession(db, live); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

func TestSessionSweeper(t *testing.T) {
	db := setupTestDB(t)
	user := mustCreateUser(t, db, "hlv1", models.RoleTrainer)

	sweeper := services.NewSessionSweeper(db, 10*time.Millisecond)
	if removed := sweeper.Sweep(); removed != 0 {
		t.Errorf("expected nothing to sweep, got %d", removed)
	}

	expired := mustCreateSession(t, db, user.ID, time.Hour)
	expireSession(t, db, expired)

	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		db.Model(&models.Session{}).Count(&count)
		if count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweeper did not remove the expired session")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sweeper.Stop()
	// stopping twice is safe
	sweeper.Stop()
}
