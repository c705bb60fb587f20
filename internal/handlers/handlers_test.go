// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/k9-management/data"
	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/database"
	"github.com/localnerve/k9-management/internal/handlers"
	"github.com/localnerve/k9-management/internal/middleware"
	"github.com/localnerve/k9-management/internal/services"
	"gorm.io/gorm"
)

// recordingPublisher captures published review events
type recordingPublisher struct {
	events chan services.JournalReviewedEvent
}

func (p *recordingPublisher) PublishJournalReviewed(_ context.Context, event services.JournalReviewedEvent) error {
	p.events <- event
	return nil
}

type testApp struct {
	app       *fiber.App
	db        *gorm.DB
	publisher *recordingPublisher
}

// setupTestApp wires the API the way the server does, on a fresh SQLite file
func setupTestApp(t *testing.T, apiAuth bool) *testApp {
	t.Helper()

	cfg := &config.Config{
		APIAuth:           apiAuth,
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "k9_handlers.db"),
		DBConnectionLimit: 4,
		DBBusyTimeout:     5 * time.Second,
		DBLogLevel:        "silent",
		SessionTTL:        time.Hour,
		PasswordMode:      "plain",
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	publisher := &recordingPublisher{events: make(chan services.JournalReviewedEvent, 4)}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	handlers.RegisterRoutes(api, handlers.Deps{
		Cfg:    cfg,
		DB:     db,
		Hasher: services.PlainPasswords{},
		Stats:  services.NewStatsCache(nil, 0),
		Events: publisher,
		Seed:   data.DefaultSeed,
	})
	app.Use(middleware.NotFound())

	return &testApp{app: app, db: db, publisher: publisher}
}

// do sends a JSON request and decodes the JSON response
func (ta *testApp) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.SessionHeader, token)
	}

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode, result
}

func dataMap(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	data, ok := result["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %v", result)
	}
	return data
}

func idOf(t *testing.T, result map[string]any) uint64 {
	t.Helper()
	return uint64(dataMap(t, result)["id"].(float64))
}

func TestUserRoutes(t *testing.T) {
	ta := setupTestApp(t, false)

	status, result := ta.do(t, "POST", "/api/dogs", map[string]any{"name": "Rex", "chipId": "C1", "breed": "Malinois"}, "")
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201 creating dog, got %d: %v", status, result)
	}
	if dataMap(t, result)["chip_id"] != "C1" {
		t.Errorf("Expected chipId alias to be accepted, got %v", result)
	}

	status, result = ta.do(t, "POST", "/api/users", map[string]any{
		"name": "Trainer One", "username": "hlv1", "password": "secret", "role": "TRAINER",
		"assignedDogs": []string{"Rex", "Ghost"},
	}, "")
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201 creating user, got %d: %v", status, result)
	}
	user := dataMap(t, result)
	if _, leaked := user["password"]; leaked {
		t.Error("Password must not be serialized")
	}
	dogs, _ := user["assignedDogs"].([]any)
	if len(dogs) != 1 || dogs[0] != "Rex" {
		t.Errorf("Expected assignedDogs [Rex], got %v", user["assignedDogs"])
	}
	userID := idOf(t, result)

	status, result = ta.do(t, "POST", "/api/users", map[string]any{
		"name": "Dup", "username": "hlv1", "password": "x", "role": "TRAINER",
	}, "")
	if status != fiber.StatusConflict {
		t.Errorf("Expected 409 for duplicate username, got %d", status)
	}
	if result["success"] != false || result["type"] != "conflict" {
		t.Errorf("Unexpected error envelope: %v", result)
	}

	status, _ = ta.do(t, "POST", "/api/users", map[string]any{"name": "X", "username": "x", "password": "x", "role": "OWNER"}, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for invalid role, got %d", status)
	}

	status, result = ta.do(t, "GET", "/api/users", nil, "")
	if status != fiber.StatusOK || result["total"] != float64(1) {
		t.Errorf("Expected one user listed, got %d: %v", status, result)
	}

	status, result = ta.do(t, "PUT", "/api/users/"+itoa(userID), map[string]any{"phone": "0900", "assignedDogs": []string{}}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 updating user, got %d: %v", status, result)
	}
	updated := dataMap(t, result)
	if updated["phone"] != "0900" || updated["name"] != "Trainer One" {
		t.Errorf("Unexpected partial update: %v", updated)
	}
	if dogs, _ := updated["assignedDogs"].([]any); len(dogs) != 0 {
		t.Errorf("Expected assignments cleared, got %v", updated["assignedDogs"])
	}

	status, _ = ta.do(t, "GET", "/api/users/abc", nil, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", status)
	}

	status, _ = ta.do(t, "DELETE", "/api/users/"+itoa(userID), nil, "")
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 deleting user, got %d", status)
	}
	status, result = ta.do(t, "GET", "/api/users/"+itoa(userID), nil, "")
	if status != fiber.StatusNotFound || result["type"] != "not_found" {
		t.Errorf("Expected 404 after delete, got %d: %v", status, result)
	}
}

func TestAssignmentRoutes(t *testing.T) {
	ta := setupTestApp(t, false)

	_, result := ta.do(t, "POST", "/api/dogs", map[string]any{"name": "Rex", "chip_id": "C1", "breed": "Malinois"}, "")
	dogID := idOf(t, result)
	_, result = ta.do(t, "POST", "/api/users", map[string]any{"name": "A", "username": "hlv1", "password": "x", "role": "TRAINER"}, "")
	userID := idOf(t, result)

	path := "/api/users/" + itoa(userID) + "/dogs/" + itoa(dogID)
	status, _ := ta.do(t, "POST", path, map[string]any{"assignment_type": "CARETAKER"}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 assigning dog, got %d", status)
	}

	status, result = ta.do(t, "GET", "/api/users/"+itoa(userID)+"/dogs", nil, "")
	if status != fiber.StatusOK || result["total"] != float64(1) {
		t.Fatalf("Expected one assigned dog, got %d: %v", status, result)
	}

	status, _ = ta.do(t, "DELETE", path, nil, "")
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 unassigning dog, got %d", status)
	}
	status, _ = ta.do(t, "DELETE", path, nil, "")
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 unassigning twice, got %d", status)
	}

	status, _ = ta.do(t, "POST", path, map[string]any{"assignment_type": "MANAGER"}, "")
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 for a MANAGER assignment, got %d", status)
	}
	status, result = ta.do(t, "POST", path, map[string]any{"assignment_type": "OPERATOR"}, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown assignment type, got %d: %v", status, result)
	}
}

func TestJournalRoutes(t *testing.T) {
	ta := setupTestApp(t, false)

	_, result := ta.do(t, "POST", "/api/dogs", map[string]any{"name": "Rex", "chip_id": "C1", "breed": "Malinois"}, "")
	dogID := idOf(t, result)
	_, result = ta.do(t, "POST", "/api/users", map[string]any{"name": "Trainer", "username": "hlv1", "password": "x", "role": "TRAINER"}, "")
	trainerID := idOf(t, result)
	_, result = ta.do(t, "POST", "/api/users", map[string]any{"name": "Leader", "username": "lead", "password": "x", "role": "MANAGER"}, "")
	managerID := idOf(t, result)

	status, result := ta.do(t, "POST", "/api/journals", map[string]any{
		"dog_id": dogID, "trainer_id": itoa(trainerID), "journal_date": "2025-01-15",
		"training_activities": "Scent detection drills",
		"approval_status":     "APPROVED",
	}, "")
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201 creating journal, got %d: %v", status, result)
	}
	journal := dataMap(t, result)
	if journal["approval_status"] != "PENDING" || journal["dog_name"] != "Rex" {
		t.Errorf("Unexpected new journal: %v", journal)
	}
	journalID := idOf(t, result)

	// a sparser duplicate for the same dog and day carrying a leader signature
	ta.do(t, "POST", "/api/journals", map[string]any{
		"dog_id": dogID, "trainer_id": trainerID, "journal_date": "2025-01-15",
		"leader_signature": map[string]any{"userName": "lead"},
	}, "")

	status, result = ta.do(t, "GET", "/api/journals/resolve?dog_name=Rex&date=2025-01-15", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 resolving, got %d: %v", status, result)
	}
	resolved := dataMap(t, result)
	canonical := resolved["journal"].(map[string]any)
	if uint64(canonical["id"].(float64)) != journalID || canonical["leader_signature"] == nil {
		t.Errorf("Unexpected resolution: %v", resolved)
	}

	status, _ = ta.do(t, "GET", "/api/journals/resolve?dog_name=Rex", nil, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 without date, got %d", status)
	}

	status, result = ta.do(t, "POST", "/api/journals/"+itoa(journalID)+"/approve", map[string]any{
		"approver_id": managerID, "approved": false, "rejection_reason": "Missing weather",
	}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 rejecting, got %d: %v", status, result)
	}
	if dataMap(t, result)["approval_status"] != "REJECTED" {
		t.Errorf("Expected REJECTED, got %v", result)
	}

	select {
	case event := <-ta.publisher.events:
		if event.JournalID != journalID || event.Status != "REJECTED" || event.RejectionReason != "Missing weather" {
			t.Errorf("Unexpected review event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected a review event to be published")
	}

	status, _ = ta.do(t, "POST", "/api/journals/"+itoa(journalID)+"/approve", map[string]any{"approved": true}, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 approving without approver or session, got %d", status)
	}

	status, result = ta.do(t, "GET", "/api/journals/pending", nil, "")
	if status != fiber.StatusOK || result["total"] != float64(1) {
		t.Errorf("Expected one pending journal, got %d: %v", status, result)
	}
	status, result = ta.do(t, "GET", "/api/journals/by-dog/"+itoa(dogID), nil, "")
	if status != fiber.StatusOK || result["total"] != float64(2) {
		t.Errorf("Expected two journals for the dog, got %d: %v", status, result)
	}
	status, result = ta.do(t, "GET", "/api/journals?status=rejected&limit=5", nil, "")
	if status != fiber.StatusOK || result["total"] != float64(1) {
		t.Errorf("Expected one rejected journal, got %d: %v", status, result)
	}

	status, _ = ta.do(t, "DELETE", "/api/journals/"+itoa(journalID), nil, "")
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 deleting journal, got %d", status)
	}
	status, _ = ta.do(t, "GET", "/api/journals/"+itoa(journalID), nil, "")
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
}

func TestImportRoute(t *testing.T) {
	ta := setupTestApp(t, false)

	ta.do(t, "POST", "/api/dogs", map[string]any{"name": "Rex", "chip_id": "C1", "breed": "Malinois"}, "")
	ta.do(t, "POST", "/api/users", map[string]any{"name": "Trainer", "username": "hlv1", "password": "x", "role": "TRAINER"}, "")

	status, result := ta.do(t, "POST", "/api/journals/migrate-from-localstorage", map[string]any{
		"journals": []map[string]any{
			{"key": "j1", "generalInfo": map[string]any{"dogName": "Rex", "hlv": "Trainer", "date": "2025-01-15"}},
			{"key": "j2", "generalInfo": map[string]any{"dogName": "Ghost", "hlv": "Trainer", "date": "2025-01-15"}},
		},
	}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 importing, got %d: %v", status, result)
	}
	report := dataMap(t, result)
	if report["migrated_count"] != float64(1) || report["total_journals"] != float64(2) {
		t.Errorf("Unexpected import report: %v", report)
	}
}

func TestDashboardRoutes(t *testing.T) {
	ta := setupTestApp(t, false)

	status, result := ta.do(t, "POST", "/api/dashboard/init", nil, "")
	if status != fiber.StatusOK || result["initialized"] != true {
		t.Fatalf("Expected first init to seed, got %d: %v", status, result)
	}
	status, result = ta.do(t, "POST", "/api/dashboard/init", nil, "")
	if status != fiber.StatusOK || result["initialized"] != false {
		t.Errorf("Expected second init to be a no-op, got %d: %v", status, result)
	}

	status, result = ta.do(t, "GET", "/api/stats/dashboard", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 for stats, got %d", status)
	}
	stats := dataMap(t, result)
	if stats["total_users"] != float64(3) || stats["total_dogs"] != float64(2) {
		t.Errorf("Unexpected stats after seeding: %v", stats)
	}
}

func TestSessionAuth(t *testing.T) {
	ta := setupTestApp(t, true)

	status, _ := ta.do(t, "POST", "/api/dashboard/init", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected init reachable without a session, got %d", status)
	}

	status, result := ta.do(t, "GET", "/api/dogs", nil, "")
	if status != fiber.StatusUnauthorized || result["type"] != "auth.session" {
		t.Errorf("Expected 401 without a session, got %d: %v", status, result)
	}

	status, _ = ta.do(t, "POST", "/api/auth/login", map[string]any{"username": "hlv1", "password": "wrong"}, "")
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong password, got %d", status)
	}

	status, result = ta.do(t, "POST", "/api/auth/login", map[string]any{"username": "hlv1", "password": "hlv123"}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 logging in, got %d: %v", status, result)
	}
	token, _ := result["session_token"].(string)
	if len(token) != 43 {
		t.Fatalf("Expected a session token when sessions are required, got %v", result["session_token"])
	}

	status, _ = ta.do(t, "GET", "/api/dogs", nil, token)
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 with a session, got %d", status)
	}

	status, result = ta.do(t, "POST", "/api/dogs", map[string]any{"name": "Max", "chip_id": "C9", "breed": "Malinois"}, token)
	if status != fiber.StatusForbidden || result["type"] != "auth.role" {
		t.Errorf("Expected 403 for a trainer creating a dog, got %d: %v", status, result)
	}

	status, result = ta.do(t, "POST", "/api/auth/validate-session", map[string]any{"session_token": token}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 validating, got %d: %v", status, result)
	}
	if dogs, _ := dataMap(t, result)["assignedDogs"].([]any); len(dogs) != 2 {
		t.Errorf("Expected the seeded trainer's two dogs, got %v", dataMap(t, result)["assignedDogs"])
	}

	status, _ = ta.do(t, "POST", "/api/auth/logout", nil, token)
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 logging out, got %d", status)
	}
	status, _ = ta.do(t, "GET", "/api/dogs", nil, token)
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", status)
	}
	status, _ = ta.do(t, "POST", "/api/auth/validate-session", map[string]any{"session_token": token}, "")
	if status != fiber.StatusUnauthorized {
		t.Errorf("Expected 401 validating a logged out session, got %d", status)
	}
}

func TestLoginWithoutRememberMe(t *testing.T) {
	ta := setupTestApp(t, false)
	ta.do(t, "POST", "/api/dashboard/init", nil, "")

	status, result := ta.do(t, "POST", "/api/auth/login", map[string]any{"username": "admin", "password": "admin123"}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 logging in, got %d", status)
	}
	if result["session_token"] != nil {
		t.Errorf("Expected no session without remember_me, got %v", result["session_token"])
	}

	_, result = ta.do(t, "POST", "/api/auth/login", map[string]any{"username": "admin", "password": "admin123", "remember_me": true}, "")
	if token, _ := result["session_token"].(string); token == "" {
		t.Error("Expected a session token with remember_me")
	}

	status, _ = ta.do(t, "POST", "/api/auth/login", map[string]any{"username": "admin"}, "")
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 without a password, got %d", status)
	}
}

func TestNotFoundAndVersion(t *testing.T) {
	ta := setupTestApp(t, false)

	req := httptest.NewRequest("GET", "/api/nowhere", nil)
	req.Header.Set("X-Api-Version", "1.0")
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Api-Version"); got != middleware.APIVersion {
		t.Errorf("Expected version header %s, got %q", middleware.APIVersion, got)
	}
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestHealthRoute(t *testing.T) {
	ta := setupTestApp(t, true)

	status, result := ta.do(t, "GET", "/api/health", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200 without a session, got %d: %v", status, result)
	}
	if result["status"] != "healthy" || result["database"] != "ok" {
		t.Errorf("Unexpected health result: %v", result)
	}
	if result["cache"] != "disabled" || result["broker"] != "disabled" {
		t.Errorf("Expected optional services disabled, got %v", result)
	}
}
