// connection_test.go
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

package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/k9-management/internal/config"
	"github.com/localnerve/k9-management/internal/models"
	"gorm.io/gorm/logger"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		timeout time.Duration
		cgo     bool
		want    string
	}{
		{"pure go", "k9.db", 30 * time.Second, false, "k9.db?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_txlock=immediate"},
		{"cgo", "k9.db", 5 * time.Second, true, "k9.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{"default timeout", "k9.db", 0, true, "k9.db?_busy_timeout=30000&_journal_mode=WAL&_txlock=immediate"},
		{"existing params", "file:k9.db?cache=shared", time.Second, false, "file:k9.db?cache=shared&_pragma=busy_timeout(1000)&_pragma=journal_mode(WAL)&_txlock=immediate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SQLiteDSN(tt.path, tt.timeout, tt.cgo); got != tt.want {
				t.Errorf("SQLiteDSN() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	if LogLevel("SILENT") != logger.Silent {
		t.Error("expected silent")
	}
	if LogLevel("info") != logger.Info {
		t.Error("expected info")
	}
	if LogLevel("whatever") != logger.Warn {
		t.Error("expected warn fallback")
	}
}

func TestDialectorUnsupported(t *testing.T) {
	if _, err := Dialector(&config.Config{DBType: "oracle"}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "k9.db"),
		DBConnectionLimit: 2,
		DBBusyTimeout:     time.Second,
		DBLogLevel:        "silent",
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer Close(db)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	for _, model := range models.All() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}

	var mode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		t.Fatalf("journal_mode query failed: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %s", mode)
	}
}
