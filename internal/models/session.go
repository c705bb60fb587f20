// session.go
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

package models

import (
	"time"
)

// Session is an opaque login token held server side
type Session struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64    `gorm:"not null;index:idx_sessions_user_id" json:"user_id"`
	Token        string    `gorm:"column:session_token;size:64;not null;uniqueIndex:idx_sessions_token" json:"-"`
	IPAddress    string    `gorm:"size:64" json:"ip_address"`
	UserAgent    string    `gorm:"size:512" json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `gorm:"not null" json:"last_accessed"`
	ExpiresAt    time.Time `gorm:"not null;index:idx_sessions_expires" json:"expires_at"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
}

// TableName overrides the table name for Session
func (Session) TableName() string {
	return "user_sessions"
}
