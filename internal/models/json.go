// json.go
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
	"bytes"
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SignatureJSON is a signature blob (signer, image reference, timestamp) stored as JSON.
// An empty or null value means "not signed" and is stored as NULL.
type SignatureJSON struct {
	datatypes.JSON
}

// NewSignature wraps raw JSON
func NewSignature(raw string) SignatureJSON {
	return SignatureJSON{JSON: datatypes.JSON(raw)}
}

// Present reports whether a signature has been recorded
func (j SignatureJSON) Present() bool {
	trimmed := bytes.TrimSpace(j.JSON)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Value writes NULL for an absent signature
func (j SignatureJSON) Value() (driver.Value, error) {
	if !j.Present() {
		return nil, nil
	}
	return j.JSON.Value()
}

// Scan accepts NULL as an absent signature
func (j *SignatureJSON) Scan(value interface{}) error {
	if value == nil {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// MarshalJSON renders an absent signature as null
func (j SignatureJSON) MarshalJSON() ([]byte, error) {
	if !j.Present() {
		return []byte("null"), nil
	}
	return j.JSON.MarshalJSON()
}

// UnmarshalJSON promotes the embedded JSON's UnmarshalJSON method
func (j *SignatureJSON) UnmarshalJSON(data []byte) error {
	return j.JSON.UnmarshalJSON(data)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (SignatureJSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
