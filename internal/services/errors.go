// errors.go
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
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/k9-management/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrInvalidCredentials is returned by AuthenticateUser for unknown users, wrong passwords and inactive accounts
var ErrInvalidCredentials = errors.New("invalid username or password")

// translateError classifies driver and gorm errors into the types failure classes
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrStoreUnavailable),
		errors.Is(err, ErrInvalidCredentials):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", types.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", types.ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate entry"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "error 1062"):
		return fmt.Errorf("%w: %v", types.ErrConflict, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "sqlite_busy"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "database is closed"):
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	return err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrNotFound, fmt.Sprintf(format, args...))
}

// conflictOr rewrites a translated conflict with a domain message, leaving other errors alone
func conflictOr(err error, format string, args ...any) error {
	err = translateError(err)
	if errors.Is(err, types.ErrConflict) {
		return fmt.Errorf("%w: %s", types.ErrConflict, fmt.Sprintf(format, args...))
	}
	return err
}

// quiet silences the gorm logger for lookups where a miss is an expected outcome
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

func isStoreUnavailable(err error) bool {
	return errors.Is(err, types.ErrStoreUnavailable)
}
