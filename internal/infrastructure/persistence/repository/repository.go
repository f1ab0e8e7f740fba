// Package repository implements the persistence ports on SQLite
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// isConstraint reports unique or primary key violations
func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// wrapWrite maps constraint failures to validation errors
func wrapWrite(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if isConstraint(err) {
		return fmt.Errorf("%w: %s: duplicate key", domainwf.ErrValidation, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
