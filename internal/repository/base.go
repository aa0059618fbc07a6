// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// validID reports whether id can name a stored row. Malformed IDs never
// resolve, so callers treat them as not found instead of sending them to
// Postgres, which would reject them as invalid uuid syntax.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
