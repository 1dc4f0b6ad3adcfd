package sqlutil

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// Helper functions for converting between Go types and sql.Null* types

// ToSqlString converts a Go string pointer to sql.NullString
func ToSqlString(val *string) sql.NullString {
	if val == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *val, Valid: true}
}

// FromSqlStringPtr converts sql.NullString to Go string pointer
func FromSqlStringPtr(val sql.NullString) *string {
	if !val.Valid {
		return nil
	}
	return &val.String
}

// ToSqlFloat64 converts a Go float pointer to sql.NullFloat64
func ToSqlFloat64(val *float64) sql.NullFloat64 {
	if val == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *val, Valid: true}
}

// FromSqlFloat64 converts sql.NullFloat64 to Go float pointer
func FromSqlFloat64(val sql.NullFloat64) *float64 {
	if !val.Valid {
		return nil
	}
	return &val.Float64
}

// ToNullUUID converts a Go UUID pointer to uuid.NullUUID
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{Valid: false}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// FromNullUUID converts uuid.NullUUID to Go UUID pointer
func FromNullUUID(val uuid.NullUUID) *uuid.UUID {
	if !val.Valid {
		return nil
	}
	return &val.UUID
}

// ToSqlTime converts a Go time pointer to sql.NullTime
func ToSqlTime(val *time.Time) sql.NullTime {
	if val == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *val, Valid: true}
}

// FromSqlTime converts sql.NullTime to Go time pointer
func FromSqlTime(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	return &val.Time
}

// UUIDArray adapts a uuid slice to a Postgres uuid[] parameter.
func UUIDArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

// ParseUUIDArray converts a scanned uuid[] column back to uuids.
func ParseUUIDArray(vals pq.StringArray) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(vals))
	for _, v := range vals {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uuid array element %q: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Classify maps driver errors onto the domain sentinels so callers can use errors.Is.
func Classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, models.ErrAlreadyExists)
	default:
		return err
	}
}
