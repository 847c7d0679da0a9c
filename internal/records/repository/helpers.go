package repository

import (
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/allisson/sealbox/internal/errors"
)

// nullUUID maps a nil pointer to NULL.
func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullBinaryUUID maps a nil pointer to NULL and anything else to its 16 byte form.
func nullBinaryUUID(id *uuid.UUID) (any, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

// binaryUUIDPtr decodes an optional BINARY(16) column.
func binaryUUIDPtr(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// expectOneRow returns notMatched when the statement touched no row.
func expectOneRow(result sql.Result, notMatched error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return notMatched
	}
	return nil
}
