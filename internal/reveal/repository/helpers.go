package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

func rowsAffected(result sql.Result) (int64, error) {
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return count, nil
}

func consumed(result sql.Result) (bool, error) {
	count, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// attemptStatements is the dialect SQL behind an attempt counter update. ensure and lock take the
// pair key; store takes the counter columns followed by the pair key.
type attemptStatements struct {
	ensure string
	lock   string
	store  string
}

// updateAttempts creates the row of the pair when missing, locks it, applies fn and writes the
// counter back. The row lock is held until the surrounding transaction ends.
func updateAttempts(
	ctx context.Context,
	querier database.Querier,
	stmts attemptStatements,
	subject, record any,
	counter *revealDomain.AttemptCounter,
	fn func(counter *revealDomain.AttemptCounter),
) (*revealDomain.AttemptCounter, error) {
	if _, err := querier.ExecContext(ctx, stmts.ensure, subject, record); err != nil {
		return nil, apperrors.Wrap(err, "failed to create reveal attempts")
	}

	err := querier.QueryRowContext(ctx, stmts.lock, subject, record).Scan(
		&counter.FailedCount,
		&counter.LastFailedAt,
		&counter.LockedUntil,
		&counter.InFlight,
		&counter.ReservedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lock reveal attempts")
	}

	fn(counter)

	_, err = querier.ExecContext(
		ctx,
		stmts.store,
		counter.FailedCount,
		counter.LastFailedAt,
		counter.LockedUntil,
		counter.InFlight,
		counter.ReservedAt,
		subject,
		record,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to store reveal attempts")
	}
	return counter, nil
}
