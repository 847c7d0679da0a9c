// Package repository implements encrypted record persistence for PostgreSQL and MySQL.
//
// Records are written once and afterwards only touched by field scoped UPDATE statements: the
// soft delete flags, the reveal counters and the expiry purge.
package repository

import (
	"fmt"
	"strings"
	"time"

	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

const recordColumns = `id, owner_id, ciphertext, iv, auth_tag, integrity_hash, kdf_salt, kdf_iterations, ` +
	`kdf_hash, algorithm, mask_surrogate, record_type, tags, created_at, expires_at, is_deleted, ` +
	`deleted_at, deleted_by, reveal_count, last_revealed_at, last_revealed_by`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// listQuery assembles the WHERE clause of a record listing with dialect specific fragments.
type listQuery struct {
	placeholder func(n int) string
	conds       []string
	args        []any
}

func (q *listQuery) add(cond string, arg any) {
	q.args = append(q.args, arg)
	q.conds = append(q.conds, strings.ReplaceAll(cond, "?", q.placeholder(len(q.args))))
}

// build returns the full SELECT for filter. ownerArg is the already encoded owner id, tagCond the
// dialect's tag membership condition with a single ? placeholder.
func (q *listQuery) build(filter recordsDomain.ListFilter, ownerArg any, tagCond string, now time.Time) string {
	if ownerArg != nil {
		q.add("owner_id = ?", ownerArg)
	}
	if filter.RecordType != "" {
		q.add("record_type = ?", filter.RecordType)
	}
	if filter.Tag != "" {
		q.add(tagCond, filter.Tag)
	}
	if !filter.IncludeDeleted {
		q.conds = append(q.conds, "is_deleted = FALSE")
	}
	if !filter.IncludeExpired {
		q.add("(expires_at IS NULL OR expires_at > ?)", now)
	}

	query := "SELECT " + recordColumns + " FROM records"
	if len(q.conds) > 0 {
		query += " WHERE " + strings.Join(q.conds, " AND ")
	}

	q.args = append(q.args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		q.placeholder(len(q.args)-1), q.placeholder(len(q.args)))
	return query
}
