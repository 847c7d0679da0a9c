// Package repository implements append-only audit log persistence for PostgreSQL and MySQL.
//
// There is deliberately no update or single-entry delete API; DeleteOlderThan is the retention
// purge and only removes whole time ranges.
package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

const auditColumns = `id, request_id, actor_id, action, record_id, outcome, metadata, signature, key_id, ` +
	`is_signed, created_at`

// whereBuilder accumulates filter conditions with dialect specific placeholders and UUID encoding.
type whereBuilder struct {
	placeholder func(n int) string
	uuidArg     func(id uuid.UUID) (any, error)
	conds       []string
	args        []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, w.placeholder(len(w.args))))
}

func (w *whereBuilder) addUUID(cond string, id uuid.UUID) error {
	arg, err := w.uuidArg(id)
	if err != nil {
		return err
	}
	w.add(cond, arg)
	return nil
}

func (w *whereBuilder) apply(f auditDomain.Filter) error {
	if f.ActorID != nil {
		if err := w.addUUID("actor_id = %s", *f.ActorID); err != nil {
			return err
		}
	}
	if f.RecordID != nil {
		if err := w.addUUID("record_id = %s", *f.RecordID); err != nil {
			return err
		}
	}
	if f.Action != nil {
		w.add("action = %s", string(*f.Action))
	}
	if f.Outcome != nil {
		w.add("outcome = %s", string(*f.Outcome))
	}
	if f.CreatedAtFrom != nil {
		w.add("created_at >= %s", *f.CreatedAtFrom)
	}
	if f.CreatedAtTo != nil {
		w.add("created_at <= %s", *f.CreatedAtTo)
	}
	return nil
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderClause(s auditDomain.Sort) string {
	s = s.Normalize()
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", s.Field, dir, dir)
}

// nullableBytes maps an empty slice to NULL.
func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
