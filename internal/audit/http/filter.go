package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

// parseFilter reads the optional actor_id, record_id, action, outcome, created_at_from and
// created_at_to query parameters. Timestamps must be RFC3339 and are converted to UTC.
func parseFilter(c *gin.Context) (auditDomain.Filter, error) {
	var filter auditDomain.Filter

	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid actor_id: must be a UUID")
		}
		filter.ActorID = &id
	}

	if v := c.Query("record_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid record_id: must be a UUID")
		}
		filter.RecordID = &id
	}

	if v := c.Query("action"); v != "" {
		action := auditDomain.Action(v)
		filter.Action = &action
	}

	if v := c.Query("outcome"); v != "" {
		outcome := auditDomain.Outcome(v)
		if !outcome.Valid() {
			return filter, fmt.Errorf("invalid outcome: must be SUCCESS, FAILED or SUSPICIOUS")
		}
		filter.Outcome = &outcome
	}

	from, err := parseTime(c, "created_at_from")
	if err != nil {
		return filter, err
	}
	to, err := parseTime(c, "created_at_to")
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && from.After(*to) {
		return filter, fmt.Errorf("created_at_from must be before or equal to created_at_to")
	}
	filter.CreatedAtFrom, filter.CreatedAtTo = from, to

	return filter, nil
}

func parseTime(c *gin.Context, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)", name)
	}
	utc := parsed.UTC()
	return &utc, nil
}

// parseSort reads sort (created_at, action, outcome) and order (asc, desc).
func parseSort(c *gin.Context) (auditDomain.Sort, error) {
	sort := auditDomain.DefaultSort

	if v := c.Query("sort"); v != "" {
		switch field := auditDomain.SortField(v); field {
		case auditDomain.SortByCreatedAt, auditDomain.SortByAction, auditDomain.SortByOutcome:
			sort.Field = field
		default:
			return sort, fmt.Errorf("invalid sort: must be created_at, action or outcome")
		}
	}

	switch c.DefaultQuery("order", "desc") {
	case "desc":
		sort.Descending = true
	case "asc":
		sort.Descending = false
	default:
		return sort, fmt.Errorf("invalid order: must be asc or desc")
	}

	return sort, nil
}
