package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is applied when the request has no limit parameter.
	DefaultLimit = 50
	// MaxLimit caps a single page of records or audit entries.
	MaxLimit = 100
)

// ParsePagination reads the offset and limit query parameters. Both are zero on error.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, fmt.Errorf("offset must be a non-negative integer")
	}

	limit, ok = queryInt(c, "limit", DefaultLimit)
	if !ok || limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
