package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listOptions enumerates what a collection endpoint exposes. Anything
// outside these sets is ignored rather than interpolated into SQL.
type listOptions struct {
	// filters maps query parameter names to text column names for
	// exact-match filtering.
	filters map[string]string
	// boolFilters and intFilters are the same for boolean and integer
	// columns; the value is parsed first so the bind parameter carries
	// the column's type, and unparsable values are ignored.
	boolFilters map[string]string
	intFilters  map[string]string
	// search lists the columns matched (case-insensitively) against the
	// ?search= parameter.
	search []string
	// ordering maps ?ordering= values to column names; a leading '-'
	// on the parameter selects descending order.
	ordering map[string]string
	// defaultOrder is the fixed entity-specific order clause.
	defaultOrder string
}

// listEnvelope is the collection response shape.
type listEnvelope struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  any   `json:"results"`
}

// applyListing narrows q according to the request's filter, search and
// ordering parameters, constrained to opts.
func applyListing(c *gin.Context, q *gorm.DB, opts listOptions) *gorm.DB {
	for param, column := range opts.filters {
		if value, ok := c.GetQuery(param); ok && value != "" {
			q = q.Where(fmt.Sprintf("%s = ?", column), value)
		}
	}
	for param, column := range opts.boolFilters {
		if value, ok := c.GetQuery(param); ok && value != "" {
			if parsed, err := strconv.ParseBool(value); err == nil {
				q = q.Where(fmt.Sprintf("%s = ?", column), parsed)
			}
		}
	}
	for param, column := range opts.intFilters {
		if value, ok := c.GetQuery(param); ok && value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				q = q.Where(fmt.Sprintf("%s = ?", column), parsed)
			}
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" && len(opts.search) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, 0, len(opts.search))
		args := make([]any, 0, len(opts.search))
		for _, column := range opts.search {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, pattern)
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	order := opts.defaultOrder
	if requested := strings.TrimSpace(c.Query("ordering")); requested != "" {
		desc := strings.HasPrefix(requested, "-")
		name := strings.TrimPrefix(requested, "-")
		if column, ok := opts.ordering[name]; ok {
			order = column
			if desc {
				order += " DESC"
			}
		}
	}
	if order != "" {
		q = q.Order(order)
	}

	return q
}

// paginate counts the narrowed query, applies page/page_size and scans
// the page into out, returning the response envelope.
func paginate(c *gin.Context, q *gorm.DB, out any) (*listEnvelope, error) {
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}

	page := positiveIntQuery(c, "page", 1)
	pageSize := positiveIntQuery(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	offset := (page - 1) * pageSize
	if err := q.Limit(pageSize).Offset(offset).Find(out).Error; err != nil {
		return nil, err
	}

	return &listEnvelope{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  out,
	}, nil
}

func positiveIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
