package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation.
// The string fallbacks cover drivers that do not translate the error
// (sqlite in tests, older postgres driver paths).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}

// writeSaveError surfaces a persistence failure: unique violations
// become a validation document on the conflicting field, everything
// else is a 500.
func writeSaveError(c *gin.Context, err error, uniqueField string) {
	if isDuplicateKey(err) {
		FieldErrors(c, map[string]string{uniqueField: "a record with this value already exists"})
		return
	}
	Internal(c, "failed to save record")
}

// idOrSlug splits a path parameter into a numeric id or a slug.
func idOrSlug(param string) (uint, string) {
	if id, err := strconv.ParseUint(param, 10, 64); err == nil {
		return uint(id), ""
	}
	return 0, param
}

// findBySlugOrID loads a record addressed by slug or numeric id.
func findBySlugOrID(q *gorm.DB, param string, out any) error {
	id, slug := idOrSlug(param)
	if slug != "" {
		return q.Where("slug = ?", slug).First(out).Error
	}
	return q.First(out, id).Error
}
