package api

import (
	"github.com/gin-gonic/gin"

	"agencycms/internal/api/middleware"
	"agencycms/internal/database"
)

// isStaff reports whether the request carries an admin or editor
// identity. Public read endpoints widen their result set for staff.
func isStaff(c *gin.Context) bool {
	role, ok := middleware.RoleFromContext(c)
	if !ok {
		return false
	}
	return role == database.RoleAdmin || role == database.RoleEditor
}
