package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/api/middleware"
	"agencycms/internal/auth"
	"agencycms/internal/database"
)

// UserHandler exposes account management (admin) and the caller's own
// profile.
type UserHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	assets      AssetResolver
}

func NewUserHandler(db *gorm.DB, authService *auth.AuthService, assets AssetResolver) *UserHandler {
	return &UserHandler{db: db, authService: authService, assets: assets}
}

type userCreateRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"omitempty,max=64"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
	Role      string `json:"role" binding:"omitempty,oneof=admin editor client"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Company   string `json:"company" binding:"omitempty,max=100"`
}

type userUpdateRequest struct {
	Username   string `json:"username" binding:"omitempty,max=64"`
	FirstName  string `json:"first_name" binding:"omitempty,max=100"`
	LastName   string `json:"last_name" binding:"omitempty,max=100"`
	Role       string `json:"role" binding:"omitempty,oneof=admin editor client"`
	Phone      string `json:"phone" binding:"omitempty,max=20"`
	Company    string `json:"company" binding:"omitempty,max=100"`
	AvatarKey  string `json:"avatar_key" binding:"omitempty,max=512"`
	IsVerified *bool  `json:"is_verified"`
	Password   string `json:"password" binding:"omitempty,min=8"`
}

type userView struct {
	database.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

// List returns accounts for the admin user screen.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&database.User{})
	q = applyListing(c, q, listOptions{
		filters: map[string]string{"role": "role"},
		search:  []string{"email", "username", "first_name", "last_name", "company"},
		ordering: map[string]string{
			"email":      "email",
			"created_at": "created_at",
		},
		defaultOrder: "email",
	})

	var users []database.User
	envelope, err := paginate(c, q, &users)
	if err != nil {
		Internal(c, "failed to list users")
		return
	}

	items := make([]userView, 0, len(users))
	for _, user := range users {
		items = append(items, h.view(user))
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single account.
func (h *UserHandler) Retrieve(c *gin.Context) {
	var user database.User
	if !lookupByID(c, h.db, &user, "user") {
		return
	}
	c.JSON(http.StatusOK, h.view(user))
}

// Create provisions an account.
func (h *UserHandler) Create(c *gin.Context) {
	var req userCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = database.RoleClient
	}
	user := database.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Phone:        req.Phone,
		Company:      req.Company,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		writeSaveError(c, err, "email")
		return
	}
	c.JSON(http.StatusCreated, h.view(user))
}

// Update edits an account. Email is immutable; it is the login id.
func (h *UserHandler) Update(c *gin.Context) {
	var req userUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	var user database.User
	if !lookupByID(c, h.db, &user, "user") {
		return
	}

	user.Username = req.Username
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.Role != "" {
		user.Role = req.Role
	}
	user.Phone = req.Phone
	user.Company = req.Company
	user.AvatarKey = req.AvatarKey
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if req.Password != "" {
		hash, err := h.authService.HashPassword(req.Password)
		if err != nil {
			Internal(c, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&user).Error; err != nil {
		writeSaveError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, h.view(user))
}

// Delete removes an account.
func (h *UserHandler) Delete(c *gin.Context) {
	var user database.User
	if !lookupByID(c, h.db, &user, "user") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&user).Error; err != nil {
		Internal(c, "failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		Unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, h.view(user))
}

func (h *UserHandler) view(user database.User) userView {
	return userView{
		User:      user,
		AvatarURL: publicURL(h.assets, user.AvatarKey),
	}
}
