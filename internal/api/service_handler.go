package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// ServiceHandler exposes the services resource.
type ServiceHandler struct {
	db     *gorm.DB
	assets AssetResolver
}

// NewServiceHandler builds the handler.
func NewServiceHandler(db *gorm.DB, assets AssetResolver) *ServiceHandler {
	return &ServiceHandler{db: db, assets: assets}
}

type serviceRequest struct {
	Title             string   `json:"title" binding:"required,max=200"`
	Slug              string   `json:"slug" binding:"omitempty,max=220"`
	Description       string   `json:"description" binding:"required"`
	ShortDescription  string   `json:"short_description" binding:"required,max=300"`
	IconKey           string   `json:"icon_key" binding:"omitempty,max=512"`
	ImageKey          string   `json:"image_key" binding:"omitempty,max=512"`
	PriceStartingFrom *float64 `json:"price_starting_from" binding:"omitempty,gte=0"`
	IsFeatured        bool     `json:"is_featured"`
	IsActive          *bool    `json:"is_active"`
	Order             uint     `json:"order"`
	MetaTitle         string   `json:"meta_title" binding:"omitempty,max=60"`
	MetaDescription   string   `json:"meta_description" binding:"omitempty,max=160"`
}

type serviceListItem struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	ShortDescription  string    `json:"short_description"`
	IconURL           string    `json:"icon_url,omitempty"`
	ThumbnailURL      string    `json:"thumbnail_url,omitempty"`
	PriceStartingFrom *float64  `json:"price_starting_from"`
	IsFeatured        bool      `json:"is_featured"`
	Order             uint      `json:"order"`
	CreatedAt         time.Time `json:"created_at"`
}

type serviceDetail struct {
	database.Service
	IconURL  string `json:"icon_url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// List returns active services, filterable and searchable.
func (h *ServiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.Service{}).
		Where("is_active = ?", true)
	q = applyListing(c, q, listOptions{
		boolFilters: map[string]string{"is_featured": "is_featured"},
		search:      []string{"title", "description"},
		ordering: map[string]string{
			"order":      `"order"`,
			"title":      "title",
			"created_at": "created_at",
		},
		defaultOrder: `"order", title`,
	})

	var services []database.Service
	envelope, err := paginate(c, q, &services)
	if err != nil {
		Internal(c, "failed to list services")
		return
	}

	items := make([]serviceListItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceListItem{
			ID:                s.ID,
			Title:             s.Title,
			Slug:              s.Slug,
			ShortDescription:  s.ShortDescription,
			IconURL:           publicURL(h.assets, s.IconKey),
			ThumbnailURL:      thumbnailURL(h.assets, s.ImageKey),
			PriceStartingFrom: s.PriceStartingFrom,
			IsFeatured:        s.IsFeatured,
			Order:             s.Order,
			CreatedAt:         s.CreatedAt,
		})
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single service by slug or id.
func (h *ServiceHandler) Retrieve(c *gin.Context) {
	var service database.Service
	if err := findBySlugOrID(h.db.WithContext(c.Request.Context()), c.Param("idOrSlug"), &service); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "service not found")
			return
		}
		Internal(c, "failed to query service")
		return
	}
	if !service.IsActive && !isStaff(c) {
		NotFound(c, "service not found")
		return
	}
	c.JSON(http.StatusOK, h.detail(service))
}

// Create stores a new service.
func (h *ServiceHandler) Create(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}

	service := database.Service{}
	req.apply(&service)

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		writeSaveError(c, err, "slug")
		return
	}
	c.JSON(http.StatusCreated, h.detail(service))
}

// Update overwrites an existing service.
func (h *ServiceHandler) Update(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var service database.Service
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &service); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "service not found")
			return
		}
		Internal(c, "failed to query service")
		return
	}

	req.apply(&service)
	if err := h.db.WithContext(ctx).Save(&service).Error; err != nil {
		writeSaveError(c, err, "slug")
		return
	}
	c.JSON(http.StatusOK, h.detail(service))
}

// Delete removes a service.
func (h *ServiceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	var service database.Service
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &service); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "service not found")
			return
		}
		Internal(c, "failed to query service")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&service).Error; err != nil {
		Internal(c, "failed to delete service")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r serviceRequest) apply(service *database.Service) {
	service.Title = r.Title
	if r.Slug != "" {
		service.Slug = r.Slug
	}
	service.Description = r.Description
	service.ShortDescription = r.ShortDescription
	service.IconKey = r.IconKey
	service.ImageKey = r.ImageKey
	service.PriceStartingFrom = r.PriceStartingFrom
	service.IsFeatured = r.IsFeatured
	if r.IsActive != nil {
		service.IsActive = *r.IsActive
	} else if service.ID == 0 {
		service.IsActive = true
	}
	service.Order = r.Order
	service.MetaTitle = r.MetaTitle
	service.MetaDescription = r.MetaDescription
}

func (h *ServiceHandler) detail(service database.Service) serviceDetail {
	return serviceDetail{
		Service:  service,
		IconURL:  publicURL(h.assets, service.IconKey),
		ImageURL: publicURL(h.assets, service.ImageKey),
	}
}
