package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// TestimonialHandler exposes the testimonials resource.
type TestimonialHandler struct {
	db     *gorm.DB
	assets AssetResolver
}

func NewTestimonialHandler(db *gorm.DB, assets AssetResolver) *TestimonialHandler {
	return &TestimonialHandler{db: db, assets: assets}
}

type testimonialRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Company        string `json:"company" binding:"omitempty,max=100"`
	Text           string `json:"text" binding:"required"`
	Rating         uint   `json:"rating" binding:"required,gte=1,lte=5"`
	PhotoKey       string `json:"photo_key" binding:"omitempty,max=512"`
	CompanyLogoKey string `json:"company_logo_key" binding:"omitempty,max=512"`
	ProjectID      *uint  `json:"project_id"`
	IsFeatured     bool   `json:"is_featured"`
	IsPublished    *bool  `json:"is_published"`
}

type testimonialView struct {
	database.Testimonial
	PhotoURL       string `json:"photo_url,omitempty"`
	CompanyLogoURL string `json:"company_logo_url,omitempty"`
}

// List returns testimonials; anonymous callers only see published ones.
func (h *TestimonialHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&database.Testimonial{})
	if !isStaff(c) {
		q = q.Where("is_published = ?", true)
	}
	q = applyListing(c, q, listOptions{
		boolFilters: map[string]string{"is_featured": "is_featured"},
		intFilters:  map[string]string{"rating": "rating"},
		ordering: map[string]string{
			"created_at": "created_at",
			"rating":     "rating",
		},
		defaultOrder: "created_at DESC",
	})

	var testimonials []database.Testimonial
	envelope, err := paginate(c, q, &testimonials)
	if err != nil {
		Internal(c, "failed to list testimonials")
		return
	}

	items := make([]testimonialView, 0, len(testimonials))
	for _, t := range testimonials {
		items = append(items, h.view(t))
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single testimonial by id.
func (h *TestimonialHandler) Retrieve(c *gin.Context) {
	testimonial, ok := h.load(c)
	if !ok {
		return
	}
	if !testimonial.IsPublished && !isStaff(c) {
		NotFound(c, "testimonial not found")
		return
	}
	c.JSON(http.StatusOK, h.view(testimonial))
}

// Create stores a testimonial.
func (h *TestimonialHandler) Create(c *gin.Context) {
	var req testimonialRequest
	if !bindJSON(c, &req) {
		return
	}

	testimonial := database.Testimonial{}
	req.apply(&testimonial)

	if err := h.db.WithContext(c.Request.Context()).Create(&testimonial).Error; err != nil {
		Internal(c, "failed to save testimonial")
		return
	}
	c.JSON(http.StatusCreated, h.view(testimonial))
}

// Update overwrites a testimonial.
func (h *TestimonialHandler) Update(c *gin.Context) {
	var req testimonialRequest
	if !bindJSON(c, &req) {
		return
	}

	testimonial, ok := h.load(c)
	if !ok {
		return
	}

	req.apply(&testimonial)
	if err := h.db.WithContext(c.Request.Context()).Save(&testimonial).Error; err != nil {
		Internal(c, "failed to save testimonial")
		return
	}
	c.JSON(http.StatusOK, h.view(testimonial))
}

// Delete removes a testimonial.
func (h *TestimonialHandler) Delete(c *gin.Context) {
	testimonial, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&testimonial).Error; err != nil {
		Internal(c, "failed to delete testimonial")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TestimonialHandler) load(c *gin.Context) (database.Testimonial, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		NotFound(c, "testimonial not found")
		return database.Testimonial{}, false
	}

	var testimonial database.Testimonial
	if err := h.db.WithContext(c.Request.Context()).First(&testimonial, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "testimonial not found")
			return database.Testimonial{}, false
		}
		Internal(c, "failed to query testimonial")
		return database.Testimonial{}, false
	}
	return testimonial, true
}

func (r testimonialRequest) apply(testimonial *database.Testimonial) {
	testimonial.Name = r.Name
	testimonial.Company = r.Company
	testimonial.Text = r.Text
	testimonial.Rating = r.Rating
	testimonial.PhotoKey = r.PhotoKey
	testimonial.CompanyLogoKey = r.CompanyLogoKey
	testimonial.ProjectID = r.ProjectID
	testimonial.IsFeatured = r.IsFeatured
	if r.IsPublished != nil {
		testimonial.IsPublished = *r.IsPublished
	} else if testimonial.ID == 0 {
		testimonial.IsPublished = true
	}
}

func (h *TestimonialHandler) view(testimonial database.Testimonial) testimonialView {
	return testimonialView{
		Testimonial:    testimonial,
		PhotoURL:       publicURL(h.assets, testimonial.PhotoKey),
		CompanyLogoURL: publicURL(h.assets, testimonial.CompanyLogoKey),
	}
}
