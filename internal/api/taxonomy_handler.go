package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// Taxonomy resources (industries, project tags, blog categories, blog
// tags) share one shape: a unique name and a derived slug. Each gets its
// own handler over the shared helpers below so routes stay explicit.

type nameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,max=120"`
}

type blogCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120"`
	Description string `json:"description"`
}

func taxonomyListOptions() listOptions {
	return listOptions{
		search:       []string{"name"},
		ordering:     map[string]string{"name": "name", "created_at": "created_at"},
		defaultOrder: "name",
	}
}

// IndustryHandler exposes the industries resource.
type IndustryHandler struct {
	db *gorm.DB
}

func NewIndustryHandler(db *gorm.DB) *IndustryHandler {
	return &IndustryHandler{db: db}
}

func (h *IndustryHandler) List(c *gin.Context) {
	q := applyListing(c, h.db.WithContext(c.Request.Context()).Model(&database.Industry{}), taxonomyListOptions())
	var industries []database.Industry
	envelope, err := paginate(c, q, &industries)
	if err != nil {
		Internal(c, "failed to list industries")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *IndustryHandler) Retrieve(c *gin.Context) {
	var industry database.Industry
	if err := findBySlugOrID(h.db.WithContext(c.Request.Context()), c.Param("idOrSlug"), &industry); err != nil {
		taxonomyLookupError(c, err, "industry")
		return
	}
	c.JSON(http.StatusOK, industry)
}

func (h *IndustryHandler) Create(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	industry := database.Industry{Name: req.Name, Slug: req.Slug}
	if err := h.db.WithContext(c.Request.Context()).Create(&industry).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusCreated, industry)
}

func (h *IndustryHandler) Update(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	var industry database.Industry
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &industry); err != nil {
		taxonomyLookupError(c, err, "industry")
		return
	}
	industry.Name = req.Name
	if req.Slug != "" {
		industry.Slug = req.Slug
	}
	if err := h.db.WithContext(ctx).Save(&industry).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, industry)
}

func (h *IndustryHandler) Delete(c *gin.Context) {
	deleteTaxonomy(c, h.db, &database.Industry{}, "industry")
}

// ProjectTagHandler exposes the project-tags resource.
type ProjectTagHandler struct {
	db *gorm.DB
}

func NewProjectTagHandler(db *gorm.DB) *ProjectTagHandler {
	return &ProjectTagHandler{db: db}
}

func (h *ProjectTagHandler) List(c *gin.Context) {
	q := applyListing(c, h.db.WithContext(c.Request.Context()).Model(&database.ProjectTag{}), taxonomyListOptions())
	var tags []database.ProjectTag
	envelope, err := paginate(c, q, &tags)
	if err != nil {
		Internal(c, "failed to list project tags")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *ProjectTagHandler) Retrieve(c *gin.Context) {
	var tag database.ProjectTag
	if err := findBySlugOrID(h.db.WithContext(c.Request.Context()), c.Param("idOrSlug"), &tag); err != nil {
		taxonomyLookupError(c, err, "project tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *ProjectTagHandler) Create(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag := database.ProjectTag{Name: req.Name, Slug: req.Slug}
	if err := h.db.WithContext(c.Request.Context()).Create(&tag).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *ProjectTagHandler) Update(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	var tag database.ProjectTag
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &tag); err != nil {
		taxonomyLookupError(c, err, "project tag")
		return
	}
	tag.Name = req.Name
	if req.Slug != "" {
		tag.Slug = req.Slug
	}
	if err := h.db.WithContext(ctx).Save(&tag).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *ProjectTagHandler) Delete(c *gin.Context) {
	deleteTaxonomy(c, h.db, &database.ProjectTag{}, "project tag")
}

// BlogCategoryHandler exposes the blog-categories resource.
type BlogCategoryHandler struct {
	db *gorm.DB
}

func NewBlogCategoryHandler(db *gorm.DB) *BlogCategoryHandler {
	return &BlogCategoryHandler{db: db}
}

func (h *BlogCategoryHandler) List(c *gin.Context) {
	q := applyListing(c, h.db.WithContext(c.Request.Context()).Model(&database.BlogCategory{}), taxonomyListOptions())
	var categories []database.BlogCategory
	envelope, err := paginate(c, q, &categories)
	if err != nil {
		Internal(c, "failed to list blog categories")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *BlogCategoryHandler) Retrieve(c *gin.Context) {
	var category database.BlogCategory
	if err := findBySlugOrID(h.db.WithContext(c.Request.Context()), c.Param("idOrSlug"), &category); err != nil {
		taxonomyLookupError(c, err, "blog category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *BlogCategoryHandler) Create(c *gin.Context) {
	var req blogCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category := database.BlogCategory{Name: req.Name, Slug: req.Slug, Description: req.Description}
	if err := h.db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *BlogCategoryHandler) Update(c *gin.Context) {
	var req blogCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	var category database.BlogCategory
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &category); err != nil {
		taxonomyLookupError(c, err, "blog category")
		return
	}
	category.Name = req.Name
	if req.Slug != "" {
		category.Slug = req.Slug
	}
	category.Description = req.Description
	if err := h.db.WithContext(ctx).Save(&category).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *BlogCategoryHandler) Delete(c *gin.Context) {
	deleteTaxonomy(c, h.db, &database.BlogCategory{}, "blog category")
}

// BlogTagHandler exposes the blog-tags resource.
type BlogTagHandler struct {
	db *gorm.DB
}

func NewBlogTagHandler(db *gorm.DB) *BlogTagHandler {
	return &BlogTagHandler{db: db}
}

func (h *BlogTagHandler) List(c *gin.Context) {
	q := applyListing(c, h.db.WithContext(c.Request.Context()).Model(&database.BlogTag{}), taxonomyListOptions())
	var tags []database.BlogTag
	envelope, err := paginate(c, q, &tags)
	if err != nil {
		Internal(c, "failed to list blog tags")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *BlogTagHandler) Retrieve(c *gin.Context) {
	var tag database.BlogTag
	if err := findBySlugOrID(h.db.WithContext(c.Request.Context()), c.Param("idOrSlug"), &tag); err != nil {
		taxonomyLookupError(c, err, "blog tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *BlogTagHandler) Create(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag := database.BlogTag{Name: req.Name, Slug: req.Slug}
	if err := h.db.WithContext(c.Request.Context()).Create(&tag).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *BlogTagHandler) Update(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	var tag database.BlogTag
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &tag); err != nil {
		taxonomyLookupError(c, err, "blog tag")
		return
	}
	tag.Name = req.Name
	if req.Slug != "" {
		tag.Slug = req.Slug
	}
	if err := h.db.WithContext(ctx).Save(&tag).Error; err != nil {
		writeSaveError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *BlogTagHandler) Delete(c *gin.Context) {
	deleteTaxonomy(c, h.db, &database.BlogTag{}, "blog tag")
}

func taxonomyLookupError(c *gin.Context, err error, label string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, label+" not found")
		return
	}
	Internal(c, "failed to query "+label)
}

func deleteTaxonomy(c *gin.Context, db *gorm.DB, model any, label string) {
	ctx := c.Request.Context()
	if err := findBySlugOrID(db.WithContext(ctx), c.Param("idOrSlug"), model); err != nil {
		taxonomyLookupError(c, err, label)
		return
	}
	if err := db.WithContext(ctx).Delete(model).Error; err != nil {
		Internal(c, "failed to delete "+label)
		return
	}
	c.Status(http.StatusNoContent)
}
