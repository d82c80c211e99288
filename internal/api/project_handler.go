package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// ProjectHandler exposes the portfolio projects resource, including the
// nested gallery images and the tag relation.
type ProjectHandler struct {
	db     *gorm.DB
	assets AssetResolver
}

func NewProjectHandler(db *gorm.DB, assets AssetResolver) *ProjectHandler {
	return &ProjectHandler{db: db, assets: assets}
}

type projectImageRequest struct {
	ImageKey string `json:"image_key" binding:"required,max=512"`
	Caption  string `json:"caption" binding:"omitempty,max=200"`
	Order    uint   `json:"order"`
}

type projectRequest struct {
	Title            string                `json:"title" binding:"required,max=200"`
	Slug             string                `json:"slug" binding:"omitempty,max=220"`
	Description      string                `json:"description" binding:"required"`
	ShortDescription string                `json:"short_description" binding:"required,max=300"`
	IndustryID       *uint                 `json:"industry_id"`
	ClientID         *uint                 `json:"client_id"`
	ClientName       string                `json:"client_name" binding:"omitempty,max=200"`
	ProjectURL       string                `json:"project_url" binding:"omitempty,url,max=512"`
	DurationMonths   *uint                 `json:"duration_months"`
	TeamSize         *uint                 `json:"team_size"`
	BeforeTraffic    *uint                 `json:"before_traffic"`
	AfterTraffic     *uint                 `json:"after_traffic"`
	BeforeConversion *float64              `json:"before_conversion" binding:"omitempty,gte=0"`
	AfterConversion  *float64              `json:"after_conversion" binding:"omitempty,gte=0"`
	BeforeRevenue    *float64              `json:"before_revenue" binding:"omitempty,gte=0"`
	AfterRevenue     *float64              `json:"after_revenue" binding:"omitempty,gte=0"`
	FeaturedImageKey string                `json:"featured_image_key" binding:"omitempty,max=512"`
	VideoURL         string                `json:"video_url" binding:"omitempty,url,max=512"`
	IsFeatured       bool                  `json:"is_featured"`
	IsPublished      bool                  `json:"is_published"`
	MetaTitle        string                `json:"meta_title" binding:"omitempty,max=60"`
	MetaDescription  string                `json:"meta_description" binding:"omitempty,max=160"`
	TagIDs           []uint                `json:"tag_ids"`
	Images           []projectImageRequest `json:"images" binding:"omitempty,dive"`
}

type projectListItem struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	ClientName       string    `json:"client_name"`
	IndustryName     string    `json:"industry_name,omitempty"`
	ThumbnailURL     string    `json:"thumbnail_url,omitempty"`
	IsFeatured       bool      `json:"is_featured"`
	IsPublished      bool      `json:"is_published"`
	CreatedAt        time.Time `json:"created_at"`
}

type projectImageView struct {
	ID       uint   `json:"id"`
	ImageKey string `json:"image_key"`
	URL      string `json:"url,omitempty"`
	Caption  string `json:"caption"`
	Order    uint   `json:"order"`
}

type projectDetail struct {
	database.Project
	IndustryName     string             `json:"industry_name,omitempty"`
	FeaturedImageURL string             `json:"featured_image_url,omitempty"`
	Gallery          []projectImageView `json:"images"`
}

// List returns projects; anonymous callers only see published ones.
func (h *ProjectHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.Project{}).
		Preload("Industry")
	if !isStaff(c) {
		q = q.Where("is_published = ?", true)
	}
	q = applyListing(c, q, listOptions{
		boolFilters: map[string]string{"is_featured": "is_featured"},
		intFilters:  map[string]string{"industry": "industry_id"},
		search:      []string{"title", "description", "client_name"},
		ordering: map[string]string{
			"created_at": "created_at",
			"title":      "title",
		},
		defaultOrder: "created_at DESC",
	})

	var projects []database.Project
	envelope, err := paginate(c, q, &projects)
	if err != nil {
		Internal(c, "failed to list projects")
		return
	}

	items := make([]projectListItem, 0, len(projects))
	for _, p := range projects {
		item := projectListItem{
			ID:               p.ID,
			Title:            p.Title,
			Slug:             p.Slug,
			ShortDescription: p.ShortDescription,
			ClientName:       p.ClientName,
			ThumbnailURL:     thumbnailURL(h.assets, p.FeaturedImageKey),
			IsFeatured:       p.IsFeatured,
			IsPublished:      p.IsPublished,
			CreatedAt:        p.CreatedAt,
		}
		if p.Industry != nil {
			item.IndustryName = p.Industry.Name
		}
		items = append(items, item)
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single project with its images and tags.
func (h *ProjectHandler) Retrieve(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Preload("Industry").
		Preload("Tags").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order", id`)
		})
	if !isStaff(c) {
		q = q.Where("is_published = ?", true)
	}

	var project database.Project
	if err := findBySlugOrID(q, c.Param("idOrSlug"), &project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		Internal(c, "failed to query project")
		return
	}
	c.JSON(http.StatusOK, h.detail(project))
}

// Create stores a project with its images and tag links.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	project := database.Project{}
	req.apply(&project)

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return h.syncRelations(tx, &project, req)
	})
	if err != nil {
		writeSaveError(c, err, "slug")
		return
	}

	h.reply(c, http.StatusCreated, project.ID)
}

// Update overwrites a project, replacing its images and tag links.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var project database.Project
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		Internal(c, "failed to query project")
		return
	}

	req.apply(&project)
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&project).Error; err != nil {
			return err
		}
		return h.syncRelations(tx, &project, req)
	})
	if err != nil {
		writeSaveError(c, err, "slug")
		return
	}

	h.reply(c, http.StatusOK, project.ID)
}

// Delete removes a project; gallery images cascade.
func (h *ProjectHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	var project database.Project
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		Internal(c, "failed to query project")
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&database.ProjectImage{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&project).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		Internal(c, "failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r projectRequest) apply(project *database.Project) {
	project.Title = r.Title
	if r.Slug != "" {
		project.Slug = r.Slug
	}
	project.Description = r.Description
	project.ShortDescription = r.ShortDescription
	project.IndustryID = r.IndustryID
	project.ClientID = r.ClientID
	project.ClientName = r.ClientName
	project.ProjectURL = r.ProjectURL
	project.DurationMonths = r.DurationMonths
	project.TeamSize = r.TeamSize
	project.BeforeTraffic = r.BeforeTraffic
	project.AfterTraffic = r.AfterTraffic
	project.BeforeConversion = r.BeforeConversion
	project.AfterConversion = r.AfterConversion
	project.BeforeRevenue = r.BeforeRevenue
	project.AfterRevenue = r.AfterRevenue
	project.FeaturedImageKey = r.FeaturedImageKey
	project.VideoURL = r.VideoURL
	project.IsFeatured = r.IsFeatured
	project.IsPublished = r.IsPublished
	project.MetaTitle = r.MetaTitle
	project.MetaDescription = r.MetaDescription
}

// syncRelations replaces the tag links and rewrites the gallery. Updates
// always carry the full desired state, so replacement is the contract.
func (h *ProjectHandler) syncRelations(tx *gorm.DB, project *database.Project, req projectRequest) error {
	var projectTags []database.ProjectTag
	if len(req.TagIDs) > 0 {
		if err := tx.Find(&projectTags, req.TagIDs).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(project).Association("Tags").Replace(projectTags); err != nil {
		return err
	}

	if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&database.ProjectImage{}).Error; err != nil {
		return err
	}
	for _, image := range req.Images {
		record := database.ProjectImage{
			ProjectID: project.ID,
			ImageKey:  image.ImageKey,
			Caption:   image.Caption,
			Order:     image.Order,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

// reply reloads the project with relations so responses always carry the
// derived fields the hooks filled in.
func (h *ProjectHandler) reply(c *gin.Context, status int, projectID uint) {
	var project database.Project
	err := h.db.WithContext(c.Request.Context()).
		Preload("Industry").
		Preload("Tags").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order", id`)
		}).
		First(&project, projectID).Error
	if err != nil {
		Internal(c, "failed to load project")
		return
	}
	c.JSON(status, h.detail(project))
}

func (h *ProjectHandler) detail(project database.Project) projectDetail {
	detail := projectDetail{
		Project:          project,
		FeaturedImageURL: publicURL(h.assets, project.FeaturedImageKey),
		Gallery:          make([]projectImageView, 0, len(project.Images)),
	}
	if project.Industry != nil {
		detail.IndustryName = project.Industry.Name
	}
	for _, image := range project.Images {
		detail.Gallery = append(detail.Gallery, projectImageView{
			ID:       image.ID,
			ImageKey: image.ImageKey,
			URL:      publicURL(h.assets, image.ImageKey),
			Caption:  image.Caption,
			Order:    image.Order,
		})
	}
	// The flat relation is rendered through Gallery instead.
	detail.Project.Images = nil
	return detail
}
