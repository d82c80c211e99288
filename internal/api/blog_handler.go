package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/api/middleware"
	"agencycms/internal/database"
)

// BlogHandler exposes the blog posts resource.
type BlogHandler struct {
	db     *gorm.DB
	assets AssetResolver
}

func NewBlogHandler(db *gorm.DB, assets AssetResolver) *BlogHandler {
	return &BlogHandler{db: db, assets: assets}
}

type blogPostRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Slug             string `json:"slug" binding:"omitempty,max=220"`
	Content          string `json:"content" binding:"required"`
	Excerpt          string `json:"excerpt" binding:"omitempty,max=300"`
	FeaturedImageKey string `json:"featured_image_key" binding:"omitempty,max=512"`
	CategoryID       *uint  `json:"category_id"`
	TagIDs           []uint `json:"tag_ids"`
	IsPublished      bool   `json:"is_published"`
	IsFeatured       bool   `json:"is_featured"`
	MetaTitle        string `json:"meta_title" binding:"omitempty,max=60"`
	MetaDescription  string `json:"meta_description" binding:"omitempty,max=160"`
}

type blogPostListItem struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	AuthorName   string     `json:"author_name,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	IsFeatured   bool       `json:"is_featured"`
	PublishedAt  *time.Time `json:"published_at"`
	ViewsCount   uint       `json:"views_count"`
}

type blogPostDetail struct {
	database.BlogPost
	AuthorName       string `json:"author_name,omitempty"`
	CategoryName     string `json:"category_name,omitempty"`
	FeaturedImageURL string `json:"featured_image_url,omitempty"`
}

// List returns posts; anonymous callers only see published ones.
func (h *BlogHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.BlogPost{}).
		Preload("Author").
		Preload("Category")
	if !isStaff(c) {
		q = q.Where("is_published = ?", true)
	}
	q = applyListing(c, q, listOptions{
		boolFilters: map[string]string{"is_featured": "is_featured"},
		intFilters:  map[string]string{"category": "category_id"},
		search:      []string{"title", "content", "excerpt"},
		ordering: map[string]string{
			"published_at": "published_at",
			"views_count":  "views_count",
		},
		defaultOrder: "published_at DESC",
	})

	var posts []database.BlogPost
	envelope, err := paginate(c, q, &posts)
	if err != nil {
		Internal(c, "failed to list blog posts")
		return
	}

	items := make([]blogPostListItem, 0, len(posts))
	for _, p := range posts {
		item := blogPostListItem{
			ID:           p.ID,
			Title:        p.Title,
			Slug:         p.Slug,
			Excerpt:      p.Excerpt,
			ThumbnailURL: thumbnailURL(h.assets, p.FeaturedImageKey),
			IsFeatured:   p.IsFeatured,
			PublishedAt:  p.PublishedAt,
			ViewsCount:   p.ViewsCount,
		}
		if p.Author != nil {
			item.AuthorName = p.Author.FullName()
		}
		if p.Category != nil {
			item.CategoryName = p.Category.Name
		}
		items = append(items, item)
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single post. Every fetch bumps the view counter at
// the database so concurrent reads each count exactly once.
func (h *BlogHandler) Retrieve(c *gin.Context) {
	ctx := c.Request.Context()
	q := h.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags")
	if !isStaff(c) {
		q = q.Where("is_published = ?", true)
	}

	var post database.BlogPost
	if err := findBySlugOrID(q, c.Param("idOrSlug"), &post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "blog post not found")
			return
		}
		Internal(c, "failed to query blog post")
		return
	}

	err := h.db.WithContext(ctx).
		Model(&database.BlogPost{}).
		Where("id = ?", post.ID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	if err != nil {
		Internal(c, "failed to record view")
		return
	}
	post.ViewsCount++

	c.JSON(http.StatusOK, h.detail(post))
}

// Create stores a post authored by the caller.
func (h *BlogHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req blogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	post := database.BlogPost{AuthorID: userID}
	req.apply(&post)

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return h.syncTags(tx, &post, req.TagIDs)
	})
	if err != nil {
		writeSaveError(c, err, "slug")
		return
	}

	h.reply(c, http.StatusCreated, post.ID)
}

// Update overwrites a post. Authorship never changes.
func (h *BlogHandler) Update(c *gin.Context) {
	var req blogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var post database.BlogPost
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "blog post not found")
			return
		}
		Internal(c, "failed to query blog post")
		return
	}

	req.apply(&post)
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		return h.syncTags(tx, &post, req.TagIDs)
	})
	if err != nil {
		writeSaveError(c, err, "slug")
		return
	}

	h.reply(c, http.StatusOK, post.ID)
}

// Delete removes a post.
func (h *BlogHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	var post database.BlogPost
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "blog post not found")
			return
		}
		Internal(c, "failed to query blog post")
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		Internal(c, "failed to delete blog post")
		return
	}
	c.Status(http.StatusNoContent)
}

// apply copies request fields onto the post and stamps published_at the
// first time the post goes live.
func (r blogPostRequest) apply(post *database.BlogPost) {
	post.Title = r.Title
	if r.Slug != "" {
		post.Slug = r.Slug
	}
	post.Content = r.Content
	post.Excerpt = r.Excerpt
	post.FeaturedImageKey = r.FeaturedImageKey
	post.CategoryID = r.CategoryID
	post.IsFeatured = r.IsFeatured
	post.MetaTitle = r.MetaTitle
	post.MetaDescription = r.MetaDescription

	if r.IsPublished && !post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	post.IsPublished = r.IsPublished
}

func (h *BlogHandler) syncTags(tx *gorm.DB, post *database.BlogPost, tagIDs []uint) error {
	var blogTags []database.BlogTag
	if len(tagIDs) > 0 {
		if err := tx.Find(&blogTags, tagIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(post).Association("Tags").Replace(blogTags)
}

func (h *BlogHandler) reply(c *gin.Context, status int, postID uint) {
	var post database.BlogPost
	err := h.db.WithContext(c.Request.Context()).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		First(&post, postID).Error
	if err != nil {
		Internal(c, "failed to load blog post")
		return
	}
	c.JSON(status, h.detail(post))
}

func (h *BlogHandler) detail(post database.BlogPost) blogPostDetail {
	detail := blogPostDetail{
		BlogPost:         post,
		FeaturedImageURL: publicURL(h.assets, post.FeaturedImageKey),
	}
	if post.Author != nil {
		detail.AuthorName = post.Author.FullName()
	}
	if post.Category != nil {
		detail.CategoryName = post.Category.Name
	}
	return detail
}
