package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// SettingsHandler exposes the singleton site settings and the admin
// dashboard aggregates.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

type settingsRequest struct {
	HeroTitle       string `json:"hero_title" binding:"required,max=200"`
	HeroSubtitle    string `json:"hero_subtitle" binding:"omitempty,max=300"`
	HeroDescription string `json:"hero_description"`
	HeroCTAText     string `json:"hero_cta_text" binding:"omitempty,max=50"`
	HeroCTAURL      string `json:"hero_cta_url" binding:"omitempty,max=200"`

	CompanyName    string `json:"company_name" binding:"required,max=100"`
	CompanyEmail   string `json:"company_email" binding:"omitempty,email,max=254"`
	CompanyPhone   string `json:"company_phone" binding:"omitempty,max=20"`
	CompanyAddress string `json:"company_address"`

	FacebookURL  string `json:"facebook_url" binding:"omitempty,url,max=512"`
	TwitterURL   string `json:"twitter_url" binding:"omitempty,url,max=512"`
	LinkedinURL  string `json:"linkedin_url" binding:"omitempty,url,max=512"`
	InstagramURL string `json:"instagram_url" binding:"omitempty,url,max=512"`
	YoutubeURL   string `json:"youtube_url" binding:"omitempty,url,max=512"`

	ModelSpeed          *float64 `json:"model_speed" binding:"omitempty,gte=0"`
	ModelPrimaryColor   string   `json:"model_primary_color" binding:"omitempty,max=7"`
	ModelSecondaryColor string   `json:"model_secondary_color" binding:"omitempty,max=7"`

	SiteTitle       string `json:"site_title" binding:"omitempty,max=60"`
	SiteDescription string `json:"site_description" binding:"omitempty,max=160"`
}

// Get returns the settings row, creating it with defaults on first
// access. A concurrent first access loses the insert race on the unique
// singleton key and falls back to reading the winner's row.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := loadSiteSettings(c.Request.Context(), h.db)
	if err != nil {
		Internal(c, "failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update overwrites the singleton settings row.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	settings, err := loadSiteSettings(ctx, h.db)
	if err != nil {
		Internal(c, "failed to load settings")
		return
	}

	req.apply(&settings)
	if err := h.db.WithContext(ctx).Save(&settings).Error; err != nil {
		Internal(c, "failed to save settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// loadSiteSettings is the get-or-create read shared by handlers.
func loadSiteSettings(ctx context.Context, db *gorm.DB) (database.SiteSettings, error) {
	defaults := database.DefaultSiteSettings()

	var settings database.SiteSettings
	err := db.WithContext(ctx).
		Where(database.SiteSettings{SingletonKey: database.SiteSettingsKey}).
		Attrs(defaults).
		FirstOrCreate(&settings).Error
	if err == nil {
		return settings, nil
	}
	if !isDuplicateKey(err) {
		return database.SiteSettings{}, err
	}

	// Lost the first-access insert race; the row exists now.
	err = db.WithContext(ctx).
		Where("singleton_key = ?", database.SiteSettingsKey).
		First(&settings).Error
	return settings, err
}

func (r settingsRequest) apply(settings *database.SiteSettings) {
	settings.HeroTitle = r.HeroTitle
	settings.HeroSubtitle = r.HeroSubtitle
	settings.HeroDescription = r.HeroDescription
	settings.HeroCTAText = r.HeroCTAText
	settings.HeroCTAURL = r.HeroCTAURL
	settings.CompanyName = r.CompanyName
	settings.CompanyEmail = r.CompanyEmail
	settings.CompanyPhone = r.CompanyPhone
	settings.CompanyAddress = r.CompanyAddress
	settings.FacebookURL = r.FacebookURL
	settings.TwitterURL = r.TwitterURL
	settings.LinkedinURL = r.LinkedinURL
	settings.InstagramURL = r.InstagramURL
	settings.YoutubeURL = r.YoutubeURL
	if r.ModelSpeed != nil {
		settings.ModelSpeed = *r.ModelSpeed
	}
	settings.ModelPrimaryColor = r.ModelPrimaryColor
	settings.ModelSecondaryColor = r.ModelSecondaryColor
	settings.SiteTitle = r.SiteTitle
	settings.SiteDescription = r.SiteDescription
}

// dashboardStats is the admin landing-page aggregate document.
type dashboardStats struct {
	TotalProjects       int64 `json:"total_projects"`
	PublishedProjects   int64 `json:"published_projects"`
	TotalLeads          int64 `json:"total_leads"`
	NewLeads            int64 `json:"new_leads"`
	TotalPosts          int64 `json:"total_posts"`
	PublishedPosts      int64 `json:"published_posts"`
	TotalTestimonials   int64 `json:"total_testimonials"`
	TotalServices       int64 `json:"total_services"`
	ActiveServices      int64 `json:"active_services"`
	TeamMembers         int64 `json:"team_members"`
	OpenJobs            int64 `json:"open_jobs"`
	PendingApplications int64 `json:"pending_applications"`
}

// DashboardStats returns the aggregate counts for the admin dashboard.
func (h *SettingsHandler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	var stats dashboardStats
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalProjects, db.Model(&database.Project{})},
		{&stats.PublishedProjects, db.Model(&database.Project{}).Where("is_published = ?", true)},
		{&stats.TotalLeads, db.Model(&database.Lead{})},
		{&stats.NewLeads, db.Model(&database.Lead{}).Where("status = ?", database.LeadStatusNew)},
		{&stats.TotalPosts, db.Model(&database.BlogPost{})},
		{&stats.PublishedPosts, db.Model(&database.BlogPost{}).Where("is_published = ?", true)},
		{&stats.TotalTestimonials, db.Model(&database.Testimonial{})},
		{&stats.TotalServices, db.Model(&database.Service{})},
		{&stats.ActiveServices, db.Model(&database.Service{}).Where("is_active = ?", true)},
		{&stats.TeamMembers, db.Model(&database.TeamMember{}).Where("is_active = ?", true)},
		{&stats.OpenJobs, db.Model(&database.Job{}).Where("status = ?", database.JobStatusOpen)},
		{&stats.PendingApplications, db.Model(&database.JobApplication{}).Where("status = ?", database.ApplicationStatusSubmitted)},
	}
	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			Internal(c, "failed to aggregate stats")
			return
		}
	}

	c.JSON(http.StatusOK, stats)
}
