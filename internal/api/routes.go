package api

import (
	"github.com/gin-gonic/gin"

	"agencycms/internal/api/middleware"
	"agencycms/internal/auth"
	"agencycms/internal/database"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Auth           *AuthHandler
	Assets         *AssetHandler
	Services       *ServiceHandler
	Industries     *IndustryHandler
	Projects       *ProjectHandler
	ProjectTags    *ProjectTagHandler
	Testimonials   *TestimonialHandler
	BlogCategories *BlogCategoryHandler
	BlogTags       *BlogTagHandler
	BlogPosts      *BlogHandler
	Packages       *PackageHandler
	Leads          *LeadHandler
	TeamMembers    *TeamMemberHandler
	Jobs           *JobHandler
	Applications   *JobApplicationHandler
	FAQs           *FAQHandler
	Invoices       *InvoiceHandler
	Settings       *SettingsHandler
	Users          *UserHandler
}

// RegisterRoutes attaches the /v1 surface. Reads are public (widened
// for staff via the optional token), writes require authentication, and
// back-office resources require the admin role.
func RegisterRoutes(router *gin.Engine, authService *auth.AuthService, h Handlers) {
	v1 := router.Group("/v1")

	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(authService))

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(authService))

	admin := v1.Group("")
	admin.Use(middleware.AuthMiddleware(authService), middleware.RequireRole(database.RoleAdmin))

	// Authentication.
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/refresh", h.Auth.Refresh)
	v1.POST("/auth/logout", h.Auth.Logout)

	// Public intake.
	public.POST("/contact", h.Leads.SubmitContact)
	public.POST("/apply", h.Applications.SubmitApplication)

	// Services.
	public.GET("/services", h.Services.List)
	public.GET("/services/:idOrSlug", h.Services.Retrieve)
	authed.POST("/services", h.Services.Create)
	authed.PUT("/services/:idOrSlug", h.Services.Update)
	authed.DELETE("/services/:idOrSlug", h.Services.Delete)

	// Industries.
	public.GET("/industries", h.Industries.List)
	public.GET("/industries/:idOrSlug", h.Industries.Retrieve)
	admin.POST("/industries", h.Industries.Create)
	admin.PUT("/industries/:idOrSlug", h.Industries.Update)
	admin.DELETE("/industries/:idOrSlug", h.Industries.Delete)

	// Projects.
	public.GET("/projects", h.Projects.List)
	public.GET("/projects/:idOrSlug", h.Projects.Retrieve)
	authed.POST("/projects", h.Projects.Create)
	authed.PUT("/projects/:idOrSlug", h.Projects.Update)
	authed.DELETE("/projects/:idOrSlug", h.Projects.Delete)

	// Project tags.
	public.GET("/project-tags", h.ProjectTags.List)
	public.GET("/project-tags/:idOrSlug", h.ProjectTags.Retrieve)
	admin.POST("/project-tags", h.ProjectTags.Create)
	admin.PUT("/project-tags/:idOrSlug", h.ProjectTags.Update)
	admin.DELETE("/project-tags/:idOrSlug", h.ProjectTags.Delete)

	// Testimonials.
	public.GET("/testimonials", h.Testimonials.List)
	public.GET("/testimonials/:id", h.Testimonials.Retrieve)
	authed.POST("/testimonials", h.Testimonials.Create)
	authed.PUT("/testimonials/:id", h.Testimonials.Update)
	authed.DELETE("/testimonials/:id", h.Testimonials.Delete)

	// Blog.
	public.GET("/blog-categories", h.BlogCategories.List)
	public.GET("/blog-categories/:idOrSlug", h.BlogCategories.Retrieve)
	admin.POST("/blog-categories", h.BlogCategories.Create)
	admin.PUT("/blog-categories/:idOrSlug", h.BlogCategories.Update)
	admin.DELETE("/blog-categories/:idOrSlug", h.BlogCategories.Delete)

	public.GET("/blog-tags", h.BlogTags.List)
	public.GET("/blog-tags/:idOrSlug", h.BlogTags.Retrieve)
	admin.POST("/blog-tags", h.BlogTags.Create)
	admin.PUT("/blog-tags/:idOrSlug", h.BlogTags.Update)
	admin.DELETE("/blog-tags/:idOrSlug", h.BlogTags.Delete)

	public.GET("/blog-posts", h.BlogPosts.List)
	public.GET("/blog-posts/:idOrSlug", h.BlogPosts.Retrieve)
	authed.POST("/blog-posts", h.BlogPosts.Create)
	authed.PUT("/blog-posts/:idOrSlug", h.BlogPosts.Update)
	authed.DELETE("/blog-posts/:idOrSlug", h.BlogPosts.Delete)

	// Packages.
	public.GET("/packages", h.Packages.List)
	public.GET("/packages/:id", h.Packages.Retrieve)
	admin.POST("/packages", h.Packages.Create)
	admin.PUT("/packages/:id", h.Packages.Update)
	admin.DELETE("/packages/:id", h.Packages.Delete)

	// Leads.
	admin.GET("/leads", h.Leads.List)
	admin.GET("/leads/:id", h.Leads.Retrieve)
	admin.POST("/leads", h.Leads.Create)
	admin.PUT("/leads/:id", h.Leads.Update)
	admin.DELETE("/leads/:id", h.Leads.Delete)

	// Team members.
	public.GET("/team-members", h.TeamMembers.List)
	public.GET("/team-members/:id", h.TeamMembers.Retrieve)
	admin.POST("/team-members", h.TeamMembers.Create)
	admin.PUT("/team-members/:id", h.TeamMembers.Update)
	admin.DELETE("/team-members/:id", h.TeamMembers.Delete)

	// Jobs and applications.
	public.GET("/jobs", h.Jobs.List)
	public.GET("/jobs/:idOrSlug", h.Jobs.Retrieve)
	authed.POST("/jobs", h.Jobs.Create)
	authed.PUT("/jobs/:idOrSlug", h.Jobs.Update)
	authed.DELETE("/jobs/:idOrSlug", h.Jobs.Delete)

	admin.GET("/job-applications", h.Applications.List)
	admin.GET("/job-applications/:id", h.Applications.Retrieve)
	admin.PUT("/job-applications/:id", h.Applications.Update)
	admin.DELETE("/job-applications/:id", h.Applications.Delete)

	// FAQs.
	public.GET("/faqs", h.FAQs.List)
	public.GET("/faqs/:id", h.FAQs.Retrieve)
	admin.POST("/faqs", h.FAQs.Create)
	admin.PUT("/faqs/:id", h.FAQs.Update)
	admin.DELETE("/faqs/:id", h.FAQs.Delete)

	// Invoices.
	admin.GET("/invoices", h.Invoices.List)
	admin.GET("/invoices/:id", h.Invoices.Retrieve)
	admin.POST("/invoices", h.Invoices.Create)
	admin.PUT("/invoices/:id", h.Invoices.Update)
	admin.DELETE("/invoices/:id", h.Invoices.Delete)

	// Settings and dashboard.
	v1.GET("/settings", h.Settings.Get)
	admin.PUT("/settings", h.Settings.Update)
	admin.GET("/dashboard/stats", h.Settings.DashboardStats)

	// Accounts.
	authed.GET("/users/me", h.Users.Me)
	admin.GET("/users", h.Users.List)
	admin.GET("/users/:id", h.Users.Retrieve)
	admin.POST("/users", h.Users.Create)
	admin.PUT("/users/:id", h.Users.Update)
	admin.DELETE("/users/:id", h.Users.Delete)

	// Media uploads.
	authed.POST("/assets/media", h.Assets.UploadMedia)
}
