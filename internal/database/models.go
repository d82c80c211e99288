package database

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleClient = "client"
)

// Lead workflow statuses and sources.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"

	LeadSourceWebsite     = "website"
	LeadSourceReferral    = "referral"
	LeadSourceSocialMedia = "social_media"
	LeadSourceEmail       = "email"
	LeadSourceOther       = "other"
)

// Job posting statuses and types.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
	JobStatusOnHold = "on_hold"

	JobTypeFullTime   = "full_time"
	JobTypePartTime   = "part_time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
)

// Job application pipeline statuses.
const (
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusReviewing   = "reviewing"
	ApplicationStatusShortlisted = "shortlisted"
	ApplicationStatusInterviewed = "interviewed"
	ApplicationStatusHired       = "hired"
	ApplicationStatusRejected    = "rejected"
)

// Invoice statuses.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Package tiers.
const (
	PackageTypeStarter    = "starter"
	PackageTypeGrowth     = "growth"
	PackageTypeEnterprise = "enterprise"
)

// SiteSettingsKey is the fixed key of the singleton settings row.
const SiteSettingsKey = "default"

// User is an account. Email is the login identifier.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:254" json:"email"`
	Username     string `gorm:"size:64" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"`
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	Role         string `gorm:"size:10;default:'client'" json:"role"`
	Phone        string `gorm:"size:20" json:"phone"`
	Company      string `gorm:"size:100" json:"company"`
	AvatarKey    string `gorm:"size:512" json:"avatar_key"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Service is an agency service offering.
type Service struct {
	gorm.Model
	Title             string   `gorm:"size:200" json:"title"`
	Slug              string   `gorm:"uniqueIndex;size:220" json:"slug"`
	Description       string   `gorm:"type:text" json:"description"`
	ShortDescription  string   `gorm:"size:300" json:"short_description"`
	IconKey           string   `gorm:"size:512" json:"icon_key"`
	ImageKey          string   `gorm:"size:512" json:"image_key"`
	PriceStartingFrom *float64 `gorm:"type:decimal(10,2)" json:"price_starting_from"`
	IsFeatured        bool     `gorm:"default:false" json:"is_featured"`
	IsActive          bool     `gorm:"default:true" json:"is_active"`
	Order             uint     `gorm:"default:0" json:"order"`
	MetaTitle         string   `gorm:"size:60" json:"meta_title"`
	MetaDescription   string   `gorm:"size:160" json:"meta_description"`
}

// BeforeSave derives the slug from the title when absent.
func (s *Service) BeforeSave(*gorm.DB) error {
	s.Slug = deriveSlug(s.Slug, s.Title)
	return nil
}

// Industry categorizes projects.
type Industry struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:100" json:"name"`
	Slug string `gorm:"uniqueIndex;size:120" json:"slug"`
}

func (i *Industry) BeforeSave(*gorm.DB) error {
	i.Slug = deriveSlug(i.Slug, i.Name)
	return nil
}

// Project is a portfolio case study.
type Project struct {
	gorm.Model
	Title            string         `gorm:"size:200" json:"title"`
	Slug             string         `gorm:"uniqueIndex;size:220" json:"slug"`
	Description      string         `gorm:"type:text" json:"description"`
	ShortDescription string         `gorm:"size:300" json:"short_description"`
	IndustryID       *uint          `gorm:"index" json:"industry_id"`
	Industry         *Industry      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ClientID         *uint          `gorm:"index" json:"client_id"`
	Client           *User          `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"-"`
	ClientName       string         `gorm:"size:200" json:"client_name"`
	ProjectURL       string         `gorm:"size:512" json:"project_url"`
	DurationMonths   *uint          `json:"duration_months"`
	TeamSize         *uint          `json:"team_size"`
	BeforeTraffic    *uint          `json:"before_traffic"`
	AfterTraffic     *uint          `json:"after_traffic"`
	BeforeConversion *float64       `gorm:"type:decimal(5,2)" json:"before_conversion"`
	AfterConversion  *float64       `gorm:"type:decimal(5,2)" json:"after_conversion"`
	BeforeRevenue    *float64       `gorm:"type:decimal(12,2)" json:"before_revenue"`
	AfterRevenue     *float64       `gorm:"type:decimal(12,2)" json:"after_revenue"`
	FeaturedImageKey string         `gorm:"size:512" json:"featured_image_key"`
	VideoURL         string         `gorm:"size:512" json:"video_url"`
	IsFeatured       bool           `gorm:"default:false" json:"is_featured"`
	IsPublished      bool           `gorm:"default:false" json:"is_published"`
	MetaTitle        string         `gorm:"size:60" json:"meta_title"`
	MetaDescription  string         `gorm:"size:160" json:"meta_description"`
	Tags             []ProjectTag   `gorm:"many2many:project_project_tags" json:"tags,omitempty"`
	Images           []ProjectImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// BeforeSave derives the slug and, when the denormalized client name was
// left blank, backfills it from the linked client account.
func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Slug = deriveSlug(p.Slug, p.Title)
	if p.ClientID != nil && strings.TrimSpace(p.ClientName) == "" {
		var client User
		if err := tx.Select("id", "username", "first_name", "last_name").
			First(&client, *p.ClientID).Error; err != nil {
			return err
		}
		p.ClientName = client.FullName()
	}
	return nil
}

// ProjectImage is a gallery image attached to a project.
type ProjectImage struct {
	gorm.Model
	ProjectID uint   `gorm:"index" json:"project_id"`
	ImageKey  string `gorm:"size:512" json:"image_key"`
	Caption   string `gorm:"size:200" json:"caption"`
	Order     uint   `gorm:"default:0" json:"order"`
}

// ProjectTag labels projects.
type ProjectTag struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:50" json:"name"`
	Slug string `gorm:"uniqueIndex;size:70" json:"slug"`
}

func (t *ProjectTag) BeforeSave(*gorm.DB) error {
	t.Slug = deriveSlug(t.Slug, t.Name)
	return nil
}

// Testimonial is a client quote, optionally tied to a project.
type Testimonial struct {
	gorm.Model
	Name           string   `gorm:"size:100" json:"name"`
	Company        string   `gorm:"size:100" json:"company"`
	Text           string   `gorm:"type:text" json:"text"`
	Rating         uint     `gorm:"default:5" json:"rating"`
	PhotoKey       string   `gorm:"size:512" json:"photo_key"`
	CompanyLogoKey string   `gorm:"size:512" json:"company_logo_key"`
	ProjectID      *uint    `gorm:"index" json:"project_id"`
	Project        *Project `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	IsFeatured     bool     `gorm:"default:false" json:"is_featured"`
	IsPublished    bool     `gorm:"default:true" json:"is_published"`
}

// BlogCategory groups blog posts.
type BlogCategory struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:100" json:"name"`
	Slug        string `gorm:"uniqueIndex;size:120" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (c *BlogCategory) BeforeSave(*gorm.DB) error {
	c.Slug = deriveSlug(c.Slug, c.Name)
	return nil
}

// BlogTag labels blog posts.
type BlogTag struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:50" json:"name"`
	Slug string `gorm:"uniqueIndex;size:70" json:"slug"`
}

func (t *BlogTag) BeforeSave(*gorm.DB) error {
	t.Slug = deriveSlug(t.Slug, t.Name)
	return nil
}

// BlogPost is an article. ViewsCount only ever grows; detail fetches
// increment it in place at the database.
type BlogPost struct {
	gorm.Model
	Title            string        `gorm:"size:200" json:"title"`
	Slug             string        `gorm:"uniqueIndex;size:220" json:"slug"`
	Content          string        `gorm:"type:text" json:"content"`
	Excerpt          string        `gorm:"size:300" json:"excerpt"`
	FeaturedImageKey string        `gorm:"size:512" json:"featured_image_key"`
	AuthorID         uint          `gorm:"index" json:"author_id"`
	Author           *User         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryID       *uint         `gorm:"index" json:"category_id"`
	Category         *BlogCategory `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Tags             []BlogTag     `gorm:"many2many:blog_post_tags" json:"tags,omitempty"`
	IsPublished      bool          `gorm:"default:false" json:"is_published"`
	IsFeatured       bool          `gorm:"default:false" json:"is_featured"`
	PublishedAt      *time.Time    `json:"published_at"`
	MetaTitle        string        `gorm:"size:60" json:"meta_title"`
	MetaDescription  string        `gorm:"size:160" json:"meta_description"`
	ViewsCount       uint          `gorm:"default:0" json:"views_count"`
}

func (p *BlogPost) BeforeSave(*gorm.DB) error {
	p.Slug = deriveSlug(p.Slug, p.Title)
	return nil
}

// Package is a pricing tier.
type Package struct {
	gorm.Model
	Name          string         `gorm:"size:100" json:"name"`
	PackageType   string         `gorm:"size:20" json:"package_type"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         float64        `gorm:"type:decimal(10,2)" json:"price"`
	BillingPeriod string         `gorm:"size:20;default:'monthly'" json:"billing_period"`
	Features      datatypes.JSON `json:"features"`
	IsPopular     bool           `gorm:"default:false" json:"is_popular"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	Order         uint           `gorm:"default:0" json:"order"`
}

// Lead is a contact-form inquiry.
type Lead struct {
	gorm.Model
	Name                string     `gorm:"size:100" json:"name"`
	Email               string     `gorm:"size:254;index" json:"email"`
	Phone               string     `gorm:"size:20" json:"phone"`
	Company             string     `gorm:"size:100" json:"company"`
	Message             string     `gorm:"type:text" json:"message"`
	Status              string     `gorm:"size:20;default:'new'" json:"status"`
	Source              string     `gorm:"size:20;default:'website'" json:"source"`
	InterestedServiceID *uint      `gorm:"index" json:"interested_service_id"`
	InterestedService   *Service   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	BudgetRange         string     `gorm:"size:50" json:"budget_range"`
	AssignedToID        *uint      `gorm:"index" json:"assigned_to_id"`
	AssignedTo          *User      `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
	Notes               string     `gorm:"type:text" json:"notes"`
	FollowUpDate        *time.Time `json:"follow_up_date"`
}

// TeamMember is a staff profile shown on the site.
type TeamMember struct {
	gorm.Model
	Name        string `gorm:"size:100" json:"name"`
	Role        string `gorm:"size:100" json:"role"`
	Bio         string `gorm:"type:text" json:"bio"`
	PhotoKey    string `gorm:"size:512" json:"photo_key"`
	Email       string `gorm:"size:254" json:"email"`
	LinkedinURL string `gorm:"size:512" json:"linkedin_url"`
	TwitterURL  string `gorm:"size:512" json:"twitter_url"`
	GithubURL   string `gorm:"size:512" json:"github_url"`
	Order       uint   `gorm:"default:0" json:"order"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// Job is an open position.
type Job struct {
	gorm.Model
	Title        string `gorm:"size:200" json:"title"`
	Slug         string `gorm:"uniqueIndex;size:220" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	Requirements string `gorm:"type:text" json:"requirements"`
	JobType      string `gorm:"size:20" json:"job_type"`
	Location     string `gorm:"size:100" json:"location"`
	SalaryRange  string `gorm:"size:100" json:"salary_range"`
	Status       string `gorm:"size:20;default:'open'" json:"status"`
	PostedByID   uint   `gorm:"index" json:"posted_by_id"`
	PostedBy     *User  `gorm:"foreignKey:PostedByID;constraint:OnDelete:CASCADE" json:"-"`
}

func (j *Job) BeforeSave(*gorm.DB) error {
	j.Slug = deriveSlug(j.Slug, j.Title)
	return nil
}

// JobApplication is a candidate submission for a job.
type JobApplication struct {
	gorm.Model
	JobID        uint   `gorm:"index" json:"job_id"`
	Job          *Job   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name         string `gorm:"size:100" json:"name"`
	Email        string `gorm:"size:254;index" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`
	ResumeKey    string `gorm:"size:512" json:"resume_key"`
	CoverLetter  string `gorm:"type:text" json:"cover_letter"`
	PortfolioURL string `gorm:"size:512" json:"portfolio_url"`
	Status       string `gorm:"size:20;default:'submitted'" json:"status"`
	Notes        string `gorm:"type:text" json:"notes"`
}

// FAQ is a frequently asked question.
type FAQ struct {
	gorm.Model
	Question string `gorm:"size:300" json:"question"`
	Answer   string `gorm:"type:text" json:"answer"`
	Category string `gorm:"size:100" json:"category"`
	Order    uint   `gorm:"default:0" json:"order"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Invoice bills a client, optionally against a project.
type Invoice struct {
	gorm.Model
	InvoiceNumber string     `gorm:"uniqueIndex;size:50" json:"invoice_number"`
	ClientID      uint       `gorm:"index" json:"client_id"`
	Client        *User      `gorm:"foreignKey:ClientID" json:"-"`
	ProjectID     *uint      `gorm:"index" json:"project_id"`
	Project       *Project   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Amount        float64    `gorm:"type:decimal(10,2)" json:"amount"`
	TaxAmount     float64    `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	TotalAmount   float64    `gorm:"type:decimal(10,2)" json:"total_amount"`
	Description   string     `gorm:"type:text" json:"description"`
	DueDate       time.Time  `json:"due_date"`
	Status        string     `gorm:"size:20;default:'draft'" json:"status"`
	PaidDate      *time.Time `json:"paid_date"`
}

// BeforeSave recomputes the total on every write. A client-supplied
// total is always overwritten.
func (i *Invoice) BeforeSave(*gorm.DB) error {
	i.TotalAmount = i.Amount + i.TaxAmount
	return nil
}

// SiteSettings is the singleton site configuration row, keyed by
// SiteSettingsKey so the unique index arbitrates concurrent first access.
type SiteSettings struct {
	gorm.Model
	SingletonKey string `gorm:"uniqueIndex;size:32" json:"-"`

	HeroTitle       string `gorm:"size:200" json:"hero_title"`
	HeroSubtitle    string `gorm:"size:300" json:"hero_subtitle"`
	HeroDescription string `gorm:"type:text" json:"hero_description"`
	HeroCTAText     string `gorm:"size:50" json:"hero_cta_text"`
	HeroCTAURL      string `gorm:"size:200" json:"hero_cta_url"`

	CompanyName    string `gorm:"size:100" json:"company_name"`
	CompanyEmail   string `gorm:"size:254" json:"company_email"`
	CompanyPhone   string `gorm:"size:20" json:"company_phone"`
	CompanyAddress string `gorm:"type:text" json:"company_address"`

	FacebookURL  string `gorm:"size:512" json:"facebook_url"`
	TwitterURL   string `gorm:"size:512" json:"twitter_url"`
	LinkedinURL  string `gorm:"size:512" json:"linkedin_url"`
	InstagramURL string `gorm:"size:512" json:"instagram_url"`
	YoutubeURL   string `gorm:"size:512" json:"youtube_url"`

	ModelSpeed          float64 `gorm:"default:1" json:"model_speed"`
	ModelPrimaryColor   string  `gorm:"size:7" json:"model_primary_color"`
	ModelSecondaryColor string  `gorm:"size:7" json:"model_secondary_color"`

	SiteTitle       string `gorm:"size:60" json:"site_title"`
	SiteDescription string `gorm:"size:160" json:"site_description"`
}

// DefaultSiteSettings returns the row created on first settings access.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SingletonKey:        SiteSettingsKey,
		HeroTitle:           "Welcome to Saim Enterprises",
		HeroSubtitle:        "Your Digital Success Partner",
		HeroDescription:     "We help businesses grow with cutting-edge digital solutions.",
		HeroCTAText:         "Get Started",
		HeroCTAURL:          "/contact",
		CompanyName:         "Saim Enterprises",
		CompanyEmail:        "info@saimenterprises.com",
		CompanyPhone:        "+1 (555) 123-4567",
		CompanyAddress:      "123 Business St, City, State 12345",
		ModelSpeed:          1.0,
		ModelPrimaryColor:   "#3B82F6",
		ModelSecondaryColor: "#1E40AF",
		SiteTitle:           "Saim Enterprises - Digital Agency",
		SiteDescription:     "Professional digital agency providing web development, design, and marketing services.",
	}
}

// AllModels lists every table for auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&Service{},
		&Industry{},
		&Project{},
		&ProjectImage{},
		&ProjectTag{},
		&Testimonial{},
		&BlogCategory{},
		&BlogTag{},
		&BlogPost{},
		&Package{},
		&Lead{},
		&TeamMember{},
		&Job{},
		&JobApplication{},
		&FAQ{},
		&Invoice{},
		&SiteSettings{},
	}
}

// deriveSlug keeps an explicit slug when present, otherwise derives a
// URL-safe one from the title.
func deriveSlug(current, title string) string {
	if s := strings.TrimSpace(current); s != "" {
		return slug.Make(s)
	}
	return slug.Make(title)
}

// ValidLeadStatus reports whether s is a known lead workflow state.
// Transitions are deliberately unconstrained.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// ValidLeadSource reports whether s is a known lead source.
func ValidLeadSource(s string) bool {
	switch s {
	case LeadSourceWebsite, LeadSourceReferral, LeadSourceSocialMedia, LeadSourceEmail, LeadSourceOther:
		return true
	}
	return false
}

// ValidJobStatus reports whether s is a known job status.
func ValidJobStatus(s string) bool {
	switch s {
	case JobStatusOpen, JobStatusClosed, JobStatusOnHold:
		return true
	}
	return false
}

// ValidJobType reports whether s is a known job type.
func ValidJobType(s string) bool {
	switch s {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

// ValidApplicationStatus reports whether s is a known pipeline state.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusReviewing, ApplicationStatusShortlisted,
		ApplicationStatusInterviewed, ApplicationStatusHired, ApplicationStatusRejected:
		return true
	}
	return false
}

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// ValidPackageType reports whether s is a known pricing tier.
func ValidPackageType(s string) bool {
	switch s {
	case PackageTypeStarter, PackageTypeGrowth, PackageTypeEnterprise:
		return true
	}
	return false
}

// ValidRole reports whether s is a known account role.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleEditor, RoleClient:
		return true
	}
	return false
}
