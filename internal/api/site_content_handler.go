package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// lookupByID loads a record by the numeric :id path parameter, writing
// the error response on failure.
func lookupByID(c *gin.Context, db *gorm.DB, out any, label string) bool {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		NotFound(c, label+" not found")
		return false
	}
	if err := db.WithContext(c.Request.Context()).First(out, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, label+" not found")
			return false
		}
		Internal(c, "failed to query "+label)
		return false
	}
	return true
}

// PackageHandler exposes the pricing packages resource.
type PackageHandler struct {
	db *gorm.DB
}

func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

type packageRequest struct {
	Name          string   `json:"name" binding:"required,max=100"`
	PackageType   string   `json:"package_type" binding:"required,oneof=starter growth enterprise"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"gte=0"`
	BillingPeriod string   `json:"billing_period" binding:"omitempty,max=20"`
	Features      []string `json:"features"`
	IsPopular     bool     `json:"is_popular"`
	IsActive      *bool    `json:"is_active"`
	Order         uint     `json:"order"`
}

// List returns active packages ordered for the pricing page.
func (h *PackageHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.Package{}).
		Where("is_active = ?", true)
	q = applyListing(c, q, listOptions{
		filters: map[string]string{"package_type": "package_type"},
		ordering: map[string]string{
			"price": "price",
			"order": `"order"`,
		},
		defaultOrder: `"order", price`,
	})

	var packages []database.Package
	envelope, err := paginate(c, q, &packages)
	if err != nil {
		Internal(c, "failed to list packages")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *PackageHandler) Retrieve(c *gin.Context) {
	var pkg database.Package
	if !lookupByID(c, h.db, &pkg, "package") {
		return
	}
	if !pkg.IsActive && !isStaff(c) {
		NotFound(c, "package not found")
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) Create(c *gin.Context) {
	var req packageRequest
	if !bindJSON(c, &req) {
		return
	}

	pkg := database.Package{}
	if err := req.apply(&pkg); err != nil {
		Internal(c, "failed to encode features")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; err != nil {
		Internal(c, "failed to save package")
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) Update(c *gin.Context) {
	var req packageRequest
	if !bindJSON(c, &req) {
		return
	}

	var pkg database.Package
	if !lookupByID(c, h.db, &pkg, "package") {
		return
	}

	if err := req.apply(&pkg); err != nil {
		Internal(c, "failed to encode features")
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Save(&pkg).Error; err != nil {
		Internal(c, "failed to save package")
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) Delete(c *gin.Context) {
	var pkg database.Package
	if !lookupByID(c, h.db, &pkg, "package") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&pkg).Error; err != nil {
		Internal(c, "failed to delete package")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r packageRequest) apply(pkg *database.Package) error {
	pkg.Name = r.Name
	pkg.PackageType = r.PackageType
	pkg.Description = r.Description
	pkg.Price = r.Price
	if r.BillingPeriod != "" {
		pkg.BillingPeriod = r.BillingPeriod
	} else if pkg.ID == 0 {
		pkg.BillingPeriod = "monthly"
	}
	pkg.IsPopular = r.IsPopular
	if r.IsActive != nil {
		pkg.IsActive = *r.IsActive
	} else if pkg.ID == 0 {
		pkg.IsActive = true
	}
	pkg.Order = r.Order

	features := r.Features
	if features == nil {
		features = []string{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return err
	}
	pkg.Features = datatypes.JSON(encoded)
	return nil
}

// TeamMemberHandler exposes the team members resource.
type TeamMemberHandler struct {
	db     *gorm.DB
	assets AssetResolver
}

func NewTeamMemberHandler(db *gorm.DB, assets AssetResolver) *TeamMemberHandler {
	return &TeamMemberHandler{db: db, assets: assets}
}

type teamMemberRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Role        string `json:"role" binding:"required,max=100"`
	Bio         string `json:"bio"`
	PhotoKey    string `json:"photo_key" binding:"omitempty,max=512"`
	Email       string `json:"email" binding:"omitempty,email,max=254"`
	LinkedinURL string `json:"linkedin_url" binding:"omitempty,url,max=512"`
	TwitterURL  string `json:"twitter_url" binding:"omitempty,url,max=512"`
	GithubURL   string `json:"github_url" binding:"omitempty,url,max=512"`
	Order       uint   `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

type teamMemberView struct {
	database.TeamMember
	PhotoURL string `json:"photo_url,omitempty"`
}

// List returns active team members in display order.
func (h *TeamMemberHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.TeamMember{}).
		Where("is_active = ?", true)
	q = applyListing(c, q, listOptions{
		search: []string{"name", "role"},
		ordering: map[string]string{
			"name":  "name",
			"order": `"order"`,
		},
		defaultOrder: `"order", name`,
	})

	var members []database.TeamMember
	envelope, err := paginate(c, q, &members)
	if err != nil {
		Internal(c, "failed to list team members")
		return
	}

	items := make([]teamMemberView, 0, len(members))
	for _, m := range members {
		items = append(items, teamMemberView{TeamMember: m, PhotoURL: publicURL(h.assets, m.PhotoKey)})
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

func (h *TeamMemberHandler) Retrieve(c *gin.Context) {
	var member database.TeamMember
	if !lookupByID(c, h.db, &member, "team member") {
		return
	}
	if !member.IsActive && !isStaff(c) {
		NotFound(c, "team member not found")
		return
	}
	c.JSON(http.StatusOK, teamMemberView{TeamMember: member, PhotoURL: publicURL(h.assets, member.PhotoKey)})
}

func (h *TeamMemberHandler) Create(c *gin.Context) {
	var req teamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member := database.TeamMember{}
	req.apply(&member)

	if err := h.db.WithContext(c.Request.Context()).Create(&member).Error; err != nil {
		Internal(c, "failed to save team member")
		return
	}
	c.JSON(http.StatusCreated, teamMemberView{TeamMember: member, PhotoURL: publicURL(h.assets, member.PhotoKey)})
}

func (h *TeamMemberHandler) Update(c *gin.Context) {
	var req teamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	var member database.TeamMember
	if !lookupByID(c, h.db, &member, "team member") {
		return
	}

	req.apply(&member)
	if err := h.db.WithContext(c.Request.Context()).Save(&member).Error; err != nil {
		Internal(c, "failed to save team member")
		return
	}
	c.JSON(http.StatusOK, teamMemberView{TeamMember: member, PhotoURL: publicURL(h.assets, member.PhotoKey)})
}

func (h *TeamMemberHandler) Delete(c *gin.Context) {
	var member database.TeamMember
	if !lookupByID(c, h.db, &member, "team member") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&member).Error; err != nil {
		Internal(c, "failed to delete team member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r teamMemberRequest) apply(member *database.TeamMember) {
	member.Name = r.Name
	member.Role = r.Role
	member.Bio = r.Bio
	member.PhotoKey = r.PhotoKey
	member.Email = r.Email
	member.LinkedinURL = r.LinkedinURL
	member.TwitterURL = r.TwitterURL
	member.GithubURL = r.GithubURL
	member.Order = r.Order
	if r.IsActive != nil {
		member.IsActive = *r.IsActive
	} else if member.ID == 0 {
		member.IsActive = true
	}
}

// FAQHandler exposes the FAQs resource.
type FAQHandler struct {
	db *gorm.DB
}

func NewFAQHandler(db *gorm.DB) *FAQHandler {
	return &FAQHandler{db: db}
}

type faqRequest struct {
	Question string `json:"question" binding:"required,max=300"`
	Answer   string `json:"answer" binding:"required"`
	Category string `json:"category" binding:"omitempty,max=100"`
	Order    uint   `json:"order"`
	IsActive *bool  `json:"is_active"`
}

// List returns active FAQs, filterable by category.
func (h *FAQHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.FAQ{}).
		Where("is_active = ?", true)
	q = applyListing(c, q, listOptions{
		filters: map[string]string{"category": "category"},
		search:  []string{"question", "answer"},
		ordering: map[string]string{
			"question": "question",
			"order":    `"order"`,
		},
		defaultOrder: `"order", question`,
	})

	var faqs []database.FAQ
	envelope, err := paginate(c, q, &faqs)
	if err != nil {
		Internal(c, "failed to list faqs")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *FAQHandler) Retrieve(c *gin.Context) {
	var faq database.FAQ
	if !lookupByID(c, h.db, &faq, "faq") {
		return
	}
	if !faq.IsActive && !isStaff(c) {
		NotFound(c, "faq not found")
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (h *FAQHandler) Create(c *gin.Context) {
	var req faqRequest
	if !bindJSON(c, &req) {
		return
	}

	faq := database.FAQ{}
	req.apply(&faq)

	if err := h.db.WithContext(c.Request.Context()).Create(&faq).Error; err != nil {
		Internal(c, "failed to save faq")
		return
	}
	c.JSON(http.StatusCreated, faq)
}

func (h *FAQHandler) Update(c *gin.Context) {
	var req faqRequest
	if !bindJSON(c, &req) {
		return
	}

	var faq database.FAQ
	if !lookupByID(c, h.db, &faq, "faq") {
		return
	}

	req.apply(&faq)
	if err := h.db.WithContext(c.Request.Context()).Save(&faq).Error; err != nil {
		Internal(c, "failed to save faq")
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (h *FAQHandler) Delete(c *gin.Context) {
	var faq database.FAQ
	if !lookupByID(c, h.db, &faq, "faq") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&faq).Error; err != nil {
		Internal(c, "failed to delete faq")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r faqRequest) apply(faq *database.FAQ) {
	faq.Question = r.Question
	faq.Answer = r.Answer
	faq.Category = r.Category
	faq.Order = r.Order
	if r.IsActive != nil {
		faq.IsActive = *r.IsActive
	} else if faq.ID == 0 {
		faq.IsActive = true
	}
}
