package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"agencycms/internal/api/middleware"
	"agencycms/internal/database"
	"agencycms/internal/tasks"
)

// TaskEnqueuer is the slice of the asynq client intake endpoints use.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LeadHandler exposes the leads resource and the public contact intake.
type LeadHandler struct {
	db    *gorm.DB
	queue TaskEnqueuer
}

func NewLeadHandler(db *gorm.DB, queue TaskEnqueuer) *LeadHandler {
	return &LeadHandler{db: db, queue: queue}
}

// contactRequest is the public intake allow-list. Workflow fields
// (status, source, assignment, notes) are never accepted here.
type contactRequest struct {
	Name                string `json:"name" binding:"required,max=100"`
	Email               string `json:"email" binding:"required,email,max=254"`
	Phone               string `json:"phone" binding:"omitempty,max=20"`
	Company             string `json:"company" binding:"omitempty,max=100"`
	Message             string `json:"message" binding:"required"`
	InterestedServiceID *uint  `json:"interested_service_id"`
	BudgetRange         string `json:"budget_range" binding:"omitempty,max=50"`
}

type leadRequest struct {
	Name                string     `json:"name" binding:"required,max=100"`
	Email               string     `json:"email" binding:"required,email,max=254"`
	Phone               string     `json:"phone" binding:"omitempty,max=20"`
	Company             string     `json:"company" binding:"omitempty,max=100"`
	Message             string     `json:"message"`
	Status              string     `json:"status" binding:"omitempty,oneof=new contacted qualified converted lost"`
	Source              string     `json:"source" binding:"omitempty,oneof=website referral social_media email other"`
	InterestedServiceID *uint      `json:"interested_service_id"`
	BudgetRange         string     `json:"budget_range" binding:"omitempty,max=50"`
	AssignedToID        *uint      `json:"assigned_to_id"`
	Notes               string     `json:"notes"`
	FollowUpDate        *time.Time `json:"follow_up_date"`
}

type leadDetail struct {
	database.Lead
	InterestedServiceTitle string `json:"interested_service_title,omitempty"`
	AssignedToName         string `json:"assigned_to_name,omitempty"`
}

// SubmitContact is the anonymous contact-form intake. It accepts only
// the allow-listed fields and enqueues a notification for staff.
func (h *LeadHandler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	lead := database.Lead{
		Name:                req.Name,
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:               req.Phone,
		Company:             req.Company,
		Message:             req.Message,
		Status:              database.LeadStatusNew,
		Source:              database.LeadSourceWebsite,
		InterestedServiceID: req.InterestedServiceID,
		BudgetRange:         req.BudgetRange,
	}

	if err := h.db.WithContext(ctx).Create(&lead).Error; err != nil {
		Internal(c, "failed to save inquiry")
		return
	}

	h.enqueueNotify(c, lead.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":      lead.ID,
		"message": "thank you for reaching out, we will get back to you shortly",
	})
}

// List returns leads for staff triage.
func (h *LeadHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.Lead{}).
		Preload("InterestedService").
		Preload("AssignedTo")
	q = applyListing(c, q, listOptions{
		filters: map[string]string{
			"status": "status",
			"source": "source",
		},
		intFilters: map[string]string{"interested_service": "interested_service_id"},
		search:     []string{"name", "email", "company"},
		ordering: map[string]string{
			"created_at": "created_at",
			"status":     "status",
		},
		defaultOrder: "created_at DESC",
	})

	var leads []database.Lead
	envelope, err := paginate(c, q, &leads)
	if err != nil {
		Internal(c, "failed to list leads")
		return
	}

	items := make([]leadDetail, 0, len(leads))
	for _, lead := range leads {
		items = append(items, h.detail(lead))
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single lead.
func (h *LeadHandler) Retrieve(c *gin.Context) {
	var lead database.Lead
	if !lookupByID(c, h.db.Preload("InterestedService").Preload("AssignedTo"), &lead, "lead") {
		return
	}
	c.JSON(http.StatusOK, h.detail(lead))
}

// Create stores a lead entered by staff (phone call, referral).
func (h *LeadHandler) Create(c *gin.Context) {
	var req leadRequest
	if !bindJSON(c, &req) {
		return
	}

	lead := database.Lead{}
	req.apply(&lead)

	if err := h.db.WithContext(c.Request.Context()).Create(&lead).Error; err != nil {
		Internal(c, "failed to save lead")
		return
	}
	c.JSON(http.StatusCreated, h.detail(lead))
}

// Update overwrites a lead's workflow state.
func (h *LeadHandler) Update(c *gin.Context) {
	var req leadRequest
	if !bindJSON(c, &req) {
		return
	}

	var lead database.Lead
	if !lookupByID(c, h.db, &lead, "lead") {
		return
	}

	req.apply(&lead)
	if err := h.db.WithContext(c.Request.Context()).Save(&lead).Error; err != nil {
		Internal(c, "failed to save lead")
		return
	}
	c.JSON(http.StatusOK, h.detail(lead))
}

// Delete removes a lead.
func (h *LeadHandler) Delete(c *gin.Context) {
	var lead database.Lead
	if !lookupByID(c, h.db, &lead, "lead") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&lead).Error; err != nil {
		Internal(c, "failed to delete lead")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r leadRequest) apply(lead *database.Lead) {
	lead.Name = r.Name
	lead.Email = strings.ToLower(strings.TrimSpace(r.Email))
	lead.Phone = r.Phone
	lead.Company = r.Company
	lead.Message = r.Message
	if r.Status != "" {
		lead.Status = r.Status
	} else if lead.ID == 0 {
		lead.Status = database.LeadStatusNew
	}
	if r.Source != "" {
		lead.Source = r.Source
	} else if lead.ID == 0 {
		lead.Source = database.LeadSourceWebsite
	}
	lead.InterestedServiceID = r.InterestedServiceID
	lead.BudgetRange = r.BudgetRange
	lead.AssignedToID = r.AssignedToID
	lead.Notes = r.Notes
	lead.FollowUpDate = r.FollowUpDate
}

// enqueueNotify hands the lead off to the worker. Queue trouble never
// fails the intake; the lead is already stored.
func (h *LeadHandler) enqueueNotify(c *gin.Context, leadID uint) {
	if h.queue == nil {
		return
	}
	logger := middleware.LoggerFromContext(c)
	task, err := tasks.NewLeadNotifyTask(leadID, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Error("build lead notify task failed", "error", err)
		return
	}
	if _, err := h.queue.Enqueue(task); err != nil {
		logger.Error("enqueue lead notify task failed", "error", err)
	}
}

func (h *LeadHandler) detail(lead database.Lead) leadDetail {
	detail := leadDetail{Lead: lead}
	if lead.InterestedService != nil {
		detail.InterestedServiceTitle = lead.InterestedService.Title
	}
	if lead.AssignedTo != nil {
		detail.AssignedToName = lead.AssignedTo.FullName()
	}
	return detail
}
