package api

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"agencycms/internal/api/middleware"
	"agencycms/internal/database"
	"agencycms/internal/tasks"
)

// resumeURLTTL bounds how long a presigned resume link stays valid.
const resumeURLTTL = 15 * time.Minute

// JobHandler exposes the job postings resource.
type JobHandler struct {
	db *gorm.DB
}

func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{db: db}
}

type jobRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	Slug         string `json:"slug" binding:"omitempty,max=220"`
	Description  string `json:"description" binding:"required"`
	Requirements string `json:"requirements"`
	JobType      string `json:"job_type" binding:"required,oneof=full_time part_time contract internship"`
	Location     string `json:"location" binding:"omitempty,max=100"`
	SalaryRange  string `json:"salary_range" binding:"omitempty,max=100"`
	Status       string `json:"status" binding:"omitempty,oneof=open closed on_hold"`
}

// List returns job postings; anonymous callers only see open ones.
func (h *JobHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&database.Job{})
	if !isStaff(c) {
		q = q.Where("status = ?", database.JobStatusOpen)
	}
	q = applyListing(c, q, listOptions{
		filters: map[string]string{
			"job_type": "job_type",
			"location": "location",
			"status":   "status",
		},
		search: []string{"title", "description"},
		ordering: map[string]string{
			"created_at": "created_at",
			"title":      "title",
		},
		defaultOrder: "created_at DESC",
	})

	var jobs []database.Job
	envelope, err := paginate(c, q, &jobs)
	if err != nil {
		Internal(c, "failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single job posting by slug or id.
func (h *JobHandler) Retrieve(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())
	if !isStaff(c) {
		q = q.Where("status = ?", database.JobStatusOpen)
	}

	var job database.Job
	if err := findBySlugOrID(q, c.Param("idOrSlug"), &job); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		Internal(c, "failed to query job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Create stores a job posting attributed to the caller.
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req jobRequest
	if !bindJSON(c, &req) {
		return
	}

	job := database.Job{PostedByID: userID}
	req.apply(&job)

	if err := h.db.WithContext(c.Request.Context()).Create(&job).Error; err != nil {
		writeSaveError(c, err, "slug")
		return
	}
	c.JSON(http.StatusCreated, job)
}

// Update overwrites a job posting.
func (h *JobHandler) Update(c *gin.Context) {
	var req jobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &job); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		Internal(c, "failed to query job")
		return
	}

	req.apply(&job)
	if err := h.db.WithContext(ctx).Save(&job).Error; err != nil {
		writeSaveError(c, err, "slug")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Delete removes a job posting.
func (h *JobHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	var job database.Job
	if err := findBySlugOrID(h.db.WithContext(ctx), c.Param("idOrSlug"), &job); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "job not found")
			return
		}
		Internal(c, "failed to query job")
		return
	}
	if err := h.db.WithContext(ctx).Delete(&job).Error; err != nil {
		Internal(c, "failed to delete job")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r jobRequest) apply(job *database.Job) {
	job.Title = r.Title
	if r.Slug != "" {
		job.Slug = r.Slug
	}
	job.Description = r.Description
	job.Requirements = r.Requirements
	job.JobType = r.JobType
	job.Location = r.Location
	job.SalaryRange = r.SalaryRange
	if r.Status != "" {
		job.Status = r.Status
	} else if job.ID == 0 {
		job.Status = database.JobStatusOpen
	}
}

// JobApplicationHandler exposes the applications resource and the public
// application intake.
type JobApplicationHandler struct {
	db       *gorm.DB
	storage  ObjectStorage
	queue    TaskEnqueuer
	scan     FileScanner
	maxBytes int64
}

func NewJobApplicationHandler(db *gorm.DB, storageClient ObjectStorage, queue TaskEnqueuer, scan FileScanner, maxBytes int64) *JobApplicationHandler {
	return &JobApplicationHandler{
		db:       db,
		storage:  storageClient,
		queue:    queue,
		scan:     scan,
		maxBytes: maxBytes,
	}
}

type applyRequest struct {
	JobID        uint   `form:"job_id" json:"job_id" binding:"required"`
	Name         string `form:"name" json:"name" binding:"required,max=100"`
	Email        string `form:"email" json:"email" binding:"required,email,max=254"`
	Phone        string `form:"phone" json:"phone" binding:"omitempty,max=20"`
	CoverLetter  string `form:"cover_letter" json:"cover_letter"`
	PortfolioURL string `form:"portfolio_url" json:"portfolio_url" binding:"omitempty,url,max=512"`
}

type applicationUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=submitted reviewing shortlisted interviewed hired rejected"`
	Notes  string `json:"notes"`
}

type applicationDetail struct {
	database.JobApplication
	JobTitle  string `json:"job_title,omitempty"`
	ResumeURL string `json:"resume_url,omitempty"`
}

// SubmitApplication is the anonymous application intake. The resume is
// virus-scanned, then stored under a private key only staff can resolve.
func (h *JobApplicationHandler) SubmitApplication(c *gin.Context) {
	var req applyRequest
	if !bindForm(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, req.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			FieldErrors(c, map[string]string{"job_id": "unknown job"})
			return
		}
		Internal(c, "failed to query job")
		return
	}
	if job.Status != database.JobStatusOpen {
		FieldErrors(c, map[string]string{"job_id": "this position is no longer accepting applications"})
		return
	}

	file, err := c.FormFile("resume")
	if err != nil {
		FieldErrors(c, map[string]string{"resume": "this field is required"})
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		FieldErrors(c, map[string]string{"resume": fmt.Sprintf("must be at most %d bytes", h.maxBytes)})
		return
	}
	if h.scan != nil {
		if err := h.scan(file); err != nil {
			FieldErrors(c, map[string]string{"resume": err.Error()})
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open resume")
		return
	}
	defer reader.Close()

	ext := strings.ToLower(path.Ext(file.Filename))
	resumeKey := fmt.Sprintf("resumes/%d/%s%s", job.ID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if h.storage != nil {
		if _, err := h.storage.UploadFile(ctx, resumeKey, reader, file.Size, contentType); err != nil {
			middleware.LoggerFromContext(c).Error("upload resume failed", "error", err)
			Internal(c, "failed to store resume")
			return
		}
	}

	application := database.JobApplication{
		JobID:        job.ID,
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		ResumeKey:    resumeKey,
		CoverLetter:  req.CoverLetter,
		PortfolioURL: req.PortfolioURL,
		Status:       database.ApplicationStatusSubmitted,
	}
	if err := h.db.WithContext(ctx).Create(&application).Error; err != nil {
		Internal(c, "failed to save application")
		return
	}

	h.enqueueNotify(c, application.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":      application.ID,
		"message": "application received",
	})
}

// List returns applications for staff review.
func (h *JobApplicationHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.JobApplication{}).
		Preload("Job")
	q = applyListing(c, q, listOptions{
		filters:    map[string]string{"status": "status"},
		intFilters: map[string]string{"job": "job_id"},
		search:     []string{"name", "email"},
		ordering: map[string]string{
			"created_at": "created_at",
			"status":     "status",
		},
		defaultOrder: "created_at DESC",
	})

	var applications []database.JobApplication
	envelope, err := paginate(c, q, &applications)
	if err != nil {
		Internal(c, "failed to list applications")
		return
	}

	items := make([]applicationDetail, 0, len(applications))
	for _, application := range applications {
		items = append(items, h.detail(c, application, false))
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single application with a short-lived resume link.
func (h *JobApplicationHandler) Retrieve(c *gin.Context) {
	var application database.JobApplication
	if !lookupByID(c, h.db.Preload("Job"), &application, "application") {
		return
	}
	c.JSON(http.StatusOK, h.detail(c, application, true))
}

// Update moves an application through the pipeline.
func (h *JobApplicationHandler) Update(c *gin.Context) {
	var req applicationUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	var application database.JobApplication
	if !lookupByID(c, h.db.Preload("Job"), &application, "application") {
		return
	}

	application.Status = req.Status
	application.Notes = req.Notes
	if err := h.db.WithContext(c.Request.Context()).Save(&application).Error; err != nil {
		Internal(c, "failed to save application")
		return
	}
	c.JSON(http.StatusOK, h.detail(c, application, false))
}

// Delete removes an application.
func (h *JobApplicationHandler) Delete(c *gin.Context) {
	var application database.JobApplication
	if !lookupByID(c, h.db, &application, "application") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&application).Error; err != nil {
		Internal(c, "failed to delete application")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobApplicationHandler) enqueueNotify(c *gin.Context, applicationID uint) {
	if h.queue == nil {
		return
	}
	logger := middleware.LoggerFromContext(c)
	task, err := tasks.NewApplicationNotifyTask(applicationID, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Error("build application notify task failed", "error", err)
		return
	}
	if _, err := h.queue.Enqueue(task); err != nil {
		logger.Error("enqueue application notify task failed", "error", err)
	}
}

// detail renders an application; withResume adds a presigned download
// link for the stored resume.
func (h *JobApplicationHandler) detail(c *gin.Context, application database.JobApplication, withResume bool) applicationDetail {
	detail := applicationDetail{JobApplication: application}
	if application.Job != nil {
		detail.JobTitle = application.Job.Title
	}
	if withResume && h.storage != nil && application.ResumeKey != "" {
		url, err := h.storage.GeneratePresignedURL(c.Request.Context(), application.ResumeKey, resumeURLTTL)
		if err != nil {
			middleware.LoggerFromContext(c).Error("presign resume failed", "error", err)
		} else {
			detail.ResumeURL = url
		}
	}
	return detail
}
