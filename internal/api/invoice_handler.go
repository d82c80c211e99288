package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agencycms/internal/database"
)

// InvoiceHandler exposes the invoices resource. Staff only.
type InvoiceHandler struct {
	db *gorm.DB
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{db: db}
}

type invoiceRequest struct {
	InvoiceNumber string     `json:"invoice_number" binding:"required,max=50"`
	ClientID      uint       `json:"client_id" binding:"required"`
	ProjectID     *uint      `json:"project_id"`
	Amount        float64    `json:"amount" binding:"gte=0"`
	TaxAmount     float64    `json:"tax_amount" binding:"gte=0"`
	Description   string     `json:"description"`
	DueDate       time.Time  `json:"due_date" binding:"required"`
	Status        string     `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	PaidDate      *time.Time `json:"paid_date"`
}

type invoiceDetail struct {
	database.Invoice
	ClientName   string `json:"client_name,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
}

// List returns invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Model(&database.Invoice{}).
		Preload("Client").
		Preload("Project")
	q = applyListing(c, q, listOptions{
		filters:    map[string]string{"status": "status"},
		intFilters: map[string]string{"client": "client_id"},
		search:     []string{"invoice_number"},
		ordering: map[string]string{
			"created_at": "created_at",
			"due_date":   "due_date",
		},
		defaultOrder: "created_at DESC",
	})

	var invoices []database.Invoice
	envelope, err := paginate(c, q, &invoices)
	if err != nil {
		Internal(c, "failed to list invoices")
		return
	}

	items := make([]invoiceDetail, 0, len(invoices))
	for _, invoice := range invoices {
		items = append(items, h.detail(invoice))
	}
	envelope.Results = items
	c.JSON(http.StatusOK, envelope)
}

// Retrieve returns a single invoice.
func (h *InvoiceHandler) Retrieve(c *gin.Context) {
	var invoice database.Invoice
	if !lookupByID(c, h.db.Preload("Client").Preload("Project"), &invoice, "invoice") {
		return
	}
	c.JSON(http.StatusOK, h.detail(invoice))
}

// Create stores an invoice. The total is always derived from amount and
// tax regardless of what the client sent.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice := database.Invoice{}
	req.apply(&invoice)

	if err := h.db.WithContext(c.Request.Context()).Create(&invoice).Error; err != nil {
		writeSaveError(c, err, "invoice_number")
		return
	}
	c.JSON(http.StatusCreated, h.detail(invoice))
}

// Update overwrites an invoice, recomputing the total.
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req invoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	var invoice database.Invoice
	if !lookupByID(c, h.db, &invoice, "invoice") {
		return
	}

	req.apply(&invoice)
	if err := h.db.WithContext(c.Request.Context()).Save(&invoice).Error; err != nil {
		writeSaveError(c, err, "invoice_number")
		return
	}
	c.JSON(http.StatusOK, h.detail(invoice))
}

// Delete removes an invoice.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	var invoice database.Invoice
	if !lookupByID(c, h.db, &invoice, "invoice") {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&invoice).Error; err != nil {
		Internal(c, "failed to delete invoice")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r invoiceRequest) apply(invoice *database.Invoice) {
	invoice.InvoiceNumber = r.InvoiceNumber
	invoice.ClientID = r.ClientID
	invoice.ProjectID = r.ProjectID
	invoice.Amount = r.Amount
	invoice.TaxAmount = r.TaxAmount
	invoice.Description = r.Description
	invoice.DueDate = r.DueDate
	if r.Status != "" {
		invoice.Status = r.Status
	} else if invoice.ID == 0 {
		invoice.Status = database.InvoiceStatusDraft
	}
	invoice.PaidDate = r.PaidDate
}

func (h *InvoiceHandler) detail(invoice database.Invoice) invoiceDetail {
	detail := invoiceDetail{Invoice: invoice}
	if invoice.Client != nil {
		detail.ClientName = invoice.Client.FullName()
	}
	if invoice.Project != nil {
		detail.ProjectTitle = invoice.Project.Title
	}
	return detail
}
