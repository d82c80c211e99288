package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestServiceSlugDerivedFromTitle(t *testing.T) {
	db := newTestDB(t)

	service := Service{Title: "Web Development & SEO", Description: "d", ShortDescription: "s"}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	if service.Slug != "web-development-and-seo" {
		t.Errorf("slug = %q, want %q", service.Slug, "web-development-and-seo")
	}
}

func TestServiceExplicitSlugNormalized(t *testing.T) {
	db := newTestDB(t)

	service := Service{Title: "Anything", Slug: "Custom Slug Here", Description: "d", ShortDescription: "s"}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	if service.Slug != "custom-slug-here" {
		t.Errorf("slug = %q, want %q", service.Slug, "custom-slug-here")
	}
}

func TestDuplicateSlugRejected(t *testing.T) {
	db := newTestDB(t)

	first := Service{Title: "Branding", Description: "d", ShortDescription: "s"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create first service: %v", err)
	}

	second := Service{Title: "Branding", Description: "d", ShortDescription: "s"}
	if err := db.Create(&second).Error; err == nil {
		t.Fatal("expected unique constraint violation for duplicate slug, got nil")
	}
}

func TestInvoiceTotalAlwaysRecomputed(t *testing.T) {
	db := newTestDB(t)

	invoice := Invoice{
		InvoiceNumber: "INV-001",
		ClientID:      1,
		Amount:        1000,
		TaxAmount:     170,
		TotalAmount:   9999, // must be ignored
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if invoice.TotalAmount != 1170 {
		t.Errorf("total = %v, want 1170", invoice.TotalAmount)
	}

	invoice.Amount = 2000
	invoice.TotalAmount = 1
	if err := db.Save(&invoice).Error; err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	if invoice.TotalAmount != 2170 {
		t.Errorf("total after update = %v, want 2170", invoice.TotalAmount)
	}
}

func TestProjectClientNameBackfill(t *testing.T) {
	db := newTestDB(t)

	client := User{Email: "client@example.com", FirstName: "Ada", LastName: "Lovelace", Role: RoleClient}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	project := Project{
		Title:            "Storefront Relaunch",
		Description:      "d",
		ShortDescription: "s",
		ClientID:         &client.ID,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.ClientName != "Ada Lovelace" {
		t.Errorf("client name = %q, want %q", project.ClientName, "Ada Lovelace")
	}
}

func TestProjectExplicitClientNameKept(t *testing.T) {
	db := newTestDB(t)

	client := User{Email: "client2@example.com", FirstName: "Ada", LastName: "Lovelace", Role: RoleClient}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	project := Project{
		Title:            "Campaign Site",
		Description:      "d",
		ShortDescription: "s",
		ClientID:         &client.ID,
		ClientName:       "ACME Holdings",
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.ClientName != "ACME Holdings" {
		t.Errorf("client name = %q, want %q", project.ClientName, "ACME Holdings")
	}
}

func TestUserFullNameFallsBackToUsername(t *testing.T) {
	user := User{Username: "jdoe"}
	if got := user.FullName(); got != "jdoe" {
		t.Errorf("full name = %q, want %q", got, "jdoe")
	}

	user.FirstName = "Jane"
	user.LastName = "Doe"
	if got := user.FullName(); got != "Jane Doe" {
		t.Errorf("full name = %q, want %q", got, "Jane Doe")
	}
}

func TestDefaultSiteSettings(t *testing.T) {
	defaults := DefaultSiteSettings()
	if defaults.SingletonKey != SiteSettingsKey {
		t.Errorf("singleton key = %q, want %q", defaults.SingletonKey, SiteSettingsKey)
	}
	if defaults.CompanyName == "" || defaults.HeroTitle == "" {
		t.Error("defaults must carry hero and company content")
	}
	if defaults.ModelSpeed != 1.0 {
		t.Errorf("model speed = %v, want 1.0", defaults.ModelSpeed)
	}
}

func TestEnumHelpers(t *testing.T) {
	if !ValidLeadStatus(LeadStatusQualified) || ValidLeadStatus("bogus") {
		t.Error("lead status membership broken")
	}
	if !ValidJobType(JobTypeContract) || ValidJobType("") {
		t.Error("job type membership broken")
	}
	if !ValidInvoiceStatus(InvoiceStatusOverdue) || ValidInvoiceStatus("late") {
		t.Error("invoice status membership broken")
	}
	if !ValidRole(RoleEditor) || ValidRole("superuser") {
		t.Error("role membership broken")
	}
}
