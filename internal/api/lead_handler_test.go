package api

import (
	"fmt"
	"net/http"
	"testing"

	"agencycms/internal/database"
	"agencycms/internal/tasks"
)

func TestContactIntakeDropsWorkflowFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/contact", "", map[string]any{
		"name":    "Prospect",
		"email":   "Prospect@Example.com",
		"message": "need a website",
		// Workflow fields an anonymous caller must not control.
		"status": database.LeadStatusConverted,
		"source": database.LeadSourceReferral,
		"notes":  "smuggled",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &resp)

	var lead database.Lead
	if err := env.db.First(&lead, resp.ID).Error; err != nil {
		t.Fatalf("load lead: %v", err)
	}
	if lead.Status != database.LeadStatusNew {
		t.Errorf("status = %q, want new", lead.Status)
	}
	if lead.Source != database.LeadSourceWebsite {
		t.Errorf("source = %q, want website", lead.Source)
	}
	if lead.Notes != "" {
		t.Errorf("notes = %q, want empty", lead.Notes)
	}
	if lead.Email != "prospect@example.com" {
		t.Errorf("email = %q, want lowercased", lead.Email)
	}

	if len(env.queue.tasks) != 1 || env.queue.tasks[0].Type() != tasks.TypeLeadNotify {
		t.Errorf("expected one lead notify task, got %d", len(env.queue.tasks))
	}
}

func TestContactIntakeMissingEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/contact", "", map[string]any{
		"name":    "Prospect",
		"message": "hello",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Errors["email"]; !ok {
		t.Errorf("error document does not name email: %v", resp.Errors)
	}

	var count int64
	env.db.Model(&database.Lead{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected intake stored %d leads, want 0", count)
	}
}

func TestLeadsAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	lead := database.Lead{Name: "n", Email: "l@example.com", Status: database.LeadStatusNew, Source: database.LeadSourceWebsite}
	if err := env.db.Create(&lead).Error; err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	if rec := env.do(t, http.MethodGet, "/v1/leads", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list status = %d, want 401", rec.Code)
	}

	_, clientToken := createTestUser(t, env.db, env.auth, "client@example.com", database.RoleClient)
	if rec := env.do(t, http.MethodGet, "/v1/leads", clientToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("client list status = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, fmt.Sprintf("/v1/leads/%d", lead.ID), clientToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("client delete status = %d, want 403", rec.Code)
	}

	_, adminToken := createTestUser(t, env.db, env.auth, "admin@example.com", database.RoleAdmin)
	if rec := env.do(t, http.MethodDelete, fmt.Sprintf("/v1/leads/%d", lead.ID), adminToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("admin delete status = %d, want 204", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/v1/leads", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list status = %d, want 200", rec.Code)
	}
	var resp struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("deleted lead still listed, count = %d", resp.Count)
	}
}

func TestLeadStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := createTestUser(t, env.db, env.auth, "admin@example.com", database.RoleAdmin)

	seed := []database.Lead{
		{Name: "a", Email: "a@example.com", Status: database.LeadStatusNew, Source: database.LeadSourceWebsite},
		{Name: "b", Email: "b@example.com", Status: database.LeadStatusQualified, Source: database.LeadSourceReferral},
	}
	for i := range seed {
		if err := env.db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}

	rec := env.do(t, http.MethodGet, "/v1/leads?status=qualified", adminToken, nil)
	var resp struct {
		Count   int64 `json:"count"`
		Results []struct {
			Email string `json:"email"`
		} `json:"results"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 || resp.Results[0].Email != "b@example.com" {
		t.Errorf("status filter failed: %+v", resp)
	}
}
