package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agencycms/internal/database"
	"agencycms/internal/tasks"
)

func seedJob(t *testing.T, env *testEnv, status string) database.Job {
	t.Helper()

	poster, _ := createTestUser(t, env.db, env.auth, fmt.Sprintf("poster-%s@example.com", status), database.RoleAdmin)
	job := database.Job{
		Title:       "Backend Engineer " + status,
		Description: "build APIs",
		JobType:     database.JobTypeFullTime,
		Status:      status,
		PostedByID:  poster.ID,
	}
	if err := env.db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func postApplication(t *testing.T, env *testEnv, fields map[string]string, withResume bool) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if withResume {
		part, err := writer.CreateFormFile("resume", "resume.pdf")
		if err != nil {
			t.Fatalf("create resume part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 fake resume")); err != nil {
			t.Fatalf("write resume: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/apply", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestApplyStoresResumeAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	job := seedJob(t, env, database.JobStatusOpen)

	rec := postApplication(t, env, map[string]string{
		"job_id": fmt.Sprintf("%d", job.ID),
		"name":   "Candidate",
		"email":  "Candidate@Example.com",
	}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &resp)

	var application database.JobApplication
	if err := env.db.First(&application, resp.ID).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}
	if application.Status != database.ApplicationStatusSubmitted {
		t.Errorf("status = %q, want submitted", application.Status)
	}
	if application.Email != "candidate@example.com" {
		t.Errorf("email = %q, want lowercased", application.Email)
	}
	if !strings.HasPrefix(application.ResumeKey, fmt.Sprintf("resumes/%d/", job.ID)) {
		t.Errorf("resume key = %q, want resumes/%d/ prefix", application.ResumeKey, job.ID)
	}
	if _, ok := env.storage.uploads[application.ResumeKey]; !ok {
		t.Error("resume bytes never reached storage")
	}
	if len(env.queue.tasks) != 1 || env.queue.tasks[0].Type() != tasks.TypeApplicationNotify {
		t.Errorf("expected one application notify task, got %d", len(env.queue.tasks))
	}
}

func TestApplyRejectsClosedJob(t *testing.T) {
	env := newTestEnv(t)
	job := seedJob(t, env, database.JobStatusClosed)

	rec := postApplication(t, env, map[string]string{
		"job_id": fmt.Sprintf("%d", job.ID),
		"name":   "Candidate",
		"email":  "c@example.com",
	}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Errors["job_id"]; !ok {
		t.Errorf("error document does not name job_id: %v", resp.Errors)
	}
}

func TestApplyRejectsInfectedResume(t *testing.T) {
	env := newTestEnv(t)
	job := seedJob(t, env, database.JobStatusOpen)
	env.scanErr = errors.New("malicious file detected")

	rec := postApplication(t, env, map[string]string{
		"job_id": fmt.Sprintf("%d", job.ID),
		"name":   "Candidate",
		"email":  "c@example.com",
	}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if resp.Errors["resume"] != "malicious file detected" {
		t.Errorf("error document does not name resume: %v", resp.Errors)
	}

	var count int64
	if err := env.db.Model(&database.JobApplication{}).Count(&count).Error; err != nil {
		t.Fatalf("count applications: %v", err)
	}
	if count != 0 {
		t.Errorf("stored %d applications for a rejected upload, want 0", count)
	}
	if len(env.storage.uploads) != 0 {
		t.Error("rejected resume still reached storage")
	}
	if len(env.queue.tasks) != 0 {
		t.Error("rejected application still enqueued a notification")
	}
}

func TestApplyRequiresResume(t *testing.T) {
	env := newTestEnv(t)
	job := seedJob(t, env, database.JobStatusOpen)

	rec := postApplication(t, env, map[string]string{
		"job_id": fmt.Sprintf("%d", job.ID),
		"name":   "Candidate",
		"email":  "c@example.com",
	}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Errors["resume"]; !ok {
		t.Errorf("error document does not name resume: %v", resp.Errors)
	}
}

func TestAnonymousJobListOnlyOpen(t *testing.T) {
	env := newTestEnv(t)
	seedJob(t, env, database.JobStatusOpen)
	seedJob(t, env, database.JobStatusClosed)

	rec := env.do(t, http.MethodGet, "/v1/jobs", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Count   int64 `json:"count"`
		Results []struct {
			Status string `json:"status"`
		} `json:"results"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 || resp.Results[0].Status != database.JobStatusOpen {
		t.Errorf("anonymous list leaked non-open jobs: %+v", resp)
	}
}

func TestApplicationPipelineAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	job := seedJob(t, env, database.JobStatusOpen)

	application := database.JobApplication{
		JobID:  job.ID,
		Name:   "Candidate",
		Email:  "c@example.com",
		Status: database.ApplicationStatusSubmitted,
	}
	if err := env.db.Create(&application).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}

	_, clientToken := createTestUser(t, env.db, env.auth, "client@example.com", database.RoleClient)
	if rec := env.do(t, http.MethodGet, "/v1/job-applications", clientToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("client list status = %d, want 403", rec.Code)
	}

	_, adminToken := createTestUser(t, env.db, env.auth, "admin2@example.com", database.RoleAdmin)
	rec := env.do(t, http.MethodPut, fmt.Sprintf("/v1/job-applications/%d", application.ID), adminToken, map[string]any{
		"status": database.ApplicationStatusShortlisted,
		"notes":  "strong portfolio",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var stored database.JobApplication
	if err := env.db.First(&stored, application.ID).Error; err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if stored.Status != database.ApplicationStatusShortlisted {
		t.Errorf("status = %q, want shortlisted", stored.Status)
	}
}
