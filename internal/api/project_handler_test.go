package api

import (
	"fmt"
	"net/http"
	"testing"

	"agencycms/internal/database"
)

func TestProjectCreateWithTagsAndImages(t *testing.T) {
	env := newTestEnv(t)
	_, token := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	tag := database.ProjectTag{Name: "E-Commerce"}
	if err := env.db.Create(&tag).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/v1/projects", token, map[string]any{
		"title":             "Storefront Relaunch",
		"description":       "rebuilt the store",
		"short_description": "rebuild",
		"is_published":      true,
		"tag_ids":           []uint{tag.ID},
		"images": []map[string]any{
			{"image_key": "projects/1/hero.jpg", "caption": "hero", "order": 1},
			{"image_key": "projects/1/detail.jpg", "order": 2},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		ID     uint   `json:"id"`
		Slug   string `json:"slug"`
		Images []struct {
			URL   string `json:"url"`
			Order uint   `json:"order"`
		} `json:"images"`
	}
	decode(t, rec, &detail)
	if detail.Slug != "storefront-relaunch" {
		t.Errorf("slug = %q, want storefront-relaunch", detail.Slug)
	}
	if len(detail.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(detail.Images))
	}
	if detail.Images[0].URL == "" {
		t.Error("image URL not resolved")
	}

	var tagCount int64
	env.db.Table("project_project_tags").Where("project_id = ?", detail.ID).Count(&tagCount)
	if tagCount != 1 {
		t.Errorf("tag links = %d, want 1", tagCount)
	}
}

func TestProjectUpdateReplacesGallery(t *testing.T) {
	env := newTestEnv(t)
	_, token := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	create := env.do(t, http.MethodPost, "/v1/projects", token, map[string]any{
		"title":             "Brand Refresh",
		"description":       "d",
		"short_description": "s",
		"images": []map[string]any{
			{"image_key": "a.jpg"},
			{"image_key": "b.jpg"},
		},
	})
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", create.Code)
	}
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, create, &created)

	update := env.do(t, http.MethodPut, fmt.Sprintf("/v1/projects/%d", created.ID), token, map[string]any{
		"title":             "Brand Refresh",
		"description":       "d",
		"short_description": "s",
		"images": []map[string]any{
			{"image_key": "c.jpg"},
		},
	})
	if update.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", update.Code, update.Body.String())
	}

	var imageCount int64
	env.db.Model(&database.ProjectImage{}).Where("project_id = ?", created.ID).Count(&imageCount)
	if imageCount != 1 {
		t.Errorf("gallery rows = %d, want 1 after replacement", imageCount)
	}
}

func TestUnpublishedProjectHiddenFromAnonymous(t *testing.T) {
	env := newTestEnv(t)

	project := database.Project{Title: "Secret Build", Description: "d", ShortDescription: "s", IsPublished: false}
	if err := env.db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	if rec := env.do(t, http.MethodGet, "/v1/projects/"+project.Slug, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/v1/projects", "", nil)
	var resp struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("anonymous list count = %d, want 0", resp.Count)
	}

	_, token := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)
	if rec := env.do(t, http.MethodGet, "/v1/projects/"+project.Slug, token, nil); rec.Code != http.StatusOK {
		t.Errorf("staff status = %d, want 200", rec.Code)
	}
}

func TestProjectClientNameBackfilledInResponse(t *testing.T) {
	env := newTestEnv(t)
	_, token := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)
	client, _ := createTestUser(t, env.db, env.auth, "client@example.com", database.RoleClient)

	rec := env.do(t, http.MethodPost, "/v1/projects", token, map[string]any{
		"title":             "Client Portal",
		"description":       "d",
		"short_description": "s",
		"client_id":         client.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		ClientName string `json:"client_name"`
	}
	decode(t, rec, &detail)
	if detail.ClientName != client.FullName() {
		t.Errorf("client_name = %q, want %q", detail.ClientName, client.FullName())
	}
}
