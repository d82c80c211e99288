package api

import (
	"net/http"
	"testing"

	"agencycms/internal/database"
)

type serviceListResponse struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []struct {
		ID         uint   `json:"id"`
		Title      string `json:"title"`
		Slug       string `json:"slug"`
		IsFeatured bool   `json:"is_featured"`
	} `json:"results"`
}

func seedServices(t *testing.T, env *testEnv) {
	t.Helper()
	services := []database.Service{
		{Title: "Web Development", Description: "full stack builds", ShortDescription: "s", Order: 2, IsFeatured: true, IsActive: true},
		{Title: "App Design", Description: "mobile first design", ShortDescription: "s", Order: 1, IsActive: true},
		{Title: "SEO Audits", Description: "search optimization", ShortDescription: "s", Order: 3, IsActive: true},
		{Title: "Retired Offering", Description: "gone", ShortDescription: "s", Order: 0, IsActive: false},
	}
	for i := range services {
		if err := env.db.Create(&services[i]).Error; err != nil {
			t.Fatalf("seed service: %v", err)
		}
	}
}

func TestServiceListHidesInactive(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp serviceListResponse
	decode(t, rec, &resp)
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	for _, item := range resp.Results {
		if item.Title == "Retired Offering" {
			t.Error("inactive service leaked into public list")
		}
	}
}

func TestServiceListDefaultOrdering(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services", "", nil)
	var resp serviceListResponse
	decode(t, rec, &resp)

	want := []string{"App Design", "Web Development", "SEO Audits"}
	if len(resp.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(resp.Results), len(want))
	}
	for i, title := range want {
		if resp.Results[i].Title != title {
			t.Errorf("results[%d] = %q, want %q", i, resp.Results[i].Title, title)
		}
	}
}

func TestServiceListExplicitOrdering(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services?ordering=-title", "", nil)
	var resp serviceListResponse
	decode(t, rec, &resp)

	if len(resp.Results) == 0 || resp.Results[0].Title != "Web Development" {
		t.Errorf("descending title ordering not applied: %+v", resp.Results)
	}
}

func TestServiceListFeaturedFilter(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services?is_featured=true", "", nil)
	var resp serviceListResponse
	decode(t, rec, &resp)

	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Results[0].Title != "Web Development" {
		t.Errorf("filtered result = %q, want Web Development", resp.Results[0].Title)
	}
}

func TestServiceListSearch(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services?search=OPTIMIZATION", "", nil)
	var resp serviceListResponse
	decode(t, rec, &resp)

	if resp.Count != 1 || resp.Results[0].Title != "SEO Audits" {
		t.Errorf("search failed: count=%d results=%+v", resp.Count, resp.Results)
	}
}

func TestServiceListPagination(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services?page=2&page_size=2", "", nil)
	var resp serviceListResponse
	decode(t, rec, &resp)

	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	if resp.Page != 2 || resp.PageSize != 2 {
		t.Errorf("page=%d page_size=%d, want 2 and 2", resp.Page, resp.PageSize)
	}
	if len(resp.Results) != 1 {
		t.Errorf("page 2 holds %d results, want 1", len(resp.Results))
	}
}

func TestTextFilterAcceptsNumericValue(t *testing.T) {
	env := newTestEnv(t)
	faqs := []database.FAQ{
		{Question: "What does plan 123 include?", Answer: "a", Category: "123", IsActive: true},
		{Question: "How do refunds work?", Answer: "a", Category: "billing", IsActive: true},
	}
	for i := range faqs {
		if err := env.db.Create(&faqs[i]).Error; err != nil {
			t.Fatalf("seed faq: %v", err)
		}
	}

	rec := env.do(t, http.MethodGet, "/v1/faqs?category=123", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1 for the numeric-looking category", resp.Count)
	}
}

func TestServiceRetrieveBySlug(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	rec := env.do(t, http.MethodGet, "/v1/services/web-development", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var detail struct {
		Title string `json:"title"`
		Slug  string `json:"slug"`
	}
	decode(t, rec, &detail)
	if detail.Title != "Web Development" {
		t.Errorf("title = %q, want Web Development", detail.Title)
	}

	if rec := env.do(t, http.MethodGet, "/v1/services/no-such-slug", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", rec.Code)
	}
}

func TestInactiveServiceHiddenFromAnonymous(t *testing.T) {
	env := newTestEnv(t)
	seedServices(t, env)

	if rec := env.do(t, http.MethodGet, "/v1/services/retired-offering", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", rec.Code)
	}

	_, token := createTestUser(t, env.db, env.auth, "editor@example.com", database.RoleEditor)
	if rec := env.do(t, http.MethodGet, "/v1/services/retired-offering", token, nil); rec.Code != http.StatusOK {
		t.Errorf("staff status = %d, want 200", rec.Code)
	}
}

func TestServiceWriteRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"title":             "Paid Media",
		"description":       "ads management",
		"short_description": "ads",
	}

	if rec := env.do(t, http.MethodPost, "/v1/services", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d, want 401", rec.Code)
	}

	_, token := createTestUser(t, env.db, env.auth, "editor@example.com", database.RoleEditor)
	rec := env.do(t, http.MethodPost, "/v1/services", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("authenticated create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestServiceDuplicateSlugNames400(t *testing.T) {
	env := newTestEnv(t)
	_, token := createTestUser(t, env.db, env.auth, "editor@example.com", database.RoleEditor)

	body := map[string]any{
		"title":             "Content Marketing",
		"description":       "d",
		"short_description": "s",
	}
	if rec := env.do(t, http.MethodPost, "/v1/services", token, body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/v1/services", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create status = %d, want 400", rec.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.Errors["slug"]; !ok {
		t.Errorf("error document does not name slug: %v", resp.Errors)
	}
}
