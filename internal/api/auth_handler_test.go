package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agencycms/internal/database"
)

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == refreshTokenCookieName {
			return cookie.Value
		}
	}
	t.Fatal("response carries no refresh cookie")
	return ""
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)
	user, _ := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    "STAFF@example.com",
		"password": "password-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Role        string `json:"role"`
	}
	decode(t, rec, &resp)
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Fatalf("malformed token response: %+v", resp)
	}
	if resp.Role != database.RoleEditor {
		t.Errorf("role = %q, want editor", resp.Role)
	}

	me := env.do(t, http.MethodGet, "/v1/users/me", resp.AccessToken, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", me.Code)
	}
	var profile struct {
		Email string `json:"email"`
	}
	decode(t, me, &profile)
	if profile.Email != user.Email {
		t.Errorf("me email = %q, want %q", profile.Email, user.Email)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    "staff@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshRotationBlacklistsOldToken(t *testing.T) {
	env := newTestEnv(t)
	createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	login := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    "staff@example.com",
		"password": "password-123",
	})
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", login.Code)
	}
	oldRefresh := refreshCookie(t, login)

	first := env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]any{
		"refresh_token": oldRefresh,
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first refresh status = %d, want 200: %s", first.Code, first.Body.String())
	}

	replay := env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]any{
		"refresh_token": oldRefresh,
	})
	if replay.Code != http.StatusUnauthorized {
		t.Errorf("replayed refresh status = %d, want 401", replay.Code)
	}
}

func TestAccessTokenRejectedForRefresh(t *testing.T) {
	env := newTestEnv(t)
	_, access := createTestUser(t, env.db, env.auth, "staff@example.com", database.RoleEditor)

	rec := env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]any{
		"refresh_token": access,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
