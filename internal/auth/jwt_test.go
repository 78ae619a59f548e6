package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT(42, "admin")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT returned error: %v", err)
	}
	if claims["role"] != "admin" {
		t.Fatalf("role claim = %v, want admin", claims["role"])
	}

	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}

	t.Setenv("JWT_SECRET", "different-secret")
	if _, err := ValidateJWT(token); err == nil {
		t.Fatal("expected error for token signed with another secret, got nil")
	}
}

func TestGetUserIDFromRequest(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT(7, "user")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/subnets", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	userID, err := GetUserIDFromRequest(r)
	if err != nil {
		t.Fatalf("GetUserIDFromRequest returned error: %v", err)
	}
	if userID != 7 {
		t.Fatalf("userID = %d, want 7", userID)
	}

	r = httptest.NewRequest(http.MethodGet, "/subnets", nil)
	if _, err := GetUserIDFromRequest(r); err == nil {
		t.Fatal("expected error for missing Authorization header, got nil")
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subnets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request got %d, want 401", rec.Code)
	}

	token, _ := GenerateJWT(1, "user")
	r := httptest.NewRequest(http.MethodGet, "/subnets", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated request got %d, want 204", rec.Code)
	}
}

func TestIsAdminMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := IsAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	token, _ := GenerateJWT(1, "user")
	r := httptest.NewRequest(http.MethodGet, "/global/settings", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin request got %d, want 403", rec.Code)
	}
}
