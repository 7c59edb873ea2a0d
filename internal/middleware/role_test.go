package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/takeru/folio/internal/model"
)

// TestRequirePortfolioManager_AdminPasses は管理者ロールが通過することを検証する。
func TestRequirePortfolioManager_AdminPasses(t *testing.T) {
	called := false
	handler := RequirePortfolioManager()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", nil)
	ctx := ContextWithIdentity(req.Context(), Identity{UserID: "u1", Username: "alice", Role: model.RoleAdmin})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	if !called {
		t.Error("handler should be reached for admin")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// TestRequirePortfolioManager_MemberForbidden は一般メンバーが403で拒否されることを検証する。
func TestRequirePortfolioManager_MemberForbidden(t *testing.T) {
	handler := RequirePortfolioManager()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached for member")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", nil)
	ctx := ContextWithIdentity(req.Context(), Identity{UserID: "u2", Username: "bob", Role: model.RoleMember})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

// TestRequirePortfolioManager_Unauthenticated_Returns401 は未認証リクエストが401になることを検証する。
func TestRequirePortfolioManager_Unauthenticated_Returns401(t *testing.T) {
	handler := RequirePortfolioManager()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
