package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/takeru/folio/internal/auth"
	"github.com/takeru/folio/internal/market"
	"github.com/takeru/folio/internal/metrics"
	"github.com/takeru/folio/internal/middleware"
	"github.com/takeru/folio/internal/model"
	"github.com/takeru/folio/internal/portfolio"
)

// --- モック定義 ---

type stubSessionFinder struct {
	sessions map[string]*model.Session
}

func (s *stubSessionFinder) FindByID(_ context.Context, id string) (*model.Session, error) {
	return s.sessions[id], nil
}

type stubUserFinder struct {
	users map[string]*model.User
}

func (s *stubUserFinder) FindByID(_ context.Context, id string) (*model.User, error) {
	return s.users[id], nil
}

type stubQuoteFetcher struct{}

func (stubQuoteFetcher) PreviousClose(_ context.Context, symbol string) (*market.Quote, error) {
	return &market.Quote{Symbol: symbol, Close: 190.4}, nil
}

var routerTestSecret = []byte("router-test-secret-32-bytes-long!!")

// newTestRouter は実ミドルウェアを組み込んだルーターを構築する。
// member / admin の2ユーザーとそれぞれのセッションを用意する。
func newTestRouter(t *testing.T) (http.Handler, *middleware.RateLimiter) {
	t.Helper()

	member := &model.User{ID: "u-member", Username: "bob", Role: model.RoleMember}
	admin := &model.User{ID: "u-admin", Username: "alice", Role: model.RoleAdmin}

	sessions := &stubSessionFinder{sessions: map[string]*model.Session{
		"sess-member": {ID: "sess-member", UserID: "u-member", ExpiresAt: time.Now().Add(time.Hour)},
		"sess-admin":  {ID: "sess-admin", UserID: "u-admin", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	users := &stubUserFinder{users: map[string]*model.User{
		"u-member": member,
		"u-admin":  admin,
	}}

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		LoginRate:       rate.Limit(1000),
		LoginBurst:      1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	portfolioService := &mockPortfolioService{
		listFunc: func(_ context.Context) ([]*model.Portfolio, error) {
			return []*model.Portfolio{{ID: "p1", Title: "Work"}}, nil
		},
		createFunc: func(_ context.Context, input portfolio.Input) (*model.Portfolio, error) {
			return &model.Portfolio{ID: "p2", Title: input.Title}, nil
		},
	}

	authService := &mockAuthService{
		authenticateFunc: func(_ context.Context, _, _ string) (*auth.LoginResult, error) {
			return nil, auth.ErrInvalidCredentials
		},
	}

	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)

	deps := &RouterDeps{
		SessionFinder:     sessions,
		UserFinder:        users,
		TokenParser:       auth.NewTokenIssuer(routerTestSecret),
		CORSAllowedOrigin: "https://folio.example.com",
		RateLimiter:       rl,
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthService:       authService,
		AuthConfig:        testAuthConfig(),
		PortfolioService:  portfolioService,
		QuoteFetcher:      stubQuoteFetcher{},
		QuoteSymbol:       "AAPL",
		MetricsGatherer:   reg,
	}

	return NewRouter(deps), rl
}

// TestRouter_HealthCheck は/healthが認証なしで200を返すことを検証する。
func TestRouter_HealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

type failingPinger struct{}

func (failingPinger) PingContext(_ context.Context) error {
	return errors.New("connection refused")
}

// TestRouter_HealthCheck_DBUnreachable はDB到達不能時に/healthが503を返すことを検証する。
func TestRouter_HealthCheck_DBUnreachable(t *testing.T) {
	deps := &RouterDeps{
		HealthChecker: failingPinger{},
		RateLimiter:   middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		AuthService:   &mockAuthService{},
		AuthConfig:    testAuthConfig(),
	}
	router := NewRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

// TestRouter_Metrics_Exposed は/metricsがPrometheus形式で公開されることを検証する。
func TestRouter_Metrics_Exposed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "folio_login_success_total") {
		t.Error("metrics output missing auth counters")
	}
}

// TestRouter_Unauthenticated_APIReturns401 は未認証のAPIアクセスが401になることを検証する。
func TestRouter_Unauthenticated_APIReturns401(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []string{"/api/portfolios", "/api/dashboard"}
	for _, path := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, w.Code)
		}
	}
}

// TestRouter_MemberSession_CanReadPortfolios はメンバーが一覧を閲覧できることを検証する。
func TestRouter_MemberSession_CanReadPortfolios(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-member"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// TestRouter_MemberSession_CannotCreatePortfolio はメンバーの作成が403になることを検証する。
func TestRouter_MemberSession_CannotCreatePortfolio(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(`{"title":"X"}`))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-member"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

// TestRouter_AdminSession_CanCreatePortfolio は管理者の作成が201になることを検証する。
func TestRouter_AdminSession_CanCreatePortfolio(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(`{"title":"X"}`))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-admin"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}

// TestRouter_BearerToken_AdminCanCreate はBearerトークンでも権限判定が働くことを検証する。
func TestRouter_BearerToken_AdminCanCreate(t *testing.T) {
	router, _ := newTestRouter(t)

	issuer := auth.NewTokenIssuer(routerTestSecret)
	token, err := issuer.Issue(&model.User{ID: "u-admin", Username: "alice", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("token issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(`{"title":"X"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}

// TestRouter_Dashboard_ReturnsQuote は認証済みユーザーがダッシュボードの株価を取得できることを検証する。
func TestRouter_Dashboard_ReturnsQuote(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-member"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "AAPL") {
		t.Errorf("body = %q, want AAPL quote", w.Body.String())
	}
}

// TestRouter_Login_NeutralRejection はログイン失敗がルーター経由でも中立的な401になることを検証する。
func TestRouter_Login_NeutralRejection(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"nobody","password":"x"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
