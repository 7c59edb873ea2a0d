package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/takeru/folio/internal/metrics"
	"github.com/takeru/folio/internal/middleware"
)

// HealthChecker はヘルスチェック時のDB到達性確認に使う。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ヘルスチェック（nilの場合はDB確認なしで200を返す）
	HealthChecker HealthChecker

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	TokenParser       middleware.TokenParser
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ポートフォリオ
	PortfolioService PortfolioServiceInterface

	// ダッシュボード
	QuoteFetcher QuoteFetcher
	QuoteSymbol  string

	// メトリクス公開用レジストリ（nilの場合は/metricsを公開しない）
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Auth → RateLimit(General)]
//
// 認証ルート（/auth/*）は認証ミドルウェアの外に配置し、
// ログイン・登録・検証には専用のIP単位レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	portfolioHandler := NewPortfolioHandler(deps.PortfolioService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		// 認証前エンドポイントにはIP単位のレート制限を適用
		loginLimit := deps.RateLimiter.LoginMiddleware()

		r.With(loginLimit).Post("/register", authHandler.Register)
		r.With(loginLimit).Post("/login", authHandler.Login)
		r.With(loginLimit).Post("/verify", authHandler.Verify)

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.Get("/2fa-status", authHandler.TwoFactorStatus)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.SessionFinder, deps.UserFinder, deps.TokenParser))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ポートフォリオ管理
		r.Route("/api/portfolios", func(r chi.Router) {
			r.Get("/", portfolioHandler.List)
			r.Get("/{id}", portfolioHandler.Get)

			// 作成・更新・削除はポートフォリオ管理権限が必要
			manage := middleware.RequirePortfolioManager()
			r.With(manage).Post("/", portfolioHandler.Create)
			r.With(manage).Put("/{id}", portfolioHandler.Update)
			r.With(manage).Delete("/{id}", portfolioHandler.Delete)
		})

		// ダッシュボード
		if deps.QuoteFetcher != nil {
			dashboardHandler := NewDashboardHandler(deps.QuoteFetcher, deps.QuoteSymbol)
			r.Get("/api/dashboard", dashboardHandler.Quote)
		}
	})

	return r
}
