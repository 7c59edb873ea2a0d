package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/takeru/folio/internal/model"
)

// RequirePortfolioManager はポートフォリオ管理権限を持つロールのみを通過させる
// ミドルウェアを返す。認証ミドルウェアの後に配置する必要がある。
// 権限のないリクエストには403 Forbiddenを返す。
func RequirePortfolioManager() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !identity.Role.CanManagePortfolios() {
				slog.Warn("portfolio management denied",
					slog.String("user_id", identity.UserID),
					slog.String("role", string(identity.Role)),
				)
				writeForbiddenResponse(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeForbiddenResponse は403 Forbiddenレスポンスを書き込む。
func writeForbiddenResponse(w http.ResponseWriter) {
	apiErr := model.NewForbiddenError()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(apiErr)
}
