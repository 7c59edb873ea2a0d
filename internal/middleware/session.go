// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/takeru/folio/internal/auth"
	"github.com/takeru/folio/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みアイデンティティを格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity は認証済みリクエストの主体を表す。
// セッションCookieまたはBearerトークンのどちらで認証されたかによらず同じ形を取る。
type Identity struct {
	UserID   string
	Username string
	Role     model.Role
}

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder はユーザーの検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenParser はBearerトークンの検証に必要なインターフェース。
type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// NewAuthMiddleware はリクエストを認証するミドルウェアを返す。
//
// 認証は2経路を受け付ける:
//   - Authorization: Bearer ヘッダーのアクセストークン（クレームから直接Identityを構築）
//   - HTTP Only CookieのセッションID（セッションとユーザーをストアから解決）
//
// 認証済みIdentityをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(sessions SessionFinder, users UserFinder, parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, ok := identityFromBearer(r, parser); ok {
				ctx := ContextWithIdentity(r.Context(), identity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, ok := identityFromSession(r, sessions, users)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFromBearer はAuthorizationヘッダーのBearerトークンからIdentityを構築する。
func identityFromBearer(r *http.Request, parser TokenParser) (Identity, bool) {
	if parser == nil {
		return Identity{}, false
	}
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return Identity{}, false
	}

	claims, err := parser.Parse(token)
	if err != nil {
		return Identity{}, false
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, false
	}

	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
	}, true
}

// identityFromSession はセッションCookieからIdentityを構築する。
func identityFromSession(r *http.Request, sessions SessionFinder, users UserFinder) (Identity, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, false
	}

	session, err := sessions.FindByID(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to find session",
			slog.String("error", err.Error()),
		)
		return Identity{}, false
	}
	if session == nil {
		return Identity{}, false
	}

	user, err := users.FindByID(r.Context(), session.UserID)
	if err != nil {
		slog.Error("failed to find session user",
			slog.String("error", err.Error()),
		)
		return Identity{}, false
	}
	if user == nil {
		return Identity{}, false
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, true
}

// IdentityFromContext はリクエストコンテキストから認証済みIdentityを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
