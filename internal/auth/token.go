package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/takeru/folio/internal/model"
)

// TokenValidity はアクセストークンの有効期間。発行時刻 + 1時間で固定。
// リフレッシュの仕組みは持たない。
const TokenValidity = time.Hour

// Claims はアクセストークンの属性。標準クレームに加えて
// ユーザー名と役割を含む。subjectにはユーザーIDが入る。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenIssuer は署名付きアクセストークンを発行する。
// トークンは自己完結型のベアラ資格情報であり、サーバー側には保存しない。
// 失効の仕組みは対象外。
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer はTokenIssuerを生成する。
// secretはHS256署名鍵として32バイト以上が必要。
func NewTokenIssuer(secret []byte) *TokenIssuer {
	if len(secret) < 32 {
		panic("token secret must be at least 32 bytes")
	}
	return &TokenIssuer{secret: secret}
}

// Issue は指定ユーザーのアクセストークンを発行する。
// クレームは {sub=ユーザーID, username, role}、有効期限は発行時刻+1時間。
// ステップアップ認証の成功時にのみ呼び出すこと。
func (i *TokenIssuer) Issue(user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
		Username: user.Username,
		Role:     string(user.Role),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse はトークン文字列を検証してクレームを返す。
// 署名不正・期限切れの場合はエラーを返す。
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
