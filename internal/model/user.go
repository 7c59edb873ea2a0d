// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashは平文パスワードから復元できないbcryptハッシュであり、
// ログやAPIレスポンスには決して含めない。
// VerificationCodeがnilでない場合、TwoFactorEnabledは必ずtrueであり、
// そのユーザーは現在のログインサイクルのステップアップ認証を完了していない。
type User struct {
	ID               string
	Username         string
	PasswordHash     string
	Role             Role
	TwoFactorEnabled bool
	VerificationCode *string // 消費済みまたは2FA無効の場合はnil
	Email            string
	FirstName        string
	LastName         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName はメール等の宛名に使用する表示名を返す。
// 名が空の場合はユーザー名にフォールバックする。
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// StepUpPending は現在のログインサイクルで検証コードの提出が
// 必要な状態かどうかを返す。
func (u *User) StepUpPending() bool {
	return u.VerificationCode != nil
}

// Session はユーザーのログインセッションを表す。
// パスワード検証に成功し、かつステップアップ認証が不要または完了済みの
// 場合にのみ作成される。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
