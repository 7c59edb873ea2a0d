// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, portfolio, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeCodeRejected       = "CODE_REJECTED"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodePortfolioNotFound  = "PORTFOLIO_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名不明とパスワード不一致を区別しない中立的なメッセージを返す。
// どちらが誤っていたかを応答から推測できないようにするための仕様。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewCodeRejectedError は検証コード不正エラーを生成する。
// コード不一致と消費済みコードを区別しない中立的なメッセージを返す。
func NewCodeRejectedError() *APIError {
	return &APIError{
		Code:     ErrCodeCodeRejected,
		Message:  "検証コードが正しくありません。",
		Category: "auth",
		Action:   "メールに記載された検証コードを確認して再度お試しください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインし直してください。",
	}
}

// NewPortfolioNotFoundError はポートフォリオ未検出エラーを生成する。
func NewPortfolioNotFoundError(portfolioID string) *APIError {
	return &APIError{
		Code:     ErrCodePortfolioNotFound,
		Message:  fmt.Sprintf("指定されたポートフォリオが見つかりません: %s", portfolioID),
		Category: "portfolio",
		Action:   "ポートフォリオIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
