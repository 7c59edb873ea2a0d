package auth

import "errors"

// 認証結果のエラー分類。
// ErrInvalidCredentialsとErrCodeRejectedは通常の拒否であり、
// 呼び出し側は中立的な再試行メッセージに変換する。
// ErrAuthenticationFailedのみが基盤障害（ストア到達不能など）を表す
// 例外的な条件で、外側のレイヤーへサーバーエラーとして伝播する。
var (
	// ErrInvalidCredentials はユーザー名不明またはパスワード不一致。
	// どちらが原因かは区別しない（ユーザー名列挙の防止）。
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrCodeRejected は検証コード不一致または消費済み。
	// どちらが原因かは区別しない。
	ErrCodeRejected = errors.New("verification code rejected")

	// ErrUsernameTaken はユーザー名の重複。
	ErrUsernameTaken = errors.New("username already taken")

	// ErrAuthenticationFailed は認証処理中の基盤障害。
	ErrAuthenticationFailed = errors.New("authentication failed")
)
