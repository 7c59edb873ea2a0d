package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// codeByteLength は検証コードの元になる乱数バイト数。
// 3バイト = 16進6文字のコードになる。
const codeByteLength = 3

// GenerateCode は暗号的に安全な乱数源から検証コードを生成する。
// 形式は大文字16進6文字（例: "A3F09B"）。
// ルックアップはusernameでスコープされるため、ユーザー間のコード衝突は
// 問題にならない。コードに有効期限は設けない。
func GenerateCode() (string, error) {
	b := make([]byte, codeByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
