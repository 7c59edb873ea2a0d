package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュの計算コスト。
// 意図的に重い処理であり、高速化はしない（ブルートフォース対策）。
const bcryptCost = 12

// dummyPasswordHash はユーザー名が存在しない場合にも比較を実行するための
// ダミーハッシュ。比較結果は常に破棄される。
// 存在しないユーザー名への応答時間を実在ユーザーと揃えるために使用する。
const dummyPasswordHash = "$2a$12$D4G5f18o7aMMfwasBL7GpuQWuP3pkrZrOAnqP.bmezbMng.QwJ/pG"

// HashPassword は平文パスワードのbcryptハッシュを返す。
// 平文・ハッシュのいずれもログには出力しないこと。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードを保存済みハッシュと照合する。
// bcryptの比較はハッシュ再計算を伴うため呼び出し元のゴルーチンを
// 比較の間ブロックするが、これは意図的な挙動。
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
