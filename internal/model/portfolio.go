package model

import "time"

// Portfolio は公開ポートフォリオ作品を表す。
// 作成・更新・削除は管理者のみ、閲覧は認証済みユーザー全員が可能。
type Portfolio struct {
	ID          string
	Title       string
	Description string
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
