package model

import "fmt"

// Role はユーザーの役割を表す閉じた列挙型。
// 文字列比較による権限判定を避け、権限チェックはRoleのメソッドに集約する。
// 新しい役割を追加する場合は各メソッドのswitchも必ず更新すること。
type Role string

const (
	// RoleAdmin はポートフォリオの管理権限を持つ管理者。
	RoleAdmin Role = "admin"
	// RoleMember は閲覧のみ可能な一般ユーザー。
	RoleMember Role = "member"
)

// ParseRole は文字列からRoleを生成する。未知の値はエラーを返す。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid は定義済みの役割かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// CanManagePortfolios はポートフォリオの作成・更新・削除が可能かを返す。
func (r Role) CanManagePortfolios() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleMember:
		return false
	default:
		return false
	}
}
