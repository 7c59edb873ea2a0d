// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/takeru/folio/internal/model"
)

// UserRepository はユーザーデータ（認証情報ストア）の永続化インターフェース。
//
// ルックアップはusernameの完全一致で行う。大文字小文字は区別する
// （登録時のusernameがそのまま検索キーになる）。
// ロックは提供しない。同一ユーザーへの並行な「検索してから更新」が
// 必要な場合はConsumeVerificationCodeのような条件付き更新を使うこと。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// username重複の場合はErrUsernameConflictを返す。
	Create(ctx context.Context, user *model.User) error

	// ConsumeVerificationCode はusernameとcodeの両方に一致するユーザーの
	// 検証コードを単一の条件付きUPDATEでnullにし、更新後のユーザーを返す。
	// 一致する行がない場合（コード不一致・消費済み・ユーザー不在）はnilを返す。
	// 読み取り・照合・クリアが1文で行われるため、同一コードの並行提出では
	// 必ず一方だけが成功する。
	ConsumeVerificationCode(ctx context.Context, username, code string) (*model.User, error)

	// UpdateVerificationCode は指定ユーザーの検証コードを差し替える。
	// codeがnilの場合はコードをクリアする。
	UpdateVerificationCode(ctx context.Context, userID string, code *string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// PortfolioRepository はポートフォリオデータの永続化インターフェース。
// 所有権以外の不変条件を持たない単純なCRUD。
type PortfolioRepository interface {
	// FindByID は指定IDのポートフォリオを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Portfolio, error)

	// List は全ポートフォリオを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Portfolio, error)

	// Create はポートフォリオを作成する。
	Create(ctx context.Context, p *model.Portfolio) error

	// Update はポートフォリオを上書き更新する。
	Update(ctx context.Context, p *model.Portfolio) error

	// Delete は指定IDのポートフォリオを削除する。
	Delete(ctx context.Context, id string) error
}
