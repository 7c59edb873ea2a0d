package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/takeru/folio/internal/model"
)

// ErrUsernameConflict はusernameのユニーク制約違反を表す。
var ErrUsernameConflict = errors.New("username already exists")

// uniqueViolation はPostgreSQLのユニーク制約違反のSQLSTATE。
const uniqueViolation = "23505"

// userColumns はusersテーブルのSELECT対象カラム。
const userColumns = `id, username, password_hash, role, two_factor_enabled,
	verification_code, email, first_name, last_name, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// scanUser は1行をmodel.Userに読み込む。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &role,
		&user.TwoFactorEnabled, &user.VerificationCode,
		&user.Email, &user.FirstName, &user.LastName,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := model.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("invalid role stored for user %s: %w", user.ID, err)
	}
	user.Role = parsed
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
// 完全一致・大文字小文字区別。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。username重複の場合はErrUsernameConflictを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, two_factor_enabled,
			verification_code, email, first_name, last_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		user.TwoFactorEnabled, user.VerificationCode,
		user.Email, user.FirstName, user.LastName,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrUsernameConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// ConsumeVerificationCode はusernameとcodeに一致する行の検証コードを
// 単一の条件付きUPDATEでクリアし、更新後のユーザーを返す。
// 一致する行がない場合はnilを返す。
// WHERE句にコード値そのものを含めることで読み取り・照合・クリアが
// 原子的に行われ、同一コードの二重消費を防ぐ。
func (r *PostgresUserRepo) ConsumeVerificationCode(ctx context.Context, username, code string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET verification_code = NULL, updated_at = now()
		 WHERE username = $1 AND verification_code = $2
		 RETURNING `+userColumns,
		username, code,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification code: %w", err)
	}
	return user, nil
}

// UpdateVerificationCode は指定ユーザーの検証コードを差し替える。
func (r *PostgresUserRepo) UpdateVerificationCode(ctx context.Context, userID string, code *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET verification_code = $2, updated_at = now() WHERE id = $1`,
		userID, code,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification code: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
