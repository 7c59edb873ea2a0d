package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/takeru/folio/internal/model"
)

// PostgresPortfolioRepo はPostgreSQLを使用したポートフォリオリポジトリ。
type PostgresPortfolioRepo struct {
	db *sql.DB
}

// NewPostgresPortfolioRepo はPostgresPortfolioRepoを生成する。
func NewPostgresPortfolioRepo(db *sql.DB) *PostgresPortfolioRepo {
	return &PostgresPortfolioRepo{db: db}
}

// FindByID は指定IDのポートフォリオを取得する。見つからない場合はnilを返す。
func (r *PostgresPortfolioRepo) FindByID(ctx context.Context, id string) (*model.Portfolio, error) {
	p := &model.Portfolio{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, images, created_at, updated_at
		 FROM portfolios WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, pq.Array(&p.Images), &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}

	return p, nil
}

// List は全ポートフォリオを作成日時の降順で返す。
func (r *PostgresPortfolioRepo) List(ctx context.Context) ([]*model.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, images, created_at, updated_at
		 FROM portfolios ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*model.Portfolio
	for rows.Next() {
		p := &model.Portfolio{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, pq.Array(&p.Images), &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolios: %w", err)
	}

	return portfolios, nil
}

// Create はポートフォリオを作成する。
func (r *PostgresPortfolioRepo) Create(ctx context.Context, p *model.Portfolio) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, title, description, images, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Title, p.Description, pq.Array(p.Images), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// Update はポートフォリオを上書き更新する。
func (r *PostgresPortfolioRepo) Update(ctx context.Context, p *model.Portfolio) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE portfolios
		 SET title = $2, description = $3, images = $4, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Title, p.Description, pq.Array(p.Images),
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("portfolio not found: %s", p.ID)
	}
	return nil
}

// Delete は指定IDのポートフォリオを削除する。
func (r *PostgresPortfolioRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM portfolios WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("portfolio not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PortfolioRepository = (*PostgresPortfolioRepo)(nil)
