// Package portfolio はポートフォリオ作品管理のドメインロジックを提供する。
package portfolio

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/takeru/folio/internal/model"
	"github.com/takeru/folio/internal/repository"
)

// maxImagesPerPortfolio は1作品あたりの画像URL上限。
const maxImagesPerPortfolio = 10

// Sanitizer はコンテンツサニタイズのインターフェース。
// テスタビリティのためsecurity.ContentSanitizerServiceを抽象化する。
type Sanitizer interface {
	SanitizeTitle(raw string) string
	SanitizeDescription(raw string) string
}

// Service はポートフォリオ管理のサービス層。
// 入力の検証とサニタイズを行ってから永続化する。
type Service struct {
	repo      repository.PortfolioRepository
	sanitizer Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.PortfolioRepository, sanitizer Sanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Input はポートフォリオの作成・更新の入力。
type Input struct {
	Title       string
	Description string
	Images      []string
}

// Create は新しいポートフォリオを作成する。
func (s *Service) Create(ctx context.Context, input Input) (*model.Portfolio, error) {
	title, description, images, err := s.sanitizeInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Portfolio{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("ポートフォリオの保存に失敗しました: %w", err)
	}

	return p, nil
}

// Get は指定IDのポートフォリオを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Portfolio, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ポートフォリオの検索に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPortfolioNotFoundError(id)
	}
	return p, nil
}

// List は全ポートフォリオを作成日時の降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Portfolio, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ポートフォリオ一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Update は既存のポートフォリオを上書き更新する。
func (s *Service) Update(ctx context.Context, id string, input Input) (*model.Portfolio, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ポートフォリオの検索に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPortfolioNotFoundError(id)
	}

	title, description, images, err := s.sanitizeInput(input)
	if err != nil {
		return nil, err
	}

	p.Title = title
	p.Description = description
	p.Images = images
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("ポートフォリオの更新に失敗しました: %w", err)
	}

	return p, nil
}

// Delete は指定IDのポートフォリオを削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ポートフォリオの検索に失敗しました: %w", err)
	}
	if p == nil {
		return model.NewPortfolioNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("ポートフォリオの削除に失敗しました: %w", err)
	}

	return nil
}

// sanitizeInput は入力を検証し、サニタイズ済みの値を返す。
func (s *Service) sanitizeInput(input Input) (title, description string, images []string, err error) {
	title = s.sanitizer.SanitizeTitle(input.Title)
	if title == "" {
		return "", "", nil, model.NewValidationError("タイトルは必須です")
	}

	description = s.sanitizer.SanitizeDescription(input.Description)

	if len(input.Images) > maxImagesPerPortfolio {
		return "", "", nil, model.NewValidationError(
			fmt.Sprintf("画像は%d件までです", maxImagesPerPortfolio))
	}

	images = make([]string, 0, len(input.Images))
	for _, raw := range input.Images {
		if err := validateImageURL(raw); err != nil {
			return "", "", nil, model.NewValidationError(err.Error())
		}
		images = append(images, raw)
	}

	return title, description, images, nil
}

// validateImageURL は画像URLがhttp/httpsの絶対URLであることを検証する。
func validateImageURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("画像URLが不正です: %s", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("画像URLはhttpまたはhttpsである必要があります: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("画像URLにホストがありません: %s", raw)
	}
	return nil
}
