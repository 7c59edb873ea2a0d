package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/takeru/folio/internal/model"
	"github.com/takeru/folio/internal/portfolio"
)

// PortfolioServiceInterface はポートフォリオハンドラーが必要とするサービスインターフェース。
type PortfolioServiceInterface interface {
	Create(ctx context.Context, input portfolio.Input) (*model.Portfolio, error)
	Get(ctx context.Context, id string) (*model.Portfolio, error)
	List(ctx context.Context) ([]*model.Portfolio, error)
	Update(ctx context.Context, id string, input portfolio.Input) (*model.Portfolio, error)
	Delete(ctx context.Context, id string) error
}

// PortfolioHandler はポートフォリオ管理のHTTPハンドラー。
// 閲覧は認証済みユーザー全員、作成・更新・削除はロールミドルウェアで制限される。
type PortfolioHandler struct {
	service PortfolioServiceInterface
}

// NewPortfolioHandler はPortfolioHandlerを生成する。
func NewPortfolioHandler(service PortfolioServiceInterface) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// portfolioRequest はポートフォリオ作成・更新リクエストのボディ。
type portfolioRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// portfolioResponse はポートフォリオ情報のAPIレスポンス。
type portfolioResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPortfolioResponse(p *model.Portfolio) portfolioResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return portfolioResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Images:      images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// List はポートフォリオ一覧を返す。
// GET /api/portfolios
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]portfolioResponse, 0, len(list))
	for _, p := range list {
		responses = append(responses, toPortfolioResponse(p))
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get は指定IDのポートフォリオを返す。
// GET /api/portfolios/{id}
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPortfolioResponse(p))
}

// Create は新しいポートフォリオを作成する。
// POST /api/portfolios
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	p, err := h.service.Create(r.Context(), portfolio.Input{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPortfolioResponse(p))
}

// Update は既存のポートフォリオを更新する。
// PUT /api/portfolios/{id}
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	p, err := h.service.Update(r.Context(), id, portfolio.Input{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPortfolioResponse(p))
}

// Delete は指定IDのポートフォリオを削除する。
// DELETE /api/portfolios/{id}
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
