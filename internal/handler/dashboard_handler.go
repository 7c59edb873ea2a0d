package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/takeru/folio/internal/market"
)

// QuoteFetcher はダッシュボードが必要とする市場データ取得インターフェース。
type QuoteFetcher interface {
	PreviousClose(ctx context.Context, symbol string) (*market.Quote, error)
}

// DashboardHandler はダッシュボード表示用データのHTTPハンドラー。
type DashboardHandler struct {
	quotes        QuoteFetcher
	defaultSymbol string
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(quotes QuoteFetcher, defaultSymbol string) *DashboardHandler {
	return &DashboardHandler{
		quotes:        quotes,
		defaultSymbol: defaultSymbol,
	}
}

// Quote は銘柄の前日終値を返す。
// GET /api/dashboard?symbol=AAPL
//
// symbolが省略された場合は設定されたデフォルト銘柄を使用する。
// 外部APIの障害はダッシュボード全体を壊さないよう502で返す。
func (h *DashboardHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = h.defaultSymbol
	}

	quote, err := h.quotes.PreviousClose(r.Context(), symbol)
	if err != nil {
		slog.Warn("quote fetch failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "市場データを取得できませんでした。",
		})
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
